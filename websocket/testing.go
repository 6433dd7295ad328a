package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/plopgrizzly/ami/messages"
	"github.com/plopgrizzly/ami/models"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

// NewTestingEnv creates a testing environment to unit test handlers. It
// returns two client connections served by handlers sharing a session store.
func NewTestingEnv(t *testing.T, newHandler func() Handler) (*websocket.Conn, *websocket.Conn, func()) {
	server := httptest.NewServer(websocket.Server{
		Handshake: func(c *websocket.Config, r *http.Request) error {
			return nil
		},
		Handler: func(conn *websocket.Conn) {
			defer conn.Close()

			handler := newHandler()
			defer handler.Close()

			Handle(context.Background(), conn, handler)
		},
	})

	newConn := func() *websocket.Conn {
		config, err := websocket.NewConfig(
			strings.ReplaceAll(server.URL, "http://", "ws://"),
			"http://localhost",
		)
		if err != nil {
			t.Fatalf("error initializing web socket: %s", err)
		}

		config.Header.Set("User-Agent", "ami-test")

		conn, err := websocket.DialConfig(config)
		if err != nil {
			t.Fatalf("error dialing web socket: %s", err)
		}

		return conn
	}

	clientA := newConn()
	clientB := newConn()

	return clientA, clientB, func() {
		clientA.Close()
		clientB.Close()
		server.Close()
	}
}

func newTestHandler() func() Handler {
	sessionStore := &models.SessionStore{}

	return func() Handler {
		var h Handler = &RealtimeHandler{
			ClientSyncClockInterval: time.Millisecond * 250,
			ClientIdleTimeout:       time.Minute,
			Sessions:                sessionStore,
		}

		h = HandlerWithLogs(h, time.Millisecond*100)
		h = HandlerWithMetrics(h, "https://ami-test.local")
		return h
	}
}

// sendTestMsg marshals v and writes it to the connection.
func sendTestMsg(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, websocket.Message.Send(conn, string(data)))
}

// receiveTestMsg reads messages from the connection until one with the wanted
// type shows up. Other messages, such as sync clocks, are skipped.
func receiveTestMsg(t *testing.T, conn *websocket.Conn, wantType messages.MsgType) Msg {
	t.Helper()

	deadline := time.Now().Add(time.Second * 5)

	for {
		require.NoError(t, conn.SetReadDeadline(deadline))

		var data string
		require.NoError(t, websocket.Message.Receive(conn, &data))

		var envelope struct {
			Type messages.MsgType `json:"type"`
		}
		require.NoError(t, json.Unmarshal([]byte(data), &envelope))

		if envelope.Type == wantType {
			return Msg{Type: envelope.Type, Data: []byte(data)}
		}
	}
}
