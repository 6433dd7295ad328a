package websocket

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/plopgrizzly/ami/messages"
	"golang.org/x/net/websocket"
)

func HandlerWithLogs(h Handler, summaryInterval time.Duration) Handler {
	ctx, cancel := context.WithCancel(context.Background())

	handler := &handlerWithLogs{
		Handler:            h,
		summaryInterval:    summaryInterval,
		closeSummaryWorker: cancel,
		counter:            make(map[string]int),
	}

	go handler.startSummaryWorker(ctx)
	return handler
}

type handlerWithLogs struct {
	Handler

	originalRequest *http.Request

	summaryInterval    time.Duration
	closeSummaryWorker func()
	counterMutex       sync.Mutex
	counter            map[string]int

	remoteAddr    string
	sessionUUID   string
	participantID uint32
}

func (h *handlerWithLogs) HandleConnect(conn *websocket.Conn) {
	h.Handler.HandleConnect(conn)

	req := conn.Request()
	h.originalRequest = req
	h.remoteAddr = req.RemoteAddr

	logs.WithTag("remote_addr", h.remoteAddr).
		Info("new client is connected")
}

func (h *handlerWithLogs) HandleSessionJoin(ctx context.Context, respond ResponseSender, msg Msg) error {
	if err := h.Handler.HandleSessionJoin(ctx, respond, msg); err != nil {
		return err
	}

	if h.CurrentParticipant() == nil {
		var req messages.SessionJoinRequest
		// Decoding already succeeded in the wrapped handler.
		msg.DataTo(&req)

		logs.WithTag("remote_addr", h.remoteAddr).
			WithTag("session_uuid", req.SessionID).
			WithTag("request_id", req.RequestID).
			WithTag("user_agent", h.originalRequest.UserAgent()).
			Info("participant failed to join a session")
		return nil
	}

	h.sessionUUID = h.CurrentSession().SessionUUID
	h.participantID = h.CurrentParticipant().ID

	logs.WithTag("remote_addr", h.remoteAddr).
		WithTag("session_uuid", h.sessionUUID).
		WithTag("participant_id", h.participantID).
		WithTag("user_agent", h.originalRequest.UserAgent()).
		Info("participant joined a session")
	return nil
}

func (h *handlerWithLogs) HandleDisconnect(err error) {
	h.Handler.HandleDisconnect(err)

	logs.WithTag("remote_addr", h.remoteAddr).
		WithTag("session_uuid", h.sessionUUID).
		WithTag("participant_id", h.participantID).
		Info("client disconnected")
}

func (h *handlerWithLogs) Receiver() Receiver {
	receive := h.Handler.Receiver()

	return func() (Msg, int, error) {
		msg, n, err := receive()
		if err != nil && !stderrors.Is(err, io.EOF) && !stderrors.Is(err, net.ErrClosed) {
			logs.WithTag("remote_addr", h.remoteAddr).
				WithTag("session_uuid", h.sessionUUID).
				WithTag("participant_id", h.participantID).
				Error(errors.New("receiving message failed").Wrap(err))
		} else if err == nil {
			logs.WithTag("remote_addr", h.remoteAddr).
				WithTag("session_uuid", h.sessionUUID).
				WithTag("participant_id", h.participantID).
				WithTag("msg_type", msg.TypeString()).
				Debug("message received")
			h.incCounter(msg.TypeString())
		}
		return msg, n, err
	}
}

func (h *handlerWithLogs) Sender() Sender {
	send := h.Handler.Sender()

	return func(msg Msg) (int, error) {
		msgType := msg.TypeString()

		n, err := send(msg)
		if err != nil && !stderrors.Is(err, net.ErrClosed) {
			logs.WithTag("remote_addr", h.remoteAddr).
				WithTag("session_uuid", h.sessionUUID).
				WithTag("participant_id", h.participantID).
				WithTag("msg_type", msgType).
				Error(errors.New("sending message failed").Wrap(err))
		} else if err == nil {
			logs.WithTag("remote_addr", h.remoteAddr).
				WithTag("session_uuid", h.sessionUUID).
				WithTag("participant_id", h.participantID).
				WithTag("msg_type", msgType).
				Debug("message sent")
		}
		return n, err
	}
}

func (h *handlerWithLogs) Close() {
	h.Handler.Close()
	h.closeSummaryWorker()
	h.logSummary()
}

func (h *handlerWithLogs) startSummaryWorker(ctx context.Context) {
	ticker := time.NewTicker(h.summaryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			h.logSummary()
		}
	}
}

func (h *handlerWithLogs) incCounter(msgType string) {
	h.counterMutex.Lock()
	defer h.counterMutex.Unlock()

	h.counter[msgType]++
}

func (h *handlerWithLogs) logSummary() {
	h.counterMutex.Lock()
	defer h.counterMutex.Unlock()

	if len(h.counter) == 0 {
		return
	}

	entry := logs.WithTag("remote_addr", h.remoteAddr).
		WithTag("session_uuid", h.sessionUUID).
		WithTag("participant_id", h.participantID).
		WithTag("time_interval", h.summaryInterval)

	for k, v := range h.counter {
		entry = entry.WithTag(k, v)
		delete(h.counter, k)
	}

	entry.Info("inbound message summary")
}
