// Package websocket exposes the realtime endpoint that clients use to join
// sessions and manipulate indexed bodies.
package websocket

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/plopgrizzly/ami/messages"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

// Error types reported by handlers.
const (
	ErrTypeMsgSkip          = "msg_skip"
	ErrTypeSessionNotJoined = "session_not_joined"
)

// Msg is a wire message: the decoded envelope type and the raw JSON payload.
type Msg struct {
	Type messages.MsgType
	Data []byte
}

// DataTo decodes the message payload into the given value.
func (m Msg) DataTo(v any) error {
	if err := json.Unmarshal(m.Data, v); err != nil {
		return errors.New("decoding message payload failed").
			WithTag("msg_type", m.Type).
			Wrap(err)
	}
	return nil
}

func (m Msg) TypeString() string {
	return m.Type.String()
}

// MsgFrom encodes the given message and reads its envelope type back so the
// result can be labeled without decoding it again.
func MsgFrom(v any) (Msg, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Msg{}, errors.New("encoding message failed").Wrap(err)
	}

	var envelope struct {
		Type messages.MsgType `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Msg{}, errors.New("decoding message envelope failed").Wrap(err)
	}

	return Msg{Type: envelope.Type, Data: data}, nil
}

// Receiver receives a message and returns it along with its size in bytes.
type Receiver func() (Msg, int, error)

// Sender sends a message and returns its size in bytes.
type Sender func(msg Msg) (int, error)

// ResponseSender queues messages to be sent to the connected client.
type ResponseSender interface {
	Send(v any)
	SendMsg(msg Msg)
}

// Receive reads one message from the given connection.
func Receive(conn *websocket.Conn) (Msg, int, error) {
	var data string
	if err := websocket.Message.Receive(conn, &data); err != nil {
		return Msg{}, 0, err
	}

	var envelope struct {
		Type messages.MsgType `json:"type"`
	}
	if err := json.Unmarshal([]byte(data), &envelope); err != nil {
		return Msg{}, len(data), errors.New("decoding message envelope failed").Wrap(err)
	}

	return Msg{Type: envelope.Type, Data: []byte(data)}, len(data), nil
}

// Send writes the given message to the given connection.
func Send(conn *websocket.Conn, msg Msg) (int, error) {
	if err := websocket.Message.Send(conn, string(msg.Data)); err != nil {
		return 0, err
	}
	return len(msg.Data), nil
}
