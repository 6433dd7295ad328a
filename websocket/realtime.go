package websocket

import (
	"context"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/plopgrizzly/ami/featureflag"
	"github.com/plopgrizzly/ami/messages"
	"github.com/plopgrizzly/ami/models"
	"golang.org/x/net/websocket"
)

// RealtimeHandler manages a client connection and relays its actions on the
// session world to the other participants in realtime.
type RealtimeHandler struct {
	// The interval between each sync clock message sent to the connected
	// client.
	ClientSyncClockInterval time.Duration

	// The time a client is idle before being disconnected.
	ClientIdleTimeout time.Duration

	// The store that contains all the server sessions.
	Sessions *models.SessionStore

	FeatureFlags featureflag.FeatureFlag

	conn               *websocket.Conn
	currentSession     *models.Session
	currentParticipant *models.Participant
}

func (h *RealtimeHandler) HandleConnect(conn *websocket.Conn) {
	h.conn = conn
}

func (h *RealtimeHandler) HandlePing(ctx context.Context, respond ResponseSender, msg Msg) error {
	var req messages.PingRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	respond.Send(&messages.PingResponse{
		Response: messages.Response{
			Type:      messages.MsgTypePingResponse,
			Timestamp: time.Now(),
			RequestID: req.RequestID,
		},
	})
	return nil
}

func (h *RealtimeHandler) HandleSessionJoin(ctx context.Context, respond ResponseSender, msg Msg) error {
	var req messages.SessionJoinRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	if h.currentSession != nil && h.currentSession.SessionUUID == req.SessionID {
		respond.Send(&messages.ErrorResponse{
			Response: messages.Response{
				Type:      messages.MsgTypeErrorResponse,
				Timestamp: time.Now(),
				RequestID: req.RequestID,
			},
			Code: messages.ErrorCodeSessionAlreadyJoined,
		})
		return nil
	}

	if h.currentParticipant != nil {
		h.leaveSession()
	}

	session, ok := h.Sessions.GetByUUID(req.SessionID)
	if !ok && req.SessionID != "" {
		respond.Send(&messages.ErrorResponse{
			Response: messages.Response{
				Type:      messages.MsgTypeErrorResponse,
				Timestamp: time.Now(),
				RequestID: req.RequestID,
			},
			Code: messages.ErrorCodeNotFound,
		})
		return nil
	}

	if !ok {
		session = models.NewSession(h.Sessions.NewID())
		h.Sessions.Add(session)
	}

	participant := &models.Participant{
		ID:        session.NewParticipantID(),
		Responder: respond,
	}

	session.AddParticipant(participant)

	respond.Send(&messages.SessionJoinResponse{
		Response: messages.Response{
			Type:      messages.MsgTypeSessionJoinResponse,
			Timestamp: time.Now(),
			RequestID: req.RequestID,
		},
		SessionID:     session.SessionUUID,
		ParticipantID: participant.ID,
	})

	h.currentSession = session
	h.currentParticipant = participant

	h.FeatureFlags.IfNotSet(featureflag.FlagDisableSessionState, func() {
		respond.Send(&messages.SessionState{
			Type:           messages.MsgTypeSessionState,
			Timestamp:      time.Now(),
			ParticipantIDs: participantIDs(session.GetParticipants()),
			Bodies:         bodiesToWire(session.Bodies()),
		})
	})

	h.FeatureFlags.IfNotSet(featureflag.FlagDisableParticipantJoinBroadcast, func() {
		session.Broadcast(participant, &messages.ParticipantJoinBroadcast{
			Type:          messages.MsgTypeParticipantJoinBroadcast,
			Timestamp:     time.Now(),
			ParticipantID: participant.ID,
		})
	})

	return nil
}

func (h *RealtimeHandler) HandleDisconnect(_ error) {
	if h.currentParticipant != nil {
		h.leaveSession()
	}
}

func (h *RealtimeHandler) HandleBodyAdd(ctx context.Context, respond ResponseSender, msg Msg) error {
	var req messages.BodyAddRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	participant := h.currentParticipant
	session := h.currentSession
	if participant == nil || session == nil {
		return errors.New("session not joined").
			WithType(ErrTypeSessionNotJoined).
			WithTag("msg_type", msg.Type)
	}

	if err := messages.ValidateExtents(req.Extents); err != nil {
		respond.Send(&messages.ErrorResponse{
			Response: messages.Response{
				Type:      messages.MsgTypeErrorResponse,
				Timestamp: time.Now(),
				RequestID: req.RequestID,
			},
			Code: messages.ErrorCodeBadRequest,
		})
		return nil
	}

	body := models.NewBody(participant.ID, req.Center.Vector3f(), req.Extents.Vector3f())
	session.AddBody(body)
	participant.AddBody(body)

	now := time.Now()

	respond.Send(&messages.BodyAddResponse{
		Response: messages.Response{
			Type:      messages.MsgTypeBodyAddResponse,
			Timestamp: now,
			RequestID: req.RequestID,
		},
		BodyID: body.ID,
	})

	h.FeatureFlags.IfNotSet(featureflag.FlagDisableBodyAddBroadcast, func() {
		session.Broadcast(participant, &messages.BodyAddBroadcast{
			Type:      messages.MsgTypeBodyAddBroadcast,
			Timestamp: now,
			Body:      bodyToWire(body),
		})
	})

	return nil
}

func (h *RealtimeHandler) HandleBodyRemove(ctx context.Context, respond ResponseSender, msg Msg) error {
	var req messages.BodyRemoveRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	participant := h.currentParticipant
	session := h.currentSession
	if participant == nil || session == nil {
		return errors.New("session not joined").
			WithType(ErrTypeSessionNotJoined).
			WithTag("msg_type", msg.Type)
	}

	body, ok := session.Body(req.BodyID)
	if !ok {
		respond.Send(&messages.ErrorResponse{
			Response: messages.Response{
				Type:      messages.MsgTypeErrorResponse,
				Timestamp: time.Now(),
				RequestID: req.RequestID,
			},
			Code: messages.ErrorCodeBodyNotFound,
		})
		return nil
	}

	if body.ParticipantID != participant.ID {
		respond.Send(&messages.ErrorResponse{
			Response: messages.Response{
				Type:      messages.MsgTypeErrorResponse,
				Timestamp: time.Now(),
				RequestID: req.RequestID,
			},
			Code: messages.ErrorCodeUnauthorized,
		})
		return nil
	}

	removed, err := session.RemoveBody(req.BodyID)
	if err != nil {
		return err
	}
	participant.RemoveBody(removed)

	now := time.Now()

	respond.Send(&messages.BodyRemoveResponse{
		Response: messages.Response{
			Type:      messages.MsgTypeBodyRemoveResponse,
			Timestamp: now,
			RequestID: req.RequestID,
		},
		Body: bodyToWire(removed),
	})

	h.FeatureFlags.IfNotSet(featureflag.FlagDisableBodyRemoveBroadcast, func() {
		session.Broadcast(participant, &messages.BodyRemoveBroadcast{
			Type:      messages.MsgTypeBodyRemoveBroadcast,
			Timestamp: now,
			BodyID:    removed.ID,
		})
	})

	return nil
}

func (h *RealtimeHandler) HandleBodyMove(ctx context.Context, msg Msg) error {
	var req messages.BodyMoveRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	participant := h.currentParticipant
	session := h.currentSession
	if participant == nil || session == nil {
		return errors.New("session not joined").
			WithType(ErrTypeSessionNotJoined).
			WithTag("msg_type", msg.Type)
	}

	body, ok := session.Body(req.BodyID)
	if !ok {
		return nil
	}

	if body.ParticipantID != participant.ID {
		return nil
	}

	if _, err := session.MoveBody(req.BodyID, req.Center.Vector3f()); err != nil {
		return err
	}

	h.FeatureFlags.IfNotSet(featureflag.FlagDisableBodyMoveBroadcast, func() {
		session.Broadcast(participant, &messages.BodyMoveBroadcast{
			Type:      messages.MsgTypeBodyMoveBroadcast,
			Timestamp: time.Now(),
			BodyID:    body.ID,
			Center:    req.Center,
		})
	})

	return nil
}

func (h *RealtimeHandler) HandleRegionQuery(ctx context.Context, respond ResponseSender, msg Msg) error {
	var req messages.RegionQueryRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	session := h.currentSession
	if h.currentParticipant == nil || session == nil {
		return errors.New("session not joined").
			WithType(ErrTypeSessionNotJoined).
			WithTag("msg_type", msg.Type)
	}

	if err := req.Region.Validate(); err != nil {
		respond.Send(&messages.ErrorResponse{
			Response: messages.Response{
				Type:      messages.MsgTypeErrorResponse,
				Timestamp: time.Now(),
				RequestID: req.RequestID,
			},
			Code: messages.ErrorCodeBadRequest,
		})
		return nil
	}

	respond.Send(&messages.RegionQueryResponse{
		Response: messages.Response{
			Type:      messages.MsgTypeRegionQueryResponse,
			Timestamp: time.Now(),
			RequestID: req.RequestID,
		},
		Bodies: bodiesToWire(session.BodiesInRegion(req.Region.BBox())),
	})
	return nil
}

func (h *RealtimeHandler) SendSyncClock(ctx context.Context, respond ResponseSender) error {
	respond.Send(&messages.SyncClock{
		Type:      messages.MsgTypeSyncClock,
		Timestamp: time.Now(),
	})
	return nil
}

func (h *RealtimeHandler) Receiver() Receiver {
	return func() (Msg, int, error) {
		return Receive(h.conn)
	}
}

func (h *RealtimeHandler) Sender() Sender {
	return func(msg Msg) (int, error) {
		return Send(h.conn, msg)
	}
}

func (h *RealtimeHandler) Close() {
}

func (h *RealtimeHandler) SyncClockInterval() time.Duration {
	return h.ClientSyncClockInterval
}

func (h *RealtimeHandler) IdleTimeout() time.Duration {
	return h.ClientIdleTimeout
}

func (h *RealtimeHandler) GetSessions() *models.SessionStore {
	return h.Sessions
}

func (h *RealtimeHandler) CurrentSession() *models.Session {
	return h.currentSession
}

func (h *RealtimeHandler) CurrentParticipant() *models.Participant {
	return h.currentParticipant
}

func (h *RealtimeHandler) leaveSession() {
	session := h.currentSession
	participant := h.currentParticipant

	if participant == nil || session == nil {
		return
	}

	now := time.Now()

	for id := range participant.BodyIDs() {
		body, err := session.RemoveBody(id)
		if err != nil {
			continue
		}

		h.FeatureFlags.IfNotSet(featureflag.FlagDisableBodyRemoveBroadcast, func() {
			session.Broadcast(participant, &messages.BodyRemoveBroadcast{
				Type:      messages.MsgTypeBodyRemoveBroadcast,
				Timestamp: now,
				BodyID:    body.ID,
			})
		})
	}

	session.RemoveParticipant(participant)

	h.FeatureFlags.IfNotSet(featureflag.FlagDisableParticipantLeaveBroadcast, func() {
		session.Broadcast(participant, &messages.ParticipantLeaveBroadcast{
			Type:          messages.MsgTypeParticipantLeaveBroadcast,
			Timestamp:     now,
			ParticipantID: participant.ID,
		})
	})

	if session.ParticipantCount() == 0 {
		h.Sessions.Remove(session)
	}

	h.currentParticipant = nil
	h.currentSession = nil
}

func participantIDs(participants []*models.Participant) []uint32 {
	ids := make([]uint32, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.ID)
	}
	return ids
}

func bodyToWire(b *models.Body) messages.Body {
	center, extents := b.Pose()

	return messages.Body{
		ID:            b.ID,
		ParticipantID: b.ParticipantID,
		Center:        messages.PointFromVector3f(center),
		Extents:       messages.PointFromVector3f(extents),
	}
}

func bodiesToWire(bodies []*models.Body) []messages.Body {
	res := make([]messages.Body, len(bodies))
	for i, b := range bodies {
		res[i] = bodyToWire(b)
	}
	return res
}
