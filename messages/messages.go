// Package messages defines the JSON messages exchanged between clients and
// the server over websockets. Every message carries its type so receivers can
// decode the envelope before picking a concrete payload.
package messages

import "time"

type MsgType uint32

const (
	MsgTypeUnknown MsgType = iota
	MsgTypeSyncClock
	MsgTypeErrorResponse
	MsgTypePingRequest
	MsgTypePingResponse
	MsgTypeSessionJoinRequest
	MsgTypeSessionJoinResponse
	MsgTypeSessionState
	MsgTypeParticipantJoinBroadcast
	MsgTypeParticipantLeaveBroadcast
	MsgTypeBodyAddRequest
	MsgTypeBodyAddResponse
	MsgTypeBodyAddBroadcast
	MsgTypeBodyRemoveRequest
	MsgTypeBodyRemoveResponse
	MsgTypeBodyRemoveBroadcast
	MsgTypeBodyMoveRequest
	MsgTypeBodyMoveBroadcast
	MsgTypeRegionQueryRequest
	MsgTypeRegionQueryResponse
)

func (t MsgType) String() string {
	switch t {
	case MsgTypeSyncClock:
		return "sync_clock"
	case MsgTypeErrorResponse:
		return "error_response"
	case MsgTypePingRequest:
		return "ping_request"
	case MsgTypePingResponse:
		return "ping_response"
	case MsgTypeSessionJoinRequest:
		return "session_join_request"
	case MsgTypeSessionJoinResponse:
		return "session_join_response"
	case MsgTypeSessionState:
		return "session_state"
	case MsgTypeParticipantJoinBroadcast:
		return "participant_join_broadcast"
	case MsgTypeParticipantLeaveBroadcast:
		return "participant_leave_broadcast"
	case MsgTypeBodyAddRequest:
		return "body_add_request"
	case MsgTypeBodyAddResponse:
		return "body_add_response"
	case MsgTypeBodyAddBroadcast:
		return "body_add_broadcast"
	case MsgTypeBodyRemoveRequest:
		return "body_remove_request"
	case MsgTypeBodyRemoveResponse:
		return "body_remove_response"
	case MsgTypeBodyRemoveBroadcast:
		return "body_remove_broadcast"
	case MsgTypeBodyMoveRequest:
		return "body_move_request"
	case MsgTypeBodyMoveBroadcast:
		return "body_move_broadcast"
	case MsgTypeRegionQueryRequest:
		return "region_query_request"
	case MsgTypeRegionQueryResponse:
		return "region_query_response"
	default:
		return "unknown"
	}
}

type ErrorCode uint32

const (
	ErrorCodeUnknown ErrorCode = iota
	ErrorCodeBadRequest
	ErrorCodeNotFound
	ErrorCodeUnauthorized
	ErrorCodeSessionNotJoined
	ErrorCodeSessionAlreadyJoined
	ErrorCodeBodyNotFound
	ErrorCodeInternalServerError
)

// Request is the envelope shared by client requests.
type Request struct {
	Type      MsgType   `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RequestID uint32    `json:"request_id"`
}

// Response is the envelope shared by server responses. RequestID echoes the
// request the response answers.
type Response struct {
	Type      MsgType   `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RequestID uint32    `json:"request_id"`
}

type ErrorResponse struct {
	Response
	Code ErrorCode `json:"code"`
}

type SyncClock struct {
	Type      MsgType   `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

type PingRequest struct {
	Request
}

type PingResponse struct {
	Response
}

type SessionJoinRequest struct {
	Request
	SessionID string `json:"session_id"`
}

type SessionJoinResponse struct {
	Response
	SessionID     string `json:"session_id"`
	ParticipantID uint32 `json:"participant_id"`
}

// SessionState describes the current session to a freshly joined participant.
type SessionState struct {
	Type           MsgType   `json:"type"`
	Timestamp      time.Time `json:"timestamp"`
	ParticipantIDs []uint32  `json:"participant_ids"`
	Bodies         []Body    `json:"bodies"`
}

type ParticipantJoinBroadcast struct {
	Type          MsgType   `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	ParticipantID uint32    `json:"participant_id"`
}

type ParticipantLeaveBroadcast struct {
	Type          MsgType   `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	ParticipantID uint32    `json:"participant_id"`
}

type BodyAddRequest struct {
	Request
	Center  Point `json:"center"`
	Extents Point `json:"extents"`
}

type BodyAddResponse struct {
	Response
	BodyID uint32 `json:"body_id"`
}

type BodyAddBroadcast struct {
	Type      MsgType   `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Body      Body      `json:"body"`
}

type BodyRemoveRequest struct {
	Request
	BodyID uint32 `json:"body_id"`
}

type BodyRemoveResponse struct {
	Response
	Body Body `json:"body"`
}

type BodyRemoveBroadcast struct {
	Type      MsgType   `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	BodyID    uint32    `json:"body_id"`
}

type BodyMoveRequest struct {
	Request
	BodyID uint32 `json:"body_id"`
	Center Point  `json:"center"`
}

type BodyMoveBroadcast struct {
	Type      MsgType   `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	BodyID    uint32    `json:"body_id"`
	Center    Point     `json:"center"`
}

type RegionQueryRequest struct {
	Request
	Region Box `json:"region"`
}

type RegionQueryResponse struct {
	Response
	Bodies []Body `json:"bodies"`
}
