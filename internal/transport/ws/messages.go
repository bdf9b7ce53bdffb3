package ws

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/sign-meet/session-service/internal/domain"
)

// Event types crossing the socket. Inbound payloads are decoded into a
// fixed struct per kind and rejected at the boundary when malformed.
const (
	// server → client
	TypeConnected         = "connected"          // issued connection id
	TypeRoomState         = "room_state"         // participant snapshot for the joiner
	TypeUserJoined        = "user_joined"        // a connection bound to the room
	TypeUserLeft          = "user_left"          // a connection left / disconnected
	TypeParticipantJoined = "participant_joined" // REST join completed
	TypeNewMessage        = "new_message"        // chat fan-out
	TypeNewCaption        = "new_caption"        // gated caption fan-out
	TypeError             = "error"

	// client → server (offer/answer/candidate are relayed back out
	// under the same type)
	TypeJoinRoom     = "join_room"
	TypeLeaveRoom    = "leave_room"
	TypeOffer        = "webrtc_offer"
	TypeAnswer       = "webrtc_answer"
	TypeICECandidate = "webrtc_ice_candidate"
	TypeSendMessage  = "send_message"
)

// Message is the outbound envelope.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Envelope is the inbound frame; the payload stays raw until the type
// is known.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// --- inbound payloads ---

type JoinRoomPayload struct {
	RoomID        string `json:"room_id"`
	ParticipantID string `json:"participant_id"`
}

func (p JoinRoomPayload) validate() error {
	if p.RoomID == "" {
		return errors.New("join_room: missing room_id")
	}
	if p.ParticipantID == "" {
		return errors.New("join_room: missing participant_id")
	}
	return nil
}

type LeaveRoomPayload struct {
	RoomID string `json:"room_id"`
}

// Offer/Answer/Candidate blobs are opaque: relayed verbatim to the
// addressed connection, never parsed.
type OfferPayload struct {
	TargetConnectionID string          `json:"target_connection_id"`
	Offer              json.RawMessage `json:"offer"`
}

func (p OfferPayload) validate() error {
	if p.TargetConnectionID == "" {
		return errors.New("webrtc_offer: missing target_connection_id")
	}
	if len(p.Offer) == 0 {
		return errors.New("webrtc_offer: missing offer")
	}
	return nil
}

type AnswerPayload struct {
	TargetConnectionID string          `json:"target_connection_id"`
	Answer             json.RawMessage `json:"answer"`
}

func (p AnswerPayload) validate() error {
	if p.TargetConnectionID == "" {
		return errors.New("webrtc_answer: missing target_connection_id")
	}
	if len(p.Answer) == 0 {
		return errors.New("webrtc_answer: missing answer")
	}
	return nil
}

type ICECandidatePayload struct {
	TargetConnectionID string          `json:"target_connection_id"`
	Candidate          json.RawMessage `json:"candidate"`
}

func (p ICECandidatePayload) validate() error {
	if p.TargetConnectionID == "" {
		return errors.New("webrtc_ice_candidate: missing target_connection_id")
	}
	if len(p.Candidate) == 0 {
		return errors.New("webrtc_ice_candidate: missing candidate")
	}
	return nil
}

type SendMessagePayload struct {
	RoomID          string `json:"room_id"`
	Message         string `json:"message"`
	ParticipantName string `json:"participant_name"`
}

func (p SendMessagePayload) validate() error {
	if p.RoomID == "" {
		return errors.New("send_message: missing room_id")
	}
	if p.Message == "" {
		return errors.New("send_message: empty message")
	}
	return nil
}

// --- outbound payloads ---

type ConnectedPayload struct {
	ConnectionID string `json:"connection_id"`
}

type RoomStatePayload struct {
	RoomID       string               `json:"room_id"`
	Participants []domain.Participant `json:"participants"`
}

type UserJoinedPayload struct {
	ConnectionID  string `json:"connection_id"`
	ParticipantID string `json:"participant_id,omitempty"`
}

type UserLeftPayload struct {
	ConnectionID string `json:"connection_id"`
}

type ParticipantJoinedPayload struct {
	Participant domain.Participant `json:"participant"`
	RoomID      string             `json:"room_id"`
}

type OfferEvent struct {
	Offer            json.RawMessage `json:"offer"`
	FromConnectionID string          `json:"from_connection_id"`
}

type AnswerEvent struct {
	Answer           json.RawMessage `json:"answer"`
	FromConnectionID string          `json:"from_connection_id"`
}

type ICECandidateEvent struct {
	Candidate        json.RawMessage `json:"candidate"`
	FromConnectionID string          `json:"from_connection_id"`
}

type NewMessagePayload struct {
	Message          string    `json:"message"`
	ParticipantName  string    `json:"participant_name"`
	Timestamp        time.Time `json:"timestamp"`
	FromConnectionID string    `json:"from_connection_id"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
