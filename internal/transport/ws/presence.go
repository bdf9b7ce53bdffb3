package ws

import (
	"github.com/sign-meet/session-service/internal/domain"
)

// Presence emits join/leave notifications to the rest of a room.
// Callers invoke it synchronously right after the registry operation
// completes, which is what keeps per-room presence events in operation
// order.
type Presence struct {
	hub *Hub
}

func NewPresence(hub *Hub) *Presence {
	return &Presence{hub: hub}
}

// AnnounceJoin tells everyone else in the room that a connection bound
// to it. The joiner is excluded; it already has its own confirmation.
func (p *Presence) AnnounceJoin(roomID, connID, participantID string) {
	p.hub.BroadcastExcept(roomID, connID, Message{
		Type: TypeUserJoined,
		Payload: UserJoinedPayload{
			ConnectionID:  connID,
			ParticipantID: participantID,
		},
	})
}

// AnnounceLeave tells everyone else that a connection left (explicitly
// or by disconnect).
func (p *Presence) AnnounceLeave(roomID, connID string) {
	p.hub.BroadcastExcept(roomID, connID, Message{
		Type:    TypeUserLeft,
		Payload: UserLeftPayload{ConnectionID: connID},
	})
}

// ParticipantJoined announces a participant admitted through the REST
// join endpoint to every connection in the room.
func (p *Presence) ParticipantJoined(roomID string, participant domain.Participant) {
	p.hub.Broadcast(roomID, Message{
		Type: TypeParticipantJoined,
		Payload: ParticipantJoinedPayload{
			Participant: participant,
			RoomID:      roomID,
		},
	})
}

// CaptionNotifier adapts the hub to the caption pipeline's broadcast
// hook. The payload is the full caption record.
type CaptionNotifier struct {
	hub *Hub
}

func NewCaptionNotifier(hub *Hub) *CaptionNotifier {
	return &CaptionNotifier{hub: hub}
}

func (n *CaptionNotifier) CaptionCreated(roomID string, c domain.Caption) {
	n.hub.Broadcast(roomID, Message{Type: TypeNewCaption, Payload: c})
}
