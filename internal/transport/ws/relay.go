package ws

import (
	"encoding/json"
	"log/slog"
)

// Router relays WebRTC negotiation messages between two connections.
// Addressing is purely by connection id — no room membership check, in
// line with how renegotiation races are tolerated: a relay to a
// vanished target is silently dropped, never an error to the sender.
type Router struct {
	hub *Hub
}

func NewRouter(hub *Hub) *Router {
	return &Router{hub: hub}
}

func (r *Router) RelayOffer(targetConnID string, offer json.RawMessage, fromConnID string) {
	r.deliver(targetConnID, Message{
		Type:    TypeOffer,
		Payload: OfferEvent{Offer: offer, FromConnectionID: fromConnID},
	})
}

func (r *Router) RelayAnswer(targetConnID string, answer json.RawMessage, fromConnID string) {
	r.deliver(targetConnID, Message{
		Type:    TypeAnswer,
		Payload: AnswerEvent{Answer: answer, FromConnectionID: fromConnID},
	})
}

func (r *Router) RelayICECandidate(targetConnID string, candidate json.RawMessage, fromConnID string) {
	r.deliver(targetConnID, Message{
		Type:    TypeICECandidate,
		Payload: ICECandidateEvent{Candidate: candidate, FromConnectionID: fromConnID},
	})
}

func (r *Router) deliver(targetConnID string, msg Message) {
	if !r.hub.SendTo(targetConnID, msg) {
		slog.Debug("signal target gone", "target", targetConnID, "type", msg.Type)
	}
}
