package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sign-meet/session-service/internal/domain"
	"github.com/sign-meet/session-service/internal/session"

	"github.com/gorilla/websocket"
)

// RoomSvc is the slice of the room service the socket layer needs.
type RoomSvc interface {
	LeaveRoom(ctx context.Context, roomID, participantID string)
	Participants(roomID string) ([]domain.Participant, error)
}

type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	sessions *session.Table
	rooms    RoomSvc
	presence *Presence
	relay    *Router

	pingEvery time.Duration
}

func NewServer(hub *Hub, sessions *session.Table, rooms RoomSvc, presence *Presence, relay *Router) *Server {
	return &Server{
		hub:      hub,
		sessions: sessions,
		rooms:    rooms,
		presence: presence,
		relay:    relay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
	}
}

// HandleWS upgrades the connection, issues it an id, and runs the read
// loop until the client goes away. All teardown happens here, exactly
// once, whether the leave was explicit or the socket just died.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn)
	s.hub.Register(c)

	if err := c.Send(Message{Type: TypeConnected, Payload: ConnectedPayload{ConnectionID: c.ID()}}); err != nil {
		slog.Debug("ws send connected failed", "conn", c.ID(), "err", err)
	}

	go s.writeLoop(r.Context(), c)
	s.readLoop(r.Context(), c)

	s.disconnect(r.Context(), c)
}

// disconnect clears the binding, removes the connection and announces
// the departure. Must leave no dangling membership behind.
func (s *Server) disconnect(ctx context.Context, c *wsConn) {
	b, bound := s.sessions.Unbind(c.ID())
	s.hub.Unregister(c.ID())

	if bound {
		s.rooms.LeaveRoom(ctx, b.RoomID, b.ParticipantID)
		s.presence.AnnounceLeave(b.RoomID, c.ID())
	}

	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "conn", c.ID(), "err", err)
	}
}

func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.reject(c, "malformed frame")
			continue
		}
		s.dispatch(ctx, c, env)
	}
}

func (s *Server) dispatch(ctx context.Context, c *wsConn, env Envelope) {
	switch env.Type {
	case TypeJoinRoom:
		var p JoinRoomPayload
		if err := decode(env.Payload, &p); err != nil {
			s.reject(c, err.Error())
			return
		}
		s.handleJoin(ctx, c, p)

	case TypeLeaveRoom:
		var p LeaveRoomPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			s.reject(c, "leave_room: malformed payload")
			return
		}
		s.handleLeave(ctx, c)

	case TypeOffer:
		var p OfferPayload
		if err := decode(env.Payload, &p); err != nil {
			s.reject(c, err.Error())
			return
		}
		s.relay.RelayOffer(p.TargetConnectionID, p.Offer, c.ID())

	case TypeAnswer:
		var p AnswerPayload
		if err := decode(env.Payload, &p); err != nil {
			s.reject(c, err.Error())
			return
		}
		s.relay.RelayAnswer(p.TargetConnectionID, p.Answer, c.ID())

	case TypeICECandidate:
		var p ICECandidatePayload
		if err := decode(env.Payload, &p); err != nil {
			s.reject(c, err.Error())
			return
		}
		s.relay.RelayICECandidate(p.TargetConnectionID, p.Candidate, c.ID())

	case TypeSendMessage:
		var p SendMessagePayload
		if err := decode(env.Payload, &p); err != nil {
			s.reject(c, err.Error())
			return
		}
		s.hub.Broadcast(p.RoomID, Message{
			Type: TypeNewMessage,
			Payload: NewMessagePayload{
				Message:          p.Message,
				ParticipantName:  p.ParticipantName,
				Timestamp:        time.Now().UTC(),
				FromConnectionID: c.ID(),
			},
		})

	default:
		slog.Debug("ws unknown event", "conn", c.ID(), "type", env.Type)
	}
}

// handleJoin binds the connection to a room. A connection already
// bound differently releases its old participant first — rebinding
// never strands a stale membership or a consumed capacity slot. The
// old room is only announced as left when it actually changes; a
// same-room rebind keeps the connection in place.
func (s *Server) handleJoin(ctx context.Context, c *wsConn, p JoinRoomPayload) {
	prev, bound := s.sessions.Lookup(c.ID())
	rebound := bound && (prev.RoomID != p.RoomID || prev.ParticipantID != p.ParticipantID)
	if rebound {
		s.rooms.LeaveRoom(ctx, prev.RoomID, prev.ParticipantID)
		if prev.RoomID != p.RoomID {
			s.hub.LeaveRoom(c.ID())
			s.presence.AnnounceLeave(prev.RoomID, c.ID())
		}
	}

	s.sessions.Bind(c.ID(), p.RoomID, p.ParticipantID)
	s.hub.JoinRoom(p.RoomID, c)
	if !bound || rebound {
		s.presence.AnnounceJoin(p.RoomID, c.ID(), p.ParticipantID)
	}

	if parts, err := s.rooms.Participants(p.RoomID); err == nil {
		_ = c.Send(Message{
			Type:    TypeRoomState,
			Payload: RoomStatePayload{RoomID: p.RoomID, Participants: parts},
		})
	}

	slog.Info("ws joined room", "conn", c.ID(), "room", p.RoomID, "participant", p.ParticipantID)
}

func (s *Server) handleLeave(ctx context.Context, c *wsConn) {
	b, bound := s.sessions.Unbind(c.ID())
	if !bound {
		return
	}

	s.rooms.LeaveRoom(ctx, b.RoomID, b.ParticipantID)
	s.hub.LeaveRoom(c.ID())
	s.presence.AnnounceLeave(b.RoomID, c.ID())

	slog.Info("ws left room", "conn", c.ID(), "room", b.RoomID)
}

func (s *Server) reject(c *wsConn, reason string) {
	slog.Warn("ws event rejected", "conn", c.ID(), "reason", reason)
	_ = c.Send(Message{Type: TypeError, Payload: ErrorPayload{Message: reason}})
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

type validator interface{ validate() error }

// decode unmarshals an inbound payload and runs its shape check.
func decode[T validator](raw json.RawMessage, dst *T) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return err
	}

	return (*dst).validate()
}
