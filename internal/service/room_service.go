package service

import (
	"context"
	"log/slog"

	"github.com/sign-meet/session-service/internal/domain"
	"github.com/sign-meet/session-service/internal/registry"
)

// RoomStore / ParticipantStore are the durable write-through side of
// the registry. Failures here are logged and swallowed: the in-memory
// registry stays authoritative and a storage hiccup must not reject a
// join.
type RoomStore interface {
	Save(ctx context.Context, room domain.Room) error
}

type ParticipantStore interface {
	Save(ctx context.Context, p domain.Participant) error
}

type RoomService struct {
	reg      *registry.Registry
	rooms    RoomStore
	partRepo ParticipantStore
}

func NewRoomService(reg *registry.Registry, rooms RoomStore, parts ParticipantStore) *RoomService {
	return &RoomService{reg: reg, rooms: rooms, partRepo: parts}
}

// CreateRoom registers a room and persists it best-effort.
func (s *RoomService) CreateRoom(ctx context.Context, name string, max int) domain.Room {
	room := s.reg.CreateRoom(name, max)

	if s.rooms != nil {
		if err := s.rooms.Save(ctx, room); err != nil {
			slog.Warn("room save failed", "room", room.ID, "err", err)
		}
	}
	return room
}

func (s *RoomService) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	return s.reg.GetRoom(id)
}

// JoinRoom admits a participant (atomically against the room's
// capacity) and persists the record best-effort.
func (s *RoomService) JoinRoom(ctx context.Context, roomID, name string) (domain.Participant, error) {
	p, err := s.reg.JoinRoom(roomID, name)
	if err != nil {
		return domain.Participant{}, err
	}

	if s.partRepo != nil {
		if err := s.partRepo.Save(ctx, p); err != nil {
			slog.Warn("participant save failed", "participant", p.ID, "err", err)
		}
	}
	return p, nil
}

// LeaveRoom is idempotent; leaving twice or with unknown ids is a no-op.
func (s *RoomService) LeaveRoom(ctx context.Context, roomID, participantID string) {
	s.reg.LeaveRoom(roomID, participantID)
}

func (s *RoomService) Participants(roomID string) ([]domain.Participant, error) {
	return s.reg.Participants(roomID)
}

func (s *RoomService) ListRooms() []domain.Room {
	return s.reg.ListRooms()
}
