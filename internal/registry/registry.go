package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/sign-meet/session-service/internal/domain"

	"github.com/google/uuid"
)

// Registry owns the authoritative in-memory set of rooms and their
// participants. It is created once at process start and injected into
// every consumer; there is no package-level state.
//
// Locking: mu guards only the room index. Each roomState carries its
// own mutex, so joins/leaves on one room are serialized (the capacity
// invariant holds under concurrent joins) while operations on
// different rooms proceed in parallel. partMu is a leaf lock for the
// participant index and is only ever taken while holding a room lock
// or on its own.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*roomState

	partMu       sync.RWMutex
	participants map[string]domain.Participant
}

type roomState struct {
	mu   sync.Mutex
	room domain.Room
}

func New() *Registry {
	return &Registry{
		rooms:        make(map[string]*roomState),
		participants: make(map[string]domain.Participant),
	}
}

// CreateRoom registers a new room with a fresh id. max <= 0 falls back
// to domain.DefaultMaxParticipants. Never fails.
func (r *Registry) CreateRoom(name string, max int) domain.Room {
	if max <= 0 {
		max = domain.DefaultMaxParticipants
	}

	room := domain.Room{
		ID:              uuid.New().String(),
		Name:            name,
		MaxParticipants: max,
		Participants:    []string{},
		CreatedAt:       time.Now().UTC(),
	}

	r.mu.Lock()
	r.rooms[room.ID] = &roomState{room: room}
	r.mu.Unlock()

	return cloneRoom(room)
}

func (r *Registry) GetRoom(id string) (domain.Room, error) {
	rs, ok := r.state(id)
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	return cloneRoom(rs.room), nil
}

// JoinRoom admits a new participant. The existence check, the capacity
// check and the append are one atomic step under the room's lock:
// concurrent joins against a nearly-full room can never overshoot
// MaxParticipants.
func (r *Registry) JoinRoom(roomID, participantName string) (domain.Participant, error) {
	rs, ok := r.state(roomID)
	if !ok {
		return domain.Participant{}, domain.ErrRoomNotFound
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if len(rs.room.Participants) >= rs.room.MaxParticipants {
		return domain.Participant{}, domain.ErrRoomFull
	}

	p := domain.Participant{
		ID:       uuid.New().String(),
		Name:     participantName,
		RoomID:   roomID,
		JoinedAt: time.Now().UTC(),
	}
	rs.room.Participants = append(rs.room.Participants, p.ID)

	r.partMu.Lock()
	r.participants[p.ID] = p
	r.partMu.Unlock()

	return p, nil
}

// LeaveRoom removes the participant from the room's set and from the
// participant index. Idempotent: unknown room or participant ids are a
// no-op, not an error.
func (r *Registry) LeaveRoom(roomID, participantID string) {
	rs, ok := r.state(roomID)
	if !ok {
		return
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	ids := rs.room.Participants
	removed := false
	for i, id := range ids {
		if id == participantID {
			rs.room.Participants = append(ids[:i], ids[i+1:]...)
			removed = true
			break
		}
	}
	// Drop the index entry only for a member of this room; a mismatched
	// pair must not erase the participant's record elsewhere.
	if !removed {
		return
	}

	r.partMu.Lock()
	delete(r.participants, participantID)
	r.partMu.Unlock()
}

// GetParticipant looks a participant up by id across all rooms.
func (r *Registry) GetParticipant(id string) (domain.Participant, bool) {
	r.partMu.RLock()
	defer r.partMu.RUnlock()

	p, ok := r.participants[id]
	return p, ok
}

// Participants returns a snapshot of the room's current members in
// join order.
func (r *Registry) Participants(roomID string) ([]domain.Participant, error) {
	rs, ok := r.state(roomID)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	rs.mu.Lock()
	ids := append([]string(nil), rs.room.Participants...)
	rs.mu.Unlock()

	r.partMu.RLock()
	defer r.partMu.RUnlock()

	out := make([]domain.Participant, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.participants[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListRooms returns a snapshot of all rooms, newest first.
func (r *Registry) ListRooms() []domain.Room {
	r.mu.RLock()
	states := make([]*roomState, 0, len(r.rooms))
	for _, rs := range r.rooms {
		states = append(states, rs)
	}
	r.mu.RUnlock()

	out := make([]domain.Room, 0, len(states))
	for _, rs := range states {
		rs.mu.Lock()
		out = append(out, cloneRoom(rs.room))
		rs.mu.Unlock()
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *Registry) state(roomID string) (*roomState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rs, ok := r.rooms[roomID]
	return rs, ok
}

func cloneRoom(room domain.Room) domain.Room {
	room.Participants = append([]string(nil), room.Participants...)
	return room
}
