package ws

import (
	"sync"
)

// Hub tracks every live connection and which room each one currently
// occupies. Sends are best-effort: a slow or dead socket loses the
// event, it is never retried.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]Conn            // connID -> conn
	rooms  map[string]map[string]Conn // roomID -> connID -> conn
	member map[string]string          // connID -> roomID
}

func NewHub() *Hub {
	return &Hub{
		conns:  make(map[string]Conn),
		rooms:  make(map[string]map[string]Conn),
		member: make(map[string]string),
	}
}

func (h *Hub) Register(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[c.ID()] = c
}

// Unregister drops the connection entirely, including any room
// membership it still holds.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropFromRoom(connID)
	delete(h.conns, connID)
}

// JoinRoom places a registered connection into a room, moving it out
// of its previous room if it had one.
func (h *Hub) JoinRoom(roomID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropFromRoom(c.ID())

	rs, ok := h.rooms[roomID]
	if !ok {
		rs = make(map[string]Conn)
		h.rooms[roomID] = rs
	}
	rs[c.ID()] = c
	h.member[c.ID()] = roomID
}

// LeaveRoom removes the connection from whatever room it is in. The
// connection itself stays registered.
func (h *Hub) LeaveRoom(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropFromRoom(connID)
}

// SendTo delivers one message to one connection. Returns false when
// the connection is gone — signaling is fire-and-forget, the caller
// only gets to log it.
func (h *Hub) SendTo(connID string, msg Message) bool {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()

	if !ok {
		return false
	}
	_ = c.Send(msg)
	return true
}

// Broadcast sends to every connection currently in the room. The
// membership is snapshotted before any send, so a connection joining
// or leaving mid-broadcast is either fully in or fully out.
func (h *Hub) Broadcast(roomID string, msg Message) {
	for _, c := range h.snapshot(roomID, "") {
		_ = c.Send(msg) // best-effort
	}
}

// BroadcastExcept is Broadcast minus one connection (typically the
// originator, which learned the outcome from its own response).
func (h *Hub) BroadcastExcept(roomID, exceptConnID string, msg Message) {
	for _, c := range h.snapshot(roomID, exceptConnID) {
		_ = c.Send(msg) // best-effort
	}
}

func (h *Hub) snapshot(roomID, exceptConnID string) []Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rs, ok := h.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]Conn, 0, len(rs))
	for id, c := range rs {
		if id == exceptConnID {
			continue
		}
		out = append(out, c)
	}
	return out
}

// dropFromRoom must be called with h.mu held.
func (h *Hub) dropFromRoom(connID string) {
	roomID, ok := h.member[connID]
	if !ok {
		return
	}
	delete(h.member, connID)

	if rs, ok := h.rooms[roomID]; ok {
		delete(rs, connID)
		if len(rs) == 0 {
			delete(h.rooms, roomID)
		}
	}
}
