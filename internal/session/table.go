package session

import "sync"

// Binding is the non-owning back-reference from a live connection to
// the room/participant it joined. Keys only — never pointers into
// registry records.
type Binding struct {
	RoomID        string
	ParticipantID string
}

// Table maps connection ids to at most one Binding each. Entries are
// independent; one RWMutex over the map is enough.
type Table struct {
	mu     sync.RWMutex
	byConn map[string]Binding
}

func NewTable() *Table {
	return &Table{byConn: make(map[string]Binding)}
}

// Bind associates the connection with a room/participant pair,
// replacing any stale binding for the same connection.
func (t *Table) Bind(connID, roomID, participantID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.byConn[connID] = Binding{RoomID: roomID, ParticipantID: participantID}
}

// Unbind clears the connection's binding and returns what it was.
func (t *Table) Unbind(connID string) (Binding, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.byConn[connID]
	if ok {
		delete(t.byConn, connID)
	}
	return b, ok
}

func (t *Table) Lookup(connID string) (Binding, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	b, ok := t.byConn[connID]
	return b, ok
}
