package domain

import "time"

type Participant struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	RoomID   string    `json:"room_id"`
	JoinedAt time.Time `json:"joined_at"`
}
