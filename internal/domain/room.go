package domain

import "time"

// DefaultMaxParticipants is applied when a room is created without an
// explicit limit.
const DefaultMaxParticipants = 6

type Room struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	MaxParticipants int       `json:"max_participants"`
	Participants    []string  `json:"participants"`
	CreatedAt       time.Time `json:"created_at"`
}
