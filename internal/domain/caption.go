package domain

import "time"

// Caption is an attributed, timestamped text record derived from a
// classifier prediction that passed the confidence gate. Append-only;
// never mutated after creation.
type Caption struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	ParticipantName string    `json:"participant_name"`
	RoomID          string    `json:"room_id"`
	Timestamp       time.Time `json:"timestamp"`
	Confidence      float64   `json:"confidence"`
}
