package http

import (
	"time"

	"github.com/sign-meet/session-service/internal/domain"
)

type CreateRoomRequest struct {
	Name            string `json:"name"`
	MaxParticipants int    `json:"max_participants,omitempty"`
}

type RoomItem struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	MaxParticipants int       `json:"max_participants"`
	Participants    []string  `json:"participants"`
	CreatedAt       time.Time `json:"created_at"`
}

func roomItem(r domain.Room) RoomItem {
	return RoomItem{
		ID:              r.ID,
		Name:            r.Name,
		MaxParticipants: r.MaxParticipants,
		Participants:    r.Participants,
		CreatedAt:       r.CreatedAt,
	}
}

type RoomsListResponse struct {
	Items []RoomItem `json:"items"`
}

type JoinRoomRequest struct {
	Name string `json:"name"`
}

type ParticipantsResponse struct {
	Items []domain.Participant `json:"items"`
}

type PredictRequest struct {
	ImageData     string `json:"image_data"`
	RoomID        string `json:"room_id"`
	ParticipantID string `json:"participant_id"`
}

type PredictResponse struct {
	PredictedText *string `json:"predicted_text"`
	Confidence    float64 `json:"confidence"`
}

type CaptionsResponse struct {
	Items []domain.Caption `json:"items"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
