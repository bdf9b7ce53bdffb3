package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sign-meet/session-service/internal/domain"
	"github.com/sign-meet/session-service/internal/service"
	"github.com/sign-meet/session-service/internal/transport/ws"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	roomSvc    *service.RoomService
	captionSvc *service.CaptionService
	presence   *ws.Presence
}

func NewHandler(room *service.RoomService, caption *service.CaptionService, presence *ws.Presence) *Handler {
	return &Handler{
		roomSvc:    room,
		captionSvc: caption,
		presence:   presence,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// POST /api/rooms
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "name is required"})
		return
	}

	room := h.roomSvc.CreateRoom(r.Context(), req.Name, req.MaxParticipants)

	writeJSON(w, http.StatusCreated, roomItem(room))
}

// GET /api/rooms
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := h.roomSvc.ListRooms()

	resp := RoomsListResponse{Items: make([]RoomItem, 0, len(rooms))}
	for _, rm := range rooms {
		resp.Items = append(resp.Items, roomItem(rm))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /api/rooms/{id}
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	room, err := h.roomSvc.GetRoom(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		slog.Error("handler.GetRoom:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, roomItem(room))
}

// POST /api/rooms/{id}/join
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	var req JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "name is required"})
		return
	}

	p, err := h.roomSvc.JoinRoom(r.Context(), roomID, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
		case errors.Is(err, domain.ErrRoomFull):
			writeJSON(w, http.StatusConflict, ErrorResponse{Error: "room is full"})
		default:
			slog.Error("handler.JoinRoom:", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	if h.presence != nil {
		h.presence.ParticipantJoined(roomID, p)
	}

	writeJSON(w, http.StatusOK, p)
}

// GET /api/rooms/{id}/participants
func (h *Handler) GetParticipants(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	items, err := h.roomSvc.Participants(roomID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		slog.Error("handler.GetParticipants:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, ParticipantsResponse{Items: items})
}

// POST /api/predict
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	if req.ImageData == "" || req.RoomID == "" || req.ParticipantID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "image_data, room_id and participant_id are required"})
		return
	}

	text, confidence, err := h.captionSvc.Predict(r.Context(), req.ImageData, req.RoomID, req.ParticipantID)
	if err != nil {
		if errors.Is(err, domain.ErrParticipantNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "participant not found"})
			return
		}
		slog.Error("handler.Predict:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "prediction failed"})
		return
	}

	resp := PredictResponse{Confidence: confidence}
	if text != "" {
		resp.PredictedText = &text
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /api/rooms/{id}/captions
func (h *Handler) GetCaptions(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	items, err := h.captionSvc.History(r.Context(), roomID, 50)
	if err != nil {
		slog.Error("handler.GetCaptions:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if items == nil {
		items = []domain.Caption{}
	}

	writeJSON(w, http.StatusOK, CaptionsResponse{Items: items})
}
