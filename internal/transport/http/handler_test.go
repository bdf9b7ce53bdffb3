package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sign-meet/session-service/internal/classifier"
	"github.com/sign-meet/session-service/internal/domain"
	"github.com/sign-meet/session-service/internal/registry"
	"github.com/sign-meet/session-service/internal/service"
	"github.com/sign-meet/session-service/internal/session"
	"github.com/sign-meet/session-service/internal/transport/ws"
)

type stubClassifier struct {
	res classifier.Result
	err error
}

func (s *stubClassifier) Classify(context.Context, string) (classifier.Result, error) {
	return s.res, s.err
}

type memCaptionStore struct {
	mu    sync.Mutex
	saved []domain.Caption
}

func (s *memCaptionStore) Save(_ context.Context, c domain.Caption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, c)
	return nil
}

func (s *memCaptionStore) ListRecent(_ context.Context, roomID string, limit int) ([]domain.Caption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Caption
	for i := len(s.saved) - 1; i >= 0 && len(out) < limit; i-- {
		if s.saved[i].RoomID == roomID {
			out = append(out, s.saved[i])
		}
	}
	return out, nil
}

type env struct {
	srv      *httptest.Server
	reg      *registry.Registry
	clf      *stubClassifier
	captions *memCaptionStore
}

func newEnv(t *testing.T) *env {
	t.Helper()

	reg := registry.New()
	clf := &stubClassifier{}
	captions := &memCaptionStore{}

	roomSvc := service.NewRoomService(reg, nil, nil)
	hub := ws.NewHub()
	presence := ws.NewPresence(hub)
	captionSvc := service.NewCaptionService(clf, reg, nil, captions, ws.NewCaptionNotifier(hub))
	wsServer := ws.NewServer(hub, session.NewTable(), roomSvc, presence, ws.NewRouter(hub))

	h := NewHandler(roomSvc, captionSvc, presence)
	srv := httptest.NewServer(NewRouter(h, wsServer))
	t.Cleanup(srv.Close)

	return &env{srv: srv, reg: reg, clf: clf, captions: captions}
}

func (e *env) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestCreateRoom(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodPost, "/api/rooms", CreateRoomRequest{Name: "Standup"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	room := decodeBody[RoomItem](t, resp)
	if room.ID == "" || room.Name != "Standup" {
		t.Fatalf("room = %+v", room)
	}
	if room.MaxParticipants != domain.DefaultMaxParticipants {
		t.Fatalf("max_participants = %d, want default %d", room.MaxParticipants, domain.DefaultMaxParticipants)
	}
	if len(room.Participants) != 0 {
		t.Fatalf("new room already has participants: %v", room.Participants)
	}
}

func TestCreateRoom_EmptyName(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodPost, "/api/rooms", CreateRoomRequest{Name: "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetRoom_NotFound(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodGet, "/api/rooms/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestJoinRoom(t *testing.T) {
	e := newEnv(t)
	room := e.reg.CreateRoom("Duo", 2)

	resp := e.do(t, http.MethodPost, "/api/rooms/"+room.ID+"/join", JoinRoomRequest{Name: "Alice"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	p := decodeBody[domain.Participant](t, resp)
	if p.ID == "" || p.Name != "Alice" || p.RoomID != room.ID {
		t.Fatalf("participant = %+v", p)
	}
}

func TestJoinRoom_Full(t *testing.T) {
	e := newEnv(t)
	room := e.reg.CreateRoom("Duo", 2)

	for i := 0; i < 2; i++ {
		resp := e.do(t, http.MethodPost, "/api/rooms/"+room.ID+"/join", JoinRoomRequest{Name: fmt.Sprintf("p%d", i)})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("seed join %d: status = %d", i, resp.StatusCode)
		}
	}

	resp := e.do(t, http.MethodPost, "/api/rooms/"+room.ID+"/join", JoinRoomRequest{Name: "overflow"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
}

func TestJoinRoom_UnknownRoom(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodPost, "/api/rooms/nope/join", JoinRoomRequest{Name: "Alice"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetParticipants(t *testing.T) {
	e := newEnv(t)
	room := e.reg.CreateRoom("Demo", 0)
	if _, err := e.reg.JoinRoom(room.ID, "Alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.reg.JoinRoom(room.ID, "Bob"); err != nil {
		t.Fatal(err)
	}

	resp := e.do(t, http.MethodGet, "/api/rooms/"+room.ID+"/participants", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	list := decodeBody[ParticipantsResponse](t, resp)
	if len(list.Items) != 2 || list.Items[0].Name != "Alice" || list.Items[1].Name != "Bob" {
		t.Fatalf("participants = %+v", list.Items)
	}
}

func TestListRooms(t *testing.T) {
	e := newEnv(t)
	e.reg.CreateRoom("One", 0)
	e.reg.CreateRoom("Two", 0)

	resp := e.do(t, http.MethodGet, "/api/rooms", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	list := decodeBody[RoomsListResponse](t, resp)
	if len(list.Items) != 2 {
		t.Fatalf("rooms = %+v", list.Items)
	}
}

func TestPredict_MissingFields(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodPost, "/api/predict", PredictRequest{ImageData: "zzz"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestPredict_BelowGate(t *testing.T) {
	e := newEnv(t)
	room := e.reg.CreateRoom("Demo", 0)
	p, err := e.reg.JoinRoom(room.ID, "Alice")
	if err != nil {
		t.Fatal(err)
	}
	e.clf.res = classifier.Result{Label: "hello", Confidence: 0.42}

	resp := e.do(t, http.MethodPost, "/api/predict", PredictRequest{
		ImageData: "zzz", RoomID: room.ID, ParticipantID: p.ID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	out := decodeBody[PredictResponse](t, resp)
	if out.PredictedText != nil {
		t.Fatalf("predicted_text = %q, want null", *out.PredictedText)
	}
	if out.Confidence != 0.42 {
		t.Fatalf("confidence = %v", out.Confidence)
	}
	if len(e.captions.saved) != 0 {
		t.Fatal("rejected prediction was persisted")
	}
}

func TestPredict_Accepted(t *testing.T) {
	e := newEnv(t)
	room := e.reg.CreateRoom("Demo", 0)
	p, err := e.reg.JoinRoom(room.ID, "Alice")
	if err != nil {
		t.Fatal(err)
	}
	e.clf.res = classifier.Result{Label: "thanks", Confidence: 0.93}

	resp := e.do(t, http.MethodPost, "/api/predict", PredictRequest{
		ImageData: "zzz", RoomID: room.ID, ParticipantID: p.ID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	out := decodeBody[PredictResponse](t, resp)
	if out.PredictedText == nil || *out.PredictedText != "thanks" {
		t.Fatalf("predicted_text = %v, want thanks", out.PredictedText)
	}

	if len(e.captions.saved) != 1 {
		t.Fatalf("saved %d captions, want 1", len(e.captions.saved))
	}
	c := e.captions.saved[0]
	if c.Text != "thanks" || c.ParticipantName != "Alice" || c.RoomID != room.ID {
		t.Fatalf("caption = %+v", c)
	}
}

func TestPredict_UnknownParticipant(t *testing.T) {
	e := newEnv(t)
	room := e.reg.CreateRoom("Demo", 0)
	e.clf.res = classifier.Result{Label: "hi", Confidence: 0.95}

	resp := e.do(t, http.MethodPost, "/api/predict", PredictRequest{
		ImageData: "zzz", RoomID: room.ID, ParticipantID: "ghost",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetCaptions(t *testing.T) {
	e := newEnv(t)
	room := e.reg.CreateRoom("Demo", 0)
	e.captions.saved = []domain.Caption{
		{ID: "c1", Text: "hello", RoomID: room.ID},
		{ID: "c2", Text: "world", RoomID: room.ID},
		{ID: "c3", Text: "elsewhere", RoomID: "other"},
	}

	resp := e.do(t, http.MethodGet, "/api/rooms/"+room.ID+"/captions", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	list := decodeBody[CaptionsResponse](t, resp)
	if len(list.Items) != 2 {
		t.Fatalf("captions = %+v", list.Items)
	}
	if list.Items[0].Text != "world" { // newest first
		t.Fatalf("first caption = %+v", list.Items[0])
	}
}

func TestGetCaptions_EmptyIsList(t *testing.T) {
	e := newEnv(t)
	room := e.reg.CreateRoom("Demo", 0)

	resp := e.do(t, http.MethodGet, "/api/rooms/"+room.ID+"/captions", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(raw["items"]) != "[]" {
		t.Fatalf("items = %s, want []", raw["items"])
	}
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
