package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/sign-meet/session-service/internal/classifier"
	"github.com/sign-meet/session-service/internal/domain"

	"github.com/google/uuid"
)

// captionThreshold is the single quality gate keeping low-confidence
// model noise out of the room's caption stream.
const captionThreshold = 0.7

// ParticipantResolver resolves live participants (the registry).
type ParticipantResolver interface {
	GetParticipant(id string) (domain.Participant, bool)
}

// ParticipantFinder is the durable fallback for attribution, so a
// caption for a participant who just left still resolves.
type ParticipantFinder interface {
	Find(ctx context.Context, id string) (domain.Participant, error)
}

type CaptionStore interface {
	Save(ctx context.Context, c domain.Caption) error
	ListRecent(ctx context.Context, roomID string, limit int) ([]domain.Caption, error)
}

// CaptionBroadcaster fans a freshly created caption out to every
// connection in the room. Best-effort, at most once per live connection.
type CaptionBroadcaster interface {
	CaptionCreated(roomID string, c domain.Caption)
}

// CaptionService runs the prediction pipeline:
// classify → gate → attribute → persist → broadcast.
type CaptionService struct {
	clf      classifier.Classifier
	resolver ParticipantResolver
	finder   ParticipantFinder
	captions CaptionStore
	notify   CaptionBroadcaster
}

func NewCaptionService(
	clf classifier.Classifier,
	resolver ParticipantResolver,
	finder ParticipantFinder,
	captions CaptionStore,
	notify CaptionBroadcaster,
) *CaptionService {
	return &CaptionService{
		clf:      clf,
		resolver: resolver,
		finder:   finder,
		captions: captions,
		notify:   notify,
	}
}

// Predict classifies one frame for (roomID, participantID). A rejected
// gate returns ("", confidence, nil) without creating anything. On
// accept it returns the label after persisting and broadcasting the
// caption. ErrParticipantNotFound is the only hard error: an accepted
// caption must be attributable.
//
// The classifier call holds no registry lock and is the only slow step.
func (s *CaptionService) Predict(ctx context.Context, imageData, roomID, participantID string) (string, float64, error) {
	res, err := s.clf.Classify(ctx, imageData)
	if err != nil {
		// Classifier failure degrades to a zero-confidence reject.
		slog.Warn("classify failed", "room", roomID, "err", err)
		res = classifier.Result{}
	}

	if res.Label == "" || res.Confidence <= captionThreshold {
		return "", res.Confidence, nil
	}

	name, err := s.participantName(ctx, participantID)
	if err != nil {
		return "", 0, err
	}

	c := domain.Caption{
		ID:              uuid.New().String(),
		Text:            res.Label,
		ParticipantName: name,
		RoomID:          roomID,
		Timestamp:       time.Now().UTC(),
		Confidence:      res.Confidence,
	}

	if s.captions != nil {
		if err := s.captions.Save(ctx, c); err != nil {
			// Losing the durable copy must not cost the room the live
			// caption; log and keep going.
			slog.Warn("caption save failed", "caption", c.ID, "err", err)
		}
	}

	if s.notify != nil {
		s.notify.CaptionCreated(roomID, c)
	}

	return res.Label, res.Confidence, nil
}

// History returns up to limit recent captions, newest first.
func (s *CaptionService) History(ctx context.Context, roomID string, limit int) ([]domain.Caption, error) {
	if s.captions == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	return s.captions.ListRecent(ctx, roomID, limit)
}

func (s *CaptionService) participantName(ctx context.Context, id string) (string, error) {
	if p, ok := s.resolver.GetParticipant(id); ok {
		return p.Name, nil
	}
	if s.finder != nil {
		if p, err := s.finder.Find(ctx, id); err == nil {
			return p.Name, nil
		}
	}
	return "", domain.ErrParticipantNotFound
}
