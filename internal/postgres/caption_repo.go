package postgres

import (
	"context"

	"github.com/sign-meet/session-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CaptionRepository struct {
	db *pgxpool.Pool
}

func NewCaptionRepository(db *pgxpool.Pool) *CaptionRepository {
	return &CaptionRepository{db: db}
}

func (r *CaptionRepository) Save(ctx context.Context, c domain.Caption) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO captions (id, text, participant_name, room_id, ts, confidence)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.Text, c.ParticipantName, c.RoomID, c.Timestamp, c.Confidence)
	return err
}

// ListRecent returns up to limit captions for the room, newest first.
func (r *CaptionRepository) ListRecent(ctx context.Context, roomID string, limit int) ([]domain.Caption, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, text, participant_name, room_id, ts, confidence
		FROM captions
		WHERE room_id=$1
		ORDER BY ts DESC
		LIMIT $2
	`, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Caption
	for rows.Next() {
		var c domain.Caption
		if err := rows.Scan(&c.ID, &c.Text, &c.ParticipantName, &c.RoomID, &c.Timestamp, &c.Confidence); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
