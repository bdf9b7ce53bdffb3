package postgres

import (
	"context"
	"errors"

	"github.com/sign-meet/session-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ParticipantRepository struct {
	db *pgxpool.Pool
}

func NewParticipantRepository(db *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Save(ctx context.Context, p domain.Participant) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO participants (id, name, room_id, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, p.ID, p.Name, p.RoomID, p.JoinedAt)
	return err
}

// Find resolves a participant by id. Participants are never deleted
// from storage, so captions can still be attributed to members who
// already left the live room.
func (r *ParticipantRepository) Find(ctx context.Context, id string) (domain.Participant, error) {
	var p domain.Participant
	err := r.db.QueryRow(ctx,
		`SELECT id, name, room_id, joined_at FROM participants WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.RoomID, &p.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Participant{}, domain.ErrParticipantNotFound
		}
		return domain.Participant{}, err
	}
	return p, nil
}
