package postgres

import (
	"context"

	"github.com/sign-meet/session-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RoomRepository is the durable side of the room registry. Memory is
// authoritative; this is write-through only.
type RoomRepository struct {
	db *pgxpool.Pool
}

func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Save(ctx context.Context, room domain.Room) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO rooms (id, name, max_participants, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, room.ID, room.Name, room.MaxParticipants, room.CreatedAt)
	return err
}
