package repository

import (
	"context"
	"errors"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRoomRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRoomRepository(db *pgxpool.Pool) *PostgresRoomRepository {
	return &PostgresRoomRepository{
		db: db,
	}
}

// Create stores the room together with one seat row per label of its layout.
func (p *PostgresRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO rooms (id, name, row_count, column_count)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at
		`

		err := tx.QueryRow(ctx, query, room.ID, room.Name, room.Rows, room.Columns).Scan(&room.CreatedAt)
		if err != nil {
			if isUniqueViolation(err, roomsNameKey) {
				return domain.ErrRoomAlreadyExists
			}

			return storeError(err)
		}

		labels := room.Seats()
		rows := make([][]any, 0, len(labels))
		for _, label := range labels {
			rows = append(rows, []any{uuid.NewString(), room.ID, label})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"seats"},
			[]string{"id", "room_id", "label"},
			pgx.CopyFromRows(rows),
		)

		return storeError(err)
	})
}

func (p *PostgresRoomRepository) GetById(ctx context.Context, id string) (*domain.Room, error) {
	query := `
		SELECT id, name, row_count, column_count, created_at
		FROM rooms
		WHERE id = $1
	`

	var room domain.Room

	err := p.db.QueryRow(ctx, query, id).Scan(
		&room.ID,
		&room.Name,
		&room.Rows,
		&room.Columns,
		&room.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}

		return nil, storeError(err)
	}

	return &room, nil
}

func (p *PostgresRoomRepository) GetSeats(ctx context.Context, roomID string) ([]domain.Seat, error) {
	query := `
		SELECT id, room_id, label
		FROM seats
		WHERE room_id = $1
		ORDER BY substring(label, 1, 1), substring(label, 2)::int
	`

	rows, err := p.db.Query(ctx, query, roomID)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0)

	for rows.Next() {
		var seat domain.Seat

		err = rows.Scan(&seat.ID, &seat.RoomID, &seat.Label)
		if err != nil {
			return nil, storeError(err)
		}

		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, storeError(err)
	}

	return seats, nil
}
