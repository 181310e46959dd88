package repository

import (
	"context"
	"errors"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresReservationRepository struct {
	db *pgxpool.Pool
}

func NewPostgresReservationRepository(db *pgxpool.Pool) *PostgresReservationRepository {
	return &PostgresReservationRepository{
		db: db,
	}
}

// Create writes the reservation and claims its seats in one transaction. A seat
// already held by another unreleased row fails the whole insert with
// domain.ErrSeatAlreadyReserved.
func (p *PostgresReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO reservations (id, session_id, user_id, status, total_price, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`

		_, err := tx.Exec(
			ctx,
			query,
			reservation.ID,
			reservation.SessionID,
			reservation.UserID,
			reservation.Status,
			reservation.TotalPrice,
			reservation.CreatedAt,
			reservation.UpdatedAt)

		if err != nil {
			if isForeignKeyViolation(err, reservationsUserFkey) {
				return domain.ErrRecordNotFound
			}

			return storeError(err)
		}

		rows := make([][]any, 0, len(reservation.Seats))
		for _, label := range reservation.Seats {
			rows = append(rows, []any{
				reservation.ID,
				reservation.SessionID,
				label,
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"reservation_seats"},
			[]string{"reservation_id", "session_id", "seat_label"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			if isUniqueViolation(err, heldSeatIndex) {
				return domain.ErrSeatAlreadyReserved
			}

			return storeError(err)
		}

		return nil
	})
}

const reservationColumns = `
	r.id,
	r.session_id,
	r.user_id,
	r.status,
	r.total_price,
	r.created_at,
	r.updated_at,
	r.cancelled_at,
	r.scanned_at,
	COALESCE(
		(SELECT array_agg(rs.seat_label) FROM reservation_seats rs WHERE rs.reservation_id = r.id),
		'{}'
	)
`

func scanReservation(row pgx.Row, reservation *domain.Reservation, extra ...any) error {
	dest := append(extra,
		&reservation.ID,
		&reservation.SessionID,
		&reservation.UserID,
		&reservation.Status,
		&reservation.TotalPrice,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
		&reservation.CancelledAt,
		&reservation.ScannedAt,
		&reservation.Seats,
	)

	err := row.Scan(dest...)
	if err != nil {
		return err
	}

	domain.SortSeats(reservation.Seats)

	return nil
}

func (p *PostgresReservationRepository) GetById(ctx context.Context, id string) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations r
		WHERE r.id = $1`

	var reservation domain.Reservation

	err := scanReservation(p.db.QueryRow(ctx, query, id), &reservation)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}

		return nil, storeError(err)
	}

	return &reservation, nil
}

// GetOccupiedSeats lists the labels held by confirmed reservations of the
// session. Scanned reservations still hold their seats.
func (p *PostgresReservationRepository) GetOccupiedSeats(ctx context.Context, sessionID string) ([]string, error) {
	query := `
		SELECT rs.seat_label
		FROM reservation_seats rs
		JOIN reservations r
			ON rs.reservation_id = r.id
		WHERE rs.session_id = $1
			AND rs.released_at IS NULL
			AND r.status = 'CONFIRMED'
	`

	rows, err := p.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, storeError(err)
	}

	labels, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, storeError(err)
	}

	return labels, nil
}

// Cancel moves a confirmed, unscanned reservation to CANCELLED and releases its
// seats. It returns domain.ErrEditConflict when the row is in any other state.
func (p *PostgresReservationRepository) Cancel(ctx context.Context, id string) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE reservations
			SET status = 'CANCELLED', cancelled_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND status = 'CONFIRMED' AND scanned_at IS NULL
		`

		tag, err := tx.Exec(ctx, query, id)
		if err != nil {
			return storeError(err)
		}

		if tag.RowsAffected() == 0 {
			return domain.ErrEditConflict
		}

		query = `
			UPDATE reservation_seats
			SET released_at = NOW()
			WHERE reservation_id = $1 AND released_at IS NULL
		`

		_, err = tx.Exec(ctx, query, id)

		return storeError(err)
	})
}

func (p *PostgresReservationRepository) MarkScanned(ctx context.Context, id string) error {
	query := `
		UPDATE reservations
		SET scanned_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'CONFIRMED' AND scanned_at IS NULL
	`

	tag, err := p.db.Exec(ctx, query, id)
	if err != nil {
		return storeError(err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEditConflict
	}

	return nil
}

func (p *PostgresReservationRepository) GetByUserId(
	ctx context.Context,
	userID string,
	pagination domain.Pagination) ([]domain.Reservation, *domain.Metadata, error) {

	query := `SELECT COUNT(*) OVER(), ` + reservationColumns + `
		FROM reservations r
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC, r.id ASC
		LIMIT $2 OFFSET $3`

	rows, err := p.db.Query(ctx, query, userID, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, storeError(err)
	}
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)
	totalRecords := 0

	for rows.Next() {
		var reservation domain.Reservation

		err := scanReservation(rows, &reservation, &totalRecords)
		if err != nil {
			return nil, nil, storeError(err)
		}

		reservations = append(reservations, reservation)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, storeError(err)
	}

	metadata := domain.NewMetadata(totalRecords, pagination)

	return reservations, metadata, nil
}
