package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Constraint names referenced by the error mapping; they match migrations/.
const (
	heldSeatIndex        = "reservation_seats_held_idx"
	usersEmailKey        = "users_email_key"
	roomsNameKey         = "rooms_name_key"
	sessionsMovieFkey    = "sessions_movie_id_fkey"
	sessionsRoomFkey     = "sessions_room_id_fkey"
	reservationsUserFkey = "reservations_user_id_fkey"
)

// storeError marks connectivity failures as domain.ErrUnavailable so callers
// can answer 503 and let the client retry. Other errors pass through.
func storeError(err error) error {
	if err == nil {
		return nil
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	}

	return err
}

func pgError(err error, code string) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr, true
	}

	return nil, false
}

func isUniqueViolation(err error, constraint string) bool {
	pgErr, ok := pgError(err, pgerrcode.UniqueViolation)
	return ok && pgErr.ConstraintName == constraint
}

func isForeignKeyViolation(err error, constraint string) bool {
	pgErr, ok := pgError(err, pgerrcode.ForeignKeyViolation)
	return ok && pgErr.ConstraintName == constraint
}

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var txOptions pgx.TxOptions

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return storeError(err)
	}

	err = fn(tx)
	if err == nil {
		return storeError(tx.Commit(ctx))
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}
