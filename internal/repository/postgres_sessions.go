package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresSessionRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSessionRepository(db *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{
		db: db,
	}
}

func (p *PostgresSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, movie_id, room_id, starts_at, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := p.db.QueryRow(ctx,
		query,
		session.ID,
		session.MovieID,
		session.RoomID,
		session.StartsAt,
		session.Price).Scan(&session.CreatedAt)

	if err != nil {
		switch {
		case isForeignKeyViolation(err, sessionsMovieFkey):
			return domain.ErrMovieNotFound
		case isForeignKeyViolation(err, sessionsRoomFkey):
			return domain.ErrRoomNotFound
		default:
			return storeError(err)
		}
	}

	return nil
}

func (p *PostgresSessionRepository) GetById(ctx context.Context, id string) (*domain.Session, error) {
	query := `
		SELECT
			s.id,
			s.movie_id,
			s.starts_at,
			s.price,
			s.created_at,
			r.id,
			r.name,
			r.row_count,
			r.column_count,
			r.created_at
		FROM sessions s
		JOIN rooms r
			ON s.room_id = r.id
		WHERE s.id = $1
	`

	var session domain.Session

	err := p.db.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.MovieID,
		&session.StartsAt,
		&session.Price,
		&session.CreatedAt,
		&session.Room.ID,
		&session.Room.Name,
		&session.Room.Rows,
		&session.Room.Columns,
		&session.Room.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}

		return nil, storeError(err)
	}

	session.RoomID = session.Room.ID

	return &session, nil
}

const sessionSummaryQuery = `
	SELECT
		COUNT(*) OVER(),
		s.id,
		s.movie_id,
		m.title,
		s.room_id,
		r.name,
		s.starts_at,
		s.price,
		r.row_count * r.column_count AS capacity,
		r.row_count * r.column_count - o.occupied AS available
	FROM sessions s
	JOIN movies m
		ON s.movie_id = m.id
	JOIN rooms r
		ON s.room_id = r.id
	LEFT JOIN LATERAL (
		SELECT COUNT(*) AS occupied
		FROM reservation_seats rs
		JOIN reservations res
			ON rs.reservation_id = res.id
		WHERE rs.session_id = s.id
			AND rs.released_at IS NULL
			AND res.status = 'CONFIRMED'
	) o ON true
	WHERE %s
	ORDER BY s.starts_at ASC, s.id ASC
	LIMIT $%d OFFSET $%d
`

// sessionPredicate turns the filter into a WHERE clause and its arguments.
// Every filter kind must have a case here.
func sessionPredicate(filter domain.SessionFilter) (string, []any, error) {
	switch filter.Kind {
	case domain.SessionFilterNone:
		return "TRUE", nil, nil
	case domain.SessionFilterByID:
		return "s.id = $1", []any{filter.ID}, nil
	case domain.SessionFilterByMovie:
		return "s.movie_id = $1", []any{filter.ID}, nil
	case domain.SessionFilterByRoom:
		return "s.room_id = $1", []any{filter.ID}, nil
	case domain.SessionFilterFromDate:
		return "s.starts_at >= $1", []any{filter.From}, nil
	case domain.SessionFilterMinAvailableSeats:
		return "r.row_count * r.column_count - o.occupied >= $1", []any{filter.MinSeats}, nil
	default:
		return "", nil, fmt.Errorf("%w: unsupported session filter %s", domain.ErrInvalidInput, filter.Kind)
	}
}

func (p *PostgresSessionRepository) Search(
	ctx context.Context,
	filter domain.SessionFilter,
	pagination domain.Pagination) ([]domain.SessionSummary, *domain.Metadata, error) {

	predicate, args, err := sessionPredicate(filter)
	if err != nil {
		return nil, nil, err
	}

	query := fmt.Sprintf(sessionSummaryQuery, predicate, len(args)+1, len(args)+2)
	args = append(args, pagination.Limit(), pagination.Offset())

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, storeError(err)
	}
	defer rows.Close()

	sessions := make([]domain.SessionSummary, 0, pagination.PageSize)
	totalRecords := 0

	for rows.Next() {
		var summary domain.SessionSummary

		err := rows.Scan(
			&totalRecords,
			&summary.ID,
			&summary.MovieID,
			&summary.MovieTitle,
			&summary.RoomID,
			&summary.RoomName,
			&summary.StartsAt,
			&summary.Price,
			&summary.Capacity,
			&summary.AvailableSeats,
		)
		if err != nil {
			return nil, nil, storeError(err)
		}

		sessions = append(sessions, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, storeError(err)
	}

	metadata := domain.NewMetadata(totalRecords, pagination)

	return sessions, metadata, nil
}
