package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresMovieRepository struct {
	db *pgxpool.Pool
}

func NewPostgresMovieRepository(db *pgxpool.Pool) *PostgresMovieRepository {
	return &PostgresMovieRepository{
		db: db,
	}
}

func (p *PostgresMovieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	query := `INSERT INTO movies (id, title, description, genres, duration_minutes, poster_url, director)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := p.db.QueryRow(ctx,
		query,
		movie.ID,
		movie.Title,
		movie.Description,
		movie.Genres,
		movie.Duration,
		movie.PosterUrl,
		movie.Director).Scan(&movie.CreatedAt)

	return storeError(err)
}

func (p *PostgresMovieRepository) GetAll(ctx context.Context, filters domain.MovieFilters) ([]*domain.Movie, *domain.Metadata, error) {
	query := fmt.Sprintf(`SELECT count(*) OVER(), id, title, description, genres, duration_minutes, poster_url, director, created_at
		FROM movies
		WHERE (to_tsvector('simple', title) @@ plainto_tsquery('simple', $1)
			OR title ILIKE '%%' || $1 || '%%'
			OR $1 = '')
		ORDER BY %s %s, id ASC
		LIMIT $2 OFFSET $3`, filters.SortColumn(), filters.SortDirection())

	rows, err := p.db.Query(ctx, query, filters.Term, filters.Limit(), filters.Offset())
	if err != nil {
		return nil, nil, storeError(err)
	}
	defer rows.Close()

	totalRecords := 0
	movies := []*domain.Movie{}

	for rows.Next() {
		var movie domain.Movie

		err := rows.Scan(
			&totalRecords,
			&movie.ID,
			&movie.Title,
			&movie.Description,
			&movie.Genres,
			&movie.Duration,
			&movie.PosterUrl,
			&movie.Director,
			&movie.CreatedAt,
		)

		if err != nil {
			return nil, nil, storeError(err)
		}

		movies = append(movies, &movie)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, storeError(err)
	}

	metadata := domain.NewMetadata(totalRecords, filters.Pagination)

	return movies, metadata, nil
}

func (p *PostgresMovieRepository) GetById(ctx context.Context, id string) (*domain.Movie, error) {
	query := `SELECT id, title, description, genres, duration_minutes, poster_url, director, created_at
		FROM movies
		WHERE id = $1`

	var movie domain.Movie

	err := p.db.QueryRow(ctx, query, id).Scan(
		&movie.ID,
		&movie.Title,
		&movie.Description,
		&movie.Genres,
		&movie.Duration,
		&movie.PosterUrl,
		&movie.Director,
		&movie.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMovieNotFound
		}

		return nil, storeError(err)
	}

	return &movie, nil
}
