package domain

import (
	"context"
	"strings"
	"time"
)

type Movie struct {
	ID          string
	Title       string
	Description string
	Genres      []string
	Duration    int
	PosterUrl   string
	Director    string
	CreatedAt   time.Time
}

type MovieFilters struct {
	Pagination
	Term string
	Sort string
}

var movieSortColumns = map[string]string{
	"title":     "title",
	"duration":  "duration_minutes",
	"createdAt": "created_at",
	"id":        "id",
}

// SortColumn maps the public sort key onto a column name. Unknown keys fall
// back to the title so user input never reaches the query text.
func (f MovieFilters) SortColumn() string {
	column, ok := movieSortColumns[strings.TrimPrefix(f.Sort, "-")]
	if !ok {
		return "title"
	}

	return column
}

func (f MovieFilters) SortDirection() string {
	if strings.HasPrefix(f.Sort, "-") {
		return "DESC"
	}

	return "ASC"
}

func IsValidMovieSort(sort string) bool {
	_, ok := movieSortColumns[strings.TrimPrefix(sort, "-")]
	return ok
}

type MovieRepository interface {
	Create(ctx context.Context, movie *Movie) error
	GetAll(ctx context.Context, filters MovieFilters) ([]*Movie, *Metadata, error)
	GetById(ctx context.Context, id string) (*Movie, error)
}
