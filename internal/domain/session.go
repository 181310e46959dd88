package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Session struct {
	ID        string
	MovieID   string
	RoomID    string
	Room      Room
	StartsAt  time.Time
	Price     decimal.Decimal
	CreatedAt time.Time
}

type SessionSummary struct {
	ID             string
	MovieID        string
	MovieTitle     string
	RoomID         string
	RoomName       string
	StartsAt       time.Time
	Price          decimal.Decimal
	Capacity       int
	AvailableSeats int
}

type SessionFilterKind int

const (
	SessionFilterNone SessionFilterKind = iota
	SessionFilterByID
	SessionFilterByMovie
	SessionFilterByRoom
	SessionFilterFromDate
	SessionFilterMinAvailableSeats
)

func (k SessionFilterKind) String() string {
	switch k {
	case SessionFilterNone:
		return "none"
	case SessionFilterByID:
		return "id"
	case SessionFilterByMovie:
		return "movieId"
	case SessionFilterByRoom:
		return "roomId"
	case SessionFilterFromDate:
		return "from"
	case SessionFilterMinAvailableSeats:
		return "minAvailableSeats"
	default:
		return fmt.Sprintf("SessionFilterKind(%d)", int(k))
	}
}

// SessionFilter selects sessions by exactly one criterion. Only the field that
// matches Kind is meaningful.
type SessionFilter struct {
	Kind     SessionFilterKind
	ID       string
	From     time.Time
	MinSeats int
}

func NoSessionFilter() SessionFilter {
	return SessionFilter{Kind: SessionFilterNone}
}

func SessionByID(id string) SessionFilter {
	return SessionFilter{Kind: SessionFilterByID, ID: id}
}

func SessionsByMovie(movieID string) SessionFilter {
	return SessionFilter{Kind: SessionFilterByMovie, ID: movieID}
}

func SessionsByRoom(roomID string) SessionFilter {
	return SessionFilter{Kind: SessionFilterByRoom, ID: roomID}
}

func SessionsFrom(from time.Time) SessionFilter {
	return SessionFilter{Kind: SessionFilterFromDate, From: from}
}

func SessionsWithAvailableSeats(min int) SessionFilter {
	return SessionFilter{Kind: SessionFilterMinAvailableSeats, MinSeats: min}
}

type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetById(ctx context.Context, id string) (*Session, error)
	Search(ctx context.Context, filter SessionFilter, pagination Pagination) ([]SessionSummary, *Metadata, error)
}
