package domain

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const (
	MaxRoomRows    = 26
	MaxRoomColumns = 50
)

type Room struct {
	ID        string
	Name      string
	Rows      int
	Columns   int
	CreatedAt time.Time
}

type Seat struct {
	ID     string
	RoomID string
	Label  string
}

// Capacity is fixed by the room geometry.
func (r Room) Capacity() int {
	return r.Rows * r.Columns
}

// Seats returns every seat label of the room in row-major order: A1, A2, ..., B1, ...
func (r Room) Seats() []string {
	labels := make([]string, 0, r.Capacity())

	for row := 0; row < r.Rows; row++ {
		for col := 1; col <= r.Columns; col++ {
			labels = append(labels, SeatLabel(row, col))
		}
	}

	return labels
}

// HasSeat reports whether label names a seat of this room.
func (r Room) HasSeat(label string) bool {
	row, col, err := ParseSeatLabel(label)
	if err != nil {
		return false
	}

	return row < r.Rows && col <= r.Columns
}

// SeatLabel builds the label of the seat at the zero-based row and one-based column.
func SeatLabel(row, col int) string {
	return string(rune('A'+row)) + strconv.Itoa(col)
}

// ParseSeatLabel splits a label such as "C12" into its zero-based row and
// one-based column.
func ParseSeatLabel(label string) (row, col int, err error) {
	if len(label) < 2 {
		return 0, 0, fmt.Errorf("malformed seat label %q", label)
	}

	letter := label[0]
	if letter < 'A' || letter > 'Z' {
		return 0, 0, fmt.Errorf("malformed seat label %q", label)
	}

	digits := label[1:]
	if digits[0] == '0' || len(digits) > 3 {
		return 0, 0, fmt.Errorf("malformed seat label %q", label)
	}

	for _, ch := range digits {
		if ch < '0' || ch > '9' {
			return 0, 0, fmt.Errorf("malformed seat label %q", label)
		}
	}

	col, err = strconv.Atoi(digits)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed seat label %q", label)
	}

	return int(letter - 'A'), col, nil
}

type RoomRepository interface {
	Create(ctx context.Context, room *Room) error
	GetById(ctx context.Context, id string) (*Room, error)
	GetSeats(ctx context.Context, roomID string) ([]Seat, error)
}
