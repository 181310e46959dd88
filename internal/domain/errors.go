package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrSessionNotFound     = fmt.Errorf("session %w", ErrRecordNotFound)
	ErrReservationNotFound = fmt.Errorf("reservation %w", ErrRecordNotFound)
	ErrRoomNotFound        = fmt.Errorf("room %w", ErrRecordNotFound)
	ErrMovieNotFound       = fmt.Errorf("movie %w", ErrRecordNotFound)

	ErrInvalidInput     = errors.New("invalid input")
	ErrEmptySelection   = fmt.Errorf("%w: at least one seat must be selected", ErrInvalidInput)
	ErrInvalidSeatLabel = fmt.Errorf("%w: seat does not exist in this room", ErrInvalidInput)

	ErrSeatAlreadyReserved = errors.New("seat(s) are already reserved")
	ErrSessionFull         = errors.New("session is sold out")
	ErrInvalidTransition   = errors.New("reservation cannot change to the requested state")
	ErrEditConflict        = errors.New("edit conflict")
	ErrForbidden           = errors.New("not allowed to access this reservation")
	ErrUnavailable         = errors.New("reservation store is temporarily unavailable")

	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrRoomAlreadyExists  = errors.New("room already exists")
	ErrInvalidCredentials = errors.New("invalid authentication credentials")
)

// SeatConflictError reports the requested labels that are already held by a
// confirmed reservation. SoldOut is set when the session had no free seat left.
type SeatConflictError struct {
	Labels  []string
	SoldOut bool
}

func (e *SeatConflictError) Error() string {
	if e.SoldOut {
		return fmt.Sprintf("%s: %s", ErrSessionFull, strings.Join(e.Labels, ", "))
	}

	return fmt.Sprintf("%s: %s", ErrSeatAlreadyReserved, strings.Join(e.Labels, ", "))
}

func (e *SeatConflictError) Is(target error) bool {
	return target == ErrSeatAlreadyReserved || (e.SoldOut && target == ErrSessionFull)
}

// InvalidSeatLabelError lists the requested labels missing from the room layout.
type InvalidSeatLabelError struct {
	Labels []string
}

func (e *InvalidSeatLabelError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidSeatLabel, strings.Join(e.Labels, ", "))
}

func (e *InvalidSeatLabelError) Is(target error) bool {
	return target == ErrInvalidSeatLabel || target == ErrInvalidInput
}
