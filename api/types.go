// Package api holds the wire types of the HTTP API and its OpenAPI document.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SeatErrorCode string

const (
	SEATALREADYRESERVED SeatErrorCode = "SEAT_ALREADY_RESERVED"
	SESSIONFULL         SeatErrorCode = "SESSION_FULL"
	INVALIDSEATLABEL    SeatErrorCode = "INVALID_SEAT_LABEL"
)

// SeatErrorResponse names the seats that made a reservation request fail.
type SeatErrorResponse struct {
	Message   string        `json:"message"`
	RequestId string        `json:"requestId"`
	Timestamp time.Time     `json:"timestamp"`
	Code      SeatErrorCode `json:"code"`
	Seats     []string      `json:"seats"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type PaginationParams struct {
	Page     *int `json:"page" validate:"omitempty,min=1,max=10000"`
	PageSize *int `json:"pageSize" validate:"omitempty,min=1,max=100"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AlreadyLoggedInResponse struct {
	Message string `json:"message"`
}

type UserResponse struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type GetMoviesParams struct {
	PaginationParams
	Sort *string `json:"sort" validate:"omitempty,movie_sort"`
	Term *string `json:"term" validate:"omitempty,max=100"`
}

type CreateMovieRequest struct {
	Title           string   `json:"title" validate:"required,max=200"`
	Description     string   `json:"description" validate:"max=2000"`
	Genres          []string `json:"genres" validate:"max=10,dive,required,max=50"`
	DurationMinutes int      `json:"durationMinutes" validate:"required,min=1,max=600"`
	PosterUrl       string   `json:"posterUrl" validate:"omitempty,url"`
	Director        string   `json:"director" validate:"max=200"`
}

type MovieResponse struct {
	Id              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Genres          []string  `json:"genres"`
	DurationMinutes int       `json:"durationMinutes"`
	PosterUrl       string    `json:"posterUrl"`
	Director        string    `json:"director"`
	CreatedAt       time.Time `json:"createdAt"`
}

type MovieListResponse struct {
	Movies   []MovieResponse `json:"movies"`
	Metadata *Metadata       `json:"metadata"`
}

type CreateRoomRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Rows    int    `json:"rows" validate:"required,min=1,max=26"`
	Columns int    `json:"columns" validate:"required,min=1,max=50"`
}

type RoomResponse struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Rows      int       `json:"rows"`
	Columns   int       `json:"columns"`
	Capacity  int       `json:"capacity"`
	Seats     []string  `json:"seats"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateSessionRequest struct {
	MovieId  string          `json:"movieId" validate:"required,uuid"`
	RoomId   string          `json:"roomId" validate:"required,uuid"`
	StartsAt time.Time       `json:"startsAt" validate:"required"`
	Price    decimal.Decimal `json:"price" validate:"price"`
}

type SessionResponse struct {
	Id        string          `json:"id"`
	MovieId   string          `json:"movieId"`
	RoomId    string          `json:"roomId"`
	StartsAt  time.Time       `json:"startsAt"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
}

type SessionSummary struct {
	Id             string          `json:"id"`
	MovieId        string          `json:"movieId"`
	MovieTitle     string          `json:"movieTitle"`
	RoomId         string          `json:"roomId"`
	RoomName       string          `json:"roomName"`
	StartsAt       time.Time       `json:"startsAt"`
	Price          decimal.Decimal `json:"price"`
	Capacity       int             `json:"capacity"`
	AvailableSeats int             `json:"availableSeats"`
}

type SessionListResponse struct {
	Sessions []SessionSummary `json:"sessions"`
	Metadata *Metadata        `json:"metadata"`
}

type AvailabilityResponse struct {
	SessionId      string   `json:"sessionId"`
	Capacity       int      `json:"capacity"`
	AvailableSeats int      `json:"availableSeats"`
	OccupiedSeats  []string `json:"occupiedSeats"`
}

type ReserveSeatsRequest struct {
	Seats []string `json:"seats" validate:"max=200"`
}

type ReservationResponse struct {
	Id          string          `json:"id"`
	SessionId   string          `json:"sessionId"`
	UserId      string          `json:"userId"`
	Seats       []string        `json:"seats"`
	Status      string          `json:"status"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	CancelledAt *time.Time      `json:"cancelledAt,omitempty"`
	ScannedAt   *time.Time      `json:"scannedAt,omitempty"`
}

type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	Metadata     *Metadata             `json:"metadata"`
}

type TicketResponse struct {
	ReservationId string `json:"reservationId"`
	Token         string `json:"token"`
	// QrCode is a base64 encoded PNG of Token.
	QrCode string `json:"qrCode"`
}

type ScanTicketRequest struct {
	Token string `json:"token" validate:"required"`
}

type ScanTicketResponse struct {
	ReservationId string   `json:"reservationId"`
	Valid         bool     `json:"valid"`
	Reason        string   `json:"reason,omitempty"`
	SessionId     string   `json:"sessionId,omitempty"`
	Seats         []string `json:"seats,omitempty"`
}
