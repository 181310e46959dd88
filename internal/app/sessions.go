package app

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/api"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var sessionFilterParams = []string{"id", "movieId", "roomId", "from", "minAvailableSeats"}

func (app *Application) CreateSession(w http.ResponseWriter, r *http.Request) {
	var input api.CreateSessionRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		MovieID:   input.MovieId,
		RoomID:    input.RoomId,
		StartsAt:  input.StartsAt.UTC(),
		Price:     input.Price,
		CreatedAt: time.Now().UTC(),
	}

	err = app.sessionRepo.Create(r.Context(), session)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.errorResponse(w, r, http.StatusNotFound, err.Error())
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	app.contextGetLogger(r).Info("session created", "session_id", session.ID, "room_id", session.RoomID)

	resp := api.SessionResponse{
		Id:        session.ID,
		MovieId:   session.MovieID,
		RoomId:    session.RoomID,
		StartsAt:  session.StartsAt,
		Price:     session.Price,
		CreatedAt: session.CreatedAt,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) SearchSessions(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	filter, err := parseSessionFilter(qs)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	params, err := readPaginationParams(qs)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	sessions, metadata, err := app.sessionRepo.Search(r.Context(), filter, toPagination(params))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.SessionListResponse{
		Sessions: make([]api.SessionSummary, len(sessions)),
		Metadata: toApiMetadata(metadata),
	}

	for i, s := range sessions {
		resp.Sessions[i] = api.SessionSummary{
			Id:             s.ID,
			MovieId:        s.MovieID,
			MovieTitle:     s.MovieTitle,
			RoomId:         s.RoomID,
			RoomName:       s.RoomName,
			StartsAt:       s.StartsAt.UTC(),
			Price:          s.Price,
			Capacity:       s.Capacity,
			AvailableSeats: s.AvailableSeats,
		}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// parseSessionFilter accepts at most one filter parameter.
func parseSessionFilter(qs url.Values) (domain.SessionFilter, error) {
	var present []string
	for _, key := range sessionFilterParams {
		if qs.Get(key) != "" {
			present = append(present, key)
		}
	}

	switch len(present) {
	case 0:
		return domain.NoSessionFilter(), nil
	case 1:
	default:
		return domain.SessionFilter{}, fmt.Errorf("only one filter may be used at a time, got %s", strings.Join(present, ", "))
	}

	value := qs.Get(present[0])

	switch present[0] {
	case "id":
		return domain.SessionByID(value), nil
	case "movieId":
		return domain.SessionsByMovie(value), nil
	case "roomId":
		return domain.SessionsByRoom(value), nil
	case "from":
		from, err := parseFromDate(value)
		if err != nil {
			return domain.SessionFilter{}, err
		}
		return domain.SessionsFrom(from), nil
	default:
		min, err := strconv.Atoi(value)
		if err != nil || min < 0 {
			return domain.SessionFilter{}, errors.New("minAvailableSeats must be a non-negative integer")
		}
		return domain.SessionsWithAvailableSeats(min), nil
	}
}

func parseFromDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}

	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}

	return time.Time{}, errors.New("from must be an RFC 3339 timestamp or a YYYY-MM-DD date")
}

func (app *Application) GetSessionAvailability(w http.ResponseWriter, r *http.Request) {
	availability, err := app.ledger.Availability(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		app.ledgerErrorResponse(w, r, err)
		return
	}

	resp := api.AvailabilityResponse{
		SessionId:      availability.SessionID,
		Capacity:       availability.Capacity,
		AvailableSeats: availability.AvailableCount(),
		OccupiedSeats:  availability.OccupiedSeats,
	}

	if resp.OccupiedSeats == nil {
		resp.OccupiedSeats = []string{}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
