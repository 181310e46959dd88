package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/api"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/queue"
	"github.com/go-chi/chi/v5"
)

const publishTimeout = 5 * time.Second

func (app *Application) ReserveSeats(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)
	requester := app.contextGetRequester(r)
	sessionId := chi.URLParam(r, "sessionId")

	var input api.ReserveSeatsRequest

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

	reservation, err := app.ledger.ReserveSeats(r.Context(), sessionId, requester.UserID, input.Seats)
	if err != nil {
		logger.Info("reservation rejected", "session_id", sessionId, "error", err)
		app.ledgerErrorResponse(w, r, err)
		return
	}

	logger.Info("reservation confirmed",
		"reservation_id", reservation.ID,
		"session_id", reservation.SessionID,
		"seats", reservation.Seats,
	)

	ctx := context.WithoutCancel(r.Context())

	app.background(r, func() {
		app.publishReservationEvent(ctx, reservation, app.publisher.PublishReservationConfirmed)
		app.sendReservationConfirmation(ctx, reservation)
	})

	err = app.writeJSON(w, http.StatusCreated, toReservationResponse(reservation), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetReservationsOfUser(w http.ResponseWriter, r *http.Request) {
	params, err := readPaginationParams(r.URL.Query())
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	requester := app.contextGetRequester(r)

	reservations, metadata, err := app.reservationRepo.GetByUserId(r.Context(), requester.UserID, toPagination(params))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ReservationListResponse{
		Reservations: make([]api.ReservationResponse, len(reservations)),
		Metadata:     toApiMetadata(metadata),
	}

	for i := range reservations {
		resp.Reservations[i] = toReservationResponse(&reservations[i])
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetReservationById(w http.ResponseWriter, r *http.Request) {
	reservation, ok := app.ownedReservation(w, r)
	if !ok {
		return
	}

	err := app.writeJSON(w, http.StatusOK, toReservationResponse(reservation), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CancelReservation(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)
	requester := app.contextGetRequester(r)
	reservationId := chi.URLParam(r, "reservationId")

	released, err := app.ledger.CancelReservation(r.Context(), reservationId, requester)
	if err != nil {
		app.ledgerErrorResponse(w, r, err)
		return
	}

	reservation, err := app.reservationRepo.GetById(r.Context(), reservationId)
	if err != nil {
		app.ledgerErrorResponse(w, r, err)
		return
	}

	if released {
		logger.Info("reservation cancelled", "reservation_id", reservation.ID, "session_id", reservation.SessionID)

		ctx := context.WithoutCancel(r.Context())

		app.background(r, func() {
			app.publishReservationEvent(ctx, reservation, app.publisher.PublishReservationCancelled)
		})
	}

	err = app.writeJSON(w, http.StatusOK, toReservationResponse(reservation), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ownedReservation loads the reservation named in the URL and writes the error
// response itself when the requester may not see it.
func (app *Application) ownedReservation(w http.ResponseWriter, r *http.Request) (*domain.Reservation, bool) {
	requester := app.contextGetRequester(r)

	reservation, err := app.reservationRepo.GetById(r.Context(), chi.URLParam(r, "reservationId"))
	if err != nil {
		app.ledgerErrorResponse(w, r, err)
		return nil, false
	}

	if !reservation.OwnedBy(requester) {
		app.forbiddenResponse(w, r)
		return nil, false
	}

	return reservation, true
}

func (app *Application) publishReservationEvent(
	ctx context.Context,
	reservation *domain.Reservation,
	publish func(context.Context, queue.ReservationEvent) error) {

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	event := queue.ReservationEvent{
		ReservationID: reservation.ID,
		SessionID:     reservation.SessionID,
		UserID:        reservation.UserID,
		Seats:         reservation.Seats,
		TotalPrice:    reservation.TotalPrice.StringFixed(2),
		OccurredAt:    time.Now().UTC(),
	}

	err := publish(ctx, event)
	if err != nil {
		app.logger.Error("failed to publish reservation event",
			"reservation_id", reservation.ID,
			"status", reservation.Status,
			"error", err,
		)
	}
}

func (app *Application) sendReservationConfirmation(ctx context.Context, reservation *domain.Reservation) {
	user, err := app.userRepo.GetById(ctx, reservation.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrRecordNotFound) {
			app.logger.Error("failed to load user for confirmation email", "user_id", reservation.UserID, "error", err)
		}
		return
	}

	data := map[string]any{
		"name":          user.Name,
		"reservationID": reservation.ID,
		"sessionID":     reservation.SessionID,
		"seats":         reservation.Seats,
		"totalPrice":    reservation.TotalPrice.StringFixed(2),
	}

	err = app.mailer.Send(user.Email, "reservation_confirmed.tmpl", data)
	if err != nil {
		app.logger.Error("failed to send confirmation email", "reservation_id", reservation.ID, "error", err)
	}
}

func toReservationResponse(reservation *domain.Reservation) api.ReservationResponse {
	return api.ReservationResponse{
		Id:          reservation.ID,
		SessionId:   reservation.SessionID,
		UserId:      reservation.UserID,
		Seats:       reservation.Seats,
		Status:      string(reservation.Status),
		TotalPrice:  reservation.TotalPrice,
		CreatedAt:   reservation.CreatedAt,
		UpdatedAt:   reservation.UpdatedAt,
		CancelledAt: reservation.CancelledAt,
		ScannedAt:   reservation.ScannedAt,
	}
}
