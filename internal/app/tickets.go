package app

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/api"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/ticket"
)

var errTicketUnavailable = errors.New("a ticket is only issued for confirmed reservations")

func (app *Application) GetTicket(w http.ResponseWriter, r *http.Request) {
	reservation, ok := app.ownedReservation(w, r)
	if !ok {
		return
	}

	if reservation.Status != domain.ReservationStatusConfirmed {
		app.conflictResponse(w, r, errTicketUnavailable)
		return
	}

	token, err := app.tickets.Issue(reservation)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	png, err := ticket.QRCode(token)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.TicketResponse{
		ReservationId: reservation.ID,
		Token:         token,
		QrCode:        base64.StdEncoding.EncodeToString(png),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ScanTicket admits the holder of a ticket token. Rejected tickets are a
// normal outcome and are reported with valid=false.
func (app *Application) ScanTicket(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.ScanTicketRequest

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

	claims, err := app.tickets.Parse(input.Token)
	if err != nil {
		logger.Warn("ticket token rejected", "error", err)

		resp := api.ScanTicketResponse{
			Valid:  false,
			Reason: string(domain.TicketInvalid),
		}

		err = app.writeJSON(w, http.StatusOK, resp, nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	result, err := app.ledger.ValidateTicket(r.Context(), claims.ReservationID)
	if err != nil {
		app.ledgerErrorResponse(w, r, err)
		return
	}

	logger.Info("ticket scanned",
		"reservation_id", result.ReservationID,
		"valid", result.Valid,
		"reason", result.Reason,
	)

	resp := api.ScanTicketResponse{
		ReservationId: result.ReservationID,
		Valid:         result.Valid,
		Reason:        string(result.Reason),
	}

	if result.Reservation != nil {
		resp.SessionId = result.Reservation.SessionID
		resp.Seats = result.Reservation.Seats
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
