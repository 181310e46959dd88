package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/api"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
	appvalidator "github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/validator"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

const (
	ErrInternalServer     = "The server encountered a problem and could not process your request"
	ErrNotFound           = "The requested resource not found"
	ErrEditConflict       = "Unable to update the record due to an edit conflict, please try again"
	ErrUnauthorized       = "You must be authenticated to access this resource"
	ErrInvalidCredentials = "Invalid authentication credentials"
	ErrForbidden          = "You do not have permission to access this resource"
	ErrRateLimitExceeded  = "Rate limit exceeded"
	ErrUnavailable        = "The service is temporarily unavailable, please retry"
)

func (app *Application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.contextGetLogger(r).Error(err.Error(), "method", method, "uri", uri)
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	app.sendError(w, r, status, resp)
}

func (app *Application) sendError(w http.ResponseWriter, r *http.Request, status int, resp any) {
	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("The %s method is not supported for this resource", r.Method)
	app.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		app.badRequestResponse(w, r, err)
		return
	}

	resp := api.ValidationErrorResponse{
		Message:          "One or more fields have invalid values",
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
		ValidationErrors: make([]api.ValidationError, 0, len(validationErrs)),
	}

	for _, fieldErr := range validationErrs {
		resp.ValidationErrors = append(resp.ValidationErrors, api.ValidationError{
			Field: fieldErr.Field(),
			Issue: appvalidator.ValidationMessage(fieldErr),
		})
	}

	app.sendError(w, r, http.StatusUnprocessableEntity, resp)
}

func (app *Application) editConflictResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusConflict, ErrEditConflict)
}

func (app *Application) conflictResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusConflict, err.Error())
}

func (app *Application) unauthorizedAccessResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnauthorized, ErrUnauthorized)
}

func (app *Application) invalidCredentialsResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnauthorized, ErrInvalidCredentials)
}

func (app *Application) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusForbidden, ErrForbidden)
}

func (app *Application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusTooManyRequests, ErrRateLimitExceeded)
}

func (app *Application) unavailableResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.contextGetLogger(r).Warn("reservation store unavailable", "error", err)

	w.Header().Set("Retry-After", "1")

	app.errorResponse(w, r, http.StatusServiceUnavailable, ErrUnavailable)
}

func (app *Application) seatErrorResponse(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	code api.SeatErrorCode,
	seats []string,
	message string) {

	resp := api.SeatErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
		Code:      code,
		Seats:     seats,
	}

	app.sendError(w, r, status, resp)
}

// ledgerErrorResponse maps the errors of reservation operations onto HTTP
// responses.
func (app *Application) ledgerErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var conflictErr *domain.SeatConflictError
	var invalidSeatsErr *domain.InvalidSeatLabelError

	switch {
	case errors.As(err, &conflictErr):
		code := api.SEATALREADYRESERVED
		if conflictErr.SoldOut {
			code = api.SESSIONFULL
		}
		app.seatErrorResponse(w, r, http.StatusConflict, code, conflictErr.Labels, conflictErr.Error())
	case errors.As(err, &invalidSeatsErr):
		app.seatErrorResponse(w, r, http.StatusBadRequest, api.INVALIDSEATLABEL, invalidSeatsErr.Labels, invalidSeatsErr.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		app.badRequestResponse(w, r, err)
	case errors.Is(err, domain.ErrRecordNotFound):
		app.notFoundResponse(w, r)
	case errors.Is(err, domain.ErrForbidden):
		app.forbiddenResponse(w, r)
	case errors.Is(err, domain.ErrInvalidTransition):
		app.conflictResponse(w, r, err)
	case errors.Is(err, domain.ErrEditConflict):
		app.editConflictResponse(w, r)
	case errors.Is(err, domain.ErrUnavailable):
		app.unavailableResponse(w, r, err)
	default:
		app.serverErrorResponse(w, r, err)
	}
}
