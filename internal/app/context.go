package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
	"github.com/go-chi/chi/v5/middleware"
)

type sessionKey string

const (
	SessionKeyUserId = sessionKey("userID")
	SessionKeyRole   = sessionKey("role")
)

func (s sessionKey) String() string {
	return string(s)
}

type contextKey string

const requesterContextKey = contextKey("requester")

func contextSetRequester(r *http.Request, requester domain.Requester) *http.Request {
	ctx := context.WithValue(r.Context(), requesterContextKey, requester)
	return r.WithContext(ctx)
}

func (app *Application) contextGetRequester(r *http.Request) domain.Requester {
	requester, ok := r.Context().Value(requesterContextKey).(domain.Requester)
	if !ok {
		panic("missing requester in request context")
	}

	return requester
}

// contextGetLogger returns the application logger annotated with the request
// id and, once authenticated, the user id.
func (app *Application) contextGetLogger(r *http.Request) *slog.Logger {
	logger := app.logger.With("request_id", middleware.GetReqID(r.Context()))

	if requester, ok := r.Context().Value(requesterContextKey).(domain.Requester); ok {
		logger = logger.With("user_id", requester.UserID)
	}

	return logger
}
