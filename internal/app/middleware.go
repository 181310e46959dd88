package app

import (
	"fmt"
	"net/http"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
)

func (app *Application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")

				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *Application) requireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userId := app.sessionManager.GetString(r.Context(), SessionKeyUserId.String())
		if userId == "" {
			app.unauthorizedAccessResponse(w, r)
			return
		}

		role := domain.Role(app.sessionManager.GetString(r.Context(), SessionKeyRole.String()))
		if role == "" {
			role = domain.RoleClient
		}

		r = contextSetRequester(r, domain.Requester{UserID: userId, Role: role})

		next.ServeHTTP(w, r)
	})
}

// requireAdmin must run after requireAuthentication.
func (app *Application) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requester := app.contextGetRequester(r)
		if !requester.IsAdmin() {
			app.contextGetLogger(r).Warn("non-admin user tried to access admin route", "path", r.URL.Path)
			app.forbiddenResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}
