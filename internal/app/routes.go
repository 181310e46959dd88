package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(otelchi.Middleware("cinema-api", otelchi.WithChiRoutes(r)))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(app.recoverPanic)
	r.Use(app.sessionManager.LoadAndSave)

	r.Get("/healthcheck", app.GetHealth)
	r.Get("/openapi.json", app.GetOpenAPI)

	r.Post("/users", app.RegisterUser)
	r.Post("/auth/login", app.Login)

	r.Get("/movies", app.GetMovies)
	r.Get("/movies/{movieId}", app.GetMovieById)
	r.Get("/rooms/{roomId}", app.GetRoomById)
	r.Get("/sessions", app.SearchSessions)
	r.Get("/sessions/{sessionId}/availability", app.GetSessionAvailability)

	r.Group(func(r chi.Router) {
		r.Use(app.requireAuthentication)

		r.Post("/auth/logout", app.Logout)
		r.Get("/users/me", app.GetCurrentUser)
		r.Get("/users/me/reservations", app.GetReservationsOfUser)

		r.With(app.rateLimit).Post("/sessions/{sessionId}/reservations", app.ReserveSeats)

		r.Get("/reservations/{reservationId}", app.GetReservationById)
		r.Delete("/reservations/{reservationId}", app.CancelReservation)
		r.Get("/reservations/{reservationId}/ticket", app.GetTicket)

		r.Group(func(r chi.Router) {
			r.Use(app.requireAdmin)

			r.Post("/movies", app.CreateMovie)
			r.Post("/rooms", app.CreateRoom)
			r.Post("/sessions", app.CreateSession)
			r.Post("/tickets/scan", app.ScanTicket)
		})
	})

	return r
}
