package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/api"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
)

// Login opens a session for valid credentials. Callers holding a session
// already get 200 without the body being read.
func (app *Application) Login(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	if app.sessionManager.GetString(r.Context(), SessionKeyUserId.String()) != "" {
		err := app.writeJSON(w, http.StatusOK, api.AlreadyLoggedInResponse{Message: "You are already logged in"}, nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	var input api.LoginRequest

	if err := app.readJSON(w, r, &input); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// Malformed credentials are reported like wrong ones.
	if err := app.validator.Struct(input); err != nil {
		logger.Warn("login rejected", "reason", "validation")
		app.invalidCredentialsResponse(w, r)
		return
	}

	user, err := app.authenticate(r.Context(), input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			logger.Warn("login rejected", "reason", "credentials")
			app.invalidCredentialsResponse(w, r)
		default:
			logger.Error("login failed", "error", err)
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	if err := app.startUserSession(r.Context(), user); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	logger.Info("user logged in", "user_id", user.ID, "role", user.Role)

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) Logout(w http.ResponseWriter, r *http.Request) {
	userID := app.sessionManager.GetString(r.Context(), SessionKeyUserId.String())

	if err := app.sessionManager.Destroy(r.Context()); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.contextGetLogger(r).Info("user logged out", "user_id", userID)

	w.WriteHeader(http.StatusNoContent)
}

// authenticate resolves the account behind email and checks its password.
// Unknown emails and wrong passwords both yield domain.ErrInvalidCredentials.
func (app *Application) authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := app.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, err
	}

	if err := domain.CheckCredentials(user, password); err != nil {
		return nil, err
	}

	return user, nil
}

// startUserSession stores the identity the requireAuthentication and
// requireAdmin middleware read. The token is renewed first so a session id
// issued before login cannot be reused.
func (app *Application) startUserSession(ctx context.Context, user *domain.User) error {
	if err := app.sessionManager.RenewToken(ctx); err != nil {
		return err
	}

	app.sessionManager.Put(ctx, SessionKeyUserId.String(), user.ID)
	app.sessionManager.Put(ctx, SessionKeyRole.String(), string(user.Role))

	return nil
}
