package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/api"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/mailer"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/mocks"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/ticket"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/validator"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
)

const (
	testUserId  = "5f7c1a52-4bb4-4a5e-9a0b-7d7f6b1c2f10"
	testAdminId = "0b9e5d4e-8f83-4c3b-a8d6-2e4c7a51e9a3"
)

func newTestApplication(opts ...func(*Application)) *Application {
	app := &Application{
		config:         Config{Env: "test"},
		validator:      validator.NewValidator(),
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		userRepo:       &mocks.MockUserRepo{},
		movieRepo:      &mocks.MockMovieRepo{},
		roomRepo:       &mocks.MockRoomRepo{},
		sessionRepo:    &mocks.MockSessionRepo{},
		mailer:         mailer.NewMockMailer(),
		publisher:      mocks.NewMockPublisher(),
		sessionManager: scs.New(),
		tickets:        ticket.NewIssuer("test-secret", "cinema-test", time.Hour),
		ledger:         &mocks.MockLedger{},
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

func setupTestSession(t *testing.T, app *Application, r *http.Request, userId string, role domain.Role) *http.Request {
	ctx, err := app.sessionManager.Load(r.Context(), "session")
	if err != nil {
		t.Errorf("Failed to load session: %v", err)
	}

	app.sessionManager.Put(ctx, SessionKeyUserId.String(), userId)
	app.sessionManager.Put(ctx, SessionKeyRole.String(), string(role))

	return r.WithContext(ctx)
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(method, url, bytes.NewReader(jsonData))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

// withURLParams attaches chi route parameters to a request that bypasses the router.
func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}

	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func asClient(r *http.Request) *http.Request {
	return contextSetRequester(r, domain.Requester{UserID: testUserId, Role: domain.RoleClient})
}

func asAdmin(r *http.Request) *http.Request {
	return contextSetRequester(r, domain.Requester{UserID: testAdminId, Role: domain.RoleAdmin})
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	switch tt.wantStatus {
	case http.StatusUnprocessableEntity:
		var validationResp api.ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if !errorSet[tt.wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", tt.wantErrMessage)
		}

	default:
		var errorResp api.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if tt.wantErrMessage != "" && errorResp.Message != tt.wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, tt.wantErrMessage)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}
