package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/repository"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
	"updatedAt": {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string, cookies []http.Cookie) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for i := range cookies {
		req.AddCookie(&cookies[i])
	}

	return req, nil
}

func compareResponse(t testing.TB, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore nondeterministic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func decodeBody(res *http.Response, dst any) error {
	return json.NewDecoder(res.Body).Decode(dst)
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}
		if nested, ok := m[k].(map[string]any); ok {
			cleanMap(nested)
		}
	}
}

func truncateAll(t testing.TB, db *pgxpool.Pool) {
	_, err := db.Exec(context.Background(),
		"TRUNCATE users, movies, rooms, seats, sessions, reservations, reservation_seats CASCADE")
	require.NoError(t, err)
}

func insertTestUser(t testing.TB, db *pgxpool.Pool, name, email, password string, role domain.Role) *domain.User {
	user := domain.NewUser(name, email, role)
	require.NoError(t, user.Password.Set(password))

	err := repository.NewPostgresUserRepository(db).Create(context.Background(), user)
	require.NoError(t, err)

	return user
}

// insertTestSession creates a movie, a rows x columns room and a session
// showing the movie in that room.
func insertTestSession(t testing.TB, db *pgxpool.Pool, rows, columns int, price decimal.Decimal) *domain.Session {
	ctx := context.Background()
	now := time.Now().UTC()

	movie := &domain.Movie{
		ID:          uuid.NewString(),
		Title:       TestMovieTitle,
		Description: TestMovieDescription,
		Genres:      TestMovieGenres,
		Duration:    TestMovieDuration,
		PosterUrl:   TestMoviePosterUrl,
		Director:    TestMovieDirector,
		CreatedAt:   now,
	}
	require.NoError(t, repository.NewPostgresMovieRepository(db).Create(ctx, movie))

	room := &domain.Room{
		ID:        uuid.NewString(),
		Name:      fmt.Sprintf("%s %s", TestRoomName, movie.ID[:8]),
		Rows:      rows,
		Columns:   columns,
		CreatedAt: now,
	}
	require.NoError(t, repository.NewPostgresRoomRepository(db).Create(ctx, room))

	session := &domain.Session{
		ID:        uuid.NewString(),
		MovieID:   movie.ID,
		RoomID:    room.ID,
		Room:      *room,
		StartsAt:  TestSessionStartTime,
		Price:     price,
		CreatedAt: now,
	}
	require.NoError(t, repository.NewPostgresSessionRepository(db).Create(ctx, session))

	return session
}

// login authenticates through the API and returns the session cookies.
func (app *TestApp) login(t testing.TB, email, password string) []http.Cookie {
	body := strings.NewReader(fmt.Sprintf(`{"email": %q, "password": %q}`, email, password))

	req, err := prepareRequest(http.MethodPost, "/auth/login", body, nil, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	app.App.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code, "login should succeed")

	var cookies []http.Cookie
	for _, c := range rec.Result().Cookies() {
		cookies = append(cookies, *c)
	}

	require.NotEmpty(t, cookies, "login should set a session cookie")

	return cookies
}

func (app *TestApp) authenticatedUserCookies(t testing.TB) []http.Cookie {
	return app.login(t, TestUserEmail, TestUserPassword)
}

func (app *TestApp) authenticatedAdminCookies(t testing.TB) []http.Cookie {
	return app.login(t, TestAdminEmail, TestAdminPassword)
}

// do sends a request through the router and decodes a JSON response into dst
// when dst is not nil.
func (app *TestApp) do(t testing.TB, method, path, body string, cookies []http.Cookie, dst any) int {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := prepareRequest(method, path, reader, nil, cookies)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	app.App.Routes().ServeHTTP(rec, req)

	if dst != nil {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
	}

	return rec.Code
}
