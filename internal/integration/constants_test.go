package integration_test

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TestUserName     = "John Doe"
	TestUserEmail    = "test@example.com"
	TestUserPassword = "Test123!@#"

	TestAdminEmail    = "admin@example.com"
	TestAdminPassword = "Admin123!@#"

	TestMovieTitle       = "Test Movie"
	TestMovieDescription = "A test movie description."
	TestMovieDuration    = 120
	TestMoviePosterUrl   = "https://example.com/poster.jpg"
	TestMovieDirector    = "Jane Doe"

	TestRoomName = "Room 1"
)

var (
	TestMovieGenres      = []string{"Action", "Drama"}
	TestSessionPrice     = decimal.RequireFromString("30.00")
	TestSessionStartTime = time.Date(2095, 1, 1, 20, 0, 0, 0, time.UTC)
)
