package integration_test

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/api"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ReservationTestSuite struct {
	BaseSuite
}

func TestReservationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	suite.Run(t, new(ReservationTestSuite))
}

func (s *ReservationTestSuite) SetupTest() {
	truncateAll(s.T(), s.app.DB)
	s.app.Mailer.Reset()
	s.app.Publisher.Reset()
}

func (s *ReservationTestSuite) TestGetReservationsOfUser() {
	insertTestUser(s.T(), s.app.DB, TestUserName, TestUserEmail, TestUserPassword, domain.RoleClient)
	cookies := s.app.authenticatedUserCookies(s.T())

	scenarios := []Scenario{
		{
			Name:             "returns 401 if user is not authenticated",
			Method:           http.MethodGet,
			URL:              "/users/me/reservations",
			ExpectedStatus:   http.StatusUnauthorized,
			ExpectedResponse: `{"message": "You must be authenticated to access this resource"}`,
		},
		{
			Name:           "returns 422 for invalid page parameter",
			Method:         http.MethodGet,
			URL:            "/users/me/reservations?page=0",
			Cookies:        cookies,
			ExpectedStatus: http.StatusUnprocessableEntity,
			ExpectedResponse: `{
				"message": "One or more fields have invalid values",
				"validationErrors": [
					{"field": "page", "issue": "must be at least 1"}
				]
			}`,
		},
		{
			Name:           "returns empty list when user has no reservations",
			Method:         http.MethodGet,
			URL:            "/users/me/reservations",
			Cookies:        cookies,
			ExpectedStatus: http.StatusOK,
			ExpectedResponse: `{
				"reservations": [],
				"metadata": {
					"currentPage": 1,
					"firstPage": 1,
					"lastPage": 0,
					"pageSize": 10,
					"totalRecords": 0
				}
			}`,
		},
	}

	for _, scenario := range scenarios {
		scenario.Run(s.T(), s.app)
	}
}

func (s *ReservationTestSuite) TestReservationLifecycle() {
	t := s.T()

	session := insertTestSession(t, s.app.DB, 1, 2, TestSessionPrice)
	reservePath := "/sessions/" + session.ID + "/reservations"
	availabilityPath := "/sessions/" + session.ID + "/availability"

	insertTestUser(t, s.app.DB, TestUserName, TestUserEmail, TestUserPassword, domain.RoleClient)
	insertTestUser(t, s.app.DB, "Jane Roe", "other@example.com", TestUserPassword, domain.RoleClient)

	alice := s.app.authenticatedUserCookies(t)
	bob := s.app.login(t, "other@example.com", TestUserPassword)

	Scenario{
		Name:           "rejects seats outside the room",
		Method:         http.MethodPost,
		URL:            reservePath,
		Body:           strings.NewReader(`{"seats": ["A1", "C9"]}`),
		Cookies:        alice,
		ExpectedStatus: http.StatusBadRequest,
		AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
			var resp api.SeatErrorResponse
			require.NoError(t, decodeBody(res, &resp))
			assert.Equal(t, api.INVALIDSEATLABEL, resp.Code)
			assert.Equal(t, []string{"C9"}, resp.Seats)
		},
	}.Run(t, s.app)

	var reservation api.ReservationResponse
	status := s.app.do(t, http.MethodPost, reservePath, `{"seats": ["A2", "A1", "A2"]}`, alice, &reservation)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, []string{"A1", "A2"}, reservation.Seats)
	assert.Equal(t, string(domain.ReservationStatusConfirmed), reservation.Status)
	assert.Equal(t, "60", reservation.TotalPrice.String())

	Scenario{
		Name:           "reports a sold out session to the next customer",
		Method:         http.MethodPost,
		URL:            reservePath,
		Body:           strings.NewReader(`{"seats": ["A1"]}`),
		Cookies:        bob,
		ExpectedStatus: http.StatusConflict,
		AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
			var resp api.SeatErrorResponse
			require.NoError(t, decodeBody(res, &resp))
			assert.Equal(t, api.SESSIONFULL, resp.Code)
			assert.Equal(t, []string{"A1"}, resp.Seats)
		},
	}.Run(t, s.app)

	var availability api.AvailabilityResponse
	status = s.app.do(t, http.MethodGet, availabilityPath, "", nil, &availability)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, availability.AvailableSeats)
	assert.ElementsMatch(t, []string{"A1", "A2"}, availability.OccupiedSeats)

	Scenario{
		Name:             "hides the reservation from other customers",
		Method:           http.MethodGet,
		URL:              "/reservations/" + reservation.Id,
		Cookies:          bob,
		ExpectedStatus:   http.StatusForbidden,
		ExpectedResponse: `{"message": "You do not have permission to access this resource"}`,
	}.Run(t, s.app)

	Scenario{
		Name:           "forbids cancelling another customer's reservation",
		Method:         http.MethodDelete,
		URL:            "/reservations/" + reservation.Id,
		Cookies:        bob,
		ExpectedStatus: http.StatusForbidden,
	}.Run(t, s.app)

	var cancelled api.ReservationResponse
	status = s.app.do(t, http.MethodDelete, "/reservations/"+reservation.Id, "", alice, &cancelled)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, string(domain.ReservationStatusCancelled), cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	Scenario{
		Name:           "treats a repeated cancel as a no-op",
		Method:         http.MethodDelete,
		URL:            "/reservations/" + reservation.Id,
		Cookies:        alice,
		ExpectedStatus: http.StatusOK,
		AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
			var resp api.ReservationResponse
			require.NoError(t, decodeBody(res, &resp))
			assert.Equal(t, string(domain.ReservationStatusCancelled), resp.Status)
		},
	}.Run(t, s.app)

	status = s.app.do(t, http.MethodGet, availabilityPath, "", nil, &availability)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, availability.AvailableSeats)
	assert.Empty(t, availability.OccupiedSeats)

	var rebooked api.ReservationResponse
	status = s.app.do(t, http.MethodPost, reservePath, `{"seats": ["A1"]}`, bob, &rebooked)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "30", rebooked.TotalPrice.String())

	var mine api.ReservationListResponse
	status = s.app.do(t, http.MethodGet, "/users/me/reservations", "", alice, &mine)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, mine.Reservations, 1)
	assert.Equal(t, reservation.Id, mine.Reservations[0].Id)

	require.Eventually(t, func() bool {
		return len(s.app.Publisher.Events(queue.ReservationConfirmedQueue)) == 2 &&
			len(s.app.Publisher.Events(queue.ReservationCancelledQueue)) == 1
	}, 2*time.Second, 20*time.Millisecond)

	cancelledEvent := s.app.Publisher.Events(queue.ReservationCancelledQueue)[0]
	assert.Equal(t, reservation.Id, cancelledEvent.ReservationID)
	assert.Equal(t, []string{"A1", "A2"}, cancelledEvent.Seats)

	emails := s.app.Mailer.WaitForEmails(2, 2*time.Second)
	assert.Len(t, emails, 2)
}

func (s *ReservationTestSuite) TestConcurrentReservationsOfOneSeat() {
	t := s.T()

	const customers = 8

	session := insertTestSession(t, s.app.DB, 1, 3, TestSessionPrice)

	cookies := make([][]http.Cookie, customers)
	for i := range customers {
		email := fmt.Sprintf("customer%d@example.com", i)
		insertTestUser(t, s.app.DB, TestUserName, email, TestUserPassword, domain.RoleClient)
		cookies[i] = s.app.login(t, email, TestUserPassword)
	}

	statuses := make([]int, customers)

	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := range customers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			req, err := http.NewRequest(http.MethodPost,
				s.server.URL+"/sessions/"+session.ID+"/reservations",
				strings.NewReader(`{"seats": ["A2"]}`))
			if err != nil {
				return
			}
			req.Header.Set("Content-Type", "application/json")
			for j := range cookies[i] {
				req.AddCookie(&cookies[i][j])
			}

			res, err := s.server.Client().Do(req)
			if err != nil {
				return
			}
			defer res.Body.Close()

			statuses[i] = res.StatusCode
		}()
	}

	close(start)
	wg.Wait()

	created, conflicts := 0, 0
	for _, status := range statuses {
		switch status {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}

	assert.Equal(t, 1, created, "exactly one customer gets the seat")
	assert.Equal(t, customers-1, conflicts)

	var occupied int
	err := s.app.DB.QueryRow(t.Context(), `SELECT count(*)
		FROM reservation_seats rs
		JOIN reservations r ON r.id = rs.reservation_id
		WHERE r.session_id = $1 AND r.status = 'CONFIRMED'`, session.ID).Scan(&occupied)
	require.NoError(t, err)
	assert.Equal(t, 1, occupied)

	require.Eventually(t, func() bool {
		return len(s.app.Publisher.Events(queue.ReservationConfirmedQueue)) == 1
	}, 2*time.Second, 20*time.Millisecond)
	s.app.Mailer.WaitForEmails(1, 2*time.Second)
}

func (s *ReservationTestSuite) TestTicketIssueAndScan() {
	t := s.T()

	session := insertTestSession(t, s.app.DB, 2, 2, TestSessionPrice)

	insertTestUser(t, s.app.DB, TestUserName, TestUserEmail, TestUserPassword, domain.RoleClient)
	insertTestUser(t, s.app.DB, "Admin", TestAdminEmail, TestAdminPassword, domain.RoleAdmin)

	client := s.app.authenticatedUserCookies(t)
	admin := s.app.authenticatedAdminCookies(t)

	var reservation api.ReservationResponse
	status := s.app.do(t, http.MethodPost, "/sessions/"+session.ID+"/reservations", `{"seats": ["B1"]}`, client, &reservation)
	require.Equal(t, http.StatusCreated, status)

	var ticket api.TicketResponse
	status = s.app.do(t, http.MethodGet, "/reservations/"+reservation.Id+"/ticket", "", client, &ticket)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, ticket.Token)
	assert.NotEmpty(t, ticket.QrCode)

	scanBody := fmt.Sprintf(`{"token": %q}`, ticket.Token)

	Scenario{
		Name:           "forbids scanning as a client",
		Method:         http.MethodPost,
		URL:            "/tickets/scan",
		Body:           strings.NewReader(scanBody),
		Cookies:        client,
		ExpectedStatus: http.StatusForbidden,
	}.Run(t, s.app)

	scenarios := []Scenario{
		{
			Name:           "admits the ticket once",
			Method:         http.MethodPost,
			URL:            "/tickets/scan",
			Body:           strings.NewReader(scanBody),
			Cookies:        admin,
			ExpectedStatus: http.StatusOK,
			ExpectedResponse: fmt.Sprintf(`{
				"reservationId": %q,
				"valid": true,
				"sessionId": %q,
				"seats": ["B1"]
			}`, reservation.Id, session.ID),
		},
		{
			Name:           "rejects the second scan",
			Method:         http.MethodPost,
			URL:            "/tickets/scan",
			Body:           strings.NewReader(scanBody),
			Cookies:        admin,
			ExpectedStatus: http.StatusOK,
			ExpectedResponse: fmt.Sprintf(`{
				"reservationId": %q,
				"valid": false,
				"reason": "ALREADY_SCANNED",
				"sessionId": %q,
				"seats": ["B1"]
			}`, reservation.Id, session.ID),
		},
		{
			Name:             "rejects a forged token",
			Method:           http.MethodPost,
			URL:              "/tickets/scan",
			Body:             strings.NewReader(`{"token": "not.a.token"}`),
			Cookies:          admin,
			ExpectedStatus:   http.StatusOK,
			ExpectedResponse: `{"reservationId": "", "valid": false, "reason": "INVALID_TICKET"}`,
		},
		{
			Name:           "refuses to cancel a scanned reservation",
			Method:         http.MethodDelete,
			URL:            "/reservations/" + reservation.Id,
			Cookies:        client,
			ExpectedStatus: http.StatusConflict,
		},
	}

	for _, scenario := range scenarios {
		scenario.Run(t, s.app)
	}
}
