package integration_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/api"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/app"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/ledger"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/mailer"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/mocks"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/repository"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/ticket"
	appvalidator "github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/validator"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TestApp struct {
	App       *app.Application
	DB        *pgxpool.Pool
	Mailer    *mailer.MockMailer
	Publisher *mocks.MockPublisher
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	validator := appvalidator.NewValidator()
	mailer := mailer.NewMockMailer()
	publisher := mocks.NewMockPublisher()

	doc, err := api.Spec(context.Background())
	if err != nil {
		return nil, err
	}

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	sessionManager := app.NewSessionManager(redisClient)

	userRepo := repository.NewPostgresUserRepository(db)
	movieRepo := repository.NewPostgresMovieRepository(db)
	roomRepo := repository.NewPostgresRoomRepository(db)
	sessionRepo := repository.NewPostgresSessionRepository(db)
	reservationRepo := repository.NewPostgresReservationRepository(db)

	application := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		validator,
		mailer,
		publisher,
		sessionManager,
		ticket.NewIssuer(cfg.Ticket.Secret, cfg.Ticket.Issuer, cfg.Ticket.TTL),
		doc,
		ledger.New(sessionRepo, reservationRepo, logger),
		userRepo,
		movieRepo,
		roomRepo,
		sessionRepo,
		reservationRepo,
	)

	return &TestApp{
		App:       application,
		DB:        db,
		Mailer:    mailer,
		Publisher: publisher,
	}, nil
}
