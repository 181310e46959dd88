package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/api"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/ledger"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/mailer"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/queue"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/repository"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/ticket"
	appvalidator "github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/validator"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/vcs"
	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var (
	version = vcs.Version()
)

// SeatLedger is the reservation authority the handlers delegate to.
type SeatLedger interface {
	Availability(ctx context.Context, sessionID string) (*domain.Availability, error)
	ReserveSeats(ctx context.Context, sessionID, userID string, seats []string) (*domain.Reservation, error)
	CancelReservation(ctx context.Context, reservationID string, requester domain.Requester) (bool, error)
	ValidateTicket(ctx context.Context, reservationID string) (domain.TicketValidation, error)
}

type Application struct {
	config         Config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	mailer         mailer.Mailer
	publisher      queue.Publisher
	sessionManager *scs.SessionManager
	tickets        *ticket.Issuer
	openapi        *openapi3.T
	ledger         SeatLedger
	wg             sync.WaitGroup

	userRepo        domain.UserRepository
	movieRepo       domain.MovieRepository
	roomRepo        domain.RoomRepository
	sessionRepo     domain.SessionRepository
	reservationRepo domain.ReservationRepository
}

func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redis redis.UniversalClient,
	validator *validator.Validate,
	mailer mailer.Mailer,
	publisher queue.Publisher,
	sessionManager *scs.SessionManager,
	tickets *ticket.Issuer,
	openapi *openapi3.T,
	ledger SeatLedger,
	userRepo domain.UserRepository,
	movieRepo domain.MovieRepository,
	roomRepo domain.RoomRepository,
	sessionRepo domain.SessionRepository,
	reservationRepo domain.ReservationRepository,
) *Application {
	return &Application{
		config:          cfg,
		logger:          logger,
		db:              db,
		redis:           redis,
		validator:       validator,
		mailer:          mailer,
		publisher:       publisher,
		sessionManager:  sessionManager,
		tickets:         tickets,
		openapi:         openapi,
		ledger:          ledger,
		userRepo:        userRepo,
		movieRepo:       movieRepo,
		roomRepo:        roomRepo,
		sessionRepo:     sessionRepo,
		reservationRepo: reservationRepo,
	}
}

func Run() error {
	err := loadDotEnv()
	if err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, displayVersion, err := parseConfig(os.Args[1:])
	if err != nil {
		return err
	}

	if displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	textHandler := slog.NewTextHandler(os.Stdout, nil)
	logger := slog.New(textHandler)

	app := &Application{config: cfg, logger: logger}

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	if cfg.Otel.CollectorURL != "" {
		logger = slog.New(newFanoutHandler(textHandler, otelslog.NewHandler(serviceName)))
	}

	doc, err := api.Spec(context.Background())
	if err != nil {
		return err
	}

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	userRepo := repository.NewPostgresUserRepository(db)
	movieRepo := repository.NewPostgresMovieRepository(db)
	roomRepo := repository.NewPostgresRoomRepository(db)
	sessionRepo := repository.NewPostgresSessionRepository(db)
	reservationRepo := repository.NewPostgresReservationRepository(db)

	app = NewApp(
		cfg,
		logger,
		db,
		redisClient,
		appvalidator.NewValidator(),
		mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender),
		publisher,
		NewSessionManager(redisClient),
		ticket.NewIssuer(cfg.Ticket.Secret, cfg.Ticket.Issuer, cfg.Ticket.TTL),
		doc,
		ledger.New(sessionRepo, reservationRepo, logger),
		userRepo,
		movieRepo,
		roomRepo,
		sessionRepo,
		reservationRepo,
	)

	err = app.seedAdmin(context.Background())
	if err != nil {
		return err
	}

	return app.serve()
}

func newPublisher(cfg Config, logger *slog.Logger) (queue.Publisher, error) {
	if cfg.AMQP.URL == "" {
		logger.Info("AMQP URL not set, reservation events will not be published")
		return queue.NoopPublisher{}, nil
	}

	return queue.NewAMQPPublisher(cfg.AMQP.URL)
}

func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb))
	if err != nil {
		rdb.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// seedAdmin creates the configured admin account unless it already exists.
func (app *Application) seedAdmin(ctx context.Context) error {
	if app.config.Admin.Email == "" || app.config.Admin.Password == "" {
		return nil
	}

	_, err := app.userRepo.GetByEmail(ctx, app.config.Admin.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		return err
	}

	admin := domain.NewUser("Administrator", app.config.Admin.Email, domain.RoleAdmin)

	err = admin.Password.Set(app.config.Admin.Password)
	if err != nil {
		return err
	}

	err = app.userRepo.Create(ctx, admin)
	if err != nil && !errors.Is(err, domain.ErrUserAlreadyExists) {
		return err
	}

	app.logger.Info("admin account created", "email", admin.Email)

	return nil
}

func (app *Application) serve() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
			return
		}

		app.logger.Info("completing background tasks", "addr", srv.Addr)

		app.wg.Wait()
		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}
