package integration_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	pgxstd "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"
)

const (
	dbName         = "cinema"
	dbUser         = "test_user"
	dbPassword     = "test_password"
	dbImageName    = "postgres:17-alpine"
	cacheImageName = "redis:7"
	migrationsURL  = "file://../../migrations"
)

// infra is the throwaway backing stack of one suite: a migrated Postgres and
// an empty Redis.
type infra struct {
	postgres  *postgres.PostgresContainer
	redis     *tcredis.RedisContainer
	DSN       string
	RedisAddr string
}

// startInfra boots both containers concurrently and applies the migrations.
// Whatever did start is torn down again when any step fails.
func startInfra(ctx context.Context) (*infra, error) {
	stack := &infra{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return stack.startPostgres(gctx) })
	g.Go(func() error { return stack.startRedis(gctx) })

	if err := g.Wait(); err != nil {
		return nil, errors.Join(err, stack.Terminate())
	}

	if err := migrateUp(stack.DSN); err != nil {
		return nil, errors.Join(err, stack.Terminate())
	}

	return stack, nil
}

func (i *infra) startPostgres(ctx context.Context) error {
	container, err := postgres.Run(ctx, dbImageName,
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
					return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, host, port.Port(), dbName)
				}),
			).WithDeadline(60*time.Second),
		),
	)
	if container != nil {
		i.postgres = container
	}
	if err != nil {
		return fmt.Errorf("start postgres: %w", err)
	}

	i.DSN, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fmt.Errorf("postgres dsn: %w", err)
	}

	return nil
}

func (i *infra) startRedis(ctx context.Context) error {
	container, err := tcredis.Run(ctx, cacheImageName)
	if container != nil {
		i.redis = container
	}
	if err != nil {
		return fmt.Errorf("start redis: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return fmt.Errorf("redis host: %w", err)
	}

	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		return fmt.Errorf("redis port: %w", err)
	}

	// go-redis takes a bare address, not the redis:// URL the module reports.
	i.RedisAddr = fmt.Sprintf("%s:%s", host, port.Port())

	return nil
}

func (i *infra) Terminate() error {
	var errs []error

	if i.postgres != nil {
		errs = append(errs, testcontainers.TerminateContainer(i.postgres))
	}
	if i.redis != nil {
		errs = append(errs, testcontainers.TerminateContainer(i.redis))
	}

	return errors.Join(errs...)
}

func migrateUp(dsn string) error {
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("parse dsn: %w", err)
	}

	db := pgxstd.OpenDB(*config)
	defer db.Close()

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(migrationsURL, "pgx", driver)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
