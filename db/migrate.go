package db

import (
	"database/sql"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const (
	readinessAttempts = 10
	readinessInterval = time.Second
)

// WaitForPostgres pings the database on a fixed interval up to a bounded
// attempt count. Exhausting the attempts is a warning, not a fatal error:
// startup proceeds degraded since the schema may already exist.
func WaitForPostgres(url string) bool {
	conn, err := sql.Open("postgres", url)
	if err != nil {
		logger.Warn().Err(err).Msg("could not open postgres connection for readiness check")
		return false
	}
	defer conn.Close()

	for i := 1; i <= readinessAttempts; i++ {
		if err = conn.Ping(); err == nil {
			return true
		}
		logger.Warn().Err(err).Msgf("postgres not ready (attempt %d/%d)", i, readinessAttempts)
		if i < readinessAttempts {
			time.Sleep(readinessInterval)
		}
	}

	logger.Warn().Msg("postgres readiness check exhausted, continuing startup")
	return false
}

// RunMigrations applies the file-based migrations under db/migrations.
// Failures are logged as warnings rather than aborting startup.
func RunMigrations(url string) {
	conn, err := sql.Open("postgres", url)
	if err != nil {
		logger.Warn().Err(err).Msg("could not connect to postgres for migrations")
		return
	}
	defer conn.Close()

	driver, err := postgres.WithInstance(conn, &postgres.Config{})
	if err != nil {
		logger.Warn().Err(err).Msg("could not start postgres migration driver")
		return
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://db/migrations",
		"postgres", driver,
	)
	if err != nil {
		logger.Warn().Err(err).Msg("migrations failed to start")
		return
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		logger.Warn().Err(err).Msg("could not run up migrations")
		return
	}

	logger.Info().Msg("migrations applied")
}
