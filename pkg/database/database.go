package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"time"

	_ "github.com/lib/pq" // registers the "postgres" driver
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/circulation/pkg/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type key int

const ctxKey key = 0

// WithLogging enables query logging for every query run with the returned
// context, as long as the database was opened with DatabaseDebug.
func WithLogging(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey, true)
}

// LoggingEnabled reports whether ctx was returned by WithLogging.
func LoggingEnabled(ctx context.Context) bool {
	enabled, ok := ctx.Value(ctxKey).(bool)
	return ok && enabled
}

type logQueryHook struct {
	emit func(query string, data logger.Data)
}

func newLogQueryHook(log logger.Logger) *logQueryHook {
	return &logQueryHook{emit: func(query string, data logger.Data) {
		log.Debug(query, data)
	}}
}

func (*logQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (qh *logQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if !LoggingEnabled(ctx) {
		return
	}

	data := logger.Data{"duration_ms": time.Since(event.StartTime).Milliseconds()}
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		data["error"] = event.Err.Error()
	}
	qh.emit(event.Query, data)
}

// New opens the configured store and verifies it is reachable.
func New(cfg *config.Config) (*bun.DB, error) {
	var (
		db  *bun.DB
		err error
	)
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		db, err = openPostgres(cfg)
	default:
		db, err = openSQLite(cfg)
	}
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseDebug {
		db.AddQueryHook(newLogQueryHook(logger.NewWithLevel("debug")))
	}

	// The store may still be starting up (e.g. in docker-compose).
	for i := 0; i < cfg.DatabaseConnectRetryCount; i++ {
		_, err = db.Exec("SELECT 1")
		if err == nil {
			break
		}
		time.Sleep(cfg.DatabaseConnectRetryDelay)
	}
	if err != nil {
		_ = db.Close()
		return nil, errors.WithStack(err)
	}

	if cfg.DatabaseDriver == config.DriverPostgres {
		return db, nil
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, errors.Wrapf(err, "failed to run %q", pragma)
		}
	}
	if _, err := db.Exec("PRAGMA busy_timeout=?", cfg.DatabaseBusyTimeout.Milliseconds()); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to set busy_timeout")
	}

	return db, nil
}

func openSQLite(cfg *config.Config) (*bun.DB, error) {
	drv, ok := sqliteshim.Driver().(driver.DriverContext)
	if !ok {
		return nil, errors.New("sqlite driver does not support OpenConnector")
	}
	connector, err := drv.OpenConnector(cfg.DatabaseFilePath)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	sqldb := sql.OpenDB(newLockWaitConnector(connector, cfg.DatabaseMaxRetries))
	// A single connection serializes every write, so a read-check-write
	// transaction can never interleave with another one. It also keeps an
	// in-memory database alive for the lifetime of the pool.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func openPostgres(cfg *config.Config) (*bun.DB, error) {
	sqldb, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return bun.NewDB(sqldb, pgdialect.New()), nil
}
