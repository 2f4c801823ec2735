package repository

import (
	"context"
	"log/slog"

	"github.com/tymoteuszmilek/Invoice-Automation/internal/common"
)

// InitDatabase opens the configured database, or a private in-memory SQLite
// database when inmem is set, and brings its schema up to date.
func InitDatabase(ctx context.Context, cfg common.DatabaseConfig, inmem bool, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dbCfg := Config{
		Driver:           cfg.Driver,
		DSN:              cfg.DSN,
		MaxConns:         cfg.MaxConns,
		MinConns:         cfg.MinConns,
		MaxConnLifetime:  cfg.MaxConnLifetime,
		MaxConnIdleTime:  cfg.MaxConnIdleTime,
		DialTimeout:      cfg.DialTimeout,
		StatementTimeout: cfg.StatementTimeout,
	}
	if inmem {
		dbCfg = Config{Driver: DriverSQLite, DSN: ":memory:"}
	}

	db, err := Open(ctx, dbCfg, logger)
	if err != nil {
		return nil, common.WrapError(err, "open database")
	}
	if err := Migrate(db); err != nil {
		db.Close()
		logger.Error("failed to migrate database", "error", err)
		return nil, common.WrapError(err, "migrate database")
	}
	logger.Info("database ready", "driver", db.Dialect(), "inmem", inmem)
	return db, nil
}
