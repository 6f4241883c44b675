package app

import (
	"context"
	"database/sql"
	"log/slog"

	"stationmap/internal/config"
	"stationmap/internal/db"
	httpapi "stationmap/internal/httpapi"
	"stationmap/internal/migrate"
	"stationmap/internal/modules/stations"
)

// RunStationsAPI migrates the database and serves the station service until
// ctx is cancelled.
func RunStationsAPI(ctx context.Context, cfg config.StationsAPIConfig, logger *slog.Logger) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"dbDriver", cfg.Driver,
		"sqlitePath", cfg.Path,
		"dbMaxOpenConns", cfg.MaxOpenConns,
		"dbMaxIdleConns", cfg.MaxIdleConns,
		"dbConnMaxLifetime", cfg.ConnMaxLifetime,
		"dbLogSQL", cfg.LogSQL,
	)

	dbConn, err := openMigrated(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()

	mux := httpapi.NewMux(dbConn.PingContext)
	stations.RegisterFeature(mux, dbConn)

	srv := httpapi.NewServer(cfg.HTTPAddr, mux, logger)
	return serve(ctx, srv, logger, nil)
}

// Migrate applies pending migrations and exits.
func Migrate(ctx context.Context, cfg config.StationsAPIConfig, logger *slog.Logger) error {
	dbConn, err := openMigrated(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return db.Close(dbConn)
}

func openMigrated(ctx context.Context, cfg config.StationsAPIConfig, logger *slog.Logger) (*sql.DB, error) {
	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	n, err := migrate.Run(ctx, dbConn, logger)
	if err != nil {
		_ = db.Close(dbConn)
		return nil, err
	}
	logger.Info("database ready", "migrations_applied", n)
	return dbConn, nil
}
