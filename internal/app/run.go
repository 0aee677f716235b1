package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"gorm.io/gorm"

	"surfsup-server/internal/config"
	db "surfsup-server/internal/db"
	httpapi "surfsup-server/internal/httpapi"
	climate "surfsup-server/internal/modules/climate"
	"surfsup-server/internal/modules/climate/repository"
	"surfsup-server/internal/modules/climate/service"
	climateviews "surfsup-server/internal/modules/climate/views"
)

const shutdownTimeout = 10 * time.Second

// Window derives the query window from config.
func Window(cfg config.Config) service.Window {
	return service.Window{ReferenceDate: cfg.ReferenceDate, LookbackDays: cfg.LookbackDays}
}

// OpenDataset opens the dataset, verifies its schema and logs a summary.
// The caller owns the returned handle and must release it with db.Close.
func OpenDataset(ctx context.Context, cfg config.Config, logger *slog.Logger) (*gorm.DB, error) {
	gdb, err := db.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := repository.VerifySchema(ctx, gdb); err != nil {
		_ = db.Close(gdb)
		return nil, err
	}

	summary, err := repository.NewRepository(gdb).GetSummary(ctx)
	if err != nil {
		_ = db.Close(gdb)
		return nil, err
	}
	logger.Info("dataset opened",
		"stations", summary.Stations,
		"measurements", summary.Measurements,
		"firstDate", summary.FirstDate,
		"lastDate", summary.LastDate,
	)

	ref := cfg.ReferenceDate.Format(config.DateLayout)
	if summary.LastDate != "" && (ref > summary.LastDate || ref < summary.FirstDate) {
		logger.Warn("reference date outside dataset range",
			"referenceDate", ref,
			"firstDate", summary.FirstDate,
			"lastDate", summary.LastDate,
		)
	}
	return gdb, nil
}

// NewHandler builds the full route table over an open dataset.
func NewHandler(gdb *gorm.DB, cfg config.Config, logger *slog.Logger) (*http.ServeMux, error) {
	if err := climateviews.LoadTemplates(); err != nil {
		return nil, err
	}
	mux := httpapi.NewMux(gdb, logger)
	climate.RegisterFeature(mux, gdb, Window(cfg), logger)
	return mux, nil
}

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	return run(ctx, cfg, logger, nil)
}

// run serves on ln when given, otherwise on cfg.HTTPAddr.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger, ln net.Listener) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"sqlitePath", cfg.SQLitePath,
		"sqliteDSNSet", cfg.SQLiteDSN != "",
		"sqliteMaxOpenConns", cfg.SQLiteMaxOpenConns,
		"sqliteMaxIdleConns", cfg.SQLiteMaxIdleConns,
		"sqliteConnMaxLifetime", cfg.SQLiteConnMaxLifetime,
		"referenceDate", cfg.ReferenceDate.Format(config.DateLayout),
		"lookbackDays", cfg.LookbackDays,
	)

	gdb, err := OpenDataset(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(gdb)
		if closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()

	mux, err := NewHandler(gdb, cfg, logger)
	if err != nil {
		return err
	}
	srv := httpapi.NewServer(cfg, mux, logger)

	errCh := make(chan error, 1)
	go func() {
		if ln != nil {
			logger.Info("http listening", "addr", ln.Addr().String())
			errCh <- srv.Serve(ln)
			return
		}
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
