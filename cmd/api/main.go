package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/frescamar/reefertrack-backend/api/routes"
	"github.com/frescamar/reefertrack-backend/internal/audit"
	"github.com/frescamar/reefertrack-backend/internal/catalogs"
	"github.com/frescamar/reefertrack-backend/internal/export"
	"github.com/frescamar/reefertrack-backend/internal/records"
	"github.com/frescamar/reefertrack-backend/internal/refs"
	"github.com/frescamar/reefertrack-backend/internal/uniqueness"
	"github.com/frescamar/reefertrack-backend/pkg/config"
	"github.com/frescamar/reefertrack-backend/pkg/db"
	"github.com/frescamar/reefertrack-backend/pkg/logger"
	"github.com/frescamar/reefertrack-backend/pkg/metrics"
	"github.com/frescamar/reefertrack-backend/pkg/migrate"
	"github.com/frescamar/reefertrack-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		logg.Error(context.Background(), "invalid reporting timezone", err)
		os.Exit(1)
	}

	deps, err := buildServices(dbClient, loc)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}
	deps.Cfg = cfg
	deps.Logger = logg
	deps.DB = dbClient
	deps.Redis = redisClient
	deps.Metrics = metrics.NewHTTPMetrics()
	deps.Loc = loc

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
		"tz":   cfg.Reporting.Timezone,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(deps),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := multierr.Append(server.Shutdown(shutdownCtx), <-errCh); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "shutdown incomplete", err)
			os.Exit(1)
		}
	}
}

func buildServices(dbClient *db.Client, loc *time.Location) (routes.Deps, error) {
	conn := dbClient.DB()

	trail, err := audit.NewService(audit.NewRepository(conn))
	if err != nil {
		return routes.Deps{}, err
	}
	catalogSvc, err := catalogs.NewService(catalogs.NewRepository(conn), dbClient, trail)
	if err != nil {
		return routes.Deps{}, err
	}
	refsSvc, err := refs.NewService(conn)
	if err != nil {
		return routes.Deps{}, err
	}
	ledger, err := uniqueness.NewService(uniqueness.NewRepository(conn))
	if err != nil {
		return routes.Deps{}, err
	}
	recordSvc, err := records.NewService(records.NewRepository(conn), ledger, trail, catalogSvc, refsSvc, dbClient, loc)
	if err != nil {
		return routes.Deps{}, err
	}
	exportSvc, err := export.NewService(recordSvc, loc)
	if err != nil {
		return routes.Deps{}, err
	}

	return routes.Deps{
		Records:  recordSvc,
		Catalogs: catalogSvc,
		Refs:     refsSvc,
		Audit:    trail,
		Export:   exportSvc,
	}, nil
}
