package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/collabhub/projects-backend/api/controllers"
	"github.com/collabhub/projects-backend/api/routes"
	"github.com/collabhub/projects-backend/internal/directory"
	"github.com/collabhub/projects-backend/internal/notifications"
	"github.com/collabhub/projects-backend/pkg/config"
	"github.com/collabhub/projects-backend/pkg/db"
	"github.com/collabhub/projects-backend/pkg/logger"
	"github.com/collabhub/projects-backend/pkg/mailer"
	"github.com/collabhub/projects-backend/pkg/metrics"
	"github.com/collabhub/projects-backend/pkg/migrate"
	"github.com/collabhub/projects-backend/pkg/redis"
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	dispatchMetrics := metrics.NewDispatchMetrics(registry)

	composer, err := notifications.NewComposer(cfg.Notifications.Languages)
	if err != nil {
		logg.Error(context.Background(), "failed to build message composer", err)
		os.Exit(1)
	}

	smtpMailer, err := mailer.NewSMTP(cfg.SMTP)
	if err != nil {
		logg.Error(context.Background(), "failed to build mailer", err)
		os.Exit(1)
	}

	dirRepo := directory.NewRepo(dbClient)
	store := notifications.NewRepository(dbClient)
	dispatcher := notifications.NewDispatcher(smtpMailer, composer, dispatchMetrics, logg)
	service := notifications.NewService(
		store,
		dirRepo,
		notifications.NewResolver(dirRepo),
		composer,
		dispatcher,
		dirRepo,
		logg,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:               cfg,
			Logger:               logg,
			NotificationsService: service,
			Pingers: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
			MetricsRegistry: registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
