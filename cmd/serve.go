package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/pool-tournament-manager/config"
	"github.com/Dosada05/pool-tournament-manager/db"
	"github.com/Dosada05/pool-tournament-manager/events"
	"github.com/Dosada05/pool-tournament-manager/handlers"
	"github.com/Dosada05/pool-tournament-manager/metrics"
	"github.com/Dosada05/pool-tournament-manager/repositories"
	"github.com/Dosada05/pool-tournament-manager/routes"
	"github.com/Dosada05/pool-tournament-manager/services"
	"github.com/Dosada05/pool-tournament-manager/storage"
	"github.com/Dosada05/pool-tournament-manager/utils"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not apply pending migrations on startup")

	return cmd
}

func serve(ctx context.Context, skipMigrations bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		return err
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if !skipMigrations {
		applied, err := db.MigrateUp(dbConn)
		if err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			return err
		}
		logger.Info("migrations applied", slog.Int("count", applied))
	}

	clock := utils.SystemClock()

	pictures, err := storage.NewS3ProfilePictureStore(ctx, cfg.Storage, clock)
	if err != nil {
		logger.Error("failed to initialize profile picture storage", slog.Any("error", err))
		return err
	}
	logger.Info("profile picture storage initialized", slog.String("bucket", cfg.Storage.BucketName))

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	wsHub := events.NewHub(logger)
	go wsHub.Run(hubCtx)
	logger.Info("WebSocket Hub started")

	// Репозитории и сервисы
	store := repositories.NewPostgresStore(dbConn)
	transactor := repositories.NewPostgresTransactor(dbConn)
	appMetrics := metrics.New()

	ranking := services.RankingPolicy{WinPoints: cfg.RankingWinPoints, LossPoints: cfg.RankingLossPoints}
	matchService := services.NewMatchService(store, transactor, clock, ranking, wsHub, appMetrics, logger)
	playerService := services.NewPlayerService(store.Players, pictures, logger)
	tournamentService := services.NewTournamentService(store.Tournaments, logger)
	logger.Info("Services initialized")

	router := routes.NewRouter(routes.RouterConfig{
		Logger:            logger,
		Metrics:           appMetrics,
		AllowedOrigins:    cfg.CORSAllowedHosts,
		CommandTimeout:    cfg.CommandTimeout,
		MatchHandler:      handlers.NewMatchHandler(matchService, logger),
		PlayerHandler:     handlers.NewPlayerHandler(playerService, logger),
		TournamentHandler: handlers.NewTournamentHandler(tournamentService, matchService, logger),
		WebSocketHandler:  handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedHosts, logger),
		HealthHandler:     handlers.NewHealthHandler(dbConn, pictures, logger),
	})
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.CommandTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			return err
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return err
		}
		logger.Info("server shutdown complete")
	}

	stopHub()
	logger.Info("application exited")
	return nil
}
