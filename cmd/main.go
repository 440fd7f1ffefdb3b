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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/Dosada05/swiss-pairings/brackets"
	"github.com/Dosada05/swiss-pairings/config"
	"github.com/Dosada05/swiss-pairings/db"
	"github.com/Dosada05/swiss-pairings/handlers"
	"github.com/Dosada05/swiss-pairings/middleware"
	"github.com/Dosada05/swiss-pairings/repositories"
	api "github.com/Dosada05/swiss-pairings/routes"
	"github.com/Dosada05/swiss-pairings/services"
	"github.com/Dosada05/swiss-pairings/storage"
)

const shutdownTimeout = 15 * time.Second

// @title			Swiss Pairings API
// @version		1.0
// @description	Swiss-system tournaments: pairing, results, standings and PageRank ratings.
// @BasePath		/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("application stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(logger *slog.Logger) error {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.Int("wins_needed", cfg.WinsNeeded),
		slog.Float64("damping", cfg.PageRankDamping),
		slog.Bool("archive", cfg.ArchiveEnabled()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	engine := brackets.NewEngine(brackets.EngineConfig{
		WinsNeeded: cfg.WinsNeeded,
		Damping:    cfg.PageRankDamping,
	}, logger)

	if err := db.Migrate(ctx, dbConn, engine.Config().Bye.Name); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	logger.Info("database schema is up to date")

	// Архив завершённых турниров в Cloudflare R2, если хранилище настроено
	var archiver *services.Archiver
	if cfg.ArchiveEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("initializing Cloudflare R2 uploader: %w", err)
		}
		archiver = services.NewArchiver(uploader)
		logger.Info("Cloudflare R2 archive initialized", slog.String("bucket", cfg.R2BucketName))
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	transactor := repositories.NewPostgresTransactor(dbConn, logger)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	competitorRepo := repositories.NewPostgresCompetitorRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	duelRepo := repositories.NewPostgresDuelRepository(dbConn)

	// Инициализация сервисов
	tournamentService := services.NewTournamentService(
		transactor,
		tournamentRepo,
		competitorRepo,
		roundRepo,
		duelRepo,
		engine,
		wsHub,
		archiver,
		logger,
	)
	competitorService := services.NewCompetitorService(transactor, tournamentRepo, competitorRepo, duelRepo, engine, logger)

	// Инициализация обработчиков HTTP
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	competitorHandler := handlers.NewCompetitorHandler(competitorService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentService, logger)
	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey, logger)

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, authenticator, cfg.CORSAllowedOrigins, tournamentHandler, competitorHandler, webSocketHandler)

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			// If shutdown fails, force close.
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
	}
	return nil
}
