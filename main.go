package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/genailabs-inc/usecase-portal/pkg/auth"
	"github.com/genailabs-inc/usecase-portal/pkg/config"
	"github.com/genailabs-inc/usecase-portal/pkg/database"
	"github.com/genailabs-inc/usecase-portal/pkg/handlers"
	"github.com/genailabs-inc/usecase-portal/pkg/logging"
	"github.com/genailabs-inc/usecase-portal/pkg/middleware"
	"github.com/genailabs-inc/usecase-portal/pkg/repositories"
	"github.com/genailabs-inc/usecase-portal/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("version", cfg.Version))

	users, usecases, tools, cleanup, err := buildRepositories(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer cleanup()

	usecaseService := services.NewUsecaseService(usecases, tools, logger)
	toolService := services.NewToolService(tools, logger)
	statsService := services.NewStatsService(usecases, logger)
	authService := services.NewAuthService(users, cfg.Auth.TokenSecret,
		time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute, logger)

	store := auth.NewSessionStore(cfg.Auth.SessionKey, cfg.Env == "production")
	authMiddleware := auth.NewMiddleware(users, store, cfg.Auth.TokenSecret, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAuthHandler(authService, store, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewUsecaseHandler(usecaseService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewToolHandler(toolService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewStatsHandler(statsService, logger).RegisterRoutes(mux)

	// Serve the built SPA; API routes above take precedence.
	mux.Handle("/", http.FileServer(http.Dir("./ui/dist")))

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting usecase-portal",
			zap.String("addr", addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Fatal("Server failed", zap.Error(err))
	case sig := <-quit:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
}

// buildRepositories wires the storage layer for the configured driver and
// returns a cleanup function closing whatever it opened.
func buildRepositories(cfg *config.Config, logger *zap.Logger) (
	repositories.UserRepository,
	repositories.UsecaseRepository,
	repositories.CustomToolRepository,
	func(),
	error,
) {
	if cfg.Storage.Driver == config.DriverPostgres {
		connString := cfg.Storage.Database.ConnectionString()
		logger.Info("Connecting to database",
			zap.String("dsn", logging.SanitizeConnectionString(connString)))

		sqlDB, err := sql.Open("pgx", connString)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if err := database.RunMigrations(sqlDB, cfg.Storage.MigrationsPath, logger); err != nil {
			_ = sqlDB.Close()
			return nil, nil, nil, nil, err
		}
		_ = sqlDB.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err := database.NewConnection(ctx, connString, cfg.Storage.Database.MaxConnections)
		if err != nil {
			return nil, nil, nil, nil, err
		}

		return repositories.NewPostgresUserRepository(db),
			repositories.NewPostgresUsecaseRepository(db),
			repositories.NewPostgresCustomToolRepository(db),
			db.Close,
			nil
	}

	users, err := repositories.NewJSONFileUserRepository(cfg.Auth.UsersFile)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return users,
		repositories.NewJSONFileUsecaseRepository(cfg.Storage.UsecasesFile),
		repositories.NewJSONFileCustomToolRepository(cfg.Storage.ToolsFile),
		func() {},
		nil
}
