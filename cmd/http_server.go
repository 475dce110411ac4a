package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/payflowhq/payflow/internal"
	"github.com/payflowhq/payflow/internal/auth"
	authPostgres "github.com/payflowhq/payflow/internal/auth/postgres"
	"github.com/payflowhq/payflow/internal/core/events"
	"github.com/payflowhq/payflow/internal/enrichment"
	"github.com/payflowhq/payflow/internal/event"
	eventPostgres "github.com/payflowhq/payflow/internal/event/postgres"
	"github.com/payflowhq/payflow/internal/notification"
	notificationPostgres "github.com/payflowhq/payflow/internal/notification/postgres"
	"github.com/payflowhq/payflow/internal/report"
	"github.com/payflowhq/payflow/internal/request"
	requestPostgres "github.com/payflowhq/payflow/internal/request/postgres"
	"github.com/payflowhq/payflow/internal/transport/rest"
	"github.com/payflowhq/payflow/internal/user"
	userPostgres "github.com/payflowhq/payflow/internal/user/postgres"
	"github.com/payflowhq/payflow/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config    *internal.Config
	DB        *sqlx.DB
	Router    *chi.Mux
	Handlers  rest.Handlers
	RBAC      *auth.RBACAuthorization
	Extractor *enrichment.GeminiExtractor
	Logger    *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Handlers, deps.RBAC, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if deps.Extractor != nil {
			if err := deps.Extractor.Close(); err != nil {
				slog.Error("Gemini client close error", "error", err)
			}
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	appLogger := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	eventBus := events.NewEventBus(appLogger)

	// Repositories
	authRepo := authPostgres.NewRepository(gormDB)
	userRepo := userPostgres.NewRepository(gormDB)
	eventRepo := eventPostgres.NewRepository(gormDB)
	requestRepo := requestPostgres.NewRequestRepository(gormDB)
	notificationRepo := notificationPostgres.NewNotificationRepository(gormDB)

	// Services
	tokenGenerator := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGenerator)
	userService := user.NewService(userRepo, config.Security.BCryptCost)
	eventService := event.NewService(eventRepo, requestRepo)
	requestService := request.NewService(requestRepo, eventService, eventBus, appLogger)
	notificationService := notification.NewService(notificationRepo)
	reportService := report.NewService(requestRepo)

	// Notifications fan out from lifecycle events
	notificationEvents := notification.NewEventHandler(notificationService, userRepo, appLogger)
	notificationEvents.RegisterEventHandlers(eventBus)

	var extractor *enrichment.GeminiExtractor
	if config.Gemini.Enabled() {
		extractor, err = enrichment.NewGeminiExtractor(config.Gemini.APIKey, config.Gemini.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini extractor: %w", err)
		}
	} else {
		appLogger.Info("AI enrichment disabled, no api key configured")
	}
	var enrichmentService *enrichment.Service
	if extractor != nil {
		enrichmentService = enrichment.NewService(extractor, appLogger)
	} else {
		enrichmentService = enrichment.NewService(nil, appLogger)
	}

	handlers := rest.Handlers{
		Auth:         auth.NewHandler(authService),
		User:         user.NewHandler(userService),
		Event:        event.NewHandler(eventService),
		Request:      request.NewHandler(requestService),
		Supplier:     request.NewSupplierHandler(requestService),
		Notification: notification.NewHandler(notificationService),
		Report:       report.NewHandler(reportService),
		Enrichment:   enrichment.NewHandler(enrichmentService, requestService),
	}

	return &Dependencies{
		Config:    config,
		DB:        db,
		Router:    chi.NewRouter(),
		Handlers:  handlers,
		RBAC:      auth.NewRBACAuthorization(appLogger),
		Extractor: extractor,
		Logger:    appLogger,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers the ORM over the already established connection pool.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
}
