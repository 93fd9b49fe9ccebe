package app

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-deposit-api/config"
	"go-deposit-api/db"
	"go-deposit-api/handler"
	"go-deposit-api/logger"
	"go-deposit-api/observability"
	"go-deposit-api/repository"
	"go-deposit-api/router"
	"go-deposit-api/service"
	"go-deposit-api/session"

	"github.com/redis/go-redis/v9"
)

// App holds the wired layers of the service.
type App struct {
	DB          *sql.DB
	Router      http.Handler
	Credentials *service.CredentialService
}

// NewApp wires repositories, services and handlers on top of an open
// database. redisClient may be nil, in which case sessions live only in
// the signed cookie.
func NewApp(cfg *config.Config, database *sql.DB, redisClient *redis.Client) (*App, error) {
	accountRepo := repository.NewAccountRepository(database)
	credentialService := service.NewCredentialService(accountRepo, cfg.Auth.BcryptCost)
	transferService := service.NewTransferService(database, accountRepo, cfg.Transfer.DestinationAccount)

	opts := session.Options{
		Secret:     cfg.Session.SecretKey,
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	}
	if redisClient != nil {
		opts.Store = session.NewRedisStore(redisClient)
	}
	sessions := session.NewManager(opts)

	pageHandler, err := handler.NewPageHandler(cfg.Server.TemplateDir, cfg.Server.PublicDir, cfg.Transfer.DestinationAccount)
	if err != nil {
		return nil, err
	}

	r := router.NewRouter(
		handler.NewAccountHandler(credentialService, sessions),
		handler.NewDepositHandler(transferService),
		pageHandler,
		sessions.LoadSession,
	)

	return &App{DB: database, Router: r, Credentials: credentialService}, nil
}

// Seed creates the configured bootstrap account if it does not exist yet.
func (a *App) Seed(ctx context.Context, cfg *config.Config) error {
	if cfg.Seed.Username == "" {
		return nil
	}
	_, err := a.Credentials.Seed(ctx, cfg.Seed.Username, cfg.Seed.Password, cfg.Seed.Balance)
	return err
}

func Run() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Error loading configuration: %v", err)
	}
	logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	logger.Log.Info("Configuration loaded successfully")

	shutdownTracing, err := observability.InitTracing(context.Background(), cfg.Tracing.Endpoint, cfg.Tracing.ServiceName)
	if err != nil {
		logger.Log.Fatalf("Error initializing tracing: %v", err)
	}

	database, err := db.Connect(cfg)
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		logger.Log.Fatalf("Error running migrations: %v", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = db.ConnectRedis(cfg)
		if err != nil {
			logger.Log.Fatalf("Error connecting to redis: %v", err)
		}
		defer redisClient.Close()
	}

	application, err := NewApp(cfg, database, redisClient)
	if err != nil {
		logger.Log.Fatalf("Error building application: %v", err)
	}

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	err = application.Seed(seedCtx, cfg)
	cancelSeed()
	if err != nil {
		logger.Log.Fatalf("Error seeding accounts: %v", err)
	}

	port := cfg.Server.Port
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Errorf("Server forced to shutdown: %v", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Log.WithError(err).Warn("Failed to flush traces")
	}

	logger.Log.Info("Server exited properly")
}
