package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcapi "company-invites/internal/api/grpc"
	httpapi "company-invites/internal/api/http"
	"company-invites/internal/config"
	"company-invites/internal/email"
	"company-invites/internal/identity"
	"company-invites/internal/logger"
	"company-invites/internal/repository"
	"company-invites/internal/repository/postgres"
	"company-invites/internal/security"
	"company-invites/internal/service"
	"company-invites/internal/utils"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration; missing required values stop the process here
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting company invites service...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "health_port", cfg.Server.HealthPort)
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Invite configuration",
		"identity_provider", cfg.Identity.Provider,
		"include_invite_link", cfg.Invite.IncludeInviteLink,
		"status_policy", cfg.HTTP.StatusPolicy,
		"call_timeout", cfg.CallTimeout(),
		"max_concurrency", cfg.Invite.MaxConcurrency,
	)

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	idp, err := newIdentityProvider(ctx, cfg, store)
	if err != nil {
		logger.Error("Failed to initialize identity provider", "provider", cfg.Identity.Provider, "error", err)
		log.Fatalf("Failed to initialize identity provider: %v", err)
	}

	var audit repository.InviteAuditRepository
	if cfg.Invite.AuditEnabled {
		audit = store.InviteAuditRepository
	}

	inviteSvc := service.NewInviteService(
		idp,
		store.UserRepository,
		audit,
		email.NewSendGridSender(cfg.Email.SendGridAPIKey, cfg.Email.FromAddress, cfg.Email.FromName),
		email.NewInviteComposer(cfg.Invite.Subject),
		utils.NewPasswordGenerator(nil),
		service.InviteOptions{
			PasswordLength: cfg.Invite.PasswordLength,
			Batch: service.BatchOptions{
				CallTimeout:    cfg.CallTimeout(),
				MaxConcurrency: cfg.Invite.MaxConcurrency,
			},
		},
	)

	inviteHandler := httpapi.NewInviteHandler(inviteSvc, httpapi.InviteOptions{
		IncludeInviteLink: cfg.Invite.IncludeInviteLink,
		StatusPolicy:      cfg.HTTP.StatusPolicy,
		ResponseEnvelope:  cfg.HTTP.ResponseEnvelope,
	})

	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           httpapi.NewRouter(inviteHandler, store.DB()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var healthServer *grpcapi.HealthServer
	if cfg.Server.HealthPort > 0 {
		healthServer = grpcapi.NewHealthServer(store.DB(), 15*time.Second)
		lis, err := net.Listen("tcp", cfg.GetHealthAddress())
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", cfg.GetHealthAddress())
			log.Fatalf("Failed to listen: %v", err)
		}
		go healthServer.Watch(ctx)
		go func() {
			logger.Info("gRPC health server listening", "address", cfg.GetHealthAddress())
			if err := healthServer.Server().Serve(lis); err != nil {
				logger.Error("gRPC health server error", "error", err)
			}
		}()
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if healthServer != nil {
		healthServer.Shutdown()
	}
	logger.Info("Server stopped")
}

func newIdentityProvider(ctx context.Context, cfg *config.Config, store *postgres.Store) (service.IdentityProvider, error) {
	switch cfg.Identity.Provider {
	case config.IdentityJWT:
		return identity.NewLocalProvider(security.NewTokenManager(cfg.Identity.JWTSecret), store.AccountRepository), nil
	default:
		client, err := identity.NewFirebaseAuthClient(ctx, cfg.Identity.ProjectID, cfg.Identity.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return identity.NewFirebaseProvider(client, store.UserRepository), nil
	}
}
