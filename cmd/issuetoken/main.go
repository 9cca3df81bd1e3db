package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"company-invites/internal/config"
	"company-invites/internal/logger"
	"company-invites/internal/security"
)

// issuetoken prints a caller token for deployments running the jwt identity
// provider. The subject must be the id of a users row with a company.
func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	userID := flag.String("user", "", "User id to put in the token subject")
	email := flag.String("email", "", "Email claim")
	ttl := flag.Duration("ttl", time.Hour, "Token lifetime")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// stdout carries only the token
	logger.SetDefault(logger.New(os.Stderr, cfg.Log.Level, cfg.Log.Format))

	token, err := issueToken(cfg, *userID, *email, *ttl)
	if err != nil {
		logger.Error("Failed to issue token", "error", err)
		log.Fatalf("Failed to issue token: %v", err)
	}
	logger.Info("Issued access token", "user_id", *userID, "ttl", *ttl)
	fmt.Println(token)
}

func issueToken(cfg *config.Config, userID, email string, ttl time.Duration) (string, error) {
	if cfg.Identity.Provider != config.IdentityJWT {
		return "", fmt.Errorf("identity provider is %q, tokens can only be issued for %q", cfg.Identity.Provider, config.IdentityJWT)
	}
	if userID == "" {
		return "", errors.New("user id is required")
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be positive")
	}
	return security.NewTokenManager(cfg.Identity.JWTSecret).GenerateAccessToken(userID, email, ttl)
}
