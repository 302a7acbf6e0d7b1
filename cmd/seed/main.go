package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/interviewhub/interviewhub-api/config"
	"github.com/interviewhub/interviewhub-api/internal/domain/entity"
	pginfra "github.com/interviewhub/interviewhub-api/internal/infrastructure/postgres"
	"github.com/interviewhub/interviewhub-api/pkg/helpers"
)

// Seeds the initial admin account. Safe to run repeatedly; it is a no-op
// when the admin email already exists.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	username := os.Getenv("ADMIN_USERNAME")
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || email == "" || password == "" {
		log.Fatal("ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repo := pginfra.NewAccountRepository(pool)

	if existing, err := repo.FindByEmail(ctx, email); err == nil {
		logger.Infof("admin account %s already exists (id=%s), nothing to do", existing.Email, existing.ID)
		return
	} else if !errors.Is(err, pginfra.ErrNotFound) {
		log.Fatalf("failed to check for existing admin: %v", err)
	}

	hasher := helpers.NewPasswordHasher(cfg.BcryptCost)
	hash, err := hasher.Hash(password)
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}

	admin := &entity.Account{
		Username:        username,
		Email:           email,
		PasswordHash:    hash,
		IsAdmin:         true,
		IsEmailVerified: true,
	}
	if err := repo.Create(ctx, admin); err != nil {
		log.Fatalf("failed to create admin account: %v", err)
	}

	logger.Infof("admin account created: %s (id=%s)", admin.Email, admin.ID)
}
