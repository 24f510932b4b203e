// Command seedadmin provisions the bootstrap administrator account. The
// portal has no signup flow, so a fresh database needs one admin principal
// before anyone can log in.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
	"github.com/nitap-dev/mentor-portal-api/internal/repository"
	"github.com/nitap-dev/mentor-portal-api/pkg/config"
	"github.com/nitap-dev/mentor-portal-api/pkg/database"
)

func main() {
	var (
		email    string
		password string
		rotate   bool
	)

	flag.StringVar(&email, "email", "", "Admin email address")
	flag.StringVar(&password, "password", "", "Admin password (min 8 characters)")
	flag.BoolVar(&rotate, "rotate", false, "Reset the password if the account already exists")
	flag.Parse()

	if email == "" || len(password) < 8 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo := repository.NewPrincipalRepository(db)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	existing, err := repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != models.RoleAdmin {
			log.Fatalf("%s already exists with role %s", email, existing.Role)
		}
		if !rotate {
			log.Fatalf("%s already exists; pass -rotate to reset the password", email)
		}
		if err := repo.UpdatePassword(ctx, existing.ID, string(hash), time.Now().UTC()); err != nil {
			log.Fatalf("failed to rotate password: %v", err)
		}
		fmt.Printf("rotated password for %s\n", email)
	case errors.Is(err, sql.ErrNoRows):
		principal := &models.Principal{
			ID:           uuid.NewString(),
			Email:        email,
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
			Active:       true,
		}
		if err := repo.Create(ctx, principal); err != nil {
			log.Fatalf("failed to create admin: %v", err)
		}
		fmt.Printf("created admin %s (%s)\n", email, principal.ID)
	default:
		log.Fatalf("failed to look up %s: %v", email, err)
	}
}
