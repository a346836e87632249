package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/stemsi/admin-auth/internal/config"
	"github.com/stemsi/admin-auth/internal/database"
	"github.com/stemsi/admin-auth/internal/logger"
	"github.com/stemsi/admin-auth/internal/model"
	"github.com/stemsi/admin-auth/internal/repository"
)

func main() {
	var email string
	var active bool
	flag.StringVar(&email, "email", "", "Admin email")
	flag.BoolVar(&active, "active", false, "Set to true to activate, false to deactivate")
	flag.Parse()

	email = model.NormalizeEmail(email)
	if email == "" {
		fmt.Println("Usage: set-admin-status -email <email> -active=<true|false>")
		os.Exit(2)
	}

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to Store ──────────────────────────────────────────────
	stores, err := database.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to store")
	}
	defer stores.Close()

	fmt.Println("=== Set Admin Status ===")

	if err := stores.Admins.SetActive(ctx, email, active, time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			fmt.Printf("Error: no admin with email %s\n", email)
			return
		}
		log.Fatal().Err(err).Msg("Failed to update admin status")
	}

	state := "deactivated"
	if active {
		state = "activated"
	}
	fmt.Printf("\nSuccess! Admin %s %s.\n", email, state)
	if !active {
		fmt.Println("Tokens already issued stay valid until they expire.")
	}
}
