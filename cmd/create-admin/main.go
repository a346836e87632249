package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/stemsi/admin-auth/internal/config"
	"github.com/stemsi/admin-auth/internal/database"
	"github.com/stemsi/admin-auth/internal/logger"
	"github.com/stemsi/admin-auth/internal/model"
	"github.com/stemsi/admin-auth/internal/repository"
	"github.com/stemsi/admin-auth/internal/service"
	"golang.org/x/term"
)

func main() {
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

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin User ===")

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = model.NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		fmt.Println("Error: a valid email is required")
		return
	}

	password, err := readPassword("Enter Password: ")
	if err != nil {
		fmt.Println("Error reading password")
		return
	}
	if utf8.RuneCountInString(password) < 8 {
		fmt.Println("Error: Password must be at least 8 characters")
		return
	}
	if len(password) > service.MaxPasswordBytes {
		fmt.Printf("Error: Password must be at most %d bytes\n", service.MaxPasswordBytes)
		return
	}
	confirm, err := readPassword("Confirm Password: ")
	if err != nil {
		fmt.Println("Error reading password")
		return
	}
	if confirm != password {
		fmt.Println("Error: Passwords do not match")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	hash, err := service.NewPasswordHasher(cfg.BcryptCost).Hash(password)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	admin := &model.Admin{
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		IsActive:     true,
	}

	if err := stores.Admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			fmt.Printf("Error: an admin with email %s already exists\n", email)
			return
		}
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin %s created with ID: %s\n", admin.Email, admin.ID)
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // Newline after password input
	if err != nil {
		return "", err
	}
	return string(b), nil
}
