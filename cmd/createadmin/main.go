package main

import (
	"context"
	"errors"
	"flag"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"innkeep/internal/adapters/observability"
	"innkeep/internal/domain"
	"innkeep/internal/shared"
	"innkeep/internal/storage/sqlstore"
)

// Creates the administrator account, for bootstrapping a fresh install.
func main() {
	email := flag.String("email", "admin@example.com", "admin email")
	name := flag.String("name", "Admin", "admin display name")
	password := flag.String("password", "admin123", "admin password")
	flag.Parse()

	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	store, err := sqlstore.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store open failed")
	}
	defer store.Close()

	ctx := context.Background()
	addr := strings.ToLower(strings.TrimSpace(*email))

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("password hash failed")
	}

	_, err = store.CreateUser(ctx, domain.User{
		Email:        addr,
		Name:         strings.TrimSpace(*name),
		PasswordHash: string(hash),
		IsAdmin:      true,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			log.Info().Str("email", addr).Msg("admin user already exists")
			return
		}
		log.Fatal().Err(err).Msg("create admin failed")
	}
	log.Info().Str("email", addr).Msg("admin user created")
}
