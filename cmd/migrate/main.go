package main

import (
	"context"
	"flag"

	"github.com/rs/zerolog/log"

	"innkeep/internal/adapters/observability"
	"innkeep/internal/shared"
	"innkeep/internal/storage/sqlstore"
)

func main() {
	seed := flag.Bool("seed", false, "insert sample hotels and rooms after migrating")
	flag.Parse()

	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	store, err := sqlstore.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store open failed")
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}
	if *seed {
		if err := store.Seed(ctx); err != nil {
			log.Fatal().Err(err).Msg("seed failed")
		}
	}

	ver, err := store.SchemaVersion(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("schema version check failed")
	}
	log.Info().Int("version", ver).Msg("database up to date")
}
