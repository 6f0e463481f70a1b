package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	server "innkeep/internal/adapters/http_server"
	"innkeep/internal/adapters/observability"
	redisad "innkeep/internal/adapters/redis"
	"innkeep/internal/adapters/session"
	"innkeep/internal/app"
	"innkeep/internal/shared"
	"innkeep/internal/storage/sqlstore"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	store, err := sqlstore.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store open failed")
	}
	defer store.Close()
	log.Info().Str("driver", cfg.DBDriver).Msg("database connection ok")

	// the server never migrates; cmd/migrate does that at deploy time
	ver, err := store.SchemaVersion(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("schema version check failed")
	}
	if ver < sqlstore.LatestSchemaVersion() {
		log.Fatal().
			Int("have", ver).
			Int("want", sqlstore.LatestSchemaVersion()).
			Msg("database schema out of date, run migrate")
	}

	// deps
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	sessions := session.New(cfg.SessionKey, cfg.SessionTTL)
	accounts := app.NewAccountService(store)
	bookings := app.NewBookingService(store)
	q := app.NewQueryService(store, cache, cfg.CacheTTL)
	admin := app.NewAdminService(store, cache)

	warmCache(q, cfg.WarmWorkers)

	// http
	srv := server.New(sessions)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Q:        q,
		Bookings: bookings,
		Accounts: accounts,
		Admin:    admin,
		Sessions: sessions,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("server listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

// warmCache prefetches the hotel list and each hotel's room listing,
// bounded to a handful of concurrent store queries. Failures only log:
// a cold cache is not a startup error.
func warmCache(q *app.QueryService, workers int) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := q.Warm(ctx, nil); err != nil {
		log.Warn().Err(err).Msg("cache warm-up: hotel list failed")
		return
	}
	hotels, err := q.ListHotels(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("cache warm-up: hotel list failed")
		return
	}

	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	for _, h := range hotels {
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("cache warm-up aborted")
			return
		}
		go func(id int64) {
			defer sem.Release(1)
			if err := q.Warm(ctx, &id); err != nil {
				log.Warn().Err(err).Int64("hotel", id).Msg("cache warm-up: rooms failed")
			}
		}(h.ID)
	}
	if err := sem.Acquire(ctx, int64(workers)); err != nil {
		log.Warn().Err(err).Msg("cache warm-up aborted")
		return
	}
	log.Info().Int("hotels", len(hotels)).Msg("cache warmed")
}
