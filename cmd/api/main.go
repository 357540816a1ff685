package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"madrid_barmap/internal/adapters/auth"
	server "madrid_barmap/internal/adapters/http_server"
	"madrid_barmap/internal/adapters/observability"
	"madrid_barmap/internal/adapters/places"
	redisad "madrid_barmap/internal/adapters/redis"
	"madrid_barmap/internal/app"
	"madrid_barmap/internal/domain"
	"madrid_barmap/internal/shared"
	"madrid_barmap/internal/storage/memory"
	mysqlrepo "madrid_barmap/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	observability.Serve(cfg.MetricsAddr)

	repo, closeRepo := openRepo(cfg)
	defer closeRepo()

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, "barmap")
	defer cache.Close()
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cache.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Msg("redis unreachable; place lookups will go upstream")
	}
	cancel()

	client, err := places.New(cfg.PlacesBase, cfg.PlacesKey, cfg.PlacesRPS, places.Bias{
		Location: cfg.PlacesLocation,
		Radius:   cfg.PlacesRadius,
		Types:    cfg.PlacesTypes,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize places client")
	}

	// http
	srv := server.New(cfg.CORSOrigins)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Q:    app.NewQueryService(repo),
		C:    app.NewCommandService(repo),
		P:    app.NewPlacesService(client, cache, cfg.PlacesCacheTTL),
		Auth: auth.NewJWTAuthenticator(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience),
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("storage", cfg.Storage).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

func openRepo(cfg shared.Config) (domain.VenueRepository, func()) {
	if cfg.Storage == "memory" {
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		return memory.New(), func() {}
	}
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")
	return mysqlrepo.New(db), func() { _ = db.Close() }
}
