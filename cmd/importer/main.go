// Command importer seeds bars from place-catalogue ids.
//
//	importer ChIJ... ChIJ...
//	IMPORT_PLACE_IDS=ChIJ...,ChIJ... importer
package main

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"madrid_barmap/internal/adapters/observability"
	"madrid_barmap/internal/adapters/places"
	redisad "madrid_barmap/internal/adapters/redis"
	"madrid_barmap/internal/app"
	"madrid_barmap/internal/domain"
	"madrid_barmap/internal/shared"
	mysqlrepo "madrid_barmap/internal/storage/mysql"
)

func main() {
	if failed := run(context.Background()); failed > 0 {
		os.Exit(1)
	}
}

// run imports every requested place and returns how many failed.
func run(ctx context.Context) int {
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
	observability.Serve(cfg.MetricsAddr)

	ids := placeIDs(os.Args[1:], os.Getenv("IMPORT_PLACE_IDS"))
	if len(ids) == 0 {
		log.Fatal().Msg("no place ids given (args or IMPORT_PLACE_IDS)")
	}
	workers := cfg.ImportWorkers
	if workers <= 0 {
		workers = 1
	}

	log.Info().
		Str("base", cfg.PlacesBase).
		Int("workers", workers).
		Int("places", len(ids)).
		Msg("importer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := places.New(cfg.PlacesBase, cfg.PlacesKey, cfg.PlacesRPS, places.Bias{
		Location: cfg.PlacesLocation,
		Radius:   cfg.PlacesRadius,
		Types:    cfg.PlacesTypes,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize places client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, "barmap")
	defer cache.Close()

	imp := app.NewImportService(
		app.NewPlacesService(client, cache, cfg.PlacesCacheTTL),
		repo,
		app.NewCommandService(repo),
	)
	name := cfg.ImportUserName
	creator := domain.User{ID: cfg.ImportUserID, Name: &name}

	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var mu sync.Mutex
	counts := map[string]int{}

	for _, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(placeID string) {
			defer wg.Done()
			defer sem.Release(1)

			result := "created"
			v, created, err := imp.ImportPlace(ctx, placeID, creator)
			switch {
			case err != nil:
				result = "failed"
				log.Warn().Str("place_id", placeID).Err(err).Msg("import failed")
			case !created:
				result = "skipped"
				log.Info().Str("place_id", placeID).Str("id", v.ID).Msg("bar already exists")
			default:
				log.Info().Str("place_id", placeID).Str("id", v.ID).Str("name", v.Name).Msg("bar imported")
			}
			observability.ObserveImport(result)
			mu.Lock()
			counts[result]++
			mu.Unlock()
		}(id)
	}

	wg.Wait()
	log.Info().
		Int("created", counts["created"]).
		Int("skipped", counts["skipped"]).
		Int("failed", counts["failed"]).
		Msg("import completed")
	return counts["failed"]
}

// placeIDs merges args and a comma separated list, dropping blanks and repeats.
func placeIDs(args []string, list string) []string {
	seen := map[string]bool{}
	var out []string
	for _, id := range append(args, strings.Split(list, ",")...) {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
