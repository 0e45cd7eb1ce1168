package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restockd_backend/internal/address"
	"restockd_backend/internal/places"
	"restockd_backend/internal/registration/repository"
	"restockd_backend/platform/config"
	"restockd_backend/platform/db"
	"restockd_backend/platform/logger"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

const (
	batchSize   = 25
	parallelism = 4
	// Keeps the backfill well under the provider's per-second quota.
	pause = 250 * time.Millisecond
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting profile geocode backfill")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	placesModule := places.NewModule(cfg, prometheus.NewRegistry(), log)
	placesModule.Start(ctx)

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := placesModule.Wait(initCtx); err != nil {
		log.Error("place lookup provider unavailable, nothing geocoded", "error", err)
		return
	}

	repo := repository.New(pool)
	resolver := address.NewResolver(placesModule.Provider(), log)

	for {
		pending, err := repo.ListMissingCoordinates(ctx, batchSize)
		if err != nil {
			log.Error("failed to list profiles", "error", err)
			return
		}
		if len(pending) == 0 {
			log.Info("no profiles left to geocode")
			return
		}

		geocoded := backfillBatch(ctx, repo, resolver, pending, log)
		if geocoded == 0 {
			log.Info("no geocode progress in batch, stopping")
			return
		}
		log.Info("batch geocoded", "geocoded", geocoded, "batch", len(pending))
	}
}

// backfillBatch geocodes one batch with bounded parallelism and returns how
// many profiles got coordinates.
func backfillBatch(ctx context.Context, repo repository.ProfileRepository, resolver *address.Resolver, pending []repository.PendingGeocode, log *logger.Logger) int {
	results := make([]bool, len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, p := range pending {
		g.Go(func() error {
			results[i] = geocodeOne(gctx, repo, resolver, p, log)
			select {
			case <-gctx.Done():
			case <-time.After(pause):
			}
			return nil
		})
	}
	_ = g.Wait()

	geocoded := 0
	for _, ok := range results {
		if ok {
			geocoded++
		}
	}
	return geocoded
}

func geocodeOne(ctx context.Context, repo repository.ProfileRepository, resolver *address.Resolver, p repository.PendingGeocode, log *logger.Logger) bool {
	query := p.Query()
	if query == "" {
		log.Info("skipping profile without address", "profileId", p.ID)
		return false
	}

	resolved, err := resolver.Resolve(ctx, query)
	if err != nil {
		if errors.Is(err, places.ErrZeroResults) {
			log.Info("no geocode result", "profileId", p.ID, "address", query)
			if err := repo.MarkGeocodeFailed(ctx, p.ID, p.Role); err != nil {
				log.Error("failed to mark profile", "profileId", p.ID, "error", err)
			}
		}
		return false
	}

	if err := repo.UpdateCoordinates(ctx, p.ID, p.Role, resolved.Lat, resolved.Lng); err != nil {
		log.Error("failed to update profile", "profileId", p.ID, "error", err)
		return false
	}

	log.Info("profile geocoded", "profileId", p.ID, "role", p.Role, "lat", resolved.Lat, "lng", resolved.Lng)
	return true
}
