package scheduler

import (
	"context"
	"strings"
	"time"

	"restockd_backend/internal/registration/repository"
	"restockd_backend/platform/logger"
)

const (
	defaultGeocodeSweepInterval = time.Hour
	defaultGeocodeSweepBatch    = 100
)

// GeocodeSweep periodically enqueues geocode jobs for profiles that still
// have no coordinates, e.g. because the provider was down when they
// registered.
type GeocodeSweep struct {
	repo     repository.ProfileRepository
	enqueuer Enqueuer
	log      *logger.Logger
	interval time.Duration
	batch    int
}

func NewGeocodeSweep(repo repository.ProfileRepository, enqueuer Enqueuer, log *logger.Logger, interval time.Duration, batch int) *GeocodeSweep {
	if interval <= 0 {
		interval = defaultGeocodeSweepInterval
	}
	if batch <= 0 {
		batch = defaultGeocodeSweepBatch
	}

	return &GeocodeSweep{
		repo:     repo,
		enqueuer: enqueuer,
		log:      log,
		interval: interval,
		batch:    batch,
	}
}

func (s *GeocodeSweep) Run(ctx context.Context) {
	if s == nil || s.repo == nil {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep enqueues one batch. Task ids are per role record and interval, so
// a record that keeps failing is retried at most once per interval.
func (s *GeocodeSweep) sweep(ctx context.Context) int {
	pending, err := s.repo.ListMissingCoordinates(ctx, s.batch)
	if err != nil {
		s.log.Warn("geocode sweep failed", "error", err)
		return 0
	}

	bucket := time.Now().UTC().Truncate(s.interval).Format(time.RFC3339)
	enqueued := 0
	for _, p := range pending {
		err := s.enqueuer.EnqueueGeocodeProfile(ctx, GeocodeProfilePayload{
			ProfileID:   p.ID.String(),
			Role:        p.Role,
			FullAddress: p.Query(),
		}, sweepTaskID(p, bucket))
		if err != nil {
			s.log.Warn("geocode sweep enqueue failed", "profileId", p.ID, "error", err)
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		s.log.Info("geocode sweep enqueued profiles", "enqueued", enqueued)
	}
	return enqueued
}

// sweepTaskID keys a sweep task by role and id. A user can hold a donor and
// a food bank record under the same id.
func sweepTaskID(p repository.PendingGeocode, bucket string) string {
	role := strings.ReplaceAll(strings.ToLower(p.Role), " ", "_")
	return "sweep:" + role + ":" + p.ID.String() + ":" + bucket
}
