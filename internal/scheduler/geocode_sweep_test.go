package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"restockd_backend/internal/address"
	"restockd_backend/internal/places"
	"restockd_backend/internal/registration/repository"
	"restockd_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeocodeSweepEnqueuesPendingProfiles(t *testing.T) {
	donor := repository.PendingGeocode{
		ID:   uuid.New(),
		Role: repository.RoleDonor,
		Location: repository.Location{
			Street: "121 N LaSalle St", City: "Chicago", State: "IL", PostalCode: "60602",
		},
	}
	pantry := repository.PendingGeocode{
		ID:   uuid.New(),
		Role: repository.RoleFoodBank,
		Location: repository.Location{
			Street: "200 E Randolph St", City: "Chicago", State: "IL", PostalCode: "60601",
		},
	}
	repo := &fakeRepo{pending: []repository.PendingGeocode{donor, pantry}}
	enqueuer := &fakeEnqueuer{}

	sweep := NewGeocodeSweep(repo, enqueuer, logger.Discard(), time.Hour, 10)
	assert.Equal(t, 2, sweep.sweep(context.Background()))

	require.Len(t, enqueuer.jobs, 2)
	assert.Equal(t, "121 N LaSalle St, Chicago, IL 60602", enqueuer.jobs[0].Geocode.FullAddress)
	assert.Equal(t, repository.RoleFoodBank, enqueuer.jobs[1].Geocode.Role)
	assert.True(t, strings.HasPrefix(enqueuer.jobs[0].TaskID, "sweep:donor:"+donor.ID.String()+":"))
	assert.True(t, strings.HasPrefix(enqueuer.jobs[1].TaskID, "sweep:food_bank:"+pantry.ID.String()+":"))
}

func TestGeocodeSweepKeysTasksByRole(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepo{pending: []repository.PendingGeocode{
		{ID: id, Role: repository.RoleDonor},
		{ID: id, Role: repository.RoleFoodBank},
	}}
	enqueuer := &fakeEnqueuer{}

	sweep := NewGeocodeSweep(repo, enqueuer, logger.Discard(), time.Hour, 10)
	assert.Equal(t, 2, sweep.sweep(context.Background()))

	require.Len(t, enqueuer.jobs, 2)
	assert.NotEqual(t, enqueuer.jobs[0].TaskID, enqueuer.jobs[1].TaskID)
}

func TestGeocodeSweepMovesPastUnknownAddresses(t *testing.T) {
	dead := []repository.PendingGeocode{
		{ID: uuid.New(), Role: repository.RoleDonor, Location: repository.Location{Street: "1 Nowhere Rd"}},
		{ID: uuid.New(), Role: repository.RoleFoodBank, Location: repository.Location{Street: "2 Nowhere Rd"}},
	}
	fresh := repository.PendingGeocode{ID: uuid.New(), Role: repository.RoleDonor, Location: repository.Location{Street: "121 N LaSalle St"}}
	repo := &fakeRepo{pending: append(append([]repository.PendingGeocode{}, dead...), fresh)}
	enqueuer := &fakeEnqueuer{}
	sweep := NewGeocodeSweep(repo, enqueuer, logger.Discard(), time.Hour, len(dead))

	require.Equal(t, 2, sweep.sweep(context.Background()))

	zero := fmt.Errorf("%w: %w", address.ErrGeocodeFailure, places.ErrZeroResults)
	jobs := NewJobs(repo, fakeResolver{err: zero}, &fakeSender{}, logger.Discard())
	for _, job := range enqueuer.jobs {
		task, err := NewGeocodeProfileTask(*job.Geocode)
		require.NoError(t, err)
		require.ErrorIs(t, jobs.HandleGeocodeProfile(context.Background(), task), asynq.SkipRetry)
	}

	enqueuer.jobs = nil
	require.Equal(t, 1, sweep.sweep(context.Background()))
	assert.Equal(t, fresh.ID.String(), enqueuer.jobs[0].Geocode.ProfileID)
}

func TestGeocodeSweepRespectsBatch(t *testing.T) {
	repo := &fakeRepo{pending: []repository.PendingGeocode{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}}
	enqueuer := &fakeEnqueuer{}

	sweep := NewGeocodeSweep(repo, enqueuer, logger.Discard(), time.Hour, 2)
	assert.Equal(t, 2, sweep.sweep(context.Background()))
}

func TestGeocodeSweepSurvivesErrors(t *testing.T) {
	sweep := NewGeocodeSweep(&fakeRepo{listErr: errors.New("db down")}, &fakeEnqueuer{}, logger.Discard(), 0, 0)
	assert.Equal(t, 0, sweep.sweep(context.Background()))
	assert.Equal(t, defaultGeocodeSweepInterval, sweep.interval)
	assert.Equal(t, defaultGeocodeSweepBatch, sweep.batch)

	repo := &fakeRepo{pending: []repository.PendingGeocode{{ID: uuid.New()}}}
	sweep = NewGeocodeSweep(repo, &fakeEnqueuer{err: errors.New("redis down")}, logger.Discard(), time.Hour, 10)
	assert.Equal(t, 0, sweep.sweep(context.Background()))
}

func TestGeocodeSweepRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		NewGeocodeSweep(&fakeRepo{}, &fakeEnqueuer{}, logger.Discard(), time.Hour, 10).Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweep did not stop")
	}
}
