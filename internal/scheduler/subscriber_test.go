package scheduler

import (
	"context"
	"errors"
	"testing"

	"restockd_backend/internal/events"
	"restockd_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileCreated(withCoordinates bool) events.ProfileCreated {
	e := events.ProfileCreated{
		BaseEvent:   events.NewBaseEvent(),
		UserID:      uuid.New(),
		Email:       "ops@pantry.org",
		Role:        "Food Bank",
		DisplayName: "Loop Community Pantry",
		FullAddress: pantryAddress,
	}
	if withCoordinates {
		lat, lng := 41.8853, -87.6223
		e.Latitude, e.Longitude = &lat, &lng
	}
	return e
}

func TestProfileCreatedEnqueuesWelcomeAndGeocode(t *testing.T) {
	log := logger.Discard()
	bus := events.NewInMemoryBus(log)
	enqueuer := &fakeEnqueuer{}
	SubscribeProfileCreated(bus, enqueuer, log)

	event := profileCreated(false)
	require.NoError(t, bus.PublishSync(context.Background(), event))

	require.Len(t, enqueuer.jobs, 2)
	require.NotNil(t, enqueuer.jobs[0].Welcome)
	assert.Equal(t, "Loop Community Pantry", enqueuer.jobs[0].Welcome.DisplayName)
	assert.Equal(t, "welcome:"+event.EventID().String(), enqueuer.jobs[0].TaskID)

	require.NotNil(t, enqueuer.jobs[1].Geocode)
	assert.Equal(t, GeocodeProfilePayload{
		ProfileID:   event.UserID.String(),
		Role:        "Food Bank",
		FullAddress: pantryAddress,
	}, *enqueuer.jobs[1].Geocode)
	assert.Equal(t, "geocode:"+event.EventID().String(), enqueuer.jobs[1].TaskID)
}

func TestProfileCreatedWithCoordinatesSkipsGeocode(t *testing.T) {
	log := logger.Discard()
	bus := events.NewInMemoryBus(log)
	enqueuer := &fakeEnqueuer{}
	SubscribeProfileCreated(bus, enqueuer, log)

	require.NoError(t, bus.PublishSync(context.Background(), profileCreated(true)))
	require.Len(t, enqueuer.jobs, 1)
	assert.NotNil(t, enqueuer.jobs[0].Welcome)
}

func TestProfileCreatedEnqueueFailure(t *testing.T) {
	log := logger.Discard()
	bus := events.NewInMemoryBus(log)
	boom := errors.New("redis down")
	SubscribeProfileCreated(bus, &fakeEnqueuer{err: boom}, log)

	assert.ErrorIs(t, bus.PublishSync(context.Background(), profileCreated(false)), boom)
}
