package scheduler

import (
	"context"

	"restockd_backend/internal/events"
	"restockd_backend/platform/logger"
)

// SubscribeProfileCreated enqueues the follow-up jobs for every new
// profile. The event id doubles as task id so a replayed event schedules
// nothing new. Geocoding is only needed when the form carried no
// coordinates.
func SubscribeProfileCreated(bus events.Bus, enqueuer Enqueuer, log *logger.Logger) {
	bus.Subscribe(events.ProfileCreated{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.ProfileCreated)
		if !ok {
			return nil
		}

		taskID := e.EventID().String()
		if err := enqueuer.EnqueueWelcomeEmail(ctx, WelcomeEmailPayload{
			Email:       e.Email,
			DisplayName: e.DisplayName,
			Role:        e.Role,
		}, "welcome:"+taskID); err != nil {
			log.Error("enqueue welcome email failed", "error", err, "userId", e.UserID)
			return err
		}

		if e.Latitude != nil && e.Longitude != nil {
			return nil
		}

		if err := enqueuer.EnqueueGeocodeProfile(ctx, GeocodeProfilePayload{
			ProfileID:   e.UserID.String(),
			Role:        e.Role,
			FullAddress: e.FullAddress,
		}, "geocode:"+taskID); err != nil {
			log.Error("enqueue profile geocode failed", "error", err, "userId", e.UserID)
			return err
		}
		return nil
	}))
}
