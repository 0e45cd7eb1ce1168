package scheduler

import (
	"context"
	"errors"
	"fmt"

	"restockd_backend/internal/address"
	"restockd_backend/internal/email"
	"restockd_backend/internal/places"
	"restockd_backend/internal/registration/repository"
	"restockd_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// GeocodeResolver turns a one-line address into a canonical address.
type GeocodeResolver interface {
	Resolve(ctx context.Context, description string) (address.CanonicalAddress, error)
}

// Jobs holds the task handlers run by the worker.
type Jobs struct {
	repo     repository.ProfileRepository
	resolver GeocodeResolver
	sender   email.Sender
	log      *logger.Logger
}

func NewJobs(repo repository.ProfileRepository, resolver GeocodeResolver, sender email.Sender, log *logger.Logger) *Jobs {
	return &Jobs{repo: repo, resolver: resolver, sender: sender, log: log}
}

// Register mounts every handler on mux.
func (j *Jobs) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskGeocodeProfile, j.HandleGeocodeProfile)
	mux.HandleFunc(TaskWelcomeEmail, j.HandleWelcomeEmail)
}

// HandleGeocodeProfile stores coordinates for a profile created from a
// manually typed address. Addresses the provider cannot find are marked as
// failed and not retried.
func (j *Jobs) HandleGeocodeProfile(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseGeocodeProfilePayload(task)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	profileID, err := uuid.Parse(payload.ProfileID)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	resolved, err := j.resolver.Resolve(ctx, payload.FullAddress)
	if err != nil {
		if errors.Is(err, places.ErrZeroResults) {
			j.log.Warn("profile address not found", "profileId", profileID, "role", payload.Role)
			if markErr := j.repo.MarkGeocodeFailed(ctx, profileID, payload.Role); markErr != nil && !errors.Is(markErr, repository.ErrNotFound) {
				j.log.DatabaseError("mark_geocode_failed", markErr)
				return markErr
			}
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}

	err = j.repo.UpdateCoordinates(ctx, profileID, payload.Role, resolved.Lat, resolved.Lng)
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidRole) {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	if err != nil {
		j.log.DatabaseError("update_coordinates", err)
		return err
	}

	j.log.Info("profile geocoded", "profileId", profileID, "role", payload.Role)
	return nil
}

// HandleWelcomeEmail sends the welcome email for a new profile.
func (j *Jobs) HandleWelcomeEmail(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseWelcomeEmailPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	if payload.Email == "" {
		return nil
	}

	if err := j.sender.SendWelcomeEmail(ctx, payload.Email, payload.DisplayName, payload.Role); err != nil {
		j.log.Warn("welcome email failed", "error", err)
		return err
	}
	return nil
}
