package repository

import (
	"context"

	"github.com/google/uuid"
)

// ProfileRepository defines the profile persistence operations the service
// and the geocoding jobs depend on.
type ProfileRepository interface {
	GetProfile(ctx context.Context, id uuid.UUID) (Profile, error)
	HasRoleRecord(ctx context.Context, id uuid.UUID, role string) (bool, error)
	CreateProfile(ctx context.Context, p NewProfile) (Profile, error)
	GetDonor(ctx context.Context, id uuid.UUID) (Donor, error)
	ListFoodBanks(ctx context.Context) ([]FoodBank, error)

	// Geocoding
	ListMissingCoordinates(ctx context.Context, limit int) ([]PendingGeocode, error)
	UpdateCoordinates(ctx context.Context, id uuid.UUID, role string, lat, lng float64) error
	MarkGeocodeFailed(ctx context.Context, id uuid.UUID, role string) error
}

// Ensure Repository implements ProfileRepository
var _ ProfileRepository = (*Repository)(nil)
