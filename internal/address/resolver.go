package address

import (
	"context"
	"errors"
	"fmt"

	"restockd_backend/internal/places"
	"restockd_backend/platform/logger"
)

// ErrGeocodeFailure wraps every resolution failure, timeouts included.
var ErrGeocodeFailure = errors.New("geocode failure")

// Resolver turns a selected candidate description into a CanonicalAddress.
type Resolver struct {
	provider places.Provider
	log      *logger.Logger
}

// NewResolver creates a resolver backed by provider.
func NewResolver(provider places.Provider, log *logger.Logger) *Resolver {
	return &Resolver{provider: provider, log: log}
}

// Resolve geocodes description and normalises the first result. On failure
// no partial address is returned.
func (r *Resolver) Resolve(ctx context.Context, description string) (CanonicalAddress, error) {
	result, err := r.provider.ResolveGeocode(ctx, description)
	if err != nil {
		r.log.WithContext(ctx).Warn("address resolution failed", "description", description, "error", err)
		return CanonicalAddress{}, fmt.Errorf("%w: %w", ErrGeocodeFailure, err)
	}
	return Normalize(description, result), nil
}
