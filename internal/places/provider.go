// Package places is the adapter to the external place lookup service:
// free text to candidate addresses, and candidate to structured geocode.
package places

import (
	"context"
	"errors"
)

// Address component kinds the resolver understands. Providers may return
// more; unknown kinds are carried through and ignored downstream.
const (
	KindStreetNumber = "street_number"
	KindRoute        = "route"
	KindLocality     = "locality"
	KindAdminArea1   = "administrative_area_level_1"
	KindPostalCode   = "postal_code"
)

var (
	// ErrUnavailable is returned until the provider finished initialising.
	ErrUnavailable = errors.New("place lookup provider unavailable")
	// ErrZeroResults is returned when geocoding found nothing.
	ErrZeroResults = errors.New("no geocode results")
)

// Candidate is one suggested address, not yet geocoded. ID is unique within
// a single suggestion list only.
type Candidate struct {
	ID            string `json:"id"`
	MainText      string `json:"mainText"`
	SecondaryText string `json:"secondaryText"`
	Description   string `json:"description"`
}

// AddressComponent is one part of a geocoded address as the provider
// reports it. A component can carry several kinds.
type AddressComponent struct {
	Kinds     []string
	LongName  string
	ShortName string
}

// GeocodeResult is the best match for a candidate description.
type GeocodeResult struct {
	Lat        float64
	Lng        float64
	Components []AddressComponent
}

// Provider is the place lookup capability.
type Provider interface {
	// QuerySuggestions returns candidates for text restricted to region
	// (a country code).
	QuerySuggestions(ctx context.Context, text, region string) ([]Candidate, error)
	// ResolveGeocode returns the first geocode result for description.
	ResolveGeocode(ctx context.Context, description string) (GeocodeResult, error)
}
