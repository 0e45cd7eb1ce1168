package address

import (
	"strings"

	"restockd_backend/internal/places"
)

// parts accumulates component values before the street is assembled.
type parts struct {
	streetNumber string
	route        string
	city         string
	state        string
	postalCode   string
}

// assignment copies one component into parts. Each kind reads either the
// long or the short provider name.
type assignment func(p *parts, c places.AddressComponent)

var assignments = map[string]assignment{
	places.KindStreetNumber: func(p *parts, c places.AddressComponent) { p.streetNumber = c.LongName },
	places.KindRoute:        func(p *parts, c places.AddressComponent) { p.route = c.LongName },
	places.KindLocality:     func(p *parts, c places.AddressComponent) { p.city = c.LongName },
	places.KindAdminArea1:   func(p *parts, c places.AddressComponent) { p.state = c.ShortName },
	places.KindPostalCode:   func(p *parts, c places.AddressComponent) { p.postalCode = c.LongName },
}

// Normalize maps a geocode result onto a CanonicalAddress. The component
// order does not matter; unknown kinds are ignored and when a kind repeats
// the first component carrying it wins.
func Normalize(description string, result places.GeocodeResult) CanonicalAddress {
	var p parts
	seen := make(map[string]bool, len(assignments))
	for _, component := range result.Components {
		for _, kind := range component.Kinds {
			assign, ok := assignments[kind]
			if !ok || seen[kind] {
				continue
			}
			seen[kind] = true
			assign(&p, component)
		}
	}

	return CanonicalAddress{
		Street:      p.street(),
		City:        p.city,
		State:       p.state,
		PostalCode:  p.postalCode,
		Lat:         result.Lat,
		Lng:         result.Lng,
		FullAddress: description,
	}
}

// street is "<number> <route>", or whichever half exists.
func (p parts) street() string {
	street := ""
	if p.streetNumber != "" {
		street = p.streetNumber + " "
	}
	street += p.route
	return strings.TrimSpace(street)
}
