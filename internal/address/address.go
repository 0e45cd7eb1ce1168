// Package address turns typed text into a structured, geocoded address:
// a debounced suggestion session per client and a resolver that
// normalises the provider's geocode result.
package address

// CanonicalAddress is the structured result of resolving one candidate.
// FullAddress is the candidate description exactly as selected.
type CanonicalAddress struct {
	Street      string  `json:"address"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	PostalCode  string  `json:"postalCode"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	FullAddress string  `json:"fullAddress"`
}
