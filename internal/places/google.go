package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"restockd_backend/platform/config"
	"restockd_backend/platform/logger"
)

const (
	autocompletePath = "/maps/api/place/autocomplete/json"
	geocodePath      = "/maps/api/geocode/json"
)

// GoogleClient talks to the Google Places Autocomplete and Geocoding APIs.
type GoogleClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logger.Logger
}

// NewGoogleClient builds a client for baseURL (normally https://maps.googleapis.com).
func NewGoogleClient(baseURL, apiKey string, timeout time.Duration, log *logger.Logger) *GoogleClient {
	return &GoogleClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

// QuerySuggestions implements Provider.
func (g *GoogleClient) QuerySuggestions(ctx context.Context, text, region string) ([]Candidate, error) {
	params := url.Values{}
	params.Add("input", text)
	params.Add("types", "address")
	if region != "" {
		params.Add("components", "country:"+strings.ToLower(region))
	}

	var payload autocompleteResponse
	if err := g.get(ctx, autocompletePath, params, &payload); err != nil {
		return nil, err
	}

	switch payload.Status {
	case statusOK:
	case statusZeroResults:
		return []Candidate{}, nil
	default:
		return nil, upstreamStatusError("autocomplete", payload.Status, payload.ErrorMessage)
	}

	candidates := make([]Candidate, 0, len(payload.Predictions))
	for _, p := range payload.Predictions {
		candidates = append(candidates, Candidate{
			ID:            p.PlaceID,
			MainText:      p.StructuredFormatting.MainText,
			SecondaryText: p.StructuredFormatting.SecondaryText,
			Description:   p.Description,
		})
	}

	return candidates, nil
}

// ResolveGeocode implements Provider. Only the first result is used.
func (g *GoogleClient) ResolveGeocode(ctx context.Context, description string) (GeocodeResult, error) {
	params := url.Values{}
	params.Add("address", description)

	var payload geocodeResponse
	if err := g.get(ctx, geocodePath, params, &payload); err != nil {
		return GeocodeResult{}, err
	}

	switch payload.Status {
	case statusOK:
	case statusZeroResults:
		return GeocodeResult{}, ErrZeroResults
	default:
		return GeocodeResult{}, upstreamStatusError("geocode", payload.Status, payload.ErrorMessage)
	}

	if len(payload.Results) == 0 {
		return GeocodeResult{}, ErrZeroResults
	}

	first := payload.Results[0]
	components := make([]AddressComponent, 0, len(first.AddressComponents))
	for _, c := range first.AddressComponents {
		components = append(components, AddressComponent{
			Kinds:     c.Types,
			LongName:  c.LongName,
			ShortName: c.ShortName,
		})
	}

	return GeocodeResult{
		Lat:        first.Geometry.Location.Lat,
		Lng:        first.Geometry.Location.Lng,
		Components: components,
	}, nil
}

func (g *GoogleClient) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", g.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", g.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("google %s request: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		g.log.Error("google upstream error", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("upstream api error: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode google %s payload: %w", path, err)
	}

	return nil
}

func upstreamStatusError(op string, status googleStatus, message string) error {
	if message == "" {
		return fmt.Errorf("google %s: status %s", op, status)
	}
	return fmt.Errorf("google %s: status %s: %s", op, status, message)
}

var _ Provider = (*GoogleClient)(nil)

// GoogleInit returns the initialiser for a Loader. The API key is checked
// with one probe request so a rejected credential leaves the loader
// unavailable instead of failing every keystroke later.
func GoogleInit(cfg config.PlacesConfig, log *logger.Logger) InitFunc {
	return func(ctx context.Context) (Provider, error) {
		if cfg.GetGoogleMapsAPIKey() == "" {
			return nil, errors.New("google maps api key missing")
		}

		client := NewGoogleClient(cfg.GetPlacesBaseURL(), cfg.GetGoogleMapsAPIKey(), cfg.GetPlacesTimeout(), log)
		if _, err := client.QuerySuggestions(ctx, "1", cfg.GetPlacesRegion()); err != nil {
			return nil, fmt.Errorf("google maps probe: %w", err)
		}

		return client, nil
	}
}
