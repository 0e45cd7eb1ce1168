package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restockd_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoogleServer(t *testing.T, handler http.HandlerFunc) *GoogleClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGoogleClient(srv.URL+"/", "test-key", time.Second, logger.Discard())
}

func TestQuerySuggestionsMapsPredictions(t *testing.T) {
	client := newGoogleServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, autocompletePath, r.URL.Path)
		assert.Equal(t, "200 E Ran", r.URL.Query().Get("input"))
		assert.Equal(t, "country:us", r.URL.Query().Get("components"))
		assert.Equal(t, "address", r.URL.Query().Get("types"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"predictions": [{
				"place_id": "abc",
				"description": "200 E Randolph St, Chicago, IL, USA",
				"structured_formatting": {"main_text": "200 E Randolph St", "secondary_text": "Chicago, IL, USA"}
			}]
		}`))
	})

	got, err := client.QuerySuggestions(context.Background(), "200 E Ran", "US")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Candidate{
		ID:            "abc",
		MainText:      "200 E Randolph St",
		SecondaryText: "Chicago, IL, USA",
		Description:   "200 E Randolph St, Chicago, IL, USA",
	}, got[0])
}

func TestQuerySuggestionsZeroResultsIsEmpty(t *testing.T) {
	client := newGoogleServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "predictions": []}`))
	})

	got, err := client.QuerySuggestions(context.Background(), "zzzz", "us")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQuerySuggestionsDeniedIsError(t *testing.T) {
	client := newGoogleServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid."}`))
	})

	_, err := client.QuerySuggestions(context.Background(), "200", "us")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestQuerySuggestionsHTTPFailure(t *testing.T) {
	client := newGoogleServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.QuerySuggestions(context.Background(), "200", "us")
	require.Error(t, err)
}

func TestResolveGeocodeUsesFirstResult(t *testing.T) {
	client := newGoogleServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, geocodePath, r.URL.Path)
		assert.Equal(t, "200 E Randolph St, Chicago, IL, USA", r.URL.Query().Get("address"))
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [
				{
					"geometry": {"location": {"lat": 41.8853, "lng": -87.6223}},
					"address_components": [
						{"long_name": "200", "short_name": "200", "types": ["street_number"]},
						{"long_name": "East Randolph Street", "short_name": "E Randolph St", "types": ["route"]}
					]
				},
				{
					"geometry": {"location": {"lat": 1, "lng": 2}},
					"address_components": []
				}
			]
		}`))
	})

	got, err := client.ResolveGeocode(context.Background(), "200 E Randolph St, Chicago, IL, USA")
	require.NoError(t, err)
	assert.InDelta(t, 41.8853, got.Lat, 1e-9)
	assert.InDelta(t, -87.6223, got.Lng, 1e-9)
	require.Len(t, got.Components, 2)
	assert.Equal(t, []string{KindRoute}, got.Components[1].Kinds)
	assert.Equal(t, "East Randolph Street", got.Components[1].LongName)
}

func TestResolveGeocodeZeroResults(t *testing.T) {
	client := newGoogleServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	})

	_, err := client.ResolveGeocode(context.Background(), "nowhere")
	require.ErrorIs(t, err, ErrZeroResults)
}

func TestResolveGeocodeHonoursContext(t *testing.T) {
	client := newGoogleServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.ResolveGeocode(ctx, "slow")
	require.Error(t, err)
}
