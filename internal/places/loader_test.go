package places

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	candidates []Candidate
	result     GeocodeResult
	err        error
}

func (s stubProvider) QuerySuggestions(context.Context, string, string) ([]Candidate, error) {
	return s.candidates, s.err
}

func (s stubProvider) ResolveGeocode(context.Context, string) (GeocodeResult, error) {
	return s.result, s.err
}

func TestLoaderUnavailableBeforeStart(t *testing.T) {
	loader := NewLoader(func(context.Context) (Provider, error) {
		return stubProvider{}, nil
	})

	assert.False(t, loader.Ready())
	_, err := loader.QuerySuggestions(context.Background(), "a", "us")
	require.ErrorIs(t, err, ErrUnavailable)
	_, err = loader.ResolveGeocode(context.Background(), "a")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestLoaderBecomesReady(t *testing.T) {
	release := make(chan struct{})
	loader := NewLoader(func(context.Context) (Provider, error) {
		<-release
		return stubProvider{candidates: []Candidate{{ID: "1"}}}, nil
	})

	loader.Start(context.Background())
	loader.Start(context.Background())
	assert.False(t, loader.Ready())

	close(release)
	require.NoError(t, loader.Wait(context.Background()))
	assert.True(t, loader.Ready())

	got, err := loader.QuerySuggestions(context.Background(), "a", "us")
	require.NoError(t, err)
	assert.Equal(t, []Candidate{{ID: "1"}}, got)
}

func TestLoaderInitFailureStaysUnavailable(t *testing.T) {
	denied := errors.New("denied")
	loader := NewLoader(func(context.Context) (Provider, error) {
		return nil, denied
	})

	loader.Start(context.Background())
	require.ErrorIs(t, loader.Wait(context.Background()), denied)
	assert.False(t, loader.Ready())
	assert.ErrorIs(t, loader.Err(), denied)

	_, err := loader.QuerySuggestions(context.Background(), "a", "us")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestLoaderWaitHonoursContext(t *testing.T) {
	never := make(chan struct{})
	t.Cleanup(func() { close(never) })
	loader := NewLoader(func(context.Context) (Provider, error) {
		<-never
		return nil, errors.New("stopped")
	})
	loader.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, loader.Wait(ctx), context.DeadlineExceeded)
}
