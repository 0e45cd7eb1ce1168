package address

import (
	"context"
	"errors"
	"testing"

	"restockd_backend/internal/places"
	"restockd_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const randolph = "200 E Randolph St, Chicago, IL, USA"

func TestResolveNormalizesFirstResult(t *testing.T) {
	provider := newFakeProvider()
	provider.results[randolph] = randolphResult()

	got, err := NewResolver(provider, logger.Discard()).Resolve(context.Background(), randolph)
	require.NoError(t, err)
	assert.Equal(t, "200 E Randolph St", got.Street)
	assert.Equal(t, randolph, got.FullAddress)
}

func TestResolveWrapsFailures(t *testing.T) {
	provider := newFakeProvider()
	timeout := errors.New("timeout")
	provider.errs["slow"] = timeout

	resolver := NewResolver(provider, logger.Discard())

	got, err := resolver.Resolve(context.Background(), "slow")
	require.ErrorIs(t, err, ErrGeocodeFailure)
	require.ErrorIs(t, err, timeout)
	assert.Equal(t, CanonicalAddress{}, got)

	_, err = resolver.Resolve(context.Background(), "nowhere")
	require.ErrorIs(t, err, ErrGeocodeFailure)
	require.ErrorIs(t, err, places.ErrZeroResults)
}
