package address

import (
	"context"
	"sync"

	"restockd_backend/internal/places"
)

// fakeProvider answers from maps. A gate registered for a query text or
// description blocks that call until the gate is closed.
type fakeProvider struct {
	mu          sync.Mutex
	queries     []string
	geocodes    []string
	suggestions map[string][]places.Candidate
	results     map[string]places.GeocodeResult
	errs        map[string]error
	gates       map[string]chan struct{}
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		suggestions: map[string][]places.Candidate{},
		results:     map[string]places.GeocodeResult{},
		errs:        map[string]error{},
		gates:       map[string]chan struct{}{},
	}
}

func (f *fakeProvider) gate(key string) chan struct{} {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[key] = ch
	f.mu.Unlock()
	return ch
}

func (f *fakeProvider) wait(ctx context.Context, key string) error {
	f.mu.Lock()
	ch := f.gates[key]
	f.mu.Unlock()
	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeProvider) QuerySuggestions(ctx context.Context, text, _ string) ([]places.Candidate, error) {
	f.mu.Lock()
	f.queries = append(f.queries, text)
	f.mu.Unlock()

	if err := f.wait(ctx, text); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[text]; err != nil {
		return nil, err
	}
	return f.suggestions[text], nil
}

func (f *fakeProvider) ResolveGeocode(ctx context.Context, description string) (places.GeocodeResult, error) {
	f.mu.Lock()
	f.geocodes = append(f.geocodes, description)
	f.mu.Unlock()

	if err := f.wait(ctx, description); err != nil {
		return places.GeocodeResult{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[description]; err != nil {
		return places.GeocodeResult{}, err
	}
	result, ok := f.results[description]
	if !ok {
		return places.GeocodeResult{}, places.ErrZeroResults
	}
	return result, nil
}

func (f *fakeProvider) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func (f *fakeProvider) Geocodes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.geocodes...)
}
