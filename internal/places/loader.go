package places

import (
	"context"
	"errors"
	"sync"
)

// InitFunc performs the one-time provider initialisation.
type InitFunc func(ctx context.Context) (Provider, error)

// Loader makes a Provider available after a single asynchronous
// initialisation. Until it succeeds every call fails with ErrUnavailable,
// which callers treat as "fall back to manual address entry".
type Loader struct {
	init  InitFunc
	once  sync.Once
	done  chan struct{}
	mu    sync.RWMutex
	inner Provider
	err   error
}

// NewLoader creates a loader that has not started yet.
func NewLoader(initFn InitFunc) *Loader {
	return &Loader{init: initFn, done: make(chan struct{})}
}

// Start kicks off initialisation in the background. Later calls are no-ops.
func (l *Loader) Start(ctx context.Context) {
	l.once.Do(func() {
		go func() {
			defer close(l.done)
			provider, err := l.init(ctx)
			if err == nil && provider == nil {
				err = errors.New("initialiser returned no provider")
			}

			l.mu.Lock()
			l.inner, l.err = provider, err
			l.mu.Unlock()
		}()
	})
}

// Wait blocks until initialisation finished or ctx is done, and returns the
// initialisation error, if any.
func (l *Loader) Wait(ctx context.Context) error {
	select {
	case <-l.done:
		l.mu.RLock()
		defer l.mu.RUnlock()
		return l.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready reports whether the provider can be used.
func (l *Loader) Ready() bool {
	_, err := l.provider()
	return err == nil
}

// Err returns the initialisation failure, or nil while pending or after success.
func (l *Loader) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

func (l *Loader) provider() (Provider, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.inner == nil {
		return nil, ErrUnavailable
	}
	return l.inner, nil
}

// QuerySuggestions implements Provider.
func (l *Loader) QuerySuggestions(ctx context.Context, text, region string) ([]Candidate, error) {
	p, err := l.provider()
	if err != nil {
		return nil, err
	}
	return p.QuerySuggestions(ctx, text, region)
}

// ResolveGeocode implements Provider.
func (l *Loader) ResolveGeocode(ctx context.Context, description string) (GeocodeResult, error) {
	p, err := l.provider()
	if err != nil {
		return GeocodeResult{}, err
	}
	return p.ResolveGeocode(ctx, description)
}

var _ Provider = (*Loader)(nil)
