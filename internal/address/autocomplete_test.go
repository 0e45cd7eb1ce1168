package address

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"restockd_backend/internal/places"
	"restockd_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDebounce = 20 * time.Millisecond
	waitFor      = time.Second
	tick         = 5 * time.Millisecond
)

type recorder struct {
	mu        sync.Mutex
	snapshots []Snapshot
	selected  []CanonicalAddress
	errs      []error
}

func (r *recorder) Selected() []CanonicalAddress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]CanonicalAddress(nil), r.selected...)
}

func (r *recorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

func (r *recorder) States() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	states := make([]State, 0, len(r.snapshots))
	for _, s := range r.snapshots {
		states = append(states, s.State)
	}
	return states
}

func startSession(t *testing.T, provider *fakeProvider) (*Autocomplete, *recorder) {
	t.Helper()
	rec := &recorder{}
	log := logger.Discard()

	session := NewAutocomplete(provider, NewResolver(provider, log), Options{
		Debounce: testDebounce,
		Region:   "us",
		Logger:   log,
		OnChange: func(s Snapshot) {
			rec.mu.Lock()
			rec.snapshots = append(rec.snapshots, s)
			rec.mu.Unlock()
		},
		OnSelect: func(addr CanonicalAddress) {
			rec.mu.Lock()
			rec.selected = append(rec.selected, addr)
			rec.mu.Unlock()
		},
		OnError: func(err error) {
			rec.mu.Lock()
			rec.errs = append(rec.errs, err)
			rec.mu.Unlock()
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- session.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return session, rec
}

func snapshot(t *testing.T, session *Autocomplete) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	s, err := session.Snapshot(ctx)
	require.NoError(t, err)
	return s
}

func waitForState(t *testing.T, session *Autocomplete, want State) Snapshot {
	t.Helper()
	var last Snapshot
	require.Eventually(t, func() bool {
		s, err := session.Snapshot(context.Background())
		if err != nil {
			return false
		}
		last = s
		return s.State == want
	}, waitFor, tick, "state never became %s", want)
	return last
}

func randolphCandidate() places.Candidate {
	return places.Candidate{
		ID:            "randolph",
		MainText:      "200 E Randolph St",
		SecondaryText: "Chicago, IL, USA",
		Description:   randolph,
	}
}

func TestKeystrokesWithinWindowIssueOneQuery(t *testing.T) {
	provider := newFakeProvider()
	provider.suggestions["200 E Ran"] = []places.Candidate{randolphCandidate()}
	session, rec := startSession(t, provider)

	for _, v := range []string{"2", "20", "200", "200 E", "200 E Ran"} {
		session.SetValue(v)
	}

	got := waitForState(t, session, StateReady)
	assert.Equal(t, []string{"200 E Ran"}, provider.Queries())
	assert.Equal(t, "200 E Ran", got.Value)
	assert.Equal(t, []places.Candidate{randolphCandidate()}, got.Suggestions)
	assert.Contains(t, rec.States(), StateRequesting)
}

func TestEmptyValueClearsWithoutQuerying(t *testing.T) {
	provider := newFakeProvider()
	provider.suggestions["200"] = []places.Candidate{randolphCandidate()}
	session, _ := startSession(t, provider)

	session.SetValue("200")
	waitForState(t, session, StateReady)

	session.SetValue("")
	got := snapshot(t, session)
	assert.Equal(t, StateIdle, got.State)
	assert.Empty(t, got.Suggestions)

	time.Sleep(3 * testDebounce)
	assert.Equal(t, []string{"200"}, provider.Queries())
}

func TestEmptyValueCancelsPendingQuery(t *testing.T) {
	provider := newFakeProvider()
	session, _ := startSession(t, provider)

	session.SetValue("2")
	session.SetValue("")

	time.Sleep(3 * testDebounce)
	assert.Empty(t, provider.Queries())
	assert.Equal(t, StateIdle, snapshot(t, session).State)
}

func TestStaleQueryResultIsDiscarded(t *testing.T) {
	provider := newFakeProvider()
	older := places.Candidate{ID: "old", Description: "20 Old Rd"}
	newer := randolphCandidate()
	first := places.Candidate{ID: "first", Description: "2 First St"}
	provider.suggestions["2"] = []places.Candidate{first}
	provider.suggestions["20"] = []places.Candidate{older}
	provider.suggestions["200"] = []places.Candidate{newer}
	release := provider.gate("20")
	session, _ := startSession(t, provider)

	session.SetValue("2")
	waitForState(t, session, StateReady)

	session.SetValue("20")
	requesting := waitForState(t, session, StateRequesting)
	assert.Equal(t, []places.Candidate{first}, requesting.Suggestions)

	session.SetValue("200")
	typed := snapshot(t, session)
	assert.Equal(t, StatePending, typed.State)
	assert.Empty(t, typed.Suggestions)

	got := waitForState(t, session, StateReady)
	assert.Equal(t, []places.Candidate{newer}, got.Suggestions)

	close(release)
	require.Eventually(t, func() bool {
		return len(provider.Queries()) == 3
	}, waitFor, tick)
	time.Sleep(3 * testDebounce)

	got = snapshot(t, session)
	assert.Equal(t, StateReady, got.State)
	assert.Equal(t, []places.Candidate{newer}, got.Suggestions)
}

func TestQueryFailureClearsList(t *testing.T) {
	provider := newFakeProvider()
	provider.suggestions["200"] = []places.Candidate{randolphCandidate()}
	provider.errs["2000"] = errors.New("OVER_QUERY_LIMIT")
	session, rec := startSession(t, provider)

	session.SetValue("200")
	waitForState(t, session, StateReady)

	session.SetValue("2000")
	got := waitForState(t, session, StateError)
	assert.Empty(t, got.Suggestions)
	assert.Empty(t, rec.Errors())

	session.SetValue("200")
	waitForState(t, session, StateReady)
}

func TestSelectResolvesAndOverwritesValue(t *testing.T) {
	provider := newFakeProvider()
	provider.suggestions["200 E Ran"] = []places.Candidate{randolphCandidate()}
	provider.results[randolph] = randolphResult()
	session, rec := startSession(t, provider)

	session.SetValue("200 E Ran")
	waitForState(t, session, StateReady)

	session.Select("randolph")
	require.Eventually(t, func() bool { return len(rec.Selected()) == 1 }, waitFor, tick)

	addr := rec.Selected()[0]
	assert.Equal(t, "200 E Randolph St", addr.Street)
	assert.Equal(t, "IL", addr.State)
	assert.Equal(t, randolph, addr.FullAddress)

	got := snapshot(t, session)
	assert.Equal(t, StateIdle, got.State)
	assert.Equal(t, "200 E Randolph St", got.Value)
	assert.Empty(t, got.Suggestions)

	time.Sleep(3 * testDebounce)
	assert.Len(t, rec.Selected(), 1)
	assert.Equal(t, []string{"200 E Ran"}, provider.Queries())
}

func TestTypingAfterSelectSupersedesResolution(t *testing.T) {
	provider := newFakeProvider()
	provider.suggestions["200 E Ran"] = []places.Candidate{randolphCandidate()}
	provider.results[randolph] = randolphResult()
	release := provider.gate(randolph)
	session, rec := startSession(t, provider)

	session.SetValue("200 E Ran")
	waitForState(t, session, StateReady)

	session.Select("randolph")
	require.Eventually(t, func() bool { return len(provider.Geocodes()) == 1 }, waitFor, tick)

	session.SetValue("300 N State")
	close(release)
	time.Sleep(3 * testDebounce)

	assert.Empty(t, rec.Selected())
	assert.Equal(t, "300 N State", snapshot(t, session).Value)
}

func TestGeocodeFailureLeavesValueUntouched(t *testing.T) {
	provider := newFakeProvider()
	provider.suggestions["200 E Ran"] = []places.Candidate{randolphCandidate()}
	provider.errs[randolph] = context.DeadlineExceeded
	session, rec := startSession(t, provider)

	session.SetValue("200 E Ran")
	waitForState(t, session, StateReady)

	session.Select("randolph")
	require.Eventually(t, func() bool { return len(rec.Errors()) == 1 }, waitFor, tick)

	assert.ErrorIs(t, rec.Errors()[0], ErrGeocodeFailure)
	assert.Empty(t, rec.Selected())
	got := snapshot(t, session)
	assert.Equal(t, "200 E Ran", got.Value)
	assert.Equal(t, StateIdle, got.State)
}

func TestSelectUnknownCandidate(t *testing.T) {
	provider := newFakeProvider()
	session, rec := startSession(t, provider)

	session.Select("missing")
	require.Eventually(t, func() bool { return len(rec.Errors()) == 1 }, waitFor, tick)
	assert.ErrorIs(t, rec.Errors()[0], ErrUnknownCandidate)
	assert.Empty(t, provider.Geocodes())
}

func TestSetValueSilentlyInvalidatesQuery(t *testing.T) {
	provider := newFakeProvider()
	provider.suggestions["200"] = []places.Candidate{randolphCandidate()}
	release := provider.gate("200")
	session, _ := startSession(t, provider)

	session.SetValue("200")
	waitForState(t, session, StateRequesting)

	session.SetValueSilently("200 E Randolph St")
	close(release)
	time.Sleep(3 * testDebounce)

	got := snapshot(t, session)
	assert.Equal(t, StateIdle, got.State)
	assert.Equal(t, "200 E Randolph St", got.Value)
	assert.Empty(t, got.Suggestions)
	assert.Equal(t, []string{"200"}, provider.Queries())
}

func TestRunTwice(t *testing.T) {
	session, _ := startSession(t, newFakeProvider())
	// The first Run starts asynchronously; make sure it owns the session.
	snapshot(t, session)

	require.ErrorIs(t, session.Run(context.Background()), ErrAlreadyRunning)
}

func TestStateMarshalsByName(t *testing.T) {
	text, err := StateRequesting.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "requesting", string(text))
	assert.Equal(t, "unknown", State(42).String())
}
