package address

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"restockd_backend/internal/places"
	"restockd_backend/platform/logger"
)

// DefaultDebounce is how long input must stay unchanged before a
// suggestion query is sent.
const DefaultDebounce = 300 * time.Millisecond

const inboxSize = 32

var (
	// ErrUnknownCandidate is reported when Select names an id that is not
	// in the current suggestion list.
	ErrUnknownCandidate = errors.New("unknown suggestion")
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("autocomplete already running")
)

// State is the phase of a suggestion session.
type State int

const (
	StateIdle State = iota
	StatePending
	StateRequesting
	StateReady
	StateError
)

var stateNames = [...]string{"idle", "pending", "requesting", "ready", "error"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}

// Snapshot is an immutable copy of the session state.
type Snapshot struct {
	Value       string             `json:"value"`
	State       State              `json:"state"`
	Suggestions []places.Candidate `json:"suggestions"`
}

// Options configures an Autocomplete. Callbacks run on the session
// goroutine and must not block on the session itself.
type Options struct {
	Debounce time.Duration
	Region   string
	// OnChange receives every state change.
	OnChange func(Snapshot)
	// OnSelect receives each successfully resolved selection exactly once.
	OnSelect func(CanonicalAddress)
	// OnError receives selection failures. Query failures only show up as
	// StateError with an empty list.
	OnError func(error)
	Logger  *logger.Logger
}

// Autocomplete is one debounced suggestion session. All state is owned by
// the goroutine running Run; the exported methods post messages to it, so
// they are safe for concurrent use.
//
// Every input and selection bumps seq. Timer fires, query results and
// geocode results carry the seq they were started with and are dropped
// when it is no longer current.
type Autocomplete struct {
	provider places.Provider
	resolver *Resolver
	debounce time.Duration
	region   string
	onChange func(Snapshot)
	onSelect func(CanonicalAddress)
	onError  func(error)
	log      *logger.Logger

	inbox   chan func(context.Context)
	done    chan struct{}
	running atomic.Bool

	value       string
	state       State
	suggestions []places.Candidate
	seq         uint64
	timer       *time.Timer
}

// NewAutocomplete creates a session. Nothing happens until Run is called.
func NewAutocomplete(provider places.Provider, resolver *Resolver, opts Options) *Autocomplete {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}

	return &Autocomplete{
		provider: provider,
		resolver: resolver,
		debounce: opts.Debounce,
		region:   opts.Region,
		onChange: opts.OnChange,
		onSelect: opts.OnSelect,
		onError:  opts.OnError,
		log:      opts.Logger,
		inbox:    make(chan func(context.Context), inboxSize),
		done:     make(chan struct{}),
	}
}

// Run processes session events until ctx is cancelled. Queries and
// geocodes started by the session use ctx as well.
func (a *Autocomplete) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(a.done)
	defer a.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-a.inbox:
			fn(ctx)
		}
	}
}

// SetValue records a keystroke and (re)starts the debounce timer. An empty
// value clears the suggestions immediately and never queries.
func (a *Autocomplete) SetValue(value string) {
	a.post(func(context.Context) { a.setValue(value) })
}

// SetValueSilently replaces the text without querying. A query in flight
// is invalidated and the suggestions are cleared.
func (a *Autocomplete) SetValueSilently(value string) {
	a.post(func(context.Context) { a.replaceValue(value) })
}

// Select resolves the suggestion with the given id from the current list.
func (a *Autocomplete) Select(id string) {
	a.post(func(ctx context.Context) { a.selectCandidate(ctx, id) })
}

// Snapshot returns the current state.
func (a *Autocomplete) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if !a.post(func(context.Context) { reply <- a.snapshot() }) {
		return Snapshot{}, context.Canceled
	}

	select {
	case snap := <-reply:
		return snap, nil
	case <-a.done:
		return Snapshot{}, context.Canceled
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// post hands fn to the session goroutine. It reports false once the
// session has stopped.
func (a *Autocomplete) post(fn func(context.Context)) bool {
	select {
	case <-a.done:
		return false
	default:
	}

	select {
	case a.inbox <- fn:
		return true
	case <-a.done:
		return false
	}
}

func (a *Autocomplete) setValue(value string) {
	wasRequesting := a.state == StateRequesting
	seq := a.invalidate()
	a.value = value

	if strings.TrimSpace(value) == "" {
		a.suggestions = nil
		a.state = StateIdle
		a.notify()
		return
	}

	if wasRequesting {
		a.suggestions = nil
	}
	a.state = StatePending
	a.timer = time.AfterFunc(a.debounce, func() {
		a.post(func(ctx context.Context) { a.query(ctx, seq) })
	})
	a.notify()
}

func (a *Autocomplete) replaceValue(value string) {
	a.invalidate()
	a.value = value
	a.suggestions = nil
	a.state = StateIdle
	a.notify()
}

func (a *Autocomplete) query(ctx context.Context, seq uint64) {
	if seq != a.seq {
		return
	}
	a.timer = nil
	a.state = StateRequesting
	a.notify()

	text, region := a.value, a.region
	go func() {
		candidates, err := a.provider.QuerySuggestions(ctx, text, region)
		a.post(func(context.Context) { a.queryDone(seq, candidates, err) })
	}()
}

func (a *Autocomplete) queryDone(seq uint64, candidates []places.Candidate, err error) {
	if seq != a.seq {
		return
	}

	if err != nil {
		a.log.Debug("suggestion query failed", "error", err)
		a.suggestions = nil
		a.state = StateError
		a.notify()
		return
	}

	a.suggestions = candidates
	a.state = StateReady
	a.notify()
}

func (a *Autocomplete) selectCandidate(ctx context.Context, id string) {
	candidate, ok := a.find(id)
	if !ok {
		a.fail(ErrUnknownCandidate)
		return
	}

	seq := a.invalidate()
	a.suggestions = nil
	a.state = StateIdle
	a.notify()

	go func() {
		addr, err := a.resolver.Resolve(ctx, candidate.Description)
		a.post(func(context.Context) { a.resolved(seq, addr, err) })
	}()
}

func (a *Autocomplete) resolved(seq uint64, addr CanonicalAddress, err error) {
	if seq != a.seq {
		return
	}

	if err != nil {
		a.fail(err)
		return
	}

	a.value = addr.Street
	a.notify()
	if a.onSelect != nil {
		a.onSelect(addr)
	}
}

func (a *Autocomplete) find(id string) (places.Candidate, bool) {
	for _, c := range a.suggestions {
		if c.ID == id {
			return c, true
		}
	}
	return places.Candidate{}, false
}

// invalidate stops the timer and makes every outstanding result stale.
func (a *Autocomplete) invalidate() uint64 {
	a.stopTimer()
	a.seq++
	return a.seq
}

func (a *Autocomplete) stopTimer() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Autocomplete) snapshot() Snapshot {
	suggestions := make([]places.Candidate, len(a.suggestions))
	copy(suggestions, a.suggestions)
	return Snapshot{Value: a.value, State: a.state, Suggestions: suggestions}
}

func (a *Autocomplete) notify() {
	if a.onChange != nil {
		a.onChange(a.snapshot())
	}
}

func (a *Autocomplete) fail(err error) {
	if a.onError != nil {
		a.onError(err)
	}
}
