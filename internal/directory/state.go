package directory

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"finitefield.org/mall-web/internal/prefs"
)

// DefaultFetchDelay mimics network latency for the simulated catalog fetch.
const DefaultFetchDelay = 800 * time.Millisecond

const persistTimeout = 2 * time.Second

// ErrClosed is returned once the owner has torn the state down.
var ErrClosed = errors.New("directory: state closed")

// PreferenceStore is the durable key-value storage used for Preferences.
type PreferenceStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Options configures a State.
type Options struct {
	// Catalog is the static data source. Defaults to DemoCatalog().
	Catalog []Store
	// Loaded populates stores synchronously instead of waiting for Fetch.
	Loaded bool
	// Storage persists Preferences. Nil keeps them in memory only.
	Storage PreferenceStore
	// Key overrides StorageKey.
	Key        string
	FetchDelay time.Duration
	// After replaces the fetch timer, primarily for tests.
	After  func(time.Duration) <-chan time.Time
	Logger *zap.Logger
}

// Snapshot is a consistent copy of everything the presentation layer reads.
type Snapshot struct {
	Stores      []Store
	Loading     bool
	Criteria    Criteria
	Preferences Preferences
	Filtered    []Store
	Categories  []Category
}

// State owns the catalog together with the filter and view state of one visitor.
type State struct {
	mu       sync.RWMutex
	stores   []Store
	loading  bool
	criteria Criteria
	prefs    Preferences
	closed   bool

	// persistMu orders write-through so storage never sees an older snapshot last.
	persistMu sync.Mutex

	source  []Store
	storage PreferenceStore
	key     string
	delay   time.Duration
	after   func(time.Duration) <-chan time.Time
	logger  *zap.Logger

	done     chan struct{}
	doneOnce sync.Once
}

// New builds a State and rehydrates Preferences from storage when present.
func New(ctx context.Context, opts Options) *State {
	s := &State{
		source:  opts.Catalog,
		storage: opts.Storage,
		key:     opts.Key,
		delay:   opts.FetchDelay,
		after:   opts.After,
		logger:  opts.Logger,
		prefs:   DefaultPreferences(),
		done:    make(chan struct{}),
	}
	if s.source == nil {
		s.source = DemoCatalog()
	}
	if s.key == "" {
		s.key = StorageKey
	}
	if s.delay <= 0 {
		s.delay = DefaultFetchDelay
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if opts.Loaded {
		s.stores = cloneStores(s.source)
	}
	s.prefs = s.rehydrate(ctx)
	return s
}

func (s *State) rehydrate(ctx context.Context) Preferences {
	if s.storage == nil {
		return DefaultPreferences()
	}
	raw, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, prefs.ErrNotFound) {
			s.logger.Warn("directory: read preferences failed", zap.String("key", s.key), zap.Error(err))
		}
		return DefaultPreferences()
	}
	p, ok := DecodePreferences(raw)
	if !ok {
		s.logger.Warn("directory: malformed preferences ignored", zap.String("key", s.key))
	}
	return p
}

// SetSearchTerm replaces the search term. Empty clears it.
func (s *State) SetSearchTerm(term string) {
	s.mu.Lock()
	s.criteria.SearchTerm = term
	s.mu.Unlock()
}

// SetActiveCategory replaces the category filter. Empty clears it.
func (s *State) SetActiveCategory(c Category) {
	s.updatePreferences(func(p *Preferences) { p.ActiveCategory = c })
}

// SetActiveFloor replaces the floor filter. Zero clears it.
func (s *State) SetActiveFloor(floor int) {
	s.updatePreferences(func(p *Preferences) { p.ActiveFloor = floor })
}

// SetViewMode replaces the view mode.
func (s *State) SetViewMode(m ViewMode) {
	m = ParseViewMode(string(m))
	s.updatePreferences(func(p *Preferences) { p.ViewMode = m })
}

// ToggleShowOnlyNew flips the "new stores only" toggle.
func (s *State) ToggleShowOnlyNew() {
	s.mu.Lock()
	s.criteria.ShowOnlyNew = !s.criteria.ShowOnlyNew
	s.mu.Unlock()
}

// ToggleShowOnlyWithPromotions flips the "with promotions only" toggle.
func (s *State) ToggleShowOnlyWithPromotions() {
	s.mu.Lock()
	s.criteria.ShowOnlyWithPromotions = !s.criteria.ShowOnlyWithPromotions
	s.mu.Unlock()
}

// ToggleShowOnlyWithLoyalty flips the "with loyalty program only" toggle.
func (s *State) ToggleShowOnlyWithLoyalty() {
	s.mu.Lock()
	s.criteria.ShowOnlyWithLoyalty = !s.criteria.ShowOnlyWithLoyalty
	s.mu.Unlock()
}

func (s *State) updatePreferences(fn func(*Preferences)) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	fn(&s.prefs)
	snapshot := s.prefs
	closed := s.closed
	s.mu.Unlock()

	if closed || s.storage == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.storage.Set(ctx, s.key, EncodePreferences(snapshot)); err != nil {
		s.logger.Warn("directory: persist preferences failed", zap.String("key", s.key), zap.Error(err))
	}
}

// Fetch simulates loading the catalog from a server. Loading is set before the
// wait begins and cleared together with the store assignment once it elapses.
// Cancelling ctx abandons the wait without assigning stores; after Close no
// field is written at all.
func (s *State) Fetch(ctx context.Context) error {
	if err := s.beginFetch(); err != nil {
		return err
	}
	return s.awaitFetch(ctx)
}

func (s *State) beginFetch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.loading = true
	return nil
}

func (s *State) awaitFetch(ctx context.Context) error {
	var wait <-chan time.Time
	if s.after != nil {
		wait = s.after(s.delay)
	} else {
		t := time.NewTimer(s.delay)
		defer t.Stop()
		wait = t.C
	}

	select {
	case <-wait:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		s.mu.Lock()
		if !s.closed {
			s.loading = false
		}
		s.mu.Unlock()
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.stores = cloneStores(s.source)
	s.loading = false
	return nil
}

// Close tears the state down. Pending fetches return ErrClosed without writing.
func (s *State) Close() {
	s.doneOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)
	})
}

// Loading reports whether a fetch is in progress.
func (s *State) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Stores returns a copy of the loaded catalog.
func (s *State) Stores() []Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneStores(s.stores)
}

// Criteria returns the current session-only criteria.
func (s *State) Criteria() Criteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria
}

// Preferences returns the current persisted preferences.
func (s *State) Preferences() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// Filtered derives the visible stores from the current criteria.
func (s *State) Filtered() []Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Filter(s.stores, s.criteria, s.prefs)
}

// Categories returns the distinct categories of the loaded catalog.
func (s *State) Categories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Categories(s.stores)
}

// Snapshot returns a consistent copy of the state and its derived views.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Stores:      cloneStores(s.stores),
		Loading:     s.loading,
		Criteria:    s.criteria,
		Preferences: s.prefs,
		Filtered:    Filter(s.stores, s.criteria, s.prefs),
		Categories:  Categories(s.stores),
	}
}
