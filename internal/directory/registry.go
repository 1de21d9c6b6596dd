package directory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultIdleTTL       = 30 * time.Minute
	defaultSweepInterval = time.Minute
)

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// State is the template for every visitor state. Key is derived per visitor.
	State         Options
	IdleTTL       time.Duration
	SweepInterval time.Duration
	Now           func() time.Time
}

// Registry owns one State per visitor session. States are created on first
// use, rehydrated from storage, and fetched in the background; idle states
// are evicted so their session-only criteria reset like a page reload would.
type Registry struct {
	mu     sync.Mutex
	states map[string]*registryEntry
	closed bool

	opts   Options
	ttl    time.Duration
	sweep  time.Duration
	now    func() time.Time
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type registryEntry struct {
	state    *State
	lastSeen time.Time
}

// NewRegistry constructs a Registry. Call Close to release every state.
func NewRegistry(opts RegistryOptions) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry{
		states: map[string]*registryEntry{},
		opts:   opts.State,
		ttl:    opts.IdleTTL,
		sweep:  opts.SweepInterval,
		now:    opts.Now,
		logger: opts.State.Logger,
		ctx:    ctx,
		cancel: cancel,
	}
	if r.ttl <= 0 {
		r.ttl = defaultIdleTTL
	}
	if r.sweep <= 0 {
		r.sweep = defaultSweepInterval
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

// StorageKeyFor returns the per-visitor storage key.
func StorageKeyFor(sessionID string) string {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return StorageKey
	}
	return StorageKey + ":" + sessionID
}

// Get returns the state of the given session, creating it when missing.
func (r *Registry) Get(ctx context.Context, sessionID string) (*State, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	if e, ok := r.states[sessionID]; ok {
		e.lastSeen = r.now()
		r.mu.Unlock()
		return e.state, nil
	}
	r.mu.Unlock()

	opts := r.opts
	opts.Key = StorageKeyFor(sessionID)
	created := New(ctx, opts)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		created.Close()
		return nil, ErrClosed
	}
	if e, ok := r.states[sessionID]; ok {
		created.Close()
		e.lastSeen = r.now()
		return e.state, nil
	}
	r.states[sessionID] = &registryEntry{state: created, lastSeen: r.now()}
	// loading is raised before Get returns so the first render already shows it
	if !opts.Loaded && created.beginFetch() == nil {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			if err := created.awaitFetch(r.ctx); err != nil && !errors.Is(err, ErrClosed) && !errors.Is(err, context.Canceled) {
				r.logger.Warn("directory: fetch failed", zap.String("session", sessionID), zap.Error(err))
			}
		}()
	}
	return created, nil
}

// Len reports the number of live states.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

// Sweep evicts states idle for longer than the TTL and returns how many were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)
	var evicted []*State

	r.mu.Lock()
	for id, e := range r.states {
		if e.lastSeen.Before(cutoff) {
			evicted = append(evicted, e.state)
			delete(r.states, id)
		}
	}
	r.mu.Unlock()

	for _, s := range evicted {
		s.Close()
	}
	if len(evicted) > 0 {
		r.logger.Debug("directory: evicted idle states", zap.Int("count", len(evicted)))
	}
	return len(evicted)
}

// Run sweeps idle states periodically until ctx is done or the registry closes.
func (r *Registry) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.sweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.ctx.Done():
			return nil
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close tears down every state and waits for background fetches to return.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	states := r.states
	r.states = map[string]*registryEntry{}
	r.mu.Unlock()

	r.cancel()
	for _, e := range states {
		e.state.Close()
	}
	r.wg.Wait()
}
