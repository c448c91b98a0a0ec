package models

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var ErrNoLoader = errors.New("no loader registered for query")

type Loader func(ctx context.Context) (any, error)

type QueryListener func(state QueryState)

type queryEntry struct {
	key       QueryKey
	state     QueryState
	loader    Loader
	inFlight  int
	listeners map[uint64]QueryListener
}

// QueryStore caches the last known server state per query key. Entries are
// created on first use and only change through Fetch and Invalidate; nothing
// refetches on its own.
type QueryStore struct {
	mu      sync.Mutex
	entries map[string]*queryEntry
	nextID  uint64
	now     func() time.Time
}

func NewQueryStore() *QueryStore {
	return &QueryStore{
		entries: make(map[string]*queryEntry),
		now:     time.Now,
	}
}

func (s *QueryStore) entry(key QueryKey) *queryEntry {
	id := key.String()
	e, ok := s.entries[id]
	if !ok {
		e = &queryEntry{
			key:       key,
			state:     pendingState(),
			listeners: make(map[uint64]QueryListener),
		}
		s.entries[id] = e
	}
	return e
}

// snapshot must be called with s.mu held.
func (s *QueryStore) snapshot(e *queryEntry) (QueryState, []QueryListener) {
	ids := make([]uint64, 0, len(e.listeners))
	for id := range e.listeners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	listeners := make([]QueryListener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, e.listeners[id])
	}
	return e.state, listeners
}

func notify(state QueryState, listeners []QueryListener) {
	for _, l := range listeners {
		l(state)
	}
}

// Read returns the state of key. Invalid keys never have an entry and
// read as pending.
func (s *QueryStore) Read(key QueryKey) QueryState {
	if key.Validate() != nil {
		return pendingState()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key.String()]
	if !ok {
		return pendingState()
	}
	return e.state
}

// Subscribe registers listener for every transition of key. Unsubscribing
// keeps the entry and its data. Invalid keys are never notified.
func (s *QueryStore) Subscribe(key QueryKey, listener QueryListener) func() {
	if key.Validate() != nil {
		return func() {}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entry(key)
	s.nextID++
	id := s.nextID
	e.listeners[id] = listener

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(e.listeners, id)
		})
	}
}

// Fetch runs loader for key and records the outcome. A nil loader reuses
// the one registered by an earlier call. Overlapping fetches are not
// deduplicated: each one applies its result when it completes, so the
// last to finish decides the final state.
func (s *QueryStore) Fetch(ctx context.Context, key QueryKey, loader Loader) error {
	if err := key.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	e := s.entry(key)
	if loader != nil {
		e.loader = loader
	}
	run := e.loader
	if run == nil {
		s.mu.Unlock()
		return ErrNoLoader
	}
	e.inFlight++
	e.state.IsFetching = true
	if !e.state.HasData {
		e.state.Status = QueryPending
		e.state.Error = nil
	}
	state, listeners := s.snapshot(e)
	s.mu.Unlock()
	notify(state, listeners)

	data, err := run(ctx)

	s.mu.Lock()
	e.inFlight--
	e.state.IsFetching = e.inFlight > 0
	if err != nil {
		e.state.Status = QueryError
		e.state.Error = err
		e.state.ErrorUpdatedAt = s.now()
	} else {
		e.state.Status = QuerySuccess
		e.state.Data = data
		e.state.HasData = true
		e.state.Error = nil
		e.state.IsStale = false
		e.state.DataUpdatedAt = s.now()
	}
	state, listeners = s.snapshot(e)
	s.mu.Unlock()
	notify(state, listeners)

	return err
}

// Invalidate marks key stale and re-runs its registered loader. Keys that
// were never fetched are only marked.
func (s *QueryStore) Invalidate(ctx context.Context, key QueryKey) error {
	if err := key.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	e := s.entry(key)
	e.state.IsStale = true
	hasLoader := e.loader != nil
	state, listeners := s.snapshot(e)
	s.mu.Unlock()

	if !hasLoader {
		notify(state, listeners)
		return nil
	}
	return s.Fetch(ctx, key, nil)
}
