package services

import (
	"context"
	"sort"
	"sync"
	"time"
	"translit/internal/models"
	"translit/internal/providers"
)

type MutationFunc[V, R any] func(ctx context.Context, vars V) (R, error)

// MutationCallbacks are optional; nil fields are skipped.
type MutationCallbacks[V, R any] struct {
	OnSuccess func(ctx context.Context, data R, vars V)
	OnError   func(ctx context.Context, err error, vars V)
	OnSettled func(ctx context.Context, data R, err error, vars V)
}

func (cb *MutationCallbacks[V, R]) run(ctx context.Context, data R, err error, vars V) {
	if cb == nil {
		return
	}
	if err != nil {
		if cb.OnError != nil {
			cb.OnError(ctx, err, vars)
		}
	} else if cb.OnSuccess != nil {
		cb.OnSuccess(ctx, data, vars)
	}
	if cb.OnSettled != nil {
		cb.OnSettled(ctx, data, err, vars)
	}
}

type MutationListener func(state models.MutationState)

// MutationController tracks one remote operation through
// idle -> pending -> success|error. Every Mutate call runs exactly once;
// the observable state follows the most recent call only.
type MutationController[V, R any] struct {
	name    string
	fn      MutationFunc[V, R]
	hooks   *MutationCallbacks[V, R]
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	now     func() time.Time

	mu         sync.Mutex
	state      models.MutationState
	generation uint64
	listeners  map[uint64]MutationListener
	nextID     uint64
}

func NewMutationController[V, R any](name string, fn MutationFunc[V, R], hooks *MutationCallbacks[V, R], logger providers.Logger, metrics providers.MetricsProviderInterface) *MutationController[V, R] {
	return &MutationController[V, R]{
		name:      name,
		fn:        fn,
		hooks:     hooks,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
		state:     models.IdleMutation(),
		listeners: make(map[uint64]MutationListener),
	}
}

func (m *MutationController[V, R]) State() models.MutationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *MutationController[V, R]) Subscribe(listener MutationListener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.listeners[id] = listener

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.listeners, id)
		})
	}
}

// snapshot must be called with m.mu held.
func (m *MutationController[V, R]) snapshot() (models.MutationState, []MutationListener) {
	ids := make([]uint64, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	listeners := make([]MutationListener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, m.listeners[id])
	}
	return m.state, listeners
}

func (m *MutationController[V, R]) notify(state models.MutationState, listeners []MutationListener) {
	for _, l := range listeners {
		l(state)
	}
}

// Mutate moves to pending before returning control to fn, then settles.
// Controller hooks run after the settled state is published and before
// the per-call callbacks.
func (m *MutationController[V, R]) Mutate(ctx context.Context, vars V, callbacks *MutationCallbacks[V, R]) (R, error) {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.state = models.MutationState{
		Status:      models.MutationPending,
		Variables:   vars,
		SubmittedAt: m.now(),
	}
	state, listeners := m.snapshot()
	m.mu.Unlock()
	m.notify(state, listeners)

	data, err := m.fn(ctx, vars)

	if err != nil {
		m.metrics.IncMutations(m.name, providers.OutcomeError)
		m.logger.Errorf(providers.TypeMutation, "%s(%v) failed: %s", m.name, vars, err)
	} else {
		m.metrics.IncMutations(m.name, providers.OutcomeSuccess)
		m.logger.Infof(providers.TypeMutation, "%s(%v) succeeded", m.name, vars)
	}

	m.mu.Lock()
	latest := gen == m.generation
	if latest {
		settled := models.MutationState{
			Status:      models.MutationSuccess,
			Variables:   vars,
			SubmittedAt: m.state.SubmittedAt,
		}
		if err != nil {
			settled.Status = models.MutationError
			settled.Error = err
		} else {
			settled.Data = data
		}
		m.state = settled
	}
	state, listeners = m.snapshot()
	m.mu.Unlock()
	if latest {
		m.notify(state, listeners)
	}

	m.hooks.run(ctx, data, err, vars)
	callbacks.run(ctx, data, err, vars)
	return data, err
}

// Reset returns to idle. Results of calls still in flight are not published.
func (m *MutationController[V, R]) Reset() {
	m.mu.Lock()
	m.generation++
	m.state = models.IdleMutation()
	state, listeners := m.snapshot()
	m.mu.Unlock()
	m.notify(state, listeners)
}
