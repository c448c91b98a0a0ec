package models

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = NewQueryKey("conversions")

func staticLoader(data any, err error) Loader {
	return func(context.Context) (any, error) { return data, err }
}

type stateRecorder struct {
	mu     sync.Mutex
	states []QueryState
}

func (r *stateRecorder) listen(s QueryState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) all() []QueryState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]QueryState(nil), r.states...)
}

func TestQueryStore_ReadUnknownKeyIsPending(t *testing.T) {
	s := NewQueryStore()
	state := s.Read(testKey)
	assert.Equal(t, QueryPending, state.Status)
	assert.False(t, state.HasData)
}

func TestQueryStore_FetchSuccess(t *testing.T) {
	s := NewQueryStore()
	rec := &stateRecorder{}
	s.Subscribe(testKey, rec.listen)

	err := s.Fetch(context.Background(), testKey, staticLoader([]int{1, 2}, nil))
	require.NoError(t, err)

	state := s.Read(testKey)
	assert.Equal(t, QuerySuccess, state.Status)
	assert.Equal(t, []int{1, 2}, state.Data)
	assert.False(t, state.IsFetching)
	assert.False(t, state.DataUpdatedAt.IsZero())

	states := rec.all()
	require.Len(t, states, 2)
	assert.Equal(t, QueryPending, states[0].Status)
	assert.True(t, states[0].IsFetching)
	assert.Equal(t, QuerySuccess, states[1].Status)
}

func TestQueryStore_FetchErrorWithoutData(t *testing.T) {
	s := NewQueryStore()
	boom := errors.New("500: boom")

	err := s.Fetch(context.Background(), testKey, staticLoader(nil, boom))
	assert.ErrorIs(t, err, boom)

	state := s.Read(testKey)
	assert.Equal(t, QueryError, state.Status)
	assert.ErrorIs(t, state.Error, boom)
	assert.False(t, state.HasData)
}

func TestQueryStore_ErrorRetainsPreviousData(t *testing.T) {
	s := NewQueryStore()
	require.NoError(t, s.Fetch(context.Background(), testKey, staticLoader("v1", nil)))

	err := s.Fetch(context.Background(), testKey, staticLoader(nil, errors.New("down")))
	assert.Error(t, err)

	state := s.Read(testKey)
	assert.Equal(t, QueryError, state.Status)
	assert.True(t, state.HasData)
	assert.Equal(t, "v1", state.Data)
}

func TestQueryStore_SuccessClearsError(t *testing.T) {
	s := NewQueryStore()
	_ = s.Fetch(context.Background(), testKey, staticLoader(nil, errors.New("down")))
	require.NoError(t, s.Fetch(context.Background(), testKey, staticLoader("v2", nil)))

	state := s.Read(testKey)
	assert.Equal(t, QuerySuccess, state.Status)
	assert.NoError(t, state.Error)
	assert.Equal(t, "v2", state.Data)
}

func TestQueryStore_RefetchAfterErrorWithoutDataIsPending(t *testing.T) {
	s := NewQueryStore()
	_ = s.Fetch(context.Background(), testKey, staticLoader(nil, errors.New("down")))

	rec := &stateRecorder{}
	s.Subscribe(testKey, rec.listen)
	require.NoError(t, s.Fetch(context.Background(), testKey, staticLoader("ok", nil)))

	states := rec.all()
	require.Len(t, states, 2)
	assert.Equal(t, QueryPending, states[0].Status)
	assert.NoError(t, states[0].Error)
}

func TestQueryStore_RefetchWithDataKeepsStatus(t *testing.T) {
	s := NewQueryStore()
	require.NoError(t, s.Fetch(context.Background(), testKey, staticLoader("v1", nil)))

	rec := &stateRecorder{}
	s.Subscribe(testKey, rec.listen)
	require.NoError(t, s.Fetch(context.Background(), testKey, staticLoader("v2", nil)))

	states := rec.all()
	require.Len(t, states, 2)
	assert.Equal(t, QuerySuccess, states[0].Status)
	assert.True(t, states[0].IsFetching)
	assert.Equal(t, "v1", states[0].Data)
	assert.Equal(t, "v2", states[1].Data)
}

func TestQueryStore_LastCompletionWins(t *testing.T) {
	s := NewQueryStore()
	releaseFirst := make(chan struct{})
	releaseSecond := make(chan struct{})
	started := make(chan struct{}, 2)

	blocking := func(release chan struct{}, value string) Loader {
		return func(context.Context) (any, error) {
			started <- struct{}{}
			<-release
			return value, nil
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = s.Fetch(context.Background(), testKey, blocking(releaseFirst, "first"))
	}()
	<-started
	go func() {
		defer wg.Done()
		_ = s.Fetch(context.Background(), testKey, blocking(releaseSecond, "second"))
	}()
	<-started

	close(releaseSecond)
	require.Eventually(t, func() bool { return s.Read(testKey).Data == "second" }, timeout, tick)
	assert.True(t, s.Read(testKey).IsFetching)

	close(releaseFirst)
	wg.Wait()

	state := s.Read(testKey)
	assert.Equal(t, "first", state.Data)
	assert.False(t, state.IsFetching)
}

func TestQueryStore_InvalidateRerunsLoader(t *testing.T) {
	s := NewQueryStore()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return calls, nil
	}
	require.NoError(t, s.Fetch(context.Background(), testKey, loader))
	require.NoError(t, s.Invalidate(context.Background(), testKey))

	assert.Equal(t, 2, calls)
	state := s.Read(testKey)
	assert.Equal(t, 2, state.Data)
	assert.False(t, state.IsStale)
}

func TestQueryStore_InvalidateWithoutLoaderMarksStale(t *testing.T) {
	s := NewQueryStore()
	require.NoError(t, s.Invalidate(context.Background(), testKey))
	assert.True(t, s.Read(testKey).IsStale)
}

func TestQueryStore_InvalidatePropagatesLoaderError(t *testing.T) {
	s := NewQueryStore()
	fail := false
	loader := func(context.Context) (any, error) {
		if fail {
			return nil, errors.New("down")
		}
		return "v1", nil
	}
	require.NoError(t, s.Fetch(context.Background(), testKey, loader))
	fail = true

	assert.Error(t, s.Invalidate(context.Background(), testKey))
	state := s.Read(testKey)
	assert.Equal(t, QueryError, state.Status)
	assert.Equal(t, "v1", state.Data)
	assert.True(t, state.IsStale)
}

func TestQueryStore_FetchWithoutLoader(t *testing.T) {
	s := NewQueryStore()
	assert.ErrorIs(t, s.Fetch(context.Background(), testKey, nil), ErrNoLoader)
}

func TestQueryStore_FetchInvalidKey(t *testing.T) {
	s := NewQueryStore()
	err := s.Fetch(context.Background(), NewQueryKey(map[string]int{}), staticLoader(1, nil))
	assert.ErrorIs(t, err, ErrInvalidQueryKey)
}

func TestQueryStore_UnsubscribeStopsNotificationsKeepsData(t *testing.T) {
	s := NewQueryStore()
	rec := &stateRecorder{}
	unsubscribe := s.Subscribe(testKey, rec.listen)

	require.NoError(t, s.Fetch(context.Background(), testKey, staticLoader("v1", nil)))
	unsubscribe()
	unsubscribe()
	require.NoError(t, s.Fetch(context.Background(), testKey, staticLoader("v2", nil)))

	assert.Len(t, rec.all(), 2)
	assert.Equal(t, "v2", s.Read(testKey).Data)
}

func TestQueryStore_KeysAreIndependent(t *testing.T) {
	s := NewQueryStore()
	require.NoError(t, s.Fetch(context.Background(), NewQueryKey("conversions", 1), staticLoader("a", nil)))
	require.NoError(t, s.Fetch(context.Background(), NewQueryKey("conversions", 2), staticLoader("b", nil)))

	assert.Equal(t, "a", s.Read(NewQueryKey("conversions", 1)).Data)
	assert.Equal(t, "b", s.Read(NewQueryKey("conversions", int64(2))).Data)
}

func TestQueryStore_ConcurrentFetchAndInvalidate(t *testing.T) {
	s := NewQueryStore()
	require.NoError(t, s.Fetch(context.Background(), testKey, staticLoader(0, nil)))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Invalidate(context.Background(), testKey)
		}()
		go func() {
			defer wg.Done()
			_ = s.Read(testKey)
		}()
	}
	wg.Wait()

	state := s.Read(testKey)
	assert.Equal(t, QuerySuccess, state.Status)
	assert.False(t, state.IsFetching)
}

func TestQueryStore_InvalidUTF8KeysKeepSeparateEntries(t *testing.T) {
	s := NewQueryStore()
	a, b := NewQueryKey("\xff"), NewQueryKey("\xfe")

	require.NoError(t, s.Fetch(context.Background(), a, staticLoader("a", nil)))
	require.NoError(t, s.Fetch(context.Background(), b, staticLoader("b", nil)))

	assert.Equal(t, "a", s.Read(a).Data)
	assert.Equal(t, "b", s.Read(b).Data)
}

func TestQueryStore_InvalidKeyOnReadSubscribeInvalidate(t *testing.T) {
	s := NewQueryStore()
	bad := NewQueryKey([]int{1})
	rec := &stateRecorder{}

	unsubscribe := s.Subscribe(bad, rec.listen)
	unsubscribe()
	assert.Equal(t, QueryPending, s.Read(bad).Status)
	assert.False(t, s.Read(bad).HasData)
	assert.ErrorIs(t, s.Invalidate(context.Background(), bad), ErrInvalidQueryKey)
	assert.Empty(t, s.entries)
}
