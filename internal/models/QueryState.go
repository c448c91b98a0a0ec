package models

import "time"

type QueryStatus string

const (
	QueryPending QueryStatus = "pending"
	QuerySuccess QueryStatus = "success"
	QueryError   QueryStatus = "error"
)

// QueryState is a point-in-time copy of one cache entry. Data survives
// failed fetches until the next success replaces it.
type QueryState struct {
	Status         QueryStatus
	Data           any
	HasData        bool
	Error          error
	IsFetching     bool
	IsStale        bool
	DataUpdatedAt  time.Time
	ErrorUpdatedAt time.Time
}

func pendingState() QueryState {
	return QueryState{Status: QueryPending}
}

// QueryData returns the cached value typed as T.
func QueryData[T any](s QueryState) (T, bool) {
	var zero T
	if !s.HasData {
		return zero, false
	}
	v, ok := s.Data.(T)
	return v, ok
}
