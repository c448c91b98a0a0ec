package models

import "time"

type ViewState int

const (
	ViewLoading ViewState = iota
	ViewError
	ViewEmpty
	ViewPopulated
)

func (v ViewState) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewError:
		return "error"
	case ViewEmpty:
		return "empty"
	default:
		return "populated"
	}
}

type ToastKind string

const (
	ToastCopied  ToastKind = "copied"
	ToastDeleted ToastKind = "deleted"
)

type Toast struct {
	Kind      ToastKind
	ExpiresAt time.Time
}

// TransientUIState is owned by the history view and never persisted.
// PendingDeleteID is zero when no delete awaits confirmation.
type TransientUIState struct {
	PendingDeleteID int64
	Toast           *Toast
}

func (u TransientUIState) DialogOpen() bool {
	return u.PendingDeleteID != 0
}

// HistorySnapshot is everything a renderer needs for one frame.
type HistorySnapshot struct {
	View          ViewState
	Records       []Conversion
	Error         error
	IsFetching    bool
	UI            TransientUIState
	DeletePending bool
}

// DeriveViewState maps a list query onto the four view states. An error
// wins over cached data.
func DeriveViewState(q QueryState) ViewState {
	switch {
	case q.Status == QueryError:
		return ViewError
	case q.Status == QueryPending && !q.HasData:
		return ViewLoading
	}
	records, _ := QueryData[[]Conversion](q)
	if len(records) == 0 {
		return ViewEmpty
	}
	return ViewPopulated
}

// ProjectHistory combines the list query, local UI state and the delete
// mutation into one snapshot. Records are only exposed when populated.
func ProjectHistory(q QueryState, ui TransientUIState, m MutationState) HistorySnapshot {
	snap := HistorySnapshot{
		View:          DeriveViewState(q),
		IsFetching:    q.IsFetching,
		UI:            ui,
		DeletePending: m.IsPending(),
	}
	if ui.Toast != nil {
		toast := *ui.Toast
		snap.UI.Toast = &toast
	}
	switch snap.View {
	case ViewError:
		snap.Error = q.Error
	case ViewPopulated:
		records, _ := QueryData[[]Conversion](q)
		snap.Records = append([]Conversion(nil), records...)
	}
	return snap
}
