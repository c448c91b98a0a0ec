package services

import (
	"context"
	"errors"
	"fmt"
	"golang.org/x/sync/errgroup"
	"sort"
	"sync"
	"time"
	"translit/internal/models"
	"translit/internal/providers"
	"translit/internal/structures"
)

var (
	ErrInvalidID        = errors.New("conversion id must be positive")
	ErrNoPendingDelete  = errors.New("no delete awaiting confirmation")
	ErrDeleteInProgress = errors.New("delete already in progress")
	ErrRecordNotFound   = errors.New("conversion not found")
)

const (
	deleteMutationName = "delete_conversion"
	deleteConcurrency  = 4
)

type HistoryListener func(snap models.HistorySnapshot)

type DeleteResult struct {
	ID  int64
	Err error
}

type HistoryServiceInterface interface {
	Load(ctx context.Context) error
	Refresh(ctx context.Context) error
	Snapshot() models.HistorySnapshot
	Subscribe(listener HistoryListener) func()
	RequestDelete(id int64) error
	ConfirmDelete(ctx context.Context) error
	CancelDelete()
	Copy(ctx context.Context, text string) error
	CopyRecord(ctx context.Context, id int64) error
	DismissToast()
	DeleteMany(ctx context.Context, ids []int64) []DeleteResult
	Close()
}

// clock lets tests drive toast expiry.
type clock struct {
	now       func() time.Time
	afterFunc func(d time.Duration, f func()) (stop func() bool)
}

func systemClock() clock {
	return clock{
		now: time.Now,
		afterFunc: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
	}
}

// HistoryService owns the transient UI state of the history view and
// projects it together with the list query and the delete mutation.
type HistoryService struct {
	store       *models.QueryStore
	conversions ConversionServiceInterface
	clipboard   providers.ClipboardProviderInterface
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	deletes     *MutationController[int64, struct{}]
	clock       clock
	toastTTL    time.Duration

	mu         sync.Mutex
	ui         models.TransientUIState
	confirming bool
	toastSeq   uint64
	stopToast  func() bool
	listeners  map[uint64]HistoryListener
	nextID     uint64
	detach     []func()
	closed     bool
}

func (hs *HistoryService) Snapshot() models.HistorySnapshot {
	q := hs.store.Read(ConversionsKey)
	hs.mu.Lock()
	ui := hs.ui
	hs.mu.Unlock()
	return models.ProjectHistory(q, ui, hs.deletes.State())
}

func (hs *HistoryService) Subscribe(listener HistoryListener) func() {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.nextID++
	id := hs.nextID
	hs.listeners[id] = listener

	var once sync.Once
	return func() {
		once.Do(func() {
			hs.mu.Lock()
			defer hs.mu.Unlock()
			delete(hs.listeners, id)
		})
	}
}

func (hs *HistoryService) emit() {
	snap := hs.Snapshot()

	hs.mu.Lock()
	if hs.closed {
		hs.mu.Unlock()
		return
	}
	ids := make([]uint64, 0, len(hs.listeners))
	for id := range hs.listeners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	listeners := make([]HistoryListener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, hs.listeners[id])
	}
	hs.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

// Load fetches the list unless fresh data is already cached.
func (hs *HistoryService) Load(ctx context.Context) error {
	q := hs.store.Read(ConversionsKey)
	if q.HasData && !q.IsStale && q.Status == models.QuerySuccess {
		return nil
	}
	return hs.store.Fetch(ctx, ConversionsKey, hs.conversions.ListLoader())
}

// Refresh re-runs the list query regardless of cached state.
func (hs *HistoryService) Refresh(ctx context.Context) error {
	hs.logger.Debugf(providers.TypeUI, "refresh requested")
	return hs.store.Fetch(ctx, ConversionsKey, hs.conversions.ListLoader())
}

func (hs *HistoryService) RequestDelete(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	hs.mu.Lock()
	if hs.confirming {
		hs.mu.Unlock()
		return ErrDeleteInProgress
	}
	hs.ui.PendingDeleteID = id
	hs.mu.Unlock()

	hs.logger.Debugf(providers.TypeUI, "delete requested for %d", id)
	hs.emit()
	return nil
}

// ConfirmDelete runs the delete mutation for the pending id. The dialog
// stays open until the mutation settles and closes on either outcome. On
// success the toast is shown before the list is refetched, and
// ConfirmDelete returns once that refetch is done.
func (hs *HistoryService) ConfirmDelete(ctx context.Context) error {
	hs.mu.Lock()
	id := hs.ui.PendingDeleteID
	if id == 0 {
		hs.mu.Unlock()
		return ErrNoPendingDelete
	}
	if hs.confirming {
		hs.mu.Unlock()
		return ErrDeleteInProgress
	}
	hs.confirming = true
	hs.mu.Unlock()

	_, err := hs.deletes.Mutate(ctx, id, &MutationCallbacks[int64, struct{}]{
		OnSuccess: func(context.Context, struct{}, int64) {
			hs.showToast(models.ToastDeleted)
		},
		OnSettled: func(context.Context, struct{}, error, int64) {
			hs.mu.Lock()
			hs.confirming = false
			if hs.ui.PendingDeleteID == id {
				hs.ui.PendingDeleteID = 0
			}
			hs.mu.Unlock()
			hs.emit()
		},
	})
	if err != nil {
		return err
	}
	hs.invalidateAfterDelete(ctx, id)
	return nil
}

// invalidateAfterDelete refetches the list once a delete succeeded. A
// failed refetch shows up in the list query, so it is only logged here.
func (hs *HistoryService) invalidateAfterDelete(ctx context.Context, id int64) {
	if err := hs.store.Invalidate(ctx, ConversionsKey); err != nil {
		hs.logger.Warnf(providers.TypeQuery, "refetch after deleting %d failed: %s", id, err)
	}
}

// CancelDelete closes the dialog. It does nothing when no delete is
// pending or while the mutation is in flight.
func (hs *HistoryService) CancelDelete() {
	hs.mu.Lock()
	if hs.ui.PendingDeleteID == 0 || hs.confirming {
		hs.mu.Unlock()
		return
	}
	hs.ui.PendingDeleteID = 0
	hs.mu.Unlock()
	hs.emit()
}

// Copy writes text to the clipboard. Failures leave the state untouched
// and are only logged.
func (hs *HistoryService) Copy(ctx context.Context, text string) error {
	if err := hs.clipboard.WriteText(ctx, text); err != nil {
		hs.logger.Warnf(providers.TypeUI, "copy to clipboard failed: %s", err)
		return err
	}
	hs.showToast(models.ToastCopied)
	return nil
}

func (hs *HistoryService) CopyRecord(ctx context.Context, id int64) error {
	records, _ := models.QueryData[[]models.Conversion](hs.store.Read(ConversionsKey))
	record, ok := models.FindConversion(records, id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrRecordNotFound, id)
	}
	return hs.Copy(ctx, record.TransliteratedText)
}

func (hs *HistoryService) showToast(kind models.ToastKind) {
	hs.mu.Lock()
	if hs.closed {
		hs.mu.Unlock()
		return
	}
	if hs.stopToast != nil {
		hs.stopToast()
	}
	hs.toastSeq++
	seq := hs.toastSeq
	hs.ui.Toast = &models.Toast{Kind: kind, ExpiresAt: hs.clock.now().Add(hs.toastTTL)}
	hs.stopToast = hs.clock.afterFunc(hs.toastTTL, func() { hs.expireToast(seq) })
	hs.mu.Unlock()

	hs.metrics.IncToasts(string(kind))
	hs.logger.Debugf(providers.TypeUI, "toast %s shown", kind)
	hs.emit()
}

func (hs *HistoryService) expireToast(seq uint64) {
	hs.mu.Lock()
	if seq != hs.toastSeq || hs.ui.Toast == nil {
		hs.mu.Unlock()
		return
	}
	hs.ui.Toast = nil
	hs.stopToast = nil
	hs.mu.Unlock()
	hs.emit()
}

func (hs *HistoryService) DismissToast() {
	hs.mu.Lock()
	if hs.ui.Toast == nil {
		hs.mu.Unlock()
		return
	}
	if hs.stopToast != nil {
		hs.stopToast()
		hs.stopToast = nil
	}
	hs.toastSeq++
	hs.ui.Toast = nil
	hs.mu.Unlock()
	hs.emit()
}

// DeleteMany deletes every id through its own mutation call. Results keep
// the order of ids.
func (hs *HistoryService) DeleteMany(ctx context.Context, ids []int64) []DeleteResult {
	results := make([]DeleteResult, len(ids))
	var g errgroup.Group
	g.SetLimit(deleteConcurrency)

	for i, id := range ids {
		results[i].ID = id
		g.Go(func() error {
			if id <= 0 {
				results[i].Err = fmt.Errorf("%w: %d", ErrInvalidID, id)
				return nil
			}
			if _, err := hs.deletes.Mutate(ctx, id, nil); err != nil {
				results[i].Err = err
				return nil
			}
			hs.invalidateAfterDelete(ctx, id)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (hs *HistoryService) Close() {
	hs.mu.Lock()
	hs.closed = true
	if hs.stopToast != nil {
		hs.stopToast()
		hs.stopToast = nil
	}
	detach := hs.detach
	hs.detach = nil
	hs.listeners = make(map[uint64]HistoryListener)
	hs.mu.Unlock()

	for _, d := range detach {
		d()
	}
}

func newHistoryService(conf *structures.Config, store *models.QueryStore, conversions ConversionServiceInterface, clipboard providers.ClipboardProviderInterface, logger providers.Logger, metrics providers.MetricsProviderInterface, clk clock) *HistoryService {
	hs := &HistoryService{
		store:       store,
		conversions: conversions,
		clipboard:   clipboard,
		logger:      logger,
		metrics:     metrics,
		clock:       clk,
		toastTTL:    conf.History.ToastDuration,
		listeners:   make(map[uint64]HistoryListener),
	}
	if hs.toastTTL <= 0 {
		hs.toastTTL = providers.DefaultToastDuration
	}

	hs.deletes = NewMutationController(deleteMutationName,
		func(ctx context.Context, id int64) (struct{}, error) {
			return struct{}{}, conversions.DeleteConversion(ctx, id)
		},
		nil, logger, metrics)

	hs.detach = append(hs.detach,
		store.Subscribe(ConversionsKey, func(models.QueryState) { hs.emit() }),
		hs.deletes.Subscribe(func(models.MutationState) { hs.emit() }),
	)
	return hs
}

func NewHistoryService(conf *structures.Config, store *models.QueryStore, conversions ConversionServiceInterface, clipboard providers.ClipboardProviderInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) HistoryServiceInterface {
	return newHistoryService(conf, store, conversions, clipboard, logger, metrics, systemClock())
}
