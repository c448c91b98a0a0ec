package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"translit/internal/models"
	"translit/internal/providers"
	"translit/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConversionService(t *testing.T, handler http.HandlerFunc) (ConversionServiceInterface, *testutil.MockMetrics) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	conf := testutil.Config(server.URL)
	metrics := testutil.NewMockMetrics()
	logger := &testutil.MockLogger{}
	client, err := providers.NewResourceClient(conf, logger, metrics, testutil.NewMockCache())
	require.NoError(t, err)
	return NewConversionService(conf, client, logger, metrics), metrics
}

func TestConversionService_NullListIsEmpty(t *testing.T) {
	svc, _ := newConversionService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	})

	list, err := svc.ListConversions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestConversionService_KeepsServerOrder(t *testing.T) {
	svc, metrics := newConversionService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":9,"originalText":"a","transliteratedText":"а","createdAt":"2026-10-19T10:00:00Z"},
			{"id":3,"userId":4,"originalText":"b","transliteratedText":"б","createdAt":"2026-10-18T10:00:00Z"}]`))
	})

	list, err := svc.ListConversions(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(9), list[0].ID)
	assert.Equal(t, int64(3), list[1].ID)
	assert.Equal(t, 2, metrics.RecordsTotal())
}

func TestConversionService_RejectsDuplicateIDs(t *testing.T) {
	svc, _ := newConversionService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"originalText":"a"},{"id":1,"originalText":"b"}]`))
	})

	_, err := svc.ListConversions(context.Background())
	assert.ErrorIs(t, err, models.ErrDuplicateID)
}

func TestConversionService_RejectsNonArray(t *testing.T) {
	svc, _ := newConversionService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1}`))
	})

	_, err := svc.ListConversions(context.Background())
	assert.Error(t, err)
}

func TestConversionService_DeleteUsesItemPath(t *testing.T) {
	var mu sync.Mutex
	var method, path string
	svc, _ := newConversionService(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		method, path = r.Method, r.URL.Path
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, svc.DeleteConversion(context.Background(), 42))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/api/conversions/42", path)
}

func TestConversionService_DeleteRejectsInvalidID(t *testing.T) {
	var called atomic.Bool
	svc, _ := newConversionService(t, func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
	})

	assert.ErrorIs(t, svc.DeleteConversion(context.Background(), 0), ErrInvalidID)
	assert.False(t, called.Load())
}

func TestConversionService_ListLoaderCountsOutcomes(t *testing.T) {
	var fail atomic.Bool
	svc, metrics := newConversionService(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})
	loader := svc.ListLoader()

	data, err := loader(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Conversion{}, data)

	fail.Store(true)
	data, err = loader(context.Background())
	assert.Error(t, err)
	assert.Nil(t, data)

	key := ConversionsKey.String()
	assert.Equal(t, 1, metrics.QueryFetches[key+" "+providers.OutcomeSuccess])
	assert.Equal(t, 1, metrics.QueryFetches[key+" "+providers.OutcomeError])
}
