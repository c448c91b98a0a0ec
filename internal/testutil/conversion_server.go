package testutil

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"
	"translit/internal/models"
	"translit/internal/structures"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

// ConversionServer is an in-memory conversion service speaking the
// /api/conversions contract.
type ConversionServer struct {
	URL    string
	server *httptest.Server

	mu           sync.Mutex
	records      []models.Conversion
	listStatus   int
	deleteStatus int
	deleteGate   chan struct{}
	listGate     chan struct{}
	listCalls    int
	deleteCalls  []int64
}

func NewConversionServer(t testing.TB, records ...models.Conversion) *ConversionServer {
	t.Helper()
	s := &ConversionServer{records: append([]models.Conversion(nil), records...)}

	r := chi.NewRouter()
	r.Get("/api/conversions", s.list)
	r.Delete("/api/conversions/{id}", s.delete)

	s.server = httptest.NewServer(r)
	s.URL = s.server.URL
	t.Cleanup(s.server.Close)
	return s
}

// writeText answers with msg as the exact body, without the trailing
// newline http.Error adds.
func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

func (s *ConversionServer) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.listCalls++
	gate := s.listGate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	s.mu.Lock()
	status := s.listStatus
	records := append([]models.Conversion{}, s.records...)
	s.mu.Unlock()

	if status != 0 {
		writeText(w, status, http.StatusText(status))
		return
	}
	body, err := json.Marshal(records)
	if err != nil {
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (s *ConversionServer) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeText(w, http.StatusBadRequest, "invalid id")
		return
	}

	s.mu.Lock()
	s.deleteCalls = append(s.deleteCalls, id)
	gate := s.deleteGate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteStatus != 0 {
		w.WriteHeader(s.deleteStatus)
		return
	}
	for i, c := range s.records {
		if c.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeText(w, http.StatusNotFound, "conversion not found")
}

// FailList makes GET /api/conversions answer with status; 0 restores it.
func (s *ConversionServer) FailList(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listStatus = status
}

// FailDelete makes every DELETE answer with status without body; 0 restores it.
func (s *ConversionServer) FailDelete(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteStatus = status
}

// HoldDeletes blocks DELETE requests until the returned release is called.
func (s *ConversionServer) HoldDeletes() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.deleteGate = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.deleteGate = nil
			s.mu.Unlock()
			close(gate)
		})
	}
}

// HoldLists blocks GET requests until the returned release is called.
func (s *ConversionServer) HoldLists() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.listGate = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.listGate = nil
			s.mu.Unlock()
			close(gate)
		})
	}
}

func (s *ConversionServer) Records() []models.Conversion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Conversion(nil), s.records...)
}

func (s *ConversionServer) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func (s *ConversionServer) DeleteCalls() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.deleteCalls...)
}

// Conversions builds records with the given ids, newest first.
func Conversions(ids ...int64) []models.Conversion {
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	out := make([]models.Conversion, 0, len(ids))
	for i, id := range ids {
		out = append(out, models.Conversion{
			ID:                 id,
			OriginalText:       "privet " + strconv.FormatInt(id, 10),
			TransliteratedText: "привет " + strconv.FormatInt(id, 10),
			CreatedAt:          base.Add(-time.Duration(i) * time.Hour).Format(time.RFC3339Nano),
		})
	}
	return out
}

// Config returns a valid configuration pointing at baseURL with the
// response cache disabled.
func Config(baseURL string) *structures.Config {
	return &structures.Config{
		AppName: "Translit",
		Api: structures.ApiConfig{
			BaseURL: baseURL,
			Timeout: 5 * time.Second,
		},
		Logger: structures.LoggerConfig{
			Level: "debug",
			Mode:  0644,
			Dir:   "/tmp/translit",
		},
		History: structures.HistoryConfig{
			ToastDuration: 2000 * time.Millisecond,
			Unauthorized:  "throw",
		},
	}
}
