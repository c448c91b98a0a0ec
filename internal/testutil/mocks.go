package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"translit/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (e LogEntry) Message() string {
	return fmt.Sprintf(e.Format, e.Args...)
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Entries returns the logged entries at level on channel t.
func (m *MockLogger) Entries(level string, t providers.TypeEnum) []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []LogEntry
	for _, e := range m.Logs {
		if e.Level == level && e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Contains reports whether any entry at level has a message containing substr.
func (m *MockLogger) Contains(level, substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Logs {
		if e.Level == level && strings.Contains(e.Message(), substr) {
			return true
		}
	}
	return false
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu           sync.Mutex
	Requests     map[string]int
	CacheHits    int
	CacheMisses  int
	QueryFetches map[string]int
	Mutations    map[string]int
	Toasts       map[string]int
	Records      int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Requests:     make(map[string]int),
		QueryFetches: make(map[string]int),
		Mutations:    make(map[string]int),
		Toasts:       make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests[fmt.Sprintf("%s %d", endpoint, status)]++
}

func (m *MockMetrics) ObserveRequestDuration(string, time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) IncQueryFetches(key string, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryFetches[key+" "+outcome]++
}

func (m *MockMetrics) IncMutations(name string, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mutations[name+" "+outcome]++
}

func (m *MockMetrics) IncToasts(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Toasts[kind]++
}

func (m *MockMetrics) SetRecordsTotal(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = count
}

func (m *MockMetrics) Mutation(name, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Mutations[name+" "+outcome]
}

func (m *MockMetrics) Toast(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Toasts[kind]
}

func (m *MockMetrics) RecordsTotal() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Records
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

// MockClipboard implements providers.ClipboardProviderInterface.
type MockClipboard struct {
	mu    sync.Mutex
	Texts []string
	Err   error
}

func (m *MockClipboard) WriteText(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return fmt.Errorf("%w: %w", providers.ErrClipboardUnavailable, m.Err)
	}
	m.Texts = append(m.Texts, text)
	return nil
}

func (m *MockClipboard) Written() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Texts...)
}

func (m *MockClipboard) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}
