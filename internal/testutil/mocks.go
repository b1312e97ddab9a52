package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"aisd/internal/models"
	"aisd/internal/providers"
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

// Count returns how many entries were logged at level whose format contains substr.
func (m *MockLogger) Count(level, substr string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level && strings.Contains(e.Format, substr) {
			n++
		}
	}
	return n
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

// MockCompressor implements providers.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockPublisher implements providers.PublisherInterface.
type MockPublisher struct {
	mu        sync.Mutex
	Published []models.PositionReport
	Err       error
}

func (m *MockPublisher) PublishPosition(_ context.Context, report models.PositionReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Published = append(m.Published, report)
	return nil
}

func (m *MockPublisher) Close() {}

func (m *MockPublisher) Reports() []models.PositionReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.PositionReport(nil), m.Published...)
}

// MockMetrics implements providers.MetricsProviderInterface and counts
// ingestion events by label.
type MockMetrics struct {
	mu            sync.Mutex
	Messages      map[string]int
	MessageErrors map[string]int
	Positions     map[string]int
	Records       map[string]int64
	Reconnects    int
	Connected     bool
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Messages:      make(map[string]int),
		MessageErrors: make(map[string]int),
		Positions:     make(map[string]int),
		Records:       make(map[string]int64),
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                    {}
func (m *MockMetrics) IncCacheMisses()                                  {}
func (m *MockMetrics) ObserveStoreWriteDuration(_ time.Duration)        {}

func (m *MockMetrics) IncMessages(messageType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages[messageType]++
}

func (m *MockMetrics) IncMessageErrors(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessageErrors[stage]++
}

func (m *MockMetrics) IncPositions(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Positions[outcome]++
}

func (m *MockMetrics) IncReconnects() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reconnects++
}

func (m *MockMetrics) SetStreamConnected(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Connected = connected
}

func (m *MockMetrics) SetRecordsTotal(table string, count int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records[table] = count
}

// Position returns the count recorded for one position outcome.
func (m *MockMetrics) Position(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Positions[outcome]
}

func (m *MockMetrics) Record(table string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Records[table]
}
