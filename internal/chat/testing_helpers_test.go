package chat

import (
	"io"
	"log/slog"
	"sync"

	"github.com/hitoshi/studyhub/internal/metrics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// recordingMetrics は呼び出された計測を記録するテスト用コレクタ。
type recordingMetrics struct {
	metrics.Nop
	mu       sync.Mutex
	opened   int
	closed   int
	messages int
	dropped  map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{dropped: make(map[string]int)}
}

func (m *recordingMetrics) ChatConnectionOpened() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened++
}

func (m *recordingMetrics) ChatConnectionClosed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
}

func (m *recordingMetrics) RecordChatMessage() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages++
}

func (m *recordingMetrics) RecordChatDropped(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped[reason]++
}

func (m *recordingMetrics) droppedCount(reason string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped[reason]
}
