package transform

import (
	"sync"
	"time"
)

// Metrics - 변환 요청 카운터
type Metrics struct {
	mutex     sync.RWMutex
	startTime time.Time
	total     int64
	succeeded int64
	failed    int64
	byStyle   map[string]int64
	byFailure map[string]int64
}

// MetricsSnapshot - /metrics 응답용 복사본
type MetricsSnapshot struct {
	StartTime time.Time        `json:"startTime"`
	Uptime    string           `json:"uptime"`
	Total     int64            `json:"totalTransforms"`
	Succeeded int64            `json:"succeeded"`
	Failed    int64            `json:"failed"`
	ByStyle   map[string]int64 `json:"byStyle"`
	ByFailure map[string]int64 `json:"byFailure"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
		byStyle:   make(map[string]int64),
		byFailure: make(map[string]int64),
	}
}

// RecordSuccess - 성공 1건 (스타일별 집계 포함)
func (m *Metrics) RecordSuccess(styleID string) {
	if m == nil {
		return
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.total++
	m.succeeded++
	m.byStyle[styleID]++
}

// RecordFailure - 실패 1건 (실패 종류별 집계)
func (m *Metrics) RecordFailure(styleID, kind string) {
	if m == nil {
		return
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.total++
	m.failed++
	m.byStyle[styleID]++
	m.byFailure[kind]++
}

// Snapshot - 현재 카운터 복사
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	byStyle := make(map[string]int64, len(m.byStyle))
	for k, v := range m.byStyle {
		byStyle[k] = v
	}
	byFailure := make(map[string]int64, len(m.byFailure))
	for k, v := range m.byFailure {
		byFailure[k] = v
	}
	return MetricsSnapshot{
		StartTime: m.startTime,
		Uptime:    time.Since(m.startTime).Round(time.Second).String(),
		Total:     m.total,
		Succeeded: m.succeeded,
		Failed:    m.failed,
		ByStyle:   byStyle,
		ByFailure: byFailure,
	}
}
