package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for the engine and the HTTP
// surface.
type Metrics struct {
	mu                   sync.Mutex
	requestCount         map[string]int64
	errorCount           map[string]int64
	scansRun             int64
	breachesDetected     map[string]int64 // keyed by breach type
	escalationsTriggered int64
	notificationsSent    map[string]int64 // keyed by channel
}

// MetricsSnapshot is a copy of the counters for read-only exposure.
type MetricsSnapshot struct {
	Requests             map[string]int64 `json:"requests"`
	Errors               map[string]int64 `json:"errors"`
	ScansRun             int64            `json:"scans_run"`
	BreachesDetected     map[string]int64 `json:"breaches_detected"`
	EscalationsTriggered int64            `json:"escalations_triggered"`
	NotificationsSent    map[string]int64 `json:"notifications_sent"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:      make(map[string]int64),
		errorCount:        make(map[string]int64),
		breachesDetected:  make(map[string]int64),
		notificationsSent: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordScan counts one completed breach scan and its findings.
func (m *Metrics) RecordScan(breachesByType map[string]int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scansRun++
	for breachType, count := range breachesByType {
		m.breachesDetected[breachType] += int64(count)
	}
}

// RecordEscalation counts one escalation decision handed to the caller.
func (m *Metrics) RecordEscalation() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.escalationsTriggered++
}

// RecordNotification counts a sent notification per channel.
func (m *Metrics) RecordNotification(channel string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationsSent[channel]++
}

// Snapshot copies the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snapshot := MetricsSnapshot{
		Requests:          map[string]int64{},
		Errors:            map[string]int64{},
		BreachesDetected:  map[string]int64{},
		NotificationsSent: map[string]int64{},
	}
	if m == nil {
		return snapshot
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.requestCount {
		snapshot.Requests[k] = v
	}
	for k, v := range m.errorCount {
		snapshot.Errors[k] = v
	}
	for k, v := range m.breachesDetected {
		snapshot.BreachesDetected[k] = v
	}
	for k, v := range m.notificationsSent {
		snapshot.NotificationsSent[k] = v
	}
	snapshot.ScansRun = m.scansRun
	snapshot.EscalationsTriggered = m.escalationsTriggered
	return snapshot
}
