// Package metrics provides metrics collection implementations for jirakit
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jirakit/jirakit/pkg/interfaces"
)

// NoOpMetrics discards all metrics
type NoOpMetrics struct{}

// Counter implements interfaces.Metrics
func (m *NoOpMetrics) Counter(name string, value float64, labels map[string]string) {}

// Gauge implements interfaces.Metrics
func (m *NoOpMetrics) Gauge(name string, value float64, labels map[string]string) {}

// Timer implements interfaces.Metrics
func (m *NoOpMetrics) Timer(name string, duration float64, labels map[string]string) {}

// NewNoOpMetrics creates a metrics sink that discards everything
func NewNoOpMetrics() interfaces.Metrics {
	return &NoOpMetrics{}
}

// InMemoryMetrics accumulates counters and gauges in process memory.
// The CLI prints a summary in debug mode; tests use it to assert that
// the client records request accounting.
type InMemoryMetrics struct {
	mu       sync.Mutex
	counters map[string]float64
	gauges   map[string]float64
	timers   map[string][]float64
}

// NewInMemoryMetrics creates an in-memory metrics sink
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		counters: make(map[string]float64),
		gauges:   make(map[string]float64),
		timers:   make(map[string][]float64),
	}
}

// Counter increments a counter metric
func (m *InMemoryMetrics) Counter(name string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[metricKey(name, labels)] += value
}

// Gauge sets a gauge metric
func (m *InMemoryMetrics) Gauge(name string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[metricKey(name, labels)] = value
}

// Timer records timing metrics in seconds
func (m *InMemoryMetrics) Timer(name string, duration float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := metricKey(name, labels)
	m.timers[key] = append(m.timers[key], duration)
}

// CounterValue returns the accumulated value for a counter
func (m *InMemoryMetrics) CounterValue(name string, labels map[string]string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[metricKey(name, labels)]
}

// Snapshot returns a sorted, human-readable dump of all counters
func (m *InMemoryMetrics) Snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	lines := make([]string, 0, len(m.counters))
	for key, value := range m.counters {
		lines = append(lines, fmt.Sprintf("%s=%g", key, value))
	}
	sort.Strings(lines)
	return lines
}

func metricKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("{%s=%s}", k, labels[k]))
	}
	return b.String()
}
