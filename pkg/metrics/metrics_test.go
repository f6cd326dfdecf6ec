package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryCounter(t *testing.T) {
	m := NewInMemoryMetrics()
	labels := map[string]string{"operation": "get issue"}

	m.Counter("requests", 1, labels)
	m.Counter("requests", 2, labels)
	m.Counter("requests", 1, map[string]string{"operation": "search"})

	assert.Equal(t, 3.0, m.CounterValue("requests", labels))
	assert.Equal(t, 1.0, m.CounterValue("requests", map[string]string{"operation": "search"}))
	assert.Equal(t, 0.0, m.CounterValue("requests", nil))
}

func TestSnapshotSorted(t *testing.T) {
	m := NewInMemoryMetrics()
	m.Counter("b", 1, nil)
	m.Counter("a", 1, nil)

	lines := m.Snapshot()
	assert.Equal(t, []string{"a=1", "b=1"}, lines)
}

func TestMetricKeyStable(t *testing.T) {
	m := NewInMemoryMetrics()
	m.Counter("req", 1, map[string]string{"a": "1", "b": "2"})
	m.Counter("req", 1, map[string]string{"b": "2", "a": "1"})
	assert.Equal(t, 2.0, m.CounterValue("req", map[string]string{"a": "1", "b": "2"}))
}

func TestConcurrentAccess(t *testing.T) {
	m := NewInMemoryMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Counter("hits", 1, nil)
				m.Timer("latency", 0.01, nil)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000.0, m.CounterValue("hits", nil))
}
