package detection

import (
	"sync"

	"github.com/teslashibe/go-wastesort/pkg/vision"
)

// Mock implements Detector for testing. Each Detect call consumes the next
// scripted result; once the script is exhausted it returns no detections.
type Mock struct {
	// DetectFunc, if set, overrides the script.
	DetectFunc func(frame vision.Frame) ([]Detection, error)

	mu     sync.Mutex
	script []MockResult
	calls  int
	closed bool
}

// MockResult is one scripted Detect outcome.
type MockResult struct {
	Detections []Detection
	Err        error
}

// NewMock creates a mock that returns the given results in order.
func NewMock(results ...MockResult) *Mock {
	return &Mock{script: results}
}

// Detect returns the next scripted result.
func (m *Mock) Detect(frame vision.Frame) ([]Detection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.DetectFunc != nil {
		return m.DetectFunc(frame)
	}
	if len(m.script) == 0 {
		return nil, nil
	}
	r := m.script[0]
	m.script = m.script[1:]
	return r.Detections, r.Err
}

// Calls returns the number of Detect invocations.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the mock closed.
func (m *Mock) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
