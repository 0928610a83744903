package manager

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"classifyd/pkg/types"
)

type Manager struct {
	mu         sync.RWMutex
	state      State
	err        string
	classifier Classifier
	model      *types.ModelInfo
	log        zerolog.Logger

	// Admission primitives
	genCh         chan struct{} // in-flight predictions, cap maxInflight
	queueCh       chan struct{} // admitted requests (waiting + in-flight)
	maxInflight   int
	maxQueueDepth int
	maxWait       time.Duration

	maxImagePixels int64

	startTime     time.Time
	analysesTotal atomic.Uint64
	invalidTotal  atomic.Uint64
	rejectedTotal atomic.Uint64
	failuresTotal atomic.Uint64
}

// New constructs a Manager around an already loaded classifier using the
// package defaults for admission control.
func New(c Classifier) *Manager {
	return NewWithConfig(ManagerConfig{Classifier: c})
}

// SetClassifier installs the classifier and marks the manager ready. It is
// meant to be called once, before the HTTP listener starts.
func (m *Manager) SetClassifier(c Classifier) {
	info := c.Info()
	m.mu.Lock()
	m.classifier = c
	m.model = &info
	m.state = StateReady
	m.err = ""
	m.mu.Unlock()
}

// Drain marks the manager as shutting down. /readyz turns 503 and new
// analyses are refused while in-flight ones finish.
func (m *Manager) Drain() {
	m.mu.Lock()
	if m.state == StateReady {
		m.state = StateDraining
	}
	m.mu.Unlock()
}

func (m *Manager) draining() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateDraining
}

func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateReady && m.classifier != nil
}

// Labels returns a copy of the loaded label set, or nil before load.
func (m *Manager) Labels() []string {
	c := m.current()
	if c == nil {
		return nil
	}
	return append([]string(nil), c.Labels()...)
}

// Close releases the classifier. The manager is unusable afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	c := m.classifier
	m.classifier = nil
	m.state = StateLoading
	m.mu.Unlock()
	if c == nil {
		return nil
	}
	return c.Close()
}

func (m *Manager) current() Classifier {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.classifier
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.err = err.Error()
	m.mu.Unlock()
}
