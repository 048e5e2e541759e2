package manager

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Manager serves health, inference and status on top of a single Model.
// The model is set once at construction and never swapped, so no lock
// guards it; concurrency limits live in the Model itself.
type Manager struct {
	model     Model
	labels    []string
	loadErr   string
	strict    bool
	maxPixels int64
	log       zerolog.Logger

	startTime time.Time
	requests  atomic.Uint64
	failures  atomic.Uint64
}

// New returns a Manager for model. A nil model yields a degraded manager.
func New(model Model) *Manager {
	return NewWithConfig(ManagerConfig{Model: model, Logger: zerolog.Nop()})
}

// Health reports liveness. It always succeeds; model_loaded tells whether
// inference can be served.
func (m *Manager) Health() (status string, modelLoaded bool) {
	return "healthy", m.model != nil
}

// Ready reports whether the model is loaded.
func (m *Manager) Ready() bool { return m.model != nil }

// Labels returns a copy of the model's label table.
func (m *Manager) Labels() ([]string, error) {
	if m.model == nil {
		return nil, ErrModelNotLoaded
	}
	return append([]string(nil), m.labels...), nil
}

// Close releases the model.
func (m *Manager) Close() error {
	if m.model == nil {
		return nil
	}
	return m.model.Close()
}
