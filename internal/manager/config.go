package manager

import (
	"time"

	"github.com/rs/zerolog"
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// Model is nil when loading failed; LoadError then says why.
	Model     Model
	LoadError error
	// StrictInputErrors maps malformed payloads to 400 instead of 500.
	StrictInputErrors bool
	// MaxImagePixels bounds decoded width*height; <= 0 uses
	// DefaultMaxImagePixels.
	MaxImagePixels int64
	Logger         zerolog.Logger
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		model:     cfg.Model,
		strict:    cfg.StrictInputErrors,
		maxPixels: cfg.MaxImagePixels,
		log:       cfg.Logger,
		startTime: time.Now(),
	}
	if cfg.Model != nil {
		m.labels = cfg.Model.Labels()
	} else if cfg.LoadError != nil {
		m.loadErr = cfg.LoadError.Error()
	} else {
		m.loadErr = "no model configured"
	}
	return m
}
