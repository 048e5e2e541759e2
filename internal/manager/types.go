package manager

import (
	"context"
	"image"

	"detectd/internal/detector"
)

// State represents the lifecycle state of the manager.
type State string

const (
	StateReady State = "ready"
	StateError State = "error"
)

// Model is the detection capability the manager drives. *detector.Detector
// implements it; tests use fakes.
type Model interface {
	Detect(ctx context.Context, img image.Image) ([]detector.Result, error)
	Labels() []string
	Info() detector.Info
	Close() error
}
