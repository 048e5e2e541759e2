package detector

import (
	"strings"

	"github.com/rs/zerolog"
)

// Device selects where inference sessions run.
type Device string

const (
	// DeviceAuto tries CUDA first and falls back to CPU.
	DeviceAuto Device = "auto"
	DeviceCPU  Device = "cpu"
	DeviceCUDA Device = "cuda"
)

// ParseDevice normalizes a device name. Unknown values map to DeviceAuto.
func ParseDevice(s string) Device {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpu":
		return DeviceCPU
	case "cuda", "gpu":
		return DeviceCUDA
	default:
		return DeviceAuto
	}
}

// Defaults applied when the corresponding Config fields are unset. They match
// the Ultralytics predictor defaults so exported models behave like the
// Python runtime.
const (
	DefaultConfThreshold = 0.25
	DefaultIoUThreshold  = 0.7
	DefaultMaxDetections = 300
	DefaultInputSize     = 640
	DefaultPoolSize      = 1
)

// Config holds everything needed to load a model.
type Config struct {
	// ModelPath is the ONNX weights file. A leading '~' is expanded.
	ModelPath string
	// LabelsPath is an optional labels file (.yaml/.yml with a names key, or
	// newline separated .txt) used when the model carries no names metadata.
	LabelsPath string
	Device     Device
	// CUDADeviceID selects the GPU when Device is cuda or auto.
	CUDADeviceID int
	// PoolSize is the number of sessions, i.e. the number of forward passes
	// that may run in parallel. 1 serializes inference.
	PoolSize       int
	IntraOpThreads int
	InterOpThreads int
	// InputSize is used when the model declares a dynamic input shape and
	// carries no imgsz metadata.
	InputSize int
	// Zero thresholds and MaxDetections select the package defaults.
	ConfThreshold float32
	IoUThreshold  float32
	MaxDetections int
	// Warmup is the number of blank-frame forward passes run after load.
	Warmup int
	Logger zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.Device == "" {
		c.Device = DeviceAuto
	}
	if c.PoolSize <= 0 {
		c.PoolSize = DefaultPoolSize
	}
	if c.InputSize <= 0 {
		c.InputSize = DefaultInputSize
	}
	if c.ConfThreshold <= 0 {
		c.ConfThreshold = DefaultConfThreshold
	}
	if c.IoUThreshold <= 0 {
		c.IoUThreshold = DefaultIoUThreshold
	}
	if c.MaxDetections <= 0 {
		c.MaxDetections = DefaultMaxDetections
	}
	if c.Warmup < 0 {
		c.Warmup = 0
	}
	return c
}
