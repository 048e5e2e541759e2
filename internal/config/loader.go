package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultMaxBodyBytes bounds /infer request bodies. Base64 images are large.
const DefaultMaxBodyBytes int64 = 16 << 20

// DefaultMaxImagePixels bounds decoded image area (width*height).
const DefaultMaxImagePixels int64 = 178956970

// Detection defaults, matching the Ultralytics predictor.
const (
	DefaultConfThreshold float32 = 0.25
	DefaultIoUThreshold  float32 = 0.7
	DefaultMaxDetections         = 300
)

// CORS configures cross-origin access for browser clients.
type CORS struct {
	Enabled bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	Origins []string `json:"origins" yaml:"origins" toml:"origins"`
	Methods []string `json:"methods" yaml:"methods" toml:"methods"`
	Headers []string `json:"headers" yaml:"headers" toml:"headers"`
}

// Config holds runtime parameters for the service. Default fills in every
// field the service needs; Load and ApplyEnv layer over it.
type Config struct {
	Host string `json:"host" yaml:"host" toml:"host"`
	Port int    `json:"port" yaml:"port" toml:"port"`

	ModelPath      string `json:"model_path" yaml:"model_path" toml:"model_path"`
	LabelsPath     string `json:"labels_path" yaml:"labels_path" toml:"labels_path"`
	ONNXRuntimeLib string `json:"onnxruntime_lib" yaml:"onnxruntime_lib" toml:"onnxruntime_lib"`
	Device         string `json:"device" yaml:"device" toml:"device"`
	CUDADeviceID   int    `json:"cuda_device_id" yaml:"cuda_device_id" toml:"cuda_device_id"`
	PoolSize       int    `json:"pool_size" yaml:"pool_size" toml:"pool_size"`
	IntraOpThreads int    `json:"intra_op_threads" yaml:"intra_op_threads" toml:"intra_op_threads"`
	InterOpThreads int    `json:"inter_op_threads" yaml:"inter_op_threads" toml:"inter_op_threads"`
	InputSize      int    `json:"input_size" yaml:"input_size" toml:"input_size"`
	Warmup         int    `json:"warmup" yaml:"warmup" toml:"warmup"`

	ConfThreshold float32 `json:"conf_threshold" yaml:"conf_threshold" toml:"conf_threshold"`
	IoUThreshold  float32 `json:"iou_threshold" yaml:"iou_threshold" toml:"iou_threshold"`
	MaxDetections int     `json:"max_detections" yaml:"max_detections" toml:"max_detections"`

	MaxBodyBytes      int64 `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	MaxImagePixels    int64 `json:"max_image_pixels" yaml:"max_image_pixels" toml:"max_image_pixels"`
	StrictInputErrors bool  `json:"strict_input_errors" yaml:"strict_input_errors" toml:"strict_input_errors"`

	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`

	CORS CORS `json:"cors" yaml:"cors" toml:"cors"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		ModelPath:      "best.onnx",
		Device:         "auto",
		PoolSize:       1,
		ConfThreshold:  DefaultConfThreshold,
		IoUThreshold:   DefaultIoUThreshold,
		MaxDetections:  DefaultMaxDetections,
		MaxBodyBytes:   DefaultMaxBodyBytes,
		MaxImagePixels: DefaultMaxImagePixels,
		LogLevel:       "info",
		LogFormat:      "auto",
	}
}

// Load reads a configuration file based on its extension and layers it over
// Default. Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from environment variables. PORT is honored for
// compatibility with container platforms; everything else uses DETECTD_*.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Port = p
	}
	if v := getenv("DETECTD_HOST"); v != "" {
		c.Host = v
	}
	if v := getenv("DETECTD_MODEL_PATH"); v != "" {
		c.ModelPath = v
	}
	if v := getenv("DETECTD_LABELS_PATH"); v != "" {
		c.LabelsPath = v
	}
	if v := getenv("DETECTD_ORT_LIB"); v != "" {
		c.ONNXRuntimeLib = v
	}
	if v := getenv("DETECTD_DEVICE"); v != "" {
		c.Device = v
	}
	if v := getenv("DETECTD_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("DETECTD_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := getenv("DETECTD_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DETECTD_POOL_SIZE: %w", err)
		}
		c.PoolSize = n
	}
	if v := getenv("DETECTD_CORS_ORIGINS"); v != "" {
		c.CORS.Enabled = true
		c.CORS.Origins = SplitCSV(v)
	}
	return nil
}

// Addr is the listen address built from Host and Port.
func (c Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Validate rejects values the service cannot run with.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.ModelPath == "" {
		return fmt.Errorf("model_path is required")
	}
	switch strings.ToLower(c.Device) {
	case "", "auto", "cpu", "cuda", "gpu":
	default:
		return fmt.Errorf("unknown device %q (want auto, cpu or cuda)", c.Device)
	}
	if c.PoolSize < 0 {
		return fmt.Errorf("pool_size must not be negative")
	}
	if c.ConfThreshold <= 0 || c.ConfThreshold > 1 {
		return fmt.Errorf("conf_threshold must be within (0, 1]")
	}
	if c.IoUThreshold <= 0 || c.IoUThreshold > 1 {
		return fmt.Errorf("iou_threshold must be within (0, 1]")
	}
	if c.MaxDetections <= 0 {
		return fmt.Errorf("max_detections must be positive")
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must not be negative")
	}
	if c.MaxImagePixels <= 0 {
		return fmt.Errorf("max_image_pixels must be positive")
	}
	return nil
}

// SplitCSV splits a comma-separated list, trimming blanks and dropping
// empty entries.
func SplitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
