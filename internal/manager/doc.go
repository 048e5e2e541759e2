// Package manager owns the detection model for the lifetime of the process
// and turns /infer payloads into predictions. It is structured into small
// files by concern:
//
//   - manager.go: core Manager type, Health/Ready/Labels.
//   - config.go: ManagerConfig; NewWithConfig applies it.
//   - types.go: the Model interface and lifecycle State.
//   - errors.go: typed errors carrying their HTTP status.
//   - decode.go: base64 / data-URL payload decoding into an image.
//   - infer.go: the inference entry point and prediction flattening.
//   - status_report.go: Status reporting for /status.
//   - metrics.go: Prometheus collectors for inference.
//
// The model is injected; a nil Model puts the manager in degraded mode where
// Health still answers and Infer reports the model as not loaded.
package manager
