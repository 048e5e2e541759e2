// Package detector implements the object detection model used by the service:
// a YOLO network exported to ONNX and executed through ONNX Runtime.
//
//   - runtime.go: shared library discovery and environment setup.
//   - config.go: Config and package defaults.
//   - model.go: model introspection (tensor layout, metadata, label table).
//   - session.go: ONNX Runtime session construction and device placement.
//   - pool.go: fixed-size session pool; one forward pass per session at a time.
//   - preprocess.go: letterbox resize and NCHW tensor fill.
//   - postprocess.go: output decoding, coordinate mapping, NMS.
//   - detector.go: Detector, the long-lived model handle.
//
// Thresholding and non-maximum suppression happen here, inside the model
// capability. Callers receive the final detections and do no filtering.
package detector
