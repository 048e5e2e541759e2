package types

// InferRequest is the body of POST /infer.
type InferRequest struct {
	// Base64 image payload, optionally framed as a data URL.
	// A nil pointer means the key was absent from the body.
	// example: data:image/png;base64,iVBORw0KGgo...
	Image *string `json:"image" example:"data:image/png;base64,iVBORw0KGgo..."`
}

// Prediction is one detected object.
type Prediction struct {
	// Label resolved from the model's class table.
	// example: person
	Class string `json:"class" example:"person"`
	// Detection confidence in [0, 1].
	// example: 0.91
	Confidence float64 `json:"confidence" example:"0.91"`
	// Axis-aligned box as [x_min, y_min, x_max, y_max] in input image pixels.
	// example: [12.5, 40, 210.25, 388]
	Box [4]float64 `json:"box"`
}

// InferResponse is returned by POST /infer. Predictions are sorted by
// confidence, highest first.
type InferResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// example: healthy
	Status string `json:"status" example:"healthy"`
	// True when the detection model was loaded at startup.
	// example: true
	ModelLoaded bool `json:"model_loaded" example:"true"`
}

// LabelsResponse is returned by GET /labels.
type LabelsResponse struct {
	Labels []string `json:"labels"`
}

// ErrorResponse is the JSON error payload for every failing endpoint.
type ErrorResponse struct {
	// Error message.
	// example: No image data provided
	Error string `json:"error" example:"No image data provided"`
}

// ModelStatus describes the loaded model in /status.
type ModelStatus struct {
	// Absolute path of the weights file.
	// example: /srv/models/best.onnx
	Path string `json:"path" example:"/srv/models/best.onnx"`
	// Execution device the sessions were placed on.
	// example: cuda
	Device string `json:"device" example:"cuda"`
	// example: 640
	InputWidth int `json:"input_width" example:"640"`
	// example: 640
	InputHeight int `json:"input_height" example:"640"`
	// Number of entries in the label table.
	// example: 80
	Classes int `json:"classes" example:"80"`
	// Number of inference sessions, i.e. the maximum parallel forward passes.
	// example: 1
	PoolSize int `json:"pool_size" example:"1"`
	// Sessions currently running a forward pass.
	// example: 0
	PoolInUse int `json:"pool_in_use" example:"0"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall service state: ready or error.
	// example: ready
	State string `json:"state" example:"ready"`
	// example: true
	ModelLoaded bool `json:"model_loaded" example:"true"`
	// Load failure text when the model is absent.
	LastError string `json:"last_error,omitempty"`
	// Loaded model details; omitted in degraded mode.
	Model *ModelStatus `json:"model,omitempty"`
	// Total /infer calls handled.
	// example: 42
	RequestsTotal uint64 `json:"requests_total" example:"42"`
	// Total /infer calls that returned an error.
	// example: 1
	FailuresTotal uint64 `json:"failures_total" example:"1"`
	// CPU features relevant to inference speed.
	CPUFeatures []string `json:"cpu_features,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
