package manager

import (
	"errors"
	"net/http"
)

// inferenceErrorPrefix is prepended to every payload and forward-pass
// failure returned to clients.
const inferenceErrorPrefix = "An error occurred during inference: "

// modelNotLoadedError signals that no model is available (500).
type modelNotLoadedError struct{}

func (modelNotLoadedError) Error() string   { return "Model not loaded" }
func (modelNotLoadedError) StatusCode() int { return http.StatusInternalServerError }

// ErrModelNotLoaded is returned by Infer and Labels in degraded mode.
var ErrModelNotLoaded error = modelNotLoadedError{}

// noImageError signals a request body without an image key (400).
type noImageError struct{}

func (noImageError) Error() string   { return "No image data provided" }
func (noImageError) StatusCode() int { return http.StatusBadRequest }

// ErrNoImage is returned by Infer when the request carries no image.
var ErrNoImage error = noImageError{}

// InputError wraps a malformed payload: bad base64 or an undecodable image.
type InputError struct {
	Err    error
	strict bool
}

func (e *InputError) Error() string { return inferenceErrorPrefix + e.Err.Error() }
func (e *InputError) Unwrap() error { return e.Err }

// StatusCode is 500 unless the manager runs with strict input errors.
func (e *InputError) StatusCode() int {
	if e.strict {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// InferenceError wraps a failure inside the model's forward pass.
type InferenceError struct{ Err error }

func (e *InferenceError) Error() string   { return inferenceErrorPrefix + e.Err.Error() }
func (e *InferenceError) Unwrap() error   { return e.Err }
func (e *InferenceError) StatusCode() int { return http.StatusInternalServerError }

// IsModelNotLoaded reports whether err indicates degraded mode.
func IsModelNotLoaded(err error) bool {
	var target modelNotLoadedError
	return errors.As(err, &target)
}

// IsInputError reports whether err was caused by a malformed payload.
func IsInputError(err error) bool {
	var target *InputError
	return errors.As(err, &target)
}
