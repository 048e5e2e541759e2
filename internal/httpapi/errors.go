package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"detectd/pkg/types"
)

// HTTPError is implemented by service errors that carry their own status.
type HTTPError interface {
	error
	StatusCode() int
}

// errorStatus maps err to a response status. Errors without a status are
// internal failures.
func errorStatus(err error) int {
	var he HTTPError
	if errors.As(err, &he) {
		if code := he.StatusCode(); code >= 400 && code <= 599 {
			return code
		}
	}
	return http.StatusInternalServerError
}

// writeServiceError writes err as {"error": ...} and returns the status used.
// The message is the error text unchanged; clients match on it.
func writeServiceError(w http.ResponseWriter, err error) int {
	status := errorStatus(err)
	writeJSONError(w, status, err.Error())
	return status
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
