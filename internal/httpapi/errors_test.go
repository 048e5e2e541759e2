package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errors.New("boom"), http.StatusInternalServerError},
		{mockHTTPError{msg: "missing", code: http.StatusBadRequest}, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", mockHTTPError{msg: "gone", code: http.StatusNotFound}), http.StatusNotFound},
		{mockHTTPError{msg: "odd", code: 200}, http.StatusInternalServerError},
		{mockHTTPError{msg: "odd", code: 0}, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := errorStatus(c.err); got != c.want {
			t.Fatalf("%v: status=%d want %d", c.err, got, c.want)
		}
	}
}

func TestWriteServiceError_KeepsMessage(t *testing.T) {
	w := httptest.NewRecorder()
	status := writeServiceError(w, mockHTTPError{msg: "No image data provided", code: http.StatusBadRequest})
	if status != http.StatusBadRequest || w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d code=%d", status, w.Code)
	}
	if got := w.Body.String(); got != "{\"error\":\"No image data provided\"}\n" {
		t.Fatalf("body=%q", got)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type=%q", ct)
	}
}
