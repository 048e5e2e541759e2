//go:build !swagger

package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSwaggerNotServedWithoutTag(t *testing.T) {
	if SwaggerEnabled {
		t.Fatal("default build must not report swagger")
	}
	h := NewMux(&mockService{})
	for _, path := range []string{"/swagger/index.html", "/swagger/doc.json"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s: status=%d, want 404", path, w.Code)
		}
	}
}
