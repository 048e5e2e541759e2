//go:build !swagger

package httpapi

import "github.com/go-chi/chi/v5"

// SwaggerEnabled reports whether this binary serves /swagger/.
const SwaggerEnabled = false

// MountSwagger leaves r untouched; build with -tags=swagger for the UI.
func MountSwagger(chi.Router) {}
