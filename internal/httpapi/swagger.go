//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "detectd/docs"
)

// SwaggerEnabled reports whether this binary serves /swagger/.
const SwaggerEnabled = true

// MountSwagger serves the generated OpenAPI document and Swagger UI under
// /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
