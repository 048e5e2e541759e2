package httpapi

// DefaultMaxBodyBytes is the /infer body limit when none is configured.
// Base64 photos routinely exceed a few MiB.
const DefaultMaxBodyBytes int64 = 16 << 20

// maxBodyBytes controls the maximum allowed request body size for /infer.
var maxBodyBytes = DefaultMaxBodyBytes

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
		return
	}
	maxBodyBytes = n
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server. Empty lists
// fall back to any origin, GET/POST/OPTIONS and the Content-Type header.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
