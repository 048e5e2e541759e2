package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"detectd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Health() (status string, modelLoaded bool)
	Status() types.StatusResponse
	Infer(ctx context.Context, req types.InferRequest) (types.InferResponse, error)
	Labels() ([]string, error)
	Ready() bool
}

// NewMux builds the router for svc.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(corsOptions()))
	}

	r.Get("/health", healthHandler(svc))
	r.Post("/infer", inferHandler(svc))
	r.Get("/labels", labelsHandler(svc))
	r.Get("/status", statusHandler(svc))
	r.Get("/readyz", readyzHandler(svc))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)

	return r
}

func corsOptions() cors.Options {
	opts := cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: corsAllowedMethods,
		AllowedHeaders: corsAllowedHeaders,
		MaxAge:         300,
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if len(opts.AllowedMethods) == 0 {
		opts.AllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}
	if len(opts.AllowedHeaders) == 0 {
		opts.AllowedHeaders = []string{"Content-Type", "X-Request-Id", "X-Log-Level"}
	}
	return opts
}

// healthHandler godoc
// @Summary      Liveness and model state
// @Description  Always 200. model_loaded is false when the weights failed to load at startup.
// @Tags         service
// @Produce      json
// @Success      200  {object}  types.HealthResponse
// @Router       /health [get]
func healthHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, loaded := svc.Health()
		writeJSON(w, http.StatusOK, types.HealthResponse{Status: status, ModelLoaded: loaded})
	}
}

// inferHandler godoc
// @Summary      Detect objects in an image
// @Description  Accepts a base64 image, optionally as a data URL, and returns every detection sorted by confidence.
// @Tags         inference
// @Accept       json
// @Produce      json
// @Param        request  body      types.InferRequest  true  "Image payload"
// @Success      200      {object}  types.InferResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      500      {object}  types.ErrorResponse
// @Router       /infer [post]
func inferHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.InferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		lvl := requestLogLevel(r)
		start := time.Now()
		if lvl >= LevelInfo {
			z := logger().Info().Str("path", r.URL.Path).Bool("has_image", req.Image != nil)
			if req.Image != nil {
				z = z.Int("payload_bytes", len(*req.Image))
			}
			withRequestID(z, r).Msg("infer start")
		}

		// Join server base context with request context so shutdown cancels
		// requests still waiting for a session.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		resp, err := svc.Infer(ctx, req)
		if err != nil {
			if r.Context().Err() != nil {
				IncrementCanceled("client")
				return
			}
			if serverBaseCtx.Err() != nil {
				IncrementCanceled("shutdown")
				writeJSONError(w, http.StatusServiceUnavailable, "server shutting down")
				return
			}
			status := writeServiceError(w, err)
			if lvl >= LevelError {
				withRequestID(logger().Error().Int("status", status).Dur("dur", time.Since(start)), r).
					Err(err).Msg("infer end")
			}
			return
		}

		writeJSON(w, http.StatusOK, resp)
		if lvl >= LevelInfo {
			withRequestID(logger().Info().Int("status", http.StatusOK).Dur("dur", time.Since(start)), r).
				Int("predictions", len(resp.Predictions)).Msg("infer end")
		}
		if lvl >= LevelDebug {
			arr := zerolog.Arr()
			for _, p := range resp.Predictions {
				arr.Dict(zerolog.Dict().Str("class", p.Class).Float64("confidence", p.Confidence).Floats64("box", p.Box[:]))
			}
			withRequestID(logger().Debug(), r).Array("predictions", arr).Msg("infer predictions")
		}
	}
}

// labelsHandler godoc
// @Summary      Model label table
// @Tags         service
// @Produce      json
// @Success      200  {object}  types.LabelsResponse
// @Failure      500  {object}  types.ErrorResponse
// @Router       /labels [get]
func labelsHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		labels, err := svc.Labels()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.LabelsResponse{Labels: labels})
	}
}

// statusHandler godoc
// @Summary      Detailed service status
// @Tags         service
// @Produce      json
// @Success      200  {object}  types.StatusResponse
// @Router       /status [get]
func statusHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	}
}

func readyzHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	}
}

func withRequestID(e *zerolog.Event, r *http.Request) *zerolog.Event {
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		return e.Str("request_id", rid)
	}
	return e
}
