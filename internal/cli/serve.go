package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"detectd/internal/detector"
	"detectd/internal/httpapi"
	"detectd/internal/manager"
	"detectd/internal/registry"
)

const shutdownTimeout = 5 * time.Second

// openModel initializes the runtime and loads the configured weights.
func openModel(opts *Options) (*detector.Detector, error) {
	cfg := opts.Config
	w, err := registry.Resolve(cfg.ModelPath, cfg.LabelsPath)
	if err != nil {
		return nil, err
	}
	if err := detector.InitEnvironment(cfg.ONNXRuntimeLib); err != nil {
		return nil, err
	}
	return detector.Load(detector.Config{
		ModelPath:      w.ModelPath,
		LabelsPath:     w.LabelsPath,
		Device:         detector.ParseDevice(cfg.Device),
		CUDADeviceID:   cfg.CUDADeviceID,
		PoolSize:       cfg.PoolSize,
		IntraOpThreads: cfg.IntraOpThreads,
		InterOpThreads: cfg.InterOpThreads,
		InputSize:      cfg.InputSize,
		ConfThreshold:  cfg.ConfThreshold,
		IoUThreshold:   cfg.IoUThreshold,
		MaxDetections:  cfg.MaxDetections,
		Warmup:         cfg.Warmup,
		Logger:         opts.Logger.With().Str("component", "detector").Logger(),
	})
}

// newManager loads the model and wraps it. A load failure is logged and the
// manager starts in degraded mode.
func newManager(opts *Options, log zerolog.Logger) *manager.Manager {
	mcfg := manager.ManagerConfig{
		StrictInputErrors: opts.Config.StrictInputErrors,
		MaxImagePixels:    opts.Config.MaxImagePixels,
		Logger:            log.With().Str("component", "manager").Logger(),
	}
	det, err := openModel(opts)
	if err != nil {
		log.Error().Err(err).Str("model_path", opts.Config.ModelPath).Msg("error loading model")
		mcfg.LoadError = err
	} else {
		mcfg.Model = det
	}
	return manager.NewWithConfig(mcfg)
}

// newHTTPServer builds the listener-side server. onShutdown runs as soon as
// Shutdown is called, so requests still waiting for a session are released
// with 503 while running forward passes drain.
func newHTTPServer(addr string, h http.Handler, onShutdown func()) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(onShutdown)
	return srv
}

func runServe(ctx context.Context, opts *Options) error {
	cfg := opts.Config
	log := opts.Logger
	log.Info().Str("version", Version).Strs("cpu_features", manager.CPUFeatures()).Msg("starting detectd")

	mgr := newManager(opts, log)
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Warn().Err(err).Msg("close model")
		}
		if err := detector.DestroyEnvironment(); err != nil {
			log.Warn().Err(err).Msg("destroy onnxruntime environment")
		}
	}()

	httpapi.SetLogger(log.With().Str("component", "http").Logger())
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.Origins, cfg.CORS.Methods, cfg.CORS.Headers)
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	srv := newHTTPServer(cfg.Addr(), httpapi.NewMux(mgr), cancelBase)
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Bool("model_loaded", mgr.Ready()).
			Bool("swagger", httpapi.SwaggerEnabled).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
		_ = srv.Close()
	}
	return nil
}
