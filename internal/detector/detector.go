package detector

import (
	"context"
	"image"
	"image/color"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"detectd/internal/common/fsutil"
)

// Result holds the detections for one input image.
type Result struct {
	Width  int
	Height int
	Boxes  []Box
}

// Info describes a loaded detector.
type Info struct {
	Path        string
	Device      Device
	InputWidth  int
	InputHeight int
	Classes     int
	PoolSize    int
	PoolInUse   int
}

// Detector is the long-lived model handle. It is safe for concurrent use;
// parallelism is bounded by the session pool size.
type Detector struct {
	cfg    Config
	path   string
	layout layout
	labels []string
	device Device
	pool   *Pool
	log    zerolog.Logger
}

// Load opens the model described by cfg. InitEnvironment must have been
// called first. A missing weights file is reported before the runtime is
// touched.
func Load(cfg Config) (*Detector, error) {
	cfg = cfg.withDefaults()
	path, err := fsutil.Resolve(cfg.ModelPath)
	if err != nil {
		return nil, errors.Wrap(err, "resolve model path")
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "model file")
	}
	if fi.IsDir() {
		return nil, errors.Errorf("model path %s is a directory", path)
	}

	md, err := readMetadata(path)
	if err != nil {
		cfg.Logger.Warn().Err(err).Msg("model metadata unavailable")
	}
	labels, err := parseNames(md.names)
	if err != nil {
		cfg.Logger.Warn().Err(err).Msg("ignoring malformed names metadata")
		labels = nil
	}
	if len(labels) == 0 && cfg.LabelsPath != "" {
		lp, err := fsutil.ExpandHome(cfg.LabelsPath)
		if err != nil {
			return nil, errors.Wrap(err, "resolve labels path")
		}
		if labels, err = readLabelsFile(lp); err != nil {
			return nil, err
		}
	}

	l, err := inspectModel(path, md, cfg.InputSize, len(labels))
	if err != nil {
		return nil, err
	}

	engines, device, err := openSessions(path, l, cfg)
	if err != nil {
		return nil, err
	}

	d := newDetector(cfg, path, l, labels, device, engines)
	d.log.Info().
		Str("path", path).
		Str("device", string(device)).
		Int("input_width", l.width).
		Int("input_height", l.height).
		Int("classes", l.numClasses()).
		Int("pool_size", len(engines)).
		Msg("model loaded")
	if err := d.warmup(cfg.Warmup); err != nil {
		d.Close()
		return nil, errors.Wrap(err, "warmup")
	}
	return d, nil
}

// openSessions creates cfg.PoolSize sessions. With DeviceAuto the first
// session decides placement: if CUDA cannot be enabled every session runs
// on CPU.
func openSessions(path string, l layout, cfg Config) ([]engine, Device, error) {
	device := cfg.Device
	if device == DeviceAuto {
		device = DeviceCUDA
	}
	engines := make([]engine, 0, cfg.PoolSize)
	destroyAll := func() {
		for _, e := range engines {
			e.Destroy()
		}
	}
	for i := 0; i < cfg.PoolSize; i++ {
		s, err := newORTSession(path, l, cfg, device)
		if err != nil && i == 0 && cfg.Device == DeviceAuto && device == DeviceCUDA {
			cfg.Logger.Warn().Err(err).Msg("CUDA unavailable, using CPU")
			device = DeviceCPU
			s, err = newORTSession(path, l, cfg, device)
		}
		if err != nil {
			destroyAll()
			return nil, "", errors.Wrapf(err, "session %d", i)
		}
		engines = append(engines, s)
	}
	if device == DeviceCUDA {
		cfg.Logger.Info().Int("cuda_device", cfg.CUDADeviceID).Msg("using GPU")
	} else {
		cfg.Logger.Info().Msg("using CPU")
	}
	return engines, device, nil
}

func newDetector(cfg Config, path string, l layout, labels []string, device Device, engines []engine) *Detector {
	return &Detector{
		cfg:    cfg,
		path:   path,
		layout: l,
		labels: completeLabels(labels, l.numClasses()),
		device: device,
		pool:   newPool(engines),
		log:    cfg.Logger,
	}
}

// Detect runs one forward pass on img. Detections below the confidence
// threshold or suppressed by NMS are dropped; the rest are returned in
// source image pixels, highest confidence first.
func (d *Detector) Detect(ctx context.Context, img image.Image) ([]Result, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, errors.New("empty image")
	}

	start := time.Now()
	canvas, geom := letterbox(img, d.layout.width, d.layout.height)
	forwardSeconds.WithLabelValues("preprocess").Observe(time.Since(start).Seconds())

	s, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "acquire session")
	}
	defer d.pool.Release(s)

	fillInput(s.Input(), canvas)
	start = time.Now()
	if err := s.Run(); err != nil {
		return nil, errors.Wrap(err, "run model")
	}
	forwardSeconds.WithLabelValues("run").Observe(time.Since(start).Seconds())

	start = time.Now()
	boxes := decodeOutput(s.Output(), d.layout, geom, d.cfg.ConfThreshold)
	boxes = nms(boxes, d.cfg.IoUThreshold, d.cfg.MaxDetections)
	forwardSeconds.WithLabelValues("postprocess").Observe(time.Since(start).Seconds())

	return []Result{{Width: b.Dx(), Height: b.Dy(), Boxes: boxes}}, nil
}

func (d *Detector) warmup(runs int) error {
	if runs <= 0 {
		return nil
	}
	blank := image.NewUniform(color.Gray{Y: 114})
	img := &boundedImage{Uniform: blank, rect: image.Rect(0, 0, d.layout.width, d.layout.height)}
	for i := 0; i < runs; i++ {
		if _, err := d.Detect(context.Background(), img); err != nil {
			return err
		}
	}
	d.log.Debug().Int("runs", runs).Msg("warmup complete")
	return nil
}

// boundedImage gives image.Uniform finite bounds.
type boundedImage struct {
	*image.Uniform
	rect image.Rectangle
}

func (b *boundedImage) Bounds() image.Rectangle { return b.rect }

// Labels returns the class label table indexed by class id.
func (d *Detector) Labels() []string {
	return append([]string(nil), d.labels...)
}

// Info reports the model configuration and pool usage.
func (d *Detector) Info() Info {
	st := d.pool.Stats()
	return Info{
		Path:        d.path,
		Device:      d.device,
		InputWidth:  d.layout.width,
		InputHeight: d.layout.height,
		Classes:     len(d.labels),
		PoolSize:    st.Size,
		PoolInUse:   st.InUse,
	}
}

// Close releases every session.
func (d *Detector) Close() error {
	d.pool.Close()
	return nil
}
