package detector

import (
	"strconv"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// engine is one inference session with its bound input and output buffers.
// An engine must not be used by more than one goroutine at a time.
type engine interface {
	Input() []float32
	Output() []float32
	Run() error
	Destroy()
}

// ortSession is an engine backed by an onnxruntime AdvancedSession.
type ortSession struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

func (s *ortSession) Input() []float32  { return s.input.GetData() }
func (s *ortSession) Output() []float32 { return s.output.GetData() }
func (s *ortSession) Run() error        { return s.session.Run() }

// Destroy releases the session and its tensors.
func (s *ortSession) Destroy() {
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	if s.output != nil {
		s.output.Destroy()
		s.output = nil
	}
}

func newSessionOptions(cfg Config, device Device) (*ort.SessionOptions, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "create session options")
	}
	if cfg.IntraOpThreads > 0 {
		if err := options.SetIntraOpNumThreads(cfg.IntraOpThreads); err != nil {
			options.Destroy()
			return nil, errors.Wrap(err, "set intra-op threads")
		}
	}
	if cfg.InterOpThreads > 0 {
		if err := options.SetInterOpNumThreads(cfg.InterOpThreads); err != nil {
			options.Destroy()
			return nil, errors.Wrap(err, "set inter-op threads")
		}
	}
	if device == DeviceCUDA {
		cudaOpts, err := ort.NewCUDAProviderOptions()
		if err != nil {
			options.Destroy()
			return nil, errors.Wrap(err, "create CUDA provider options")
		}
		defer cudaOpts.Destroy()
		if err := cudaOpts.Update(map[string]string{
			"device_id": strconv.Itoa(cfg.CUDADeviceID),
		}); err != nil {
			options.Destroy()
			return nil, errors.Wrap(err, "configure CUDA provider")
		}
		if err := options.AppendExecutionProviderCUDA(cudaOpts); err != nil {
			options.Destroy()
			return nil, errors.Wrap(err, "enable CUDA execution provider")
		}
	}
	return options, nil
}

// newORTSession creates a session for the model at path on the given device.
// device must be DeviceCPU or DeviceCUDA.
func newORTSession(path string, l layout, cfg Config, device Device) (*ortSession, error) {
	options, err := newSessionOptions(cfg, device)
	if err != nil {
		return nil, err
	}
	defer options.Destroy()

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, int64(l.height), int64(l.width)))
	if err != nil {
		return nil, errors.Wrap(err, "create input tensor")
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(l.channels), int64(l.anchors)))
	if err != nil {
		inputTensor.Destroy()
		return nil, errors.Wrap(err, "create output tensor")
	}

	session, err := ort.NewAdvancedSession(
		path,
		[]string{l.inputName},
		[]string{l.outputName},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrap(err, "create session")
	}
	return &ortSession{session: session, input: inputTensor, output: outputTensor}, nil
}
