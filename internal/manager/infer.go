package manager

import (
	"context"
	"fmt"
	"sort"
	"time"

	"detectd/internal/detector"
	"detectd/pkg/types"
)

// Infer decodes the request image, runs the model and returns every
// detection sorted by confidence, highest first.
func (m *Manager) Infer(ctx context.Context, req types.InferRequest) (types.InferResponse, error) {
	m.requests.Add(1)
	start := time.Now()
	resp, err := m.infer(ctx, req)
	if err != nil {
		m.failures.Add(1)
		inferenceErrors.WithLabelValues(errorKind(err)).Inc()
		return types.InferResponse{}, err
	}
	inferenceDuration.Observe(time.Since(start).Seconds())
	detectionsPerRequest.Observe(float64(len(resp.Predictions)))
	return resp, nil
}

func (m *Manager) infer(ctx context.Context, req types.InferRequest) (types.InferResponse, error) {
	if m.model == nil {
		return types.InferResponse{}, ErrModelNotLoaded
	}
	if req.Image == nil {
		return types.InferResponse{}, ErrNoImage
	}
	img, err := DecodeImage(*req.Image, m.maxPixels)
	if err != nil {
		m.log.Warn().Err(err).Int("payload_bytes", len(*req.Image)).Msg("rejecting image payload")
		return types.InferResponse{}, &InputError{Err: err, strict: m.strict}
	}
	results, err := m.model.Detect(ctx, img)
	if err != nil {
		if ctx.Err() == nil {
			b := img.Bounds()
			m.log.Error().Err(err).Int("width", b.Dx()).Int("height", b.Dy()).Msg("forward pass failed")
		}
		return types.InferResponse{}, &InferenceError{Err: err}
	}
	return types.InferResponse{Predictions: m.flatten(results)}, nil
}

// flatten turns detector results into wire predictions. The returned slice
// is never nil so an empty result encodes as [].
func (m *Manager) flatten(results []detector.Result) []types.Prediction {
	preds := make([]types.Prediction, 0)
	for _, r := range results {
		for _, b := range r.Boxes {
			preds = append(preds, types.Prediction{
				Class:      m.label(b.ClassID),
				Confidence: float64(b.Confidence),
				Box: [4]float64{
					float64(b.XYXY[0]), float64(b.XYXY[1]),
					float64(b.XYXY[2]), float64(b.XYXY[3]),
				},
			})
		}
	}
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Confidence > preds[j].Confidence
	})
	return preds
}

func (m *Manager) label(id int) string {
	if id >= 0 && id < len(m.labels) && m.labels[id] != "" {
		return m.labels[id]
	}
	return fmt.Sprintf("class_%d", id)
}

func errorKind(err error) string {
	switch {
	case IsModelNotLoaded(err):
		return "model_not_loaded"
	case err == ErrNoImage:
		return "no_image"
	case IsInputError(err):
		return "input"
	default:
		return "inference"
	}
}
