package cli

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"detectd/pkg/types"
)

// fileResult is one line of `detectd detect` output.
type fileResult struct {
	File        string             `json:"file"`
	Predictions []types.Prediction `json:"predictions,omitempty"`
	Error       string             `json:"error,omitempty"`
}

func runDetect(ctx context.Context, opts *Options, files []string) error {
	mgr := newManager(opts, opts.Logger)
	defer mgr.Close()
	if !mgr.Ready() {
		return fmt.Errorf("model not loaded: %s", mgr.Status().LastError)
	}

	enc := json.NewEncoder(opts.Stdout)
	failed := 0
	for _, f := range files {
		res := fileResult{File: f}
		b, err := os.ReadFile(f)
		if err == nil {
			payload := base64.StdEncoding.EncodeToString(b)
			var resp types.InferResponse
			resp, err = mgr.Infer(ctx, types.InferRequest{Image: &payload})
			res.Predictions = resp.Predictions
		}
		if err != nil {
			res.Error = err.Error()
			failed++
		}
		if err := enc.Encode(res); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(files))
	}
	return nil
}

func runLabels(ctx context.Context, opts *Options) error {
	mgr := newManager(opts, opts.Logger)
	defer mgr.Close()
	labels, err := mgr.Labels()
	if err != nil {
		return fmt.Errorf("%w: %s", err, mgr.Status().LastError)
	}
	for i, l := range labels {
		if _, err := fmt.Fprintf(opts.Stdout, "%d\t%s\n", i, l); err != nil {
			return err
		}
	}
	return nil
}
