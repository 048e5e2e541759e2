package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"detectd/pkg/types"
)

func newHealthcheckCmd(opts *Options) *cobra.Command {
	var (
		url         string
		timeout     time.Duration
		requireLoad bool
	)
	cmd := &cobra.Command{
		Use:     "healthcheck",
		Short:   "Probe a running server's /health endpoint",
		Example: "  detectd healthcheck --url http://127.0.0.1:8080/health --require-model",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := waitHealthy(cmd.Context(), url, timeout, requireLoad)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(opts.Stdout, "%s model_loaded=%t\n", h.Status, h.ModelLoaded)
			return err
		},
	}
	cmd.Flags().StringVar(&url, "url", "http://127.0.0.1:8080/health", "Health endpoint URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "How long to keep retrying")
	cmd.Flags().BoolVar(&requireLoad, "require-model", false, "Fail unless model_loaded is true")
	return cmd
}

// waitHealthy polls url until it answers 200 with a health body, retrying
// every 500ms until timeout.
func waitHealthy(ctx context.Context, url string, timeout time.Duration, requireLoad bool) (types.HealthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client := &http.Client{Timeout: 2 * time.Second}
	var last error
	for {
		h, err := probeHealth(ctx, client, url)
		if err == nil && requireLoad && !h.ModelLoaded {
			err = fmt.Errorf("model not loaded")
		}
		if err == nil {
			return h, nil
		}
		last = err
		select {
		case <-time.After(500 * time.Millisecond):
		case <-ctx.Done():
			return types.HealthResponse{}, fmt.Errorf("timed out waiting for %s: %w", url, last)
		}
	}
}

func probeHealth(ctx context.Context, client *http.Client, url string) (types.HealthResponse, error) {
	var h types.HealthResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return h, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return h, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return h, fmt.Errorf("status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return h, fmt.Errorf("decode health: %w", err)
	}
	return h, nil
}
