// Package cli wires configuration, logging, the detector and the HTTP server
// into the detectd command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"detectd/internal/config"
)

// Version is stamped at build time with -ldflags "-X detectd/internal/cli.Version=...".
var Version = "dev"

// Options carries the resolved configuration and process streams to commands.
type Options struct {
	ConfigPath string
	Config     config.Config
	Stdout     io.Writer
	Stderr     io.Writer
	Getenv     func(string) string
	Logger     zerolog.Logger
}

// Command actions; tests replace them.
var (
	fnServe  = runServe
	fnDetect = runDetect
	fnLabels = runLabels
)

// MainWithArgs runs the CLI and returns the process exit code.
func MainWithArgs(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	opts := &Options{Stdout: os.Stdout, Stderr: os.Stderr, Getenv: os.Getenv}
	root := buildRootCmd(opts)
	root.SetArgs(args)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(opts.Stderr, "detectd:", err)
		return 1
	}
	return 0
}

func buildRootCmd(opts *Options) *cobra.Command {
	root := &cobra.Command{
		Use:           "detectd",
		Short:         "Object detection HTTP service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fnServe(cmd.Context(), opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "Config file (.yaml, .json or .toml); defaults to DETECTD_CONFIG")
	pf.String("log-level", "", "Log level: debug|info|warn|error")
	pf.String("log-format", "", "Log format: auto|console|json")
	pf.String("host", "", "Listen host")
	pf.Int("port", 0, "Listen port (defaults PORT or 8080)")
	pf.String("model", "", "Path to the ONNX weights file")
	pf.String("labels", "", "Labels file used when the model has no names metadata")
	pf.String("device", "", "Execution device: auto|cpu|cuda")
	pf.String("ort-lib", "", "Path to the onnxruntime shared library")
	pf.Int("pool-size", 0, "Number of inference sessions")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "healthcheck" {
			return nil
		}
		cfg, err := resolveConfig(cmd, opts)
		if err != nil {
			return err
		}
		opts.Config = cfg
		opts.Logger = newLogger(opts.Stderr, cfg.LogLevel, cfg.LogFormat)
		return nil
	}

	serveCmd := &cobra.Command{Use: "serve", Short: "Run the HTTP server (default)", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		return fnServe(cmd.Context(), opts)
	}}
	detectCmd := &cobra.Command{Use: "detect <image>...", Short: "Run detection on image files and print JSON", Example: "  detectd detect --model best.onnx street.jpg", Args: cobra.MinimumNArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		return fnDetect(cmd.Context(), opts, args)
	}}
	labelsCmd := &cobra.Command{Use: "labels", Short: "Print the model label table", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		return fnLabels(cmd.Context(), opts)
	}}
	versionCmd := &cobra.Command{Use: "version", Short: "Print the version", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(opts.Stdout, Version)
		return err
	}}
	root.AddCommand(serveCmd, detectCmd, labelsCmd, versionCmd, newHealthcheckCmd(opts))
	return root
}

// resolveConfig layers defaults, the config file, the environment and
// explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command, opts *Options) (config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		path = opts.Getenv("DETECTD_CONFIG")
	}
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(opts.Getenv); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	str := func(name string, dst *string) {
		if f := flags.Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	num := func(name string, dst *int) error {
		if f := flags.Lookup(name); f != nil && f.Changed {
			n, err := flags.GetInt(name)
			if err != nil {
				return err
			}
			*dst = n
		}
		return nil
	}
	str("log-level", &cfg.LogLevel)
	str("log-format", &cfg.LogFormat)
	str("host", &cfg.Host)
	str("model", &cfg.ModelPath)
	str("labels", &cfg.LabelsPath)
	str("device", &cfg.Device)
	str("ort-lib", &cfg.ONNXRuntimeLib)
	if err := num("port", &cfg.Port); err != nil {
		return cfg, err
	}
	if err := num("pool-size", &cfg.PoolSize); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}
