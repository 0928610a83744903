package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"classifyd/internal/artifact"
	"classifyd/internal/config"
	"classifyd/internal/labels"
	"classifyd/internal/manager"
)

// resolveConfig layers defaults < file < environment < flags and validates
// the result.
func resolveConfig(opts *Options) (config.Config, error) {
	if err := config.LoadDotEnv(""); err != nil {
		return config.Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg config.Config
	path := opts.ConfigPath
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "CONFIG")
	}
	if path != "" {
		fc, err := config.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		cfg = fc
	}
	cfg, err := config.ApplyEnv(cfg)
	if err != nil {
		return cfg, fmt.Errorf("environment: %w", err)
	}
	cfg = config.Merge(cfg, config.Config{Addr: opts.Addr, LogLevel: opts.LogLevel})
	cfg = config.WithDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger writes human-readable lines to terminals and JSON otherwise.
func newLogger(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	out := w
	if f, ok := w.(*os.File); ok {
		if st, err := f.Stat(); err == nil && st.Mode()&os.ModeCharDevice != 0 {
			out = zerolog.ConsoleWriter{Out: f, TimeFormat: time.RFC3339}
		}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "classifyd").Logger()
}

func ensureArtifact(ctx context.Context, cfg config.Config, log zerolog.Logger) (artifact.Result, error) {
	f := &artifact.Fetcher{Retries: cfg.Retries(), SHA256: cfg.ArtifactSHA256, Log: log}
	if d := cfg.DownloadTimeout(); d > 0 {
		f.Client = &http.Client{Timeout: d}
	}
	res, err := f.Ensure(ctx, cfg.ArtifactPath, cfg.ArtifactURL)
	if err != nil {
		if code, ok := artifact.IsStatus(err); ok && code < 500 {
			return res, fmt.Errorf("ensure artifact: artifact host answered %d, check artifact_url: %w", code, err)
		}
		return res, fmt.Errorf("ensure artifact: %w", err)
	}
	return res, nil
}

func loadClassifier(cfg config.Config, path string, log zerolog.Logger) (manager.Classifier, error) {
	var set []string
	if cfg.LabelsPath != "" {
		var err error
		if set, err = labels.LoadFile(cfg.LabelsPath); err != nil {
			return nil, fmt.Errorf("load labels: %w", err)
		}
	}
	c, err := manager.LoadClassifier(manager.LoadOptions{
		ArtifactPath:   path,
		MetadataPath:   cfg.MetadataPath,
		Labels:         set,
		Accelerator:    cfg.Accelerator,
		LibraryPath:    cfg.ONNXLibraryPath,
		IntraOpThreads: cfg.Threads(),
		Log:            log,
	})
	if err != nil {
		if manager.IsIncompatibleRuntime(err) {
			log.Error().Err(err).Str("accelerator", cfg.Accelerator).Msg("model is not compatible with this host")
		}
		return nil, fmt.Errorf("load classifier: %w", err)
	}
	return c, nil
}

// bootstrap ensures the artifact, loads it once and wraps it in a Manager.
func bootstrap(ctx context.Context, cfg config.Config, log zerolog.Logger) (*manager.Manager, error) {
	res, err := ensureArtifact(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	c, err := loadClassifier(cfg, res.Path, log)
	if err != nil {
		return nil, err
	}
	return manager.NewWithConfig(manager.ManagerConfig{
		Classifier:     c,
		MaxInflight:    cfg.MaxInflight,
		MaxQueueDepth:  cfg.MaxQueueDepth,
		MaxWait:        time.Duration(cfg.MaxWaitMS) * time.Millisecond,
		MaxImagePixels: cfg.MaxImagePixels,
		Log:            log,
	}), nil
}
