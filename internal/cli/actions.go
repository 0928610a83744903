package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"classifyd/internal/config"
	"classifyd/internal/httpapi"
	"classifyd/internal/manager"
	"classifyd/pkg/types"
)

// Function variables for test stubbing (tests may override these).
var (
	fnServe   = serve
	fnCheck   = check
	fnFetch   = fetch
	fnPredict = predict
)

// errPreflight is returned by check when a preflight check fails.
var errPreflight = errors.New("preflight failed")

func serve(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	mgr, err := bootstrap(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()

	httpapi.SetLogger(log)
	httpapi.SetDefaultRequestLogLevel(cfg.LogLevel)
	httpapi.SetMaxBodyBytes(cfg.MaxUploadBytes)
	httpapi.SetAnalyzeTimeoutSeconds(cfg.AnalyzeTimeout())
	httpapi.SetAssets(cfg.ViewPath, cfg.StaticDir)
	httpapi.SetCORSOptions(cfg.CORSOn(), cfg.CORSAllowedOrigins, nil, cfg.CORSAllowedHeaders)
	baseCtx, cancelBase := context.WithCancel(ctx)
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(mgr),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("classifyd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown (Ctrl+C / SIGTERM)
	log.Info().Msg("shutting down")
	mgr.Drain()
	cancelBase()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

func check(ctx context.Context, cfg config.Config, log zerolog.Logger, out io.Writer) error {
	mgr, err := bootstrap(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()
	return reportPreflight(out, mgr.Preflight())
}

func reportPreflight(out io.Writer, checks []manager.PreflightCheck) error {
	for _, c := range checks {
		mark := "ok"
		if !c.OK {
			mark = "FAIL"
		}
		if c.Detail != "" {
			fmt.Fprintf(out, "%-4s %-18s %s\n", mark, c.Name, c.Detail)
		} else {
			fmt.Fprintf(out, "%-4s %s\n", mark, c.Name)
		}
	}
	if !manager.PreflightOK(checks) {
		return errPreflight
	}
	return nil
}

func fetch(ctx context.Context, cfg config.Config, log zerolog.Logger, out io.Writer) error {
	res, err := ensureArtifact(ctx, cfg, log)
	if err != nil {
		return err
	}
	state := "present"
	if res.Downloaded {
		state = "downloaded"
	}
	fmt.Fprintf(out, "%s %s (%d bytes)\n", state, res.Path, res.Bytes)
	return nil
}

func predict(ctx context.Context, cfg config.Config, log zerolog.Logger, out io.Writer, path string) error {
	mgr, err := bootstrap(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()
	return predictWith(ctx, mgr, log, out, path)
}

// analyzer is the part of the manager predict needs.
type analyzer interface {
	Analyze(ctx context.Context, data []byte) (types.Prediction, error)
}

func predictWith(ctx context.Context, a analyzer, log zerolog.Logger, out io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	pred, err := a.Analyze(ctx, data)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", path, err)
	}
	log.Debug().Str("label", pred.Label).Float32("confidence", pred.Confidence).Msg("prediction")
	return json.NewEncoder(out).Encode(types.AnalyzeResponse{Result: pred.Label})
}
