// Package artifact makes sure the model file is present on local disk before
// the classifier is loaded.
package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"classifyd/internal/common/fsutil"
)

// Result describes what Ensure did.
type Result struct {
	Path       string
	Downloaded bool
	Bytes      int64
}

// Fetcher downloads an artifact once. The zero value is usable and performs
// a single attempt with http.DefaultClient.
type Fetcher struct {
	Client *http.Client
	// Retries is the number of extra attempts after a retryable failure
	// (network error or 5xx). 0 means one attempt.
	Retries int
	// SHA256 is the expected hex digest; empty skips verification.
	SHA256 string
	Log    zerolog.Logger
	// newBackOff is replaced in tests to avoid real sleeps.
	newBackOff func() backoff.BackOff
}

// statusError reports a non-2xx response from the artifact host.
type statusError struct {
	url  string
	code int
}

func (e statusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.url, e.code)
}

// ErrNoURL is returned when the artifact is absent and no source URL is set.
var ErrNoURL = errors.New("artifact is missing and artifact_url is not configured")

// Ensure makes sure dest exists. When it already does, no request is made
// and the file is left untouched. Otherwise the resource at url is streamed
// to a temporary file next to dest and renamed into place only after the
// whole body was written and verified.
func (f *Fetcher) Ensure(ctx context.Context, dest, url string) (Result, error) {
	path, err := fsutil.Resolve(dest)
	if err != nil {
		return Result{}, err
	}
	if fsutil.PathExists(path) {
		n, err := fsutil.FileSize(path)
		if err != nil {
			return Result{}, fmt.Errorf("artifact %s: %w", path, err)
		}
		f.Log.Debug().Str("path", path).Int64("bytes", n).Msg("artifact present, skipping download")
		return Result{Path: path, Bytes: n}, nil
	}
	if strings.TrimSpace(url) == "" {
		return Result{}, ErrNoURL
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Result{}, fmt.Errorf("create artifact dir: %w", err)
	}

	var n int64
	attempt := 0
	op := func() error {
		attempt++
		var err error
		n, err = f.download(ctx, path, url)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			var perm *backoff.PermanentError
			if errors.As(err, &perm) {
				return err
			}
			return backoff.Permanent(err)
		}
		f.Log.Warn().Err(err).Int("attempt", attempt).Msg("artifact download failed")
		return err
	}
	bo := f.backOff()
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(max(f.Retries, 0))), ctx)); err != nil {
		return Result{}, err
	}
	f.Log.Info().Str("path", path).Str("url", url).Int64("bytes", n).Int("attempts", attempt).Msg("artifact downloaded")
	return Result{Path: path, Downloaded: true, Bytes: n}, nil
}

func (f *Fetcher) backOff() backoff.BackOff {
	if f.newBackOff != nil {
		return f.newBackOff()
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxElapsedTime = 0
	return b
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

// download performs one attempt. The temp file is removed on every error path.
func (f *Fetcher) download(ctx context.Context, dest, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, statusError{url: url, code: resp.StatusCode}
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), resp.Body)
	if err != nil {
		return n, fmt.Errorf("write artifact: %w", err)
	}
	if resp.ContentLength >= 0 && n != resp.ContentLength {
		return n, fmt.Errorf("short artifact body: got %d bytes, want %d", n, resp.ContentLength)
	}
	if f.SHA256 != "" {
		if got := hex.EncodeToString(h.Sum(nil)); !strings.EqualFold(got, f.SHA256) {
			return n, backoff.Permanent(fmt.Errorf("artifact checksum mismatch: got %s, want %s", got, f.SHA256))
		}
	}
	if err := tmp.Sync(); err != nil {
		return n, fmt.Errorf("sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return n, fmt.Errorf("rename artifact: %w", err)
	}
	committed = true
	return n, nil
}

// retryable reports whether another attempt could succeed: transport errors,
// short bodies and 5xx responses are, 4xx responses are not.
func retryable(err error) bool {
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return false
	}
	var se statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	return true
}

// IsStatus reports whether err came from a non-2xx response and returns its code.
func IsStatus(err error) (int, bool) {
	var se statusError
	if errors.As(err, &se) {
		return se.code, true
	}
	return 0, false
}
