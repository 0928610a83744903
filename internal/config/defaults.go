package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied when the corresponding Config fields are unset.
const (
	DefaultAddr           = "0.0.0.0:5000"
	DefaultArtifactPath   = "export.onnx"
	DefaultViewPath       = "app/view/index.html"
	DefaultStaticDir      = "app/static"
	DefaultAccelerator    = "cpu"
	DefaultLogLevel       = "info"
	DefaultMaxUploadBytes = 32 << 20
	DefaultMaxImagePixels = 40_000_000
	DefaultMaxInflight    = 1
	DefaultMaxQueueDepth  = 32
	DefaultMaxWaitMS      = 30_000
)

var (
	defaultCORSOrigins = []string{"*"}
	defaultCORSHeaders = []string{"X-Requested-With", "Content-Type"}
)

// Defaults returns a Config with every tunable set to its default.
func Defaults() Config {
	return WithDefaults(Config{})
}

// WithDefaults fills unset fields of c and returns the result.
func WithDefaults(c Config) Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.ArtifactPath == "" {
		c.ArtifactPath = DefaultArtifactPath
	}
	if c.ViewPath == "" {
		c.ViewPath = DefaultViewPath
	}
	if c.StaticDir == "" {
		c.StaticDir = DefaultStaticDir
	}
	if c.Accelerator == "" {
		c.Accelerator = DefaultAccelerator
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.MaxImagePixels <= 0 {
		c.MaxImagePixels = DefaultMaxImagePixels
	}
	if c.MaxInflight <= 0 {
		c.MaxInflight = DefaultMaxInflight
	}
	if c.MaxQueueDepth <= 0 {
		c.MaxQueueDepth = DefaultMaxQueueDepth
	}
	if c.MaxWaitMS <= 0 {
		c.MaxWaitMS = DefaultMaxWaitMS
	}
	if c.CORSEnabled == nil {
		on := true
		c.CORSEnabled = &on
	}
	if len(c.CORSAllowedOrigins) == 0 {
		c.CORSAllowedOrigins = append([]string(nil), defaultCORSOrigins...)
	}
	if len(c.CORSAllowedHeaders) == 0 {
		c.CORSAllowedHeaders = append([]string(nil), defaultCORSHeaders...)
	}
	return c
}

// Merge overlays the set fields of override onto base. Strings, lists and
// plain numbers are set when non-empty or non-zero; pointer fields are set
// when non-nil, so an override can bring them back to 0.
func Merge(base, override Config) Config {
	out := base
	setStr := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}
	setIntPtr := func(dst **int, v *int) {
		if v != nil {
			n := *v
			*dst = &n
		}
	}
	setStr(&out.Addr, override.Addr)
	setStr(&out.ArtifactURL, override.ArtifactURL)
	setStr(&out.ArtifactPath, override.ArtifactPath)
	setStr(&out.ArtifactSHA256, override.ArtifactSHA256)
	setIntPtr(&out.DownloadRetries, override.DownloadRetries)
	setIntPtr(&out.DownloadTimeoutSeconds, override.DownloadTimeoutSeconds)
	setStr(&out.MetadataPath, override.MetadataPath)
	setStr(&out.LabelsPath, override.LabelsPath)
	setStr(&out.Accelerator, override.Accelerator)
	setStr(&out.ONNXLibraryPath, override.ONNXLibraryPath)
	setIntPtr(&out.IntraOpThreads, override.IntraOpThreads)
	setStr(&out.ViewPath, override.ViewPath)
	setStr(&out.StaticDir, override.StaticDir)
	if override.MaxUploadBytes != 0 {
		out.MaxUploadBytes = override.MaxUploadBytes
	}
	if override.MaxImagePixels != 0 {
		out.MaxImagePixels = override.MaxImagePixels
	}
	setInt(&out.MaxInflight, override.MaxInflight)
	setInt(&out.MaxQueueDepth, override.MaxQueueDepth)
	setInt(&out.MaxWaitMS, override.MaxWaitMS)
	setIntPtr(&out.AnalyzeTimeoutSeconds, override.AnalyzeTimeoutSeconds)
	setStr(&out.LogLevel, override.LogLevel)
	if override.CORSEnabled != nil {
		v := *override.CORSEnabled
		out.CORSEnabled = &v
	}
	if len(override.CORSAllowedOrigins) > 0 {
		out.CORSAllowedOrigins = append([]string(nil), override.CORSAllowedOrigins...)
	}
	if len(override.CORSAllowedHeaders) > 0 {
		out.CORSAllowedHeaders = append([]string(nil), override.CORSAllowedHeaders...)
	}
	return out
}

// Validate reports the first invalid setting. Call it after WithDefaults.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ArtifactPath) == "" {
		return fmt.Errorf("artifact_path is required")
	}
	switch c.Accelerator {
	case "cpu", "cuda":
	default:
		return fmt.Errorf("accelerator must be cpu or cuda, got %q", c.Accelerator)
	}
	if n := c.Retries(); n < 0 {
		return fmt.Errorf("download_retries must be >= 0, got %d", n)
	}
	if intOr0(c.DownloadTimeoutSeconds) < 0 || intOr0(c.AnalyzeTimeoutSeconds) < 0 {
		return fmt.Errorf("timeouts must be >= 0")
	}
	if n := c.Threads(); n < 0 {
		return fmt.Errorf("intra_op_threads must be >= 0, got %d", n)
	}
	if c.ArtifactSHA256 != "" && len(c.ArtifactSHA256) != 64 {
		return fmt.Errorf("artifact_sha256 must be 64 hex characters")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// CORSOn reports whether CORS headers should be emitted.
func (c Config) CORSOn() bool {
	return c.CORSEnabled == nil || *c.CORSEnabled
}

// Retries is download_retries, 0 when unset.
func (c Config) Retries() int { return intOr0(c.DownloadRetries) }

// DownloadTimeout is 0 (no client timeout) when unset.
func (c Config) DownloadTimeout() time.Duration {
	return time.Duration(intOr0(c.DownloadTimeoutSeconds)) * time.Second
}

// AnalyzeTimeout is analyze_timeout_seconds, 0 (disabled) when unset.
func (c Config) AnalyzeTimeout() int64 { return int64(intOr0(c.AnalyzeTimeoutSeconds)) }

// Threads is intra_op_threads; 0 leaves the choice to the runtime.
func (c Config) Threads() int { return intOr0(c.IntraOpThreads) }

func intOr0(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
