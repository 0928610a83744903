package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "CLASSIFYD_"

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// ApplyEnv overlays CLASSIFYD_* environment variables onto c. Malformed
// numbers and booleans are reported together; c is returned unchanged then.
func ApplyEnv(c Config) (Config, error) {
	var r envReader
	var env Config
	env.Addr = envStr("ADDR")
	env.ArtifactURL = envStr("ARTIFACT_URL")
	env.ArtifactPath = envStr("ARTIFACT_PATH")
	env.ArtifactSHA256 = envStr("ARTIFACT_SHA256")
	env.DownloadRetries = r.intPtr("DOWNLOAD_RETRIES")
	env.DownloadTimeoutSeconds = r.intPtr("DOWNLOAD_TIMEOUT_SECONDS")
	env.MetadataPath = envStr("METADATA_PATH")
	env.LabelsPath = envStr("LABELS_PATH")
	env.Accelerator = envStr("ACCELERATOR")
	env.ONNXLibraryPath = envStr("ONNX_LIBRARY_PATH")
	env.IntraOpThreads = r.intPtr("INTRA_OP_THREADS")
	env.ViewPath = envStr("VIEW_PATH")
	env.StaticDir = envStr("STATIC_DIR")
	env.MaxUploadBytes = r.int64("MAX_UPLOAD_BYTES")
	env.MaxImagePixels = r.int64("MAX_IMAGE_PIXELS")
	env.MaxInflight = int(r.int64("MAX_INFLIGHT"))
	env.MaxQueueDepth = int(r.int64("MAX_QUEUE_DEPTH"))
	env.MaxWaitMS = int(r.int64("MAX_WAIT_MS"))
	env.AnalyzeTimeoutSeconds = r.intPtr("ANALYZE_TIMEOUT_SECONDS")
	env.LogLevel = envStr("LOG_LEVEL")
	env.CORSEnabled = r.boolPtr("CORS_ENABLED")
	env.CORSAllowedOrigins = SplitCSV(envStr("CORS_ALLOWED_ORIGINS"))
	env.CORSAllowedHeaders = SplitCSV(envStr("CORS_ALLOWED_HEADERS"))
	if err := errors.Join(r.errs...); err != nil {
		return c, err
	}
	return Merge(c, env), nil
}

// SplitCSV splits a comma separated list, trimming blanks and dropping empties.
func SplitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envStr(key string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + key))
}

// envReader parses typed variables and remembers every malformed one.
type envReader struct {
	errs []error
}

func (r *envReader) int64(key string) int64 {
	v := envStr(key)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s%s=%q: not an integer", EnvPrefix, key, v))
		return 0
	}
	return n
}

func (r *envReader) intPtr(key string) *int {
	if envStr(key) == "" {
		return nil
	}
	before := len(r.errs)
	n := int(r.int64(key))
	if len(r.errs) != before {
		return nil
	}
	return &n
}

func (r *envReader) boolPtr(key string) *bool {
	v := envStr(key)
	if v == "" {
		return nil
	}
	var on bool
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		on = true
	case "0", "false", "no", "off":
	default:
		r.errs = append(r.errs, fmt.Errorf("%s%s=%q: not a boolean", EnvPrefix, key, v))
		return nil
	}
	return &on
}
