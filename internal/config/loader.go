package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by Defaults. Settings for
// which 0 is a valid choice are pointers so that nil can mean unset.
type Config struct {
	Addr string `json:"addr" yaml:"addr" toml:"addr"`

	ArtifactURL            string `json:"artifact_url" yaml:"artifact_url" toml:"artifact_url"`
	ArtifactPath           string `json:"artifact_path" yaml:"artifact_path" toml:"artifact_path"`
	ArtifactSHA256         string `json:"artifact_sha256" yaml:"artifact_sha256" toml:"artifact_sha256"`
	DownloadRetries        *int   `json:"download_retries" yaml:"download_retries" toml:"download_retries"`
	DownloadTimeoutSeconds *int   `json:"download_timeout_seconds" yaml:"download_timeout_seconds" toml:"download_timeout_seconds"`

	MetadataPath    string `json:"metadata_path" yaml:"metadata_path" toml:"metadata_path"`
	LabelsPath      string `json:"labels_path" yaml:"labels_path" toml:"labels_path"`
	Accelerator     string `json:"accelerator" yaml:"accelerator" toml:"accelerator"`
	ONNXLibraryPath string `json:"onnx_library_path" yaml:"onnx_library_path" toml:"onnx_library_path"`
	IntraOpThreads  *int   `json:"intra_op_threads" yaml:"intra_op_threads" toml:"intra_op_threads"`

	ViewPath  string `json:"view_path" yaml:"view_path" toml:"view_path"`
	StaticDir string `json:"static_dir" yaml:"static_dir" toml:"static_dir"`

	MaxUploadBytes        int64 `json:"max_upload_bytes" yaml:"max_upload_bytes" toml:"max_upload_bytes"`
	MaxImagePixels        int64 `json:"max_image_pixels" yaml:"max_image_pixels" toml:"max_image_pixels"`
	MaxInflight           int   `json:"max_inflight" yaml:"max_inflight" toml:"max_inflight"`
	MaxQueueDepth         int   `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	MaxWaitMS             int   `json:"max_wait_ms" yaml:"max_wait_ms" toml:"max_wait_ms"`
	AnalyzeTimeoutSeconds *int  `json:"analyze_timeout_seconds" yaml:"analyze_timeout_seconds" toml:"analyze_timeout_seconds"`

	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`

	// CORS is on unless explicitly disabled; nil means "use default".
	CORSEnabled        *bool    `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
	CORSAllowedHeaders []string `json:"cors_allowed_headers" yaml:"cors_allowed_headers" toml:"cors_allowed_headers"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
