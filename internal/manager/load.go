package manager

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"classifyd/internal/labels"
)

// LoadOptions configures LoadClassifier.
type LoadOptions struct {
	ArtifactPath string
	// MetadataPath is optional; when empty a "<artifact>.json" sidecar is
	// used if present.
	MetadataPath string
	// Labels is the label set; metadata classes take precedence, and the
	// built-in set is used when both are empty.
	Labels         []string
	Accelerator    string
	LibraryPath    string
	IntraOpThreads int
	Log            zerolog.Logger
}

// LoadClassifier deserializes the artifact into an inference-ready
// classifier. It is called exactly once, before the listener binds.
func LoadClassifier(opts LoadOptions) (Classifier, error) {
	if strings.TrimSpace(opts.ArtifactPath) == "" {
		return nil, fmt.Errorf("artifact path is empty")
	}
	mdPath := opts.MetadataPath
	if mdPath == "" {
		mdPath = sidecarPath(opts.ArtifactPath)
	}
	var md Metadata
	if mdPath != "" {
		var err error
		if md, err = LoadMetadata(mdPath); err != nil {
			return nil, err
		}
		opts.Log.Debug().Str("path", mdPath).Msg("model metadata loaded")
	}
	set := md.Classes
	if len(set) == 0 {
		set = opts.Labels
	}
	if len(set) == 0 {
		set = labels.Default()
	}
	if err := labels.Validate(set); err != nil {
		return nil, err
	}

	c, err := newONNXClassifier(opts, md, set)
	if err != nil {
		return nil, classifyLoadError(opts.ArtifactPath, opts.Accelerator, err)
	}
	info := c.Info()
	opts.Log.Info().
		Str("path", info.Path).
		Int64("bytes", info.Bytes).
		Str("backend", info.Backend).
		Str("accelerator", info.Accelerator).
		Int("labels", info.Labels).
		Msg("classifier loaded")
	return c, nil
}

// gpuMarkers are substrings of runtime errors raised when an artifact or
// session needs GPU support the host lacks.
var gpuMarkers = []string{
	"cuda",
	"cudnn",
	"gpu",
	"cpu-only",
	"executionprovider",
}

// classifyLoadError separates environment incompatibilities from generic
// load failures so operators get an actionable message.
func classifyLoadError(path, accelerator string, err error) error {
	if IsIncompatibleRuntime(err) || IsDependencyUnavailable(err) {
		return err
	}
	msg := strings.ToLower(err.Error())
	for _, m := range gpuMarkers {
		if strings.Contains(msg, m) {
			return ErrIncompatibleRuntime(err)
		}
	}
	if accelerator == "cuda" && strings.Contains(msg, "provider") {
		return ErrIncompatibleRuntime(err)
	}
	return fmt.Errorf("load model %s: %w", path, err)
}
