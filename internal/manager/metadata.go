package manager

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"classifyd/internal/common/fsutil"
)

const (
	activationSoftmax = "softmax"
	activationNone    = "none"

	defaultImageSize  = 224
	defaultInputName  = "input"
	defaultOutputName = "output"
)

// Metadata is the optional JSON sidecar shipped next to an ONNX export.
// Every field is optional; unset fields are discovered from the model or
// defaulted.
type Metadata struct {
	InputName   string    `json:"input_name"`
	OutputName  string    `json:"output_name"`
	InputShape  []int64   `json:"input_shape"`
	OutputShape []int64   `json:"output_shape"`
	ImageSize   int       `json:"image_size"`
	Mean        []float32 `json:"mean"`
	Std         []float32 `json:"std"`
	Classes     []string  `json:"classes"`
	// Activation is "softmax" (default, outputs are logits) or "none".
	Activation string `json:"activation"`
}

// LoadMetadata reads a metadata sidecar.
func LoadMetadata(path string) (Metadata, error) {
	var md Metadata
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return md, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return md, fmt.Errorf("read metadata: %w", err)
	}
	if err := json.Unmarshal(b, &md); err != nil {
		return md, fmt.Errorf("parse metadata %s: %w", p, err)
	}
	return md, nil
}

// sidecarPath returns "<artifact without ext>.json" when such a file exists.
func sidecarPath(artifactPath string) string {
	p := strings.TrimSuffix(artifactPath, filepath.Ext(artifactPath)) + ".json"
	if p == artifactPath || !fsutil.PathExists(p) {
		return ""
	}
	return p
}

// withDefaults fills unset fields for a model predicting numLabels classes.
// Dynamic dimensions (<= 0) are pinned to 1 for the batch axis and to the
// image size for spatial axes.
func (md Metadata) withDefaults(numLabels int) Metadata {
	if md.InputName == "" {
		md.InputName = defaultInputName
	}
	if md.OutputName == "" {
		md.OutputName = defaultOutputName
	}
	if md.ImageSize <= 0 {
		if n := len(md.InputShape); n == 4 && md.InputShape[n-1] > 0 {
			md.ImageSize = int(md.InputShape[n-1])
		} else {
			md.ImageSize = defaultImageSize
		}
	}
	size := int64(md.ImageSize)
	if len(md.InputShape) == 0 {
		md.InputShape = []int64{1, 3, size, size}
	} else {
		md.InputShape = append([]int64(nil), md.InputShape...)
		for i, d := range md.InputShape {
			if d > 0 {
				continue
			}
			switch i {
			case 0:
				md.InputShape[i] = 1
			case 1:
				md.InputShape[i] = 3
			default:
				md.InputShape[i] = size
			}
		}
	}
	if len(md.OutputShape) == 0 {
		md.OutputShape = []int64{1, int64(numLabels)}
	} else {
		md.OutputShape = append([]int64(nil), md.OutputShape...)
		for i, d := range md.OutputShape {
			if d > 0 {
				continue
			}
			if i == 0 {
				md.OutputShape[i] = 1
			} else {
				md.OutputShape[i] = int64(numLabels)
			}
		}
	}
	if len(md.Mean) != 3 {
		md.Mean = imagenetMean[:]
	}
	if len(md.Std) != 3 {
		md.Std = imagenetStd[:]
	}
	if md.Activation == "" {
		md.Activation = activationSoftmax
	}
	return md
}

// validate checks that the tensors line up with the preprocessing and the
// label set.
func (md Metadata) validate(numLabels int) error {
	if md.Activation != activationSoftmax && md.Activation != activationNone {
		return fmt.Errorf("metadata activation must be %q or %q, got %q", activationSoftmax, activationNone, md.Activation)
	}
	want := []int64{1, 3, int64(md.ImageSize), int64(md.ImageSize)}
	if len(md.InputShape) != 4 {
		return fmt.Errorf("input shape %v: want NCHW %v", md.InputShape, want)
	}
	for i := range want {
		if md.InputShape[i] != want[i] {
			return fmt.Errorf("input shape %v: want NCHW %v", md.InputShape, want)
		}
	}
	if n := elements(md.OutputShape); n != int64(numLabels) {
		return fmt.Errorf("output shape %v has %d scores but the label set has %d labels", md.OutputShape, n, numLabels)
	}
	for i, s := range md.Std {
		if s == 0 {
			return fmt.Errorf("metadata std[%d] is zero", i)
		}
	}
	return nil
}

func (md Metadata) preprocess() preprocessSpec {
	spec := preprocessSpec{Size: md.ImageSize}
	copy(spec.Mean[:], md.Mean)
	copy(spec.Std[:], md.Std)
	return spec
}

func elements(shape []int64) int64 {
	if len(shape) == 0 {
		return 0
	}
	n := int64(1)
	for _, d := range shape {
		n *= d
	}
	return n
}
