//go:build onnx

package manager

import (
	"context"
	"fmt"
	"image"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"classifyd/internal/common/fsutil"
	"classifyd/pkg/types"
)

// onnxBuilt indicates this binary was compiled with onnxruntime support.
const onnxBuilt = true

// onnxClassifier owns one session with pre-allocated input/output tensors.
// Run calls are serialized because the tensors are shared.
type onnxClassifier struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]

	labels     []string
	pre        preprocessSpec
	activation string
	info       types.ModelInfo
}

func initRuntime(libPath string) error {
	if ort.IsInitialized() {
		return nil
	}
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	return ort.InitializeEnvironment()
}

// discoverIO fills missing tensor names and shapes from the model itself.
func discoverIO(path string, md Metadata) (Metadata, error) {
	if md.InputName != "" && md.OutputName != "" && len(md.InputShape) > 0 && len(md.OutputShape) > 0 {
		return md, nil
	}
	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return md, fmt.Errorf("inspect model: %w", err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return md, fmt.Errorf("expected a single input and output, model has %d inputs and %d outputs", len(inputs), len(outputs))
	}
	if md.InputName == "" {
		md.InputName = inputs[0].Name
	}
	if md.OutputName == "" {
		md.OutputName = outputs[0].Name
	}
	if len(md.InputShape) == 0 {
		md.InputShape = append([]int64(nil), inputs[0].Dimensions...)
	}
	if len(md.OutputShape) == 0 {
		md.OutputShape = append([]int64(nil), outputs[0].Dimensions...)
	}
	return md, nil
}

func newONNXClassifier(opts LoadOptions, md Metadata, labels []string) (Classifier, error) {
	if err := initRuntime(opts.LibraryPath); err != nil {
		return nil, ErrDependencyUnavailable("onnxruntime unavailable: " + err.Error())
	}
	size, err := fsutil.FileSize(opts.ArtifactPath)
	if err != nil {
		return nil, err
	}
	md, err = discoverIO(opts.ArtifactPath, md)
	if err != nil {
		return nil, err
	}
	md = md.withDefaults(len(labels))
	if err := md.validate(len(labels)); err != nil {
		return nil, err
	}

	so, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("session options: %w", err)
	}
	defer so.Destroy()
	if opts.IntraOpThreads > 0 {
		if err := so.SetIntraOpNumThreads(opts.IntraOpThreads); err != nil {
			return nil, fmt.Errorf("intra-op threads: %w", err)
		}
	}
	if opts.Accelerator == "cuda" {
		cuda, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return nil, ErrIncompatibleRuntime(err)
		}
		defer cuda.Destroy()
		if err := so.AppendExecutionProviderCUDA(cuda); err != nil {
			return nil, ErrIncompatibleRuntime(err)
		}
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(md.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(md.OutputShape...))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	session, err := ort.NewAdvancedSession(opts.ArtifactPath,
		[]string{md.InputName}, []string{md.OutputName},
		[]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output},
		so)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &onnxClassifier{
		session:    session,
		input:      input,
		output:     output,
		labels:     labels,
		pre:        md.preprocess(),
		activation: md.Activation,
		info: types.ModelInfo{
			Path:        opts.ArtifactPath,
			Bytes:       size,
			Backend:     "onnxruntime",
			Accelerator: opts.Accelerator,
			Labels:      len(labels),
			ImageSize:   md.ImageSize,
		},
	}, nil
}

func (c *onnxClassifier) Predict(ctx context.Context, img image.Image) (types.Prediction, error) {
	data := toTensor(img, c.pre)
	if err := ctx.Err(); err != nil {
		return types.Prediction{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return types.Prediction{}, ErrDependencyUnavailable("classifier closed")
	}
	copy(c.input.GetData(), data)
	if err := c.session.Run(); err != nil {
		return types.Prediction{}, fmt.Errorf("inference failed: %w", err)
	}
	scores := append([]float32(nil), c.output.GetData()...)
	return topPrediction(scores, c.labels, c.activation)
}

func (c *onnxClassifier) Labels() []string { return c.labels }

func (c *onnxClassifier) Info() types.ModelInfo { return c.info }

func (c *onnxClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		_ = c.session.Destroy()
		c.session = nil
	}
	if c.input != nil {
		_ = c.input.Destroy()
		c.input = nil
	}
	if c.output != nil {
		_ = c.output.Destroy()
		c.output = nil
	}
	return ort.DestroyEnvironment()
}
