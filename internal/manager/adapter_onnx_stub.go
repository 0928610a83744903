//go:build !onnx

package manager

// This file provides a no-CGO stub for the onnxruntime adapter. It is
// compiled when the 'onnx' build tag is NOT set, keeping default builds and
// CI CGO-free. The real adapter lives in adapter_onnx.go.

const onnxBuilt = false

func newONNXClassifier(opts LoadOptions, md Metadata, labels []string) (Classifier, error) {
	return nil, ErrDependencyUnavailable("onnxruntime support not built (missing 'onnx' build tag)")
}
