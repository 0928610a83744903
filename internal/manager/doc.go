// Package manager owns the single image classifier loaded at startup and
// coordinates every prediction made against it. It is structured into small
// files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: lifecycle state and the Classifier interface.
//   - errors.go: error types and helpers (IsInvalidInput, IsTooBusy, ...).
//   - admission.go: bounded queue and in-flight slots in front of the classifier.
//   - analyze.go: request entry point (decode, admit, predict).
//   - decode.go, preprocess.go, postprocess.go: image in, label out.
//   - metadata.go, load.go: artifact sidecar parsing and LoadClassifier.
//   - status_report.go, sanity.go: /status and startup preflight reporting.
//   - metrics.go: Prometheus collectors for inference.
//
// Build tags and runtimes:
//
//   - ONNX Runtime (standard):
//     Uses github.com/yalue/onnxruntime_go. Enabled with `-tags=onnx`; needs
//     cgo and the onnxruntime shared library at run time.
//     File: adapter_onnx.go.
//     A no-CGO stub exists when the tag is not set: adapter_onnx_stub.go.
//
// The classifier is never mutated after load. External packages should use
// the public methods only (NewWithConfig, Ready, Analyze, Labels, Status).
package manager
