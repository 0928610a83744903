package manager

import (
	"fmt"

	"classifyd/internal/common/fsutil"
	"classifyd/internal/labels"
)

// PreflightCheck is one named startup check.
type PreflightCheck struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// RuntimeBuilt reports whether this binary carries the onnxruntime adapter.
func RuntimeBuilt() bool { return onnxBuilt }

// Preflight validates the loaded state. It does not mutate state and is safe
// to call at any time.
func (m *Manager) Preflight() []PreflightCheck {
	checks := []PreflightCheck{{Name: "runtime_built", OK: onnxBuilt}}
	if !onnxBuilt {
		checks[0].Detail = "rebuild with -tags=onnx"
	}

	c := m.current()
	if c == nil {
		snap := m.Snapshot()
		return append(checks, PreflightCheck{Name: "classifier_loaded", OK: false, Detail: snap.Err})
	}
	checks = append(checks, PreflightCheck{Name: "classifier_loaded", OK: true})

	info := c.Info()
	art := PreflightCheck{Name: "artifact_present"}
	if n, err := fsutil.FileSize(info.Path); err != nil {
		art.Detail = err.Error()
	} else if n == 0 {
		art.Detail = "artifact is empty"
	} else {
		art.OK = true
		art.Detail = fmt.Sprintf("%s (%d bytes)", info.Path, n)
	}
	checks = append(checks, art)

	lb := PreflightCheck{Name: "labels_valid", OK: true, Detail: fmt.Sprintf("%d labels", len(c.Labels()))}
	if err := labels.Validate(c.Labels()); err != nil {
		lb.OK = false
		lb.Detail = err.Error()
	}
	return append(checks, lb)
}

// PreflightOK reports whether every check passed.
func PreflightOK(checks []PreflightCheck) bool {
	for _, c := range checks {
		if !c.OK {
			return false
		}
	}
	return len(checks) > 0
}
