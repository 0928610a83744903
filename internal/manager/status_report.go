package manager

import (
	"time"

	"classifyd/pkg/types"
)

// Snapshot returns a read-only view of the manager state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var model *types.ModelInfo
	if m.model != nil {
		cp := *m.model
		model = &cp
	}
	return Snapshot{State: m.state, Model: model, Err: m.err}
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	snap := m.Snapshot()
	inflight := len(m.genCh)
	waiting := len(m.queueCh) - inflight
	if waiting < 0 {
		waiting = 0
	}
	now := time.Now()
	return types.StatusResponse{
		State:          string(snap.State),
		Model:          snap.Model,
		Inflight:       inflight,
		MaxInflight:    m.maxInflight,
		QueueLen:       waiting,
		MaxQueueDepth:  m.maxQueueDepth,
		AnalysesTotal:  m.analysesTotal.Load(),
		InvalidTotal:   m.invalidTotal.Load(),
		RejectedTotal:  m.rejectedTotal.Load(),
		FailuresTotal:  m.failuresTotal.Load(),
		LastError:      snap.Err,
		UptimeSeconds:  int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
}
