package api

import (
	"net/http"

	"github.com/hashicorp/raft"
	"github.com/heysubinoy/kvrest/internal/store"
)

// MetricsSource is implemented by store.InstrumentedStore.
type MetricsSource interface {
	GetMetrics() store.MetricsSnapshot
}

// RaftNode is implemented by store.RaftStore.
type RaftNode interface {
	GetRaft() *raft.Raft
}

// MetricsHandler returns current store metrics as JSON.
// When node is non-nil the response also reports its Raft state and leader.
func MetricsHandler(source MetricsSource, node RaftNode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics := source.GetMetrics()

		operations := make(map[string]uint64, len(metrics))
		failures := make(map[string]uint64, len(metrics))
		latency := make(map[string]string, len(metrics))
		for op, m := range metrics {
			operations[op] = m.Count
			failures[op] = m.Failures
			latency[op] = m.AvgLatency.String()
		}

		response := map[string]interface{}{
			"operations":  operations,
			"failures":    failures,
			"avg_latency": latency,
		}
		if node != nil {
			response["raft"] = raftStatus(node.GetRaft())
		}

		writeJSON(w, http.StatusOK, response)
	}
}

func raftStatus(r *raft.Raft) map[string]interface{} {
	addr, id := r.LeaderWithID()
	return map[string]interface{}{
		"state":         r.State().String(),
		"leader":        string(addr),
		"leader_id":     string(id),
		"last_index":    r.LastIndex(),
		"applied_index": r.AppliedIndex(),
	}
}
