package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
	"github.com/heysubinoy/kvrest/internal/store"
	"github.com/heysubinoy/kvrest/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandler(t *testing.T) {
	inst := store.NewInstrumentedStore[[]byte](store.NewMemStore())

	r := NewRouter(nil)
	NewServer[[]byte](inst, kv.Bytes{}, nil).RegisterRoutes(r)
	r.Handle("/metrics", MetricsHandler(inst, nil)).Methods(http.MethodGet)

	do(t, r, http.MethodPost, "/insert?key=a", "1")
	do(t, r, http.MethodGet, "/read?key=a", "")
	do(t, r, http.MethodGet, "/read?key=b", "")

	rec := do(t, r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Operations map[string]uint64 `json:"operations"`
		Failures   map[string]uint64 `json:"failures"`
		AvgLatency map[string]string `json:"avg_latency"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint64(1), body.Operations["insert"])
	assert.Equal(t, uint64(2), body.Operations["read"])
	assert.Equal(t, uint64(0), body.Failures["read"])
	assert.Contains(t, body.AvgLatency, "clear")
	assert.NotContains(t, rec.Body.String(), `"raft"`)
}

func TestMetricsHandlerRaft(t *testing.T) {
	conf := raft.DefaultConfig()
	conf.LocalID = "node1"
	conf.Logger = hclog.NewNullLogger()
	conf.HeartbeatTimeout = 50 * time.Millisecond
	conf.ElectionTimeout = 50 * time.Millisecond
	conf.LeaderLeaseTimeout = 50 * time.Millisecond
	conf.CommitTimeout = 5 * time.Millisecond

	addr, transport := raft.NewInmemTransport("")
	logs := raft.NewInmemStore()
	fsm := store.NewFSM(store.NewMemStore())
	r, err := raft.NewRaft(conf, fsm, logs, logs, raft.NewInmemSnapshotStore(), transport)
	require.NoError(t, err)
	require.NoError(t, r.BootstrapCluster(raft.Configuration{
		Servers: []raft.Server{{ID: conf.LocalID, Address: addr}},
	}).Error())

	rs := store.NewRaftStore(fsm, r)
	defer rs.Close()
	require.Eventually(t, func() bool {
		return r.State() == raft.Leader
	}, 5*time.Second, 10*time.Millisecond)

	inst := store.NewInstrumentedStore[[]byte](rs)
	rec := do(t, MetricsHandler(inst, rs), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Raft struct {
			State    string `json:"state"`
			Leader   string `json:"leader"`
			LeaderID string `json:"leader_id"`
		} `json:"raft"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Leader", body.Raft.State)
	assert.Equal(t, string(addr), body.Raft.Leader)
	assert.Equal(t, "node1", body.Raft.LeaderID)
}
