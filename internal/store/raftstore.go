package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/raft"
	"github.com/heysubinoy/kvrest/pkg/kv"
)

// DefaultApplyTimeout bounds how long a write waits for the log to commit.
const DefaultApplyTimeout = 5 * time.Second

// RaftCommand represents a mutation to be applied via Raft.
type RaftCommand struct {
	Op    string `json:"op"` // "insert", "delete" or "clear"
	Key   string `json:"key,omitempty"`
	Value []byte `json:"value,omitempty"` // only for insert
}

// FSM applies committed Raft log entries to a local MemStore.
type FSM struct {
	store *MemStore
}

// NewFSM creates an FSM backed by store.
func NewFSM(store *MemStore) *FSM {
	return &FSM{store: store}
}

// Compile-time check to ensure FSM implements raft.FSM.
var _ raft.FSM = (*FSM)(nil)

// Apply applies a Raft log entry to the local store.
// The returned value is the error of the operation, or nil.
func (f *FSM) Apply(log *raft.Log) interface{} {
	var cmd RaftCommand
	if err := json.Unmarshal(log.Data, &cmd); err != nil {
		return kv.InvalidData(err)
	}

	ctx := context.Background()
	switch cmd.Op {
	case "insert":
		return f.store.Insert(ctx, cmd.Key, cmd.Value)
	case "delete":
		return f.store.Delete(ctx, cmd.Key)
	case "clear":
		return f.store.Clear(ctx)
	}
	return kv.InvalidData(fmt.Errorf("unknown raft command %q", cmd.Op))
}

// Snapshot captures the full contents of the store.
func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	return &mapSnapshot{data: f.store.dump()}, nil
}

// Restore replaces the store contents with a snapshot written by Persist.
func (f *FSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()

	var data map[string][]byte
	if err := json.NewDecoder(rc).Decode(&data); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	f.store.replace(data)
	return nil
}

type mapSnapshot struct {
	data map[string][]byte
}

func (s *mapSnapshot) Persist(sink raft.SnapshotSink) error {
	if err := json.NewEncoder(sink).Encode(s.data); err != nil {
		sink.Cancel()
		return err
	}
	return sink.Close()
}

func (s *mapSnapshot) Release() {}

// RaftStore applies writes through Raft consensus and serves reads
// from the local FSM state.
type RaftStore struct {
	fsm     *FSM
	raft    *raft.Raft
	closers []io.Closer

	ApplyTimeout time.Duration
}

// Compile-time check to ensure RaftStore implements kv.Store.
var _ kv.Store[[]byte] = (*RaftStore)(nil)

// NewRaftStore creates a store on top of fsm, replicated by r.
func NewRaftStore(fsm *FSM, r *raft.Raft) *RaftStore {
	return &RaftStore{fsm: fsm, raft: r, ApplyTimeout: DefaultApplyTimeout}
}

// GetRaft returns the underlying raft.Raft pointer.
func (rs *RaftStore) GetRaft() *raft.Raft {
	return rs.raft
}

// apply submits cmd to Raft and waits for the FSM result.
func (rs *RaftStore) apply(ctx context.Context, cmd RaftCommand) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return kv.InvalidData(err).WithKey(cmd.Key)
	}

	timeout := rs.ApplyTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < timeout {
			timeout = d
		}
	}
	if timeout <= 0 {
		return kv.DBError(context.DeadlineExceeded).WithKey(cmd.Key)
	}

	f := rs.raft.Apply(data, timeout)
	if err := f.Error(); err != nil {
		if err == raft.ErrNotLeader {
			leader, _ := rs.raft.LeaderWithID()
			err = fmt.Errorf("%w (leader: %q)", err, leader)
		}
		return kv.DBError(err).WithKey(cmd.Key)
	}

	if resp, ok := f.Response().(error); ok && resp != nil {
		return resp
	}
	return nil
}

// Insert submits an insert command to Raft.
func (rs *RaftStore) Insert(ctx context.Context, key string, value []byte) error {
	return rs.apply(ctx, RaftCommand{Op: "insert", Key: key, Value: value})
}

// Delete submits a delete command to Raft.
func (rs *RaftStore) Delete(ctx context.Context, key string) error {
	return rs.apply(ctx, RaftCommand{Op: "delete", Key: key})
}

// Clear submits a clear command to Raft.
func (rs *RaftStore) Clear(ctx context.Context) error {
	return rs.apply(ctx, RaftCommand{Op: "clear"})
}

// Read reads directly from the local store.
func (rs *RaftStore) Read(ctx context.Context, key string) ([]byte, error) {
	return rs.fsm.store.Read(ctx, key)
}

func (rs *RaftStore) Has(ctx context.Context, key string) (bool, error) {
	return rs.fsm.store.Has(ctx, key)
}

func (rs *RaftStore) Keys(ctx context.Context) ([]string, error) {
	return rs.fsm.store.Keys(ctx)
}

// Close shuts the Raft node down and releases its stores.
func (rs *RaftStore) Close() error {
	err := rs.raft.Shutdown().Error()
	for _, c := range rs.closers {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
