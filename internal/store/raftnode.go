package store

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"
)

// RaftOptions configures a Raft node backed by bolt and a TCP transport.
type RaftOptions struct {
	NodeID    string
	Addr      string // bind address for the raft transport
	DataDir   string
	Bootstrap bool // bootstrap a new single-node cluster
	Logger    hclog.Logger
}

// OpenRaftStore starts a Raft node with persistent log and snapshot storage
// under opts.DataDir and returns a store replicated through it.
func OpenRaftStore(opts RaftOptions) (*RaftStore, error) {
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if err := os.MkdirAll(opts.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create raft data dir: %w", err)
	}

	conf := raft.DefaultConfig()
	conf.LocalID = raft.ServerID(opts.NodeID)
	conf.Logger = opts.Logger.Named("raft")

	boltStore, err := raftboltdb.NewBoltStore(filepath.Join(opts.DataDir, "raft.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt store: %w", err)
	}

	snapshots, err := raft.NewFileSnapshotStoreWithLogger(opts.DataDir, 2, conf.Logger)
	if err != nil {
		boltStore.Close()
		return nil, fmt.Errorf("failed to create snapshot store: %w", err)
	}

	advertise, err := net.ResolveTCPAddr("tcp", opts.Addr)
	if err != nil {
		boltStore.Close()
		return nil, fmt.Errorf("failed to resolve raft address: %w", err)
	}
	transport, err := raft.NewTCPTransportWithLogger(opts.Addr, advertise, 3, 10*time.Second, conf.Logger)
	if err != nil {
		boltStore.Close()
		return nil, fmt.Errorf("failed to create raft transport: %w", err)
	}

	fsm := NewFSM(NewMemStore())
	r, err := raft.NewRaft(conf, fsm, boltStore, boltStore, snapshots, transport)
	if err != nil {
		transport.Close()
		boltStore.Close()
		return nil, fmt.Errorf("failed to start raft: %w", err)
	}

	if opts.Bootstrap {
		cfg := raft.Configuration{
			Servers: []raft.Server{{ID: conf.LocalID, Address: transport.LocalAddr()}},
		}
		// an already bootstrapped cluster is not an error on restart
		if err := r.BootstrapCluster(cfg).Error(); err != nil && err != raft.ErrCantBootstrap {
			r.Shutdown()
			return nil, fmt.Errorf("failed to bootstrap cluster: %w", err)
		}
	}

	rs := NewRaftStore(fsm, r)
	rs.closers = append(rs.closers, boltStore)
	return rs, nil
}
