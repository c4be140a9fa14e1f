package store

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/heysubinoy/kvrest/pkg/config"
	"github.com/heysubinoy/kvrest/pkg/kv"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open creates the byte-level store selected by cfg.Backend.
// The returned closer releases the backend and must be called on shutdown.
func Open(ctx context.Context, cfg *config.Config, logger hclog.Logger) (kv.Store[[]byte], io.Closer, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		return NewMemStore(), nopCloser{}, nil

	case config.BackendLevelDB:
		ds, err := NewDiskStore(filepath.Join(cfg.DataDir, "kv.leveldb"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open leveldb: %w", err)
		}
		return ds, ds, nil

	case config.BackendSQLite, config.BackendMySQL:
		ss, err := NewSQLStore(ctx, cfg.Backend, cfg.DSN, cfg.Table)
		if err != nil {
			return nil, nil, err
		}
		return ss, ss, nil

	case config.BackendRaft:
		rs, err := OpenRaftStore(RaftOptions{
			NodeID:    cfg.NodeID,
			Addr:      cfg.RaftAddr,
			DataDir:   cfg.DataDir,
			Bootstrap: cfg.RaftLeader,
			Logger:    logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return rs, rs, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}
