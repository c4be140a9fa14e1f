package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/heysubinoy/kvrest/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *SQLStore {
	t.Helper()
	ss, err := NewSQLStore(context.Background(), "sqlite", filepath.Join(t.TempDir(), "kv.sqlite"), "")
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })
	return ss
}

func TestSQLStore(t *testing.T) {
	storeTest(t, openSQLite(t))
}

func TestSQLStoreUnknownDriver(t *testing.T) {
	_, err := NewSQLStore(context.Background(), "postgres", "", "")
	assert.Error(t, err)
}

func TestSQLStoreClosedIsDBError(t *testing.T) {
	ss := openSQLite(t)
	require.NoError(t, ss.Close())

	_, err := ss.Read(context.Background(), "k")
	assert.Equal(t, kv.ReasonDBError, kv.AsReadError(err).Reason)

	_, err = ss.Keys(context.Background())
	assert.Equal(t, kv.ReasonDBError, kv.AsReadError(err).Reason)
}
