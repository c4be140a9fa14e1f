package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstrumentedStore(t *testing.T) {
	storeTest(t, NewInstrumentedStore[[]byte](NewMemStore()))
}

func TestInstrumentedStoreMetrics(t *testing.T) {
	ctx := context.Background()
	s := NewInstrumentedStore[[]byte](NewMemStore())

	_ = s.Insert(ctx, "a", []byte("1"))
	_, _ = s.Read(ctx, "a")
	_, _ = s.Read(ctx, "missing")
	_ = s.Delete(ctx, "a")

	m := s.GetMetrics()
	assert.Equal(t, uint64(1), m["insert"].Count)
	assert.Equal(t, uint64(2), m["read"].Count)
	assert.Equal(t, uint64(0), m["read"].Failures, "not-found is not a failure")
	assert.Equal(t, uint64(1), m["delete"].Count)
	assert.Equal(t, uint64(0), m["clear"].Count)
	assert.Len(t, m, 6)

	s.ResetMetrics()
	assert.Equal(t, uint64(0), s.GetMetrics()["read"].Count)
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "keys", OpKeys.String())
	assert.Equal(t, "unknown", Op(42).String())
}
