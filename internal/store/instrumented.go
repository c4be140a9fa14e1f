package store

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/heysubinoy/kvrest/pkg/kv"
)

// Op names a store operation for metrics purposes.
type Op int

const (
	OpInsert Op = iota
	OpRead
	OpHas
	OpKeys
	OpDelete
	OpClear
	numOps
)

var opNames = [numOps]string{"insert", "read", "has", "keys", "delete", "clear"}

func (op Op) String() string {
	if op < 0 || op >= numOps {
		return "unknown"
	}
	return opNames[op]
}

// opMetrics holds counters for one operation.
// Uses atomic operations for thread-safe updates without locks.
type opMetrics struct {
	Count     atomic.Uint64
	Failures  atomic.Uint64
	LatencyNs atomic.Uint64 // cumulative
}

// InstrumentedStore wraps any kv.Store implementation with timing metrics.
// This pattern works for in-memory, disk, SQL and Raft-backed stores alike.
type InstrumentedStore[A any] struct {
	store   kv.Store[A]
	metrics [numOps]opMetrics
}

// Compile-time check to ensure InstrumentedStore implements kv.Store.
var _ kv.Store[[]byte] = (*InstrumentedStore[[]byte])(nil)

// NewInstrumentedStore wraps a store with instrumentation.
func NewInstrumentedStore[A any](store kv.Store[A]) *InstrumentedStore[A] {
	return &InstrumentedStore[A]{store: store}
}

func (s *InstrumentedStore[A]) record(op Op, start time.Time, err error) {
	m := &s.metrics[op]
	m.Count.Add(1)
	m.LatencyNs.Add(uint64(time.Since(start).Nanoseconds()))
	// a missing key is an answer, not a failure of the store
	if err != nil && !kv.IsNotFound(err) {
		m.Failures.Add(1)
	}
}

func (s *InstrumentedStore[A]) Insert(ctx context.Context, key string, value A) error {
	start := time.Now()
	err := s.store.Insert(ctx, key, value)
	s.record(OpInsert, start, err)
	return err
}

func (s *InstrumentedStore[A]) Read(ctx context.Context, key string) (A, error) {
	start := time.Now()
	value, err := s.store.Read(ctx, key)
	s.record(OpRead, start, err)
	return value, err
}

func (s *InstrumentedStore[A]) Has(ctx context.Context, key string) (bool, error) {
	start := time.Now()
	ok, err := s.store.Has(ctx, key)
	s.record(OpHas, start, err)
	return ok, err
}

func (s *InstrumentedStore[A]) Keys(ctx context.Context) ([]string, error) {
	start := time.Now()
	keys, err := s.store.Keys(ctx)
	s.record(OpKeys, start, err)
	return keys, err
}

func (s *InstrumentedStore[A]) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.store.Delete(ctx, key)
	s.record(OpDelete, start, err)
	return err
}

func (s *InstrumentedStore[A]) Clear(ctx context.Context) error {
	start := time.Now()
	err := s.store.Clear(ctx)
	s.record(OpClear, start, err)
	return err
}

// OpSnapshot is a point-in-time view of the metrics of one operation.
type OpSnapshot struct {
	Count      uint64        `json:"count"`
	Failures   uint64        `json:"failures"`
	AvgLatency time.Duration `json:"-"`
}

// MetricsSnapshot maps operation names to their metrics.
type MetricsSnapshot map[string]OpSnapshot

// GetMetrics returns a snapshot of current metrics.
func (s *InstrumentedStore[A]) GetMetrics() MetricsSnapshot {
	snap := make(MetricsSnapshot, numOps)
	for op := Op(0); op < numOps; op++ {
		m := &s.metrics[op]
		count := m.Count.Load()
		snap[op.String()] = OpSnapshot{
			Count:      count,
			Failures:   m.Failures.Load(),
			AvgLatency: avgLatency(m.LatencyNs.Load(), count),
		}
	}
	return snap
}

// ResetMetrics clears all metrics counters.
func (s *InstrumentedStore[A]) ResetMetrics() {
	for op := range s.metrics {
		s.metrics[op].Count.Store(0)
		s.metrics[op].Failures.Store(0)
		s.metrics[op].LatencyNs.Store(0)
	}
}

func avgLatency(totalNs, count uint64) time.Duration {
	if count == 0 {
		return 0
	}
	return time.Duration(totalNs / count)
}
