package api

import (
	"context"
	"sync/atomic"

	"github.com/heysubinoy/kvrest/internal/store"
	"github.com/heysubinoy/kvrest/pkg/kv"
)

// fakeStore wraps a MemStore, counting calls and optionally failing them.
type fakeStore struct {
	*store.MemStore

	calls atomic.Int64
	err   error // returned by every operation when set
	panic bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{MemStore: store.NewMemStore()}
}

func (f *fakeStore) before() error {
	f.calls.Add(1)
	if f.panic {
		panic("store exploded")
	}
	return f.err
}

func (f *fakeStore) Insert(ctx context.Context, key string, value []byte) error {
	if err := f.before(); err != nil {
		return err
	}
	return f.MemStore.Insert(ctx, key, value)
}

func (f *fakeStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := f.before(); err != nil {
		return nil, err
	}
	return f.MemStore.Read(ctx, key)
}

func (f *fakeStore) Has(ctx context.Context, key string) (bool, error) {
	if err := f.before(); err != nil {
		return false, err
	}
	return f.MemStore.Has(ctx, key)
}

func (f *fakeStore) Keys(ctx context.Context) ([]string, error) {
	if err := f.before(); err != nil {
		return nil, err
	}
	return f.MemStore.Keys(ctx)
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	if err := f.before(); err != nil {
		return err
	}
	return f.MemStore.Delete(ctx, key)
}

func (f *fakeStore) Clear(ctx context.Context) error {
	if err := f.before(); err != nil {
		return err
	}
	return f.MemStore.Clear(ctx)
}

var _ kv.Store[[]byte] = (*fakeStore)(nil)
