package store

import (
	"context"
	"errors"

	"github.com/heysubinoy/kvrest/pkg/kv"
	"github.com/syndtr/goleveldb/leveldb"
)

// DiskStore persists key-value pairs in a leveldb database.
type DiskStore struct {
	DB *leveldb.DB
}

// Compile-time check to ensure DiskStore implements kv.Store.
var _ kv.Store[[]byte] = (*DiskStore)(nil)

// NewDiskStore opens (or creates) the leveldb database at path.
// Existing data is kept.
func NewDiskStore(path string) (*DiskStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &DiskStore{DB: db}, nil
}

func (ds *DiskStore) Insert(_ context.Context, key string, value []byte) error {
	if err := ds.DB.Put([]byte(key), value, nil); err != nil {
		return kv.DBError(err).WithKey(key)
	}
	return nil
}

func (ds *DiskStore) Read(_ context.Context, key string) ([]byte, error) {
	value, err := ds.DB.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, kv.NotFound(key)
	}
	if err != nil {
		return nil, kv.DBError(err).WithKey(key)
	}
	return value, nil
}

func (ds *DiskStore) Has(_ context.Context, key string) (bool, error) {
	ok, err := ds.DB.Has([]byte(key), nil)
	if err != nil {
		return false, kv.DBError(err).WithKey(key)
	}
	return ok, nil
}

// Keys returns all keys in leveldb's byte order.
func (ds *DiskStore) Keys(_ context.Context) ([]string, error) {
	it := ds.DB.NewIterator(nil, nil)
	defer it.Release()

	keys := []string{}
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	if err := it.Error(); err != nil {
		return nil, kv.DBError(err)
	}
	return keys, nil
}

// Delete deletes the given key from this storage.
// leveldb does not report missing keys on delete, so existence is checked first.
func (ds *DiskStore) Delete(ctx context.Context, key string) error {
	ok, err := ds.Has(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return kv.NotFound(key)
	}

	if err := ds.DB.Delete([]byte(key), nil); err != nil {
		return kv.DBError(err).WithKey(key)
	}
	return nil
}

// Clear deletes every key in a single batch.
func (ds *DiskStore) Clear(_ context.Context) error {
	it := ds.DB.NewIterator(nil, nil)
	defer it.Release()

	var batch leveldb.Batch
	for it.Next() {
		batch.Delete(it.Key())
	}
	if err := it.Error(); err != nil {
		return kv.DBError(err)
	}

	if err := ds.DB.Write(&batch, nil); err != nil {
		return kv.DBError(err)
	}
	return nil
}

func (ds *DiskStore) Close() error {
	var err error

	if ds.DB != nil {
		err = ds.DB.Close()
	}
	ds.DB = nil
	return err
}
