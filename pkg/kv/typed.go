package kv

import "context"

// Typed exposes a byte-level store as a Store[A] by running every value
// through a codec. Stored bytes that fail to parse surface as invalid-data.
type Typed[A any] struct {
	Store Store[[]byte]
	Codec Codec[A]
}

// Compile-time check to ensure Typed implements Store.
var _ Store[string] = Typed[string]{}

// NewTyped wraps store with codec.
func NewTyped[A any](store Store[[]byte], codec Codec[A]) Typed[A] {
	return Typed[A]{Store: store, Codec: codec}
}

func (t Typed[A]) Insert(ctx context.Context, key string, value A) error {
	data, err := t.Codec.Dump(value)
	if err != nil {
		return AsInvalidData(err).WithKey(key)
	}
	return t.Store.Insert(ctx, key, data)
}

func (t Typed[A]) Read(ctx context.Context, key string) (value A, err error) {
	data, err := t.Store.Read(ctx, key)
	if err != nil {
		return value, err
	}
	value, err = t.Codec.Parse(data)
	if err != nil {
		return value, AsInvalidData(err).WithKey(key)
	}
	return value, nil
}

func (t Typed[A]) Has(ctx context.Context, key string) (bool, error) {
	return t.Store.Has(ctx, key)
}

func (t Typed[A]) Keys(ctx context.Context) ([]string, error) {
	return t.Store.Keys(ctx)
}

func (t Typed[A]) Delete(ctx context.Context, key string) error {
	return t.Store.Delete(ctx, key)
}

func (t Typed[A]) Clear(ctx context.Context) error {
	return t.Store.Clear(ctx)
}
