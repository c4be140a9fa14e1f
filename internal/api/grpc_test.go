package api

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/heysubinoy/kvrest/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// newTestGRPC serves s over an in-memory listener and returns a connected client.
func newTestGRPC[A any](t *testing.T, s kv.Store[A], codec kv.Codec[A]) (*GRPCClient, *grpc.ClientConn) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	NewGRPCServer[A](s, codec, nil).Register(srv)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewGRPCClient(conn), conn
}

func TestGRPCRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestGRPC[[]byte](t, newFakeStore(), kv.Bytes{})

	require.NoError(t, client.Insert(ctx, "a", []byte("1")))
	require.NoError(t, client.Insert(ctx, "b", []byte{0xff, 0x00}))

	v, err := client.Read(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	v, err = client.Read(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0x00}, v)

	ok, err := client.Has(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.Has(ctx, "zzz")
	require.NoError(t, err)
	assert.False(t, ok)

	keys, err := client.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, client.Delete(ctx, "a"))
	_, err = client.Read(ctx, "a")
	assert.True(t, kv.IsNotFound(err))
	assert.True(t, kv.IsNotFound(client.Delete(ctx, "a")))

	require.NoError(t, client.Clear(ctx))
	keys, err = client.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestGRPCNonASCIIKeys(t *testing.T) {
	ctx := context.Background()
	fake := newFakeStore()
	client, _ := newTestGRPC[[]byte](t, fake, kv.Bytes{})

	for _, key := range []string{"ключ", "键/值", "tab\tand\nnewline", "emoji 🔑"} {
		require.NoError(t, client.Insert(ctx, key, []byte(key)), key)

		v, err := client.Read(ctx, key)
		require.NoError(t, err, key)
		assert.Equal(t, []byte(key), v)

		// the key arrives at the store unchanged
		stored, err := fake.MemStore.Read(ctx, key)
		require.NoError(t, err, key)
		assert.Equal(t, []byte(key), stored)
	}
}

func TestGRPCFailures(t *testing.T) {
	ctx := context.Background()
	fake := newFakeStore()
	client, _ := newTestGRPC[any](t, kv.NewTyped[any](fake, kv.JSON[any]{}), kv.JSON[any]{})

	err := client.Insert(ctx, "a", []byte("{broken"))
	assert.Equal(t, kv.ReasonInvalidData, kv.AsReadError(err).Reason)
	assert.Equal(t, int64(0), fake.calls.Load())

	fake.err = errors.New("connection refused")
	_, err = client.Read(ctx, "a")
	assert.Equal(t, kv.ReasonDBError, kv.AsReadError(err).Reason)
	assert.Equal(t, codes.Internal, status.Code(errors.Unwrap(err)))
}

func TestGRPCMissingKey(t *testing.T) {
	ctx := context.Background()
	fake := newFakeStore()
	_, conn := newTestGRPC[[]byte](t, fake, kv.Bytes{})

	out := new(wrapperspb.BoolValue)
	err := conn.Invoke(ctx, "/"+ServiceName+"/"+OpNameHas, wrapperspb.String(""), out)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	// insert without key metadata
	err = conn.Invoke(ctx, "/"+ServiceName+"/"+OpNameInsert, wrapperspb.Bytes([]byte("v")), new(wrapperspb.BytesValue))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	assert.Equal(t, int64(0), fake.calls.Load())
}
