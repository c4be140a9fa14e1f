package api

import (
	"context"
	"errors"
	"strings"

	"github.com/heysubinoy/kvrest/pkg/kv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// GRPCClient is a kv.Store talking to a remote GRPCServer.
type GRPCClient struct {
	conn grpc.ClientConnInterface
}

// Compile-time check to ensure GRPCClient implements kv.Store.
var _ kv.Store[[]byte] = (*GRPCClient)(nil)

// NewGRPCClient creates a client on an established connection.
func NewGRPCClient(conn grpc.ClientConnInterface) *GRPCClient {
	return &GRPCClient{conn: conn}
}

func (c *GRPCClient) invoke(ctx context.Context, method string, key string, in, out interface{}) error {
	err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, out)
	if err == nil {
		return nil
	}
	return fromStatus(key, err)
}

// fromStatus recovers the kv.ReadError a GRPCServer encoded into a status.
func fromStatus(key string, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return kv.DBError(err).WithKey(key)
	}

	switch st.Code() {
	case codes.NotFound:
		return kv.NotFound(key)
	case codes.Internal:
		if strings.HasPrefix(st.Message(), string(kv.ReasonInvalidData)) {
			return kv.InvalidData(errors.New(st.Message())).WithKey(key)
		}
	}
	return kv.DBError(err).WithKey(key)
}

func (c *GRPCClient) Insert(ctx context.Context, key string, value []byte) error {
	ctx = metadata.AppendToOutgoingContext(ctx, KeyMetadata, key)
	return c.invoke(ctx, OpNameInsert, key, wrapperspb.Bytes(value), new(emptypb.Empty))
}

func (c *GRPCClient) Read(ctx context.Context, key string) ([]byte, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.invoke(ctx, OpNameRead, key, wrapperspb.String(key), out); err != nil {
		return nil, err
	}
	return out.GetValue(), nil
}

func (c *GRPCClient) Has(ctx context.Context, key string) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.invoke(ctx, OpNameHas, key, wrapperspb.String(key), out); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

func (c *GRPCClient) Keys(ctx context.Context) ([]string, error) {
	out := new(structpb.ListValue)
	if err := c.invoke(ctx, OpNameKeys, "", new(emptypb.Empty), out); err != nil {
		return nil, err
	}

	keys := make([]string, len(out.GetValues()))
	for i, v := range out.GetValues() {
		keys[i] = v.GetStringValue()
	}
	return keys, nil
}

func (c *GRPCClient) Delete(ctx context.Context, key string) error {
	return c.invoke(ctx, OpNameDelete, key, wrapperspb.String(key), new(wrapperspb.BoolValue))
}

func (c *GRPCClient) Clear(ctx context.Context) error {
	return c.invoke(ctx, OpNameClear, "", new(emptypb.Empty), new(wrapperspb.BoolValue))
}
