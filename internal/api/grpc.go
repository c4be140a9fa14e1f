package api

import (
	"context"

	"github.com/hashicorp/go-hclog"
	"github.com/heysubinoy/kvrest/pkg/kv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified name of the gRPC service.
const ServiceName = "kvrest.KV"

// KeyMetadata is the metadata entry carrying the key of an Insert call,
// whose message is the raw value. The -bin suffix makes grpc-go send it
// base64 encoded, so keys are not limited to printable ASCII.
const KeyMetadata = "kv-key-bin"

// kvService is the server side of the kvrest.KV service.
// Messages are protobuf well-known types so no generated code is needed.
type kvService interface {
	Insert(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error)
	Read(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	Has(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	Keys(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	Delete(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	Clear(context.Context, *emptypb.Empty) (*wrapperspb.BoolValue, error)
}

// unary builds the method descriptor for a single unary call.
func unary[Req any, Resp any](name string, call func(kvService, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(kvService), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(kvService), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*kvService)(nil),
	Methods: []grpc.MethodDesc{
		unary(OpNameInsert, kvService.Insert),
		unary(OpNameRead, kvService.Read),
		unary(OpNameHas, kvService.Has),
		unary(OpNameKeys, kvService.Keys),
		unary(OpNameDelete, kvService.Delete),
		unary(OpNameClear, kvService.Clear),
	},
}

// gRPC method names.
const (
	OpNameInsert = "Insert"
	OpNameRead   = "Read"
	OpNameHas    = "Has"
	OpNameKeys   = "Keys"
	OpNameDelete = "Delete"
	OpNameClear  = "Clear"
)

// GRPCServer exposes a kv.Store over gRPC.
// Failures are classified exactly like the HTTP gateway does.
type GRPCServer[A any] struct {
	Store  kv.Store[A]
	Codec  kv.Codec[A]
	Logger hclog.Logger
}

// Compile-time check to ensure GRPCServer implements the service.
var _ kvService = (*GRPCServer[[]byte])(nil)

// NewGRPCServer creates a new gRPC server with the given store.
func NewGRPCServer[A any](store kv.Store[A], codec kv.Codec[A], logger hclog.Logger) *GRPCServer[A] {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &GRPCServer[A]{
		Store:  store,
		Codec:  codec,
		Logger: logger.Named("grpc"),
	}
}

// Register adds the service to a grpc.Server.
func (s *GRPCServer[A]) Register(reg grpc.ServiceRegistrar) {
	reg.RegisterService(&serviceDesc, s)
}

// toStatus converts a store error into a gRPC status error.
func (s *GRPCServer[A]) toStatus(method string, err error) error {
	rerr := kv.AsReadError(err)
	code := CodeOf(rerr)
	if code == codes.Internal {
		s.Logger.Error("store failure", "method", method, "error", rerr)
	}
	return status.Error(code, rerr.Error())
}

func keyOf(req *wrapperspb.StringValue) (string, error) {
	if req.GetValue() == "" {
		return "", status.Error(codes.InvalidArgument, "key is required")
	}
	return req.GetValue(), nil
}

// Insert stores the request value under the key given in metadata.
func (s *GRPCServer[A]) Insert(ctx context.Context, req *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	var key string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(KeyMetadata); len(vals) > 0 {
			key = vals[0]
		}
	}
	if key == "" {
		return nil, status.Error(codes.InvalidArgument, "key is required")
	}

	value, err := s.Codec.Parse(req.GetValue())
	if err != nil {
		return nil, s.toStatus(OpNameInsert, kv.AsInvalidData(err).WithKey(key))
	}
	if err := s.Store.Insert(ctx, key, value); err != nil {
		return nil, s.toStatus(OpNameInsert, err)
	}
	return &emptypb.Empty{}, nil
}

// Read returns the dumped value of a key.
func (s *GRPCServer[A]) Read(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	key, err := keyOf(req)
	if err != nil {
		return nil, err
	}

	value, err := s.Store.Read(ctx, key)
	if err != nil {
		return nil, s.toStatus(OpNameRead, err)
	}
	data, err := s.Codec.Dump(value)
	if err != nil {
		return nil, s.toStatus(OpNameRead, kv.AsInvalidData(err).WithKey(key))
	}
	return wrapperspb.Bytes(data), nil
}

func (s *GRPCServer[A]) Has(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	key, err := keyOf(req)
	if err != nil {
		return nil, err
	}

	ok, err := s.Store.Has(ctx, key)
	if err != nil {
		return nil, s.toStatus(OpNameHas, err)
	}
	return wrapperspb.Bool(ok), nil
}

func (s *GRPCServer[A]) Keys(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	keys, err := s.Store.Keys(ctx)
	if err != nil {
		return nil, s.toStatus(OpNameKeys, err)
	}

	list := &structpb.ListValue{Values: make([]*structpb.Value, len(keys))}
	for i, key := range keys {
		list.Values[i] = structpb.NewStringValue(key)
	}
	return list, nil
}

func (s *GRPCServer[A]) Delete(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	key, err := keyOf(req)
	if err != nil {
		return nil, err
	}

	if err := s.Store.Delete(ctx, key); err != nil {
		return nil, s.toStatus(OpNameDelete, err)
	}
	return wrapperspb.Bool(true), nil
}

func (s *GRPCServer[A]) Clear(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	if err := s.Store.Clear(ctx); err != nil {
		return nil, s.toStatus(OpNameClear, err)
	}
	return wrapperspb.Bool(true), nil
}
