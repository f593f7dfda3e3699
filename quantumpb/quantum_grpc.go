package quantumpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const QuantumService_RunQuil_FullMethodName = "/quantum.QuantumService/RunQuil"

// QuantumServiceClient is the client API for QuantumService.
type QuantumServiceClient interface {
	RunQuil(ctx context.Context, in *RunQuilRequest, opts ...grpc.CallOption) (QuantumService_RunQuilClient, error)
}

type quantumServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewQuantumServiceClient(cc grpc.ClientConnInterface) QuantumServiceClient {
	return &quantumServiceClient{cc}
}

func (c *quantumServiceClient) RunQuil(ctx context.Context, in *RunQuilRequest, opts ...grpc.CallOption) (QuantumService_RunQuilClient, error) {
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec())}, opts...)

	stream, err := c.cc.NewStream(ctx, &QuantumService_ServiceDesc.Streams[0], QuantumService_RunQuil_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}

	x := &quantumServiceRunQuilClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}

	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}

	return x, nil
}

type QuantumService_RunQuilClient interface {
	Recv() (*QuilResult, error)
	grpc.ClientStream
}

type quantumServiceRunQuilClient struct {
	grpc.ClientStream
}

func (x *quantumServiceRunQuilClient) Recv() (*QuilResult, error) {
	m := new(QuilResult)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// QuantumServiceServer is the server API for QuantumService.
type QuantumServiceServer interface {
	RunQuil(*RunQuilRequest, QuantumService_RunQuilServer) error
}

// UnimplementedQuantumServiceServer can be embedded for forward compatibility.
type UnimplementedQuantumServiceServer struct{}

func (UnimplementedQuantumServiceServer) RunQuil(*RunQuilRequest, QuantumService_RunQuilServer) error {
	return status.Errorf(codes.Unimplemented, "method RunQuil not implemented")
}

// RegisterQuantumServiceServer registers srv on s. The server must be
// created with ServerOption() so requests decode with this package's codec.
func RegisterQuantumServiceServer(s grpc.ServiceRegistrar, srv QuantumServiceServer) {
	s.RegisterService(&QuantumService_ServiceDesc, srv)
}

// ServerOption forces the package codec on a grpc.Server.
func ServerOption() grpc.ServerOption {
	return grpc.ForceServerCodec(Codec())
}

func _QuantumService_RunQuil_Handler(srv any, stream grpc.ServerStream) error {
	m := new(RunQuilRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(QuantumServiceServer).RunQuil(m, &quantumServiceRunQuilServer{stream})
}

type QuantumService_RunQuilServer interface {
	Send(*QuilResult) error
	grpc.ServerStream
}

type quantumServiceRunQuilServer struct {
	grpc.ServerStream
}

func (x *quantumServiceRunQuilServer) Send(m *QuilResult) error {
	return x.ServerStream.SendMsg(m)
}

var QuantumService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "quantum.QuantumService",
	HandlerType: (*QuantumServiceServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "RunQuil",
			Handler:       _QuantumService_RunQuil_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "quantum.proto",
}
