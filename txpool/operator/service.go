package operator

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	serviceName = "v1.TxnPoolOperator"

	statusMethod    = "/" + serviceName + "/Status"
	addTxnMethod    = "/" + serviceName + "/AddTxn"
	txStatusMethod  = "/" + serviceName + "/TxStatus"
	subscribeMethod = "/" + serviceName + "/Subscribe"
)

// TxnPoolOperatorServer is the server API for the TxnPoolOperator service.
type TxnPoolOperatorServer interface {
	// Status returns the current status of the pool
	Status(context.Context, *Empty) (*TxnPoolStatusResp, error)
	// AddTxn adds a local transaction to the pool
	AddTxn(context.Context, *AddTxnReq) (*AddTxnResp, error)
	// TxStatus returns the status of a transaction
	TxStatus(context.Context, *TxStatusReq) (*TxStatusResp, error)
	// Subscribe streams pool events
	Subscribe(*SubscribeRequest, TxnPoolOperator_SubscribeServer) error
}

// UnimplementedTxnPoolOperatorServer can be embedded to have forward compatible implementations.
type UnimplementedTxnPoolOperatorServer struct{}

func (UnimplementedTxnPoolOperatorServer) Status(context.Context, *Empty) (*TxnPoolStatusResp, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Status not implemented")
}

func (UnimplementedTxnPoolOperatorServer) AddTxn(context.Context, *AddTxnReq) (*AddTxnResp, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AddTxn not implemented")
}

func (UnimplementedTxnPoolOperatorServer) TxStatus(context.Context, *TxStatusReq) (*TxStatusResp, error) {
	return nil, status.Errorf(codes.Unimplemented, "method TxStatus not implemented")
}

func (UnimplementedTxnPoolOperatorServer) Subscribe(*SubscribeRequest, TxnPoolOperator_SubscribeServer) error {
	return status.Errorf(codes.Unimplemented, "method Subscribe not implemented")
}

// RegisterTxnPoolOperatorServer attaches the service to a gRPC server.
// The server must be created with grpc.ForceServerCodec(Codec())
func RegisterTxnPoolOperatorServer(s grpc.ServiceRegistrar, srv TxnPoolOperatorServer) {
	s.RegisterService(&TxnPoolOperator_ServiceDesc, srv)
}

type TxnPoolOperator_SubscribeServer interface {
	Send(*TxPoolEvent) error
	grpc.ServerStream
}

type txnPoolOperatorSubscribeServer struct {
	grpc.ServerStream
}

func (x *txnPoolOperatorSubscribeServer) Send(m *TxPoolEvent) error {
	return x.ServerStream.SendMsg(m)
}

func _TxnPoolOperator_Status_Handler(
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(TxnPoolOperatorServer).Status(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: statusMethod,
	}

	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TxnPoolOperatorServer).Status(ctx, req.(*Empty))
	}

	return interceptor(ctx, in, info, handler)
}

func _TxnPoolOperator_AddTxn_Handler(
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	in := new(AddTxnReq)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(TxnPoolOperatorServer).AddTxn(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: addTxnMethod,
	}

	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TxnPoolOperatorServer).AddTxn(ctx, req.(*AddTxnReq))
	}

	return interceptor(ctx, in, info, handler)
}

func _TxnPoolOperator_TxStatus_Handler(
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	in := new(TxStatusReq)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(TxnPoolOperatorServer).TxStatus(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: txStatusMethod,
	}

	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TxnPoolOperatorServer).TxStatus(ctx, req.(*TxStatusReq))
	}

	return interceptor(ctx, in, info, handler)
}

func _TxnPoolOperator_Subscribe_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(SubscribeRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}

	return srv.(TxnPoolOperatorServer).Subscribe(m, &txnPoolOperatorSubscribeServer{stream})
}

// TxnPoolOperator_ServiceDesc is the grpc.ServiceDesc for TxnPoolOperator service.
var TxnPoolOperator_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*TxnPoolOperatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Status",
			Handler:    _TxnPoolOperator_Status_Handler,
		},
		{
			MethodName: "AddTxn",
			Handler:    _TxnPoolOperator_AddTxn_Handler,
		},
		{
			MethodName: "TxStatus",
			Handler:    _TxnPoolOperator_TxStatus_Handler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			Handler:       _TxnPoolOperator_Subscribe_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "txpool/operator/service.go",
}

// TxnPoolOperatorClient is the client API for the TxnPoolOperator service.
type TxnPoolOperatorClient interface {
	Status(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*TxnPoolStatusResp, error)
	AddTxn(ctx context.Context, in *AddTxnReq, opts ...grpc.CallOption) (*AddTxnResp, error)
	TxStatus(ctx context.Context, in *TxStatusReq, opts ...grpc.CallOption) (*TxStatusResp, error)
	Subscribe(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (TxnPoolOperator_SubscribeClient, error)
}

type txnPoolOperatorClient struct {
	cc grpc.ClientConnInterface
}

// NewTxnPoolOperatorClient returns a client over a connection dialed
// with grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec()))
func NewTxnPoolOperatorClient(cc grpc.ClientConnInterface) TxnPoolOperatorClient {
	return &txnPoolOperatorClient{cc}
}

func (c *txnPoolOperatorClient) Status(
	ctx context.Context,
	in *Empty,
	opts ...grpc.CallOption,
) (*TxnPoolStatusResp, error) {
	out := new(TxnPoolStatusResp)
	if err := c.cc.Invoke(ctx, statusMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *txnPoolOperatorClient) AddTxn(
	ctx context.Context,
	in *AddTxnReq,
	opts ...grpc.CallOption,
) (*AddTxnResp, error) {
	out := new(AddTxnResp)
	if err := c.cc.Invoke(ctx, addTxnMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *txnPoolOperatorClient) TxStatus(
	ctx context.Context,
	in *TxStatusReq,
	opts ...grpc.CallOption,
) (*TxStatusResp, error) {
	out := new(TxStatusResp)
	if err := c.cc.Invoke(ctx, txStatusMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *txnPoolOperatorClient) Subscribe(
	ctx context.Context,
	in *SubscribeRequest,
	opts ...grpc.CallOption,
) (TxnPoolOperator_SubscribeClient, error) {
	stream, err := c.cc.NewStream(ctx, &TxnPoolOperator_ServiceDesc.Streams[0], subscribeMethod, opts...)
	if err != nil {
		return nil, err
	}

	x := &txnPoolOperatorSubscribeClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}

	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}

	return x, nil
}

type TxnPoolOperator_SubscribeClient interface {
	Recv() (*TxPoolEvent, error)
	grpc.ClientStream
}

type txnPoolOperatorSubscribeClient struct {
	grpc.ClientStream
}

func (x *txnPoolOperatorSubscribeClient) Recv() (*TxPoolEvent, error) {
	m := new(TxPoolEvent)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}

	return m, nil
}
