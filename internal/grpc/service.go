package grpc

import (
	"context"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "scorebored.v1.Scoreboard"

// ScoreboardServer is the server API for the scoreboard service. Scoreboard
// snapshots travel as google.protobuf.Struct in their JSON shape.
type ScoreboardServer interface {
	GetState(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ScorePoint(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	UndoPoint(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	SwitchSides(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Reset(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SetActive(context.Context, *wrapperspb.BoolValue) (*structpb.Struct, error)
	StreamEvents(*emptypb.Empty, gogrpc.ServerStreamingServer[structpb.Struct]) error
}

// unary builds the method descriptor for a request type P.
func unary[R any, P interface {
	*R
	proto.Message
}](name string, call func(ScoreboardServer, context.Context, P) (*structpb.Struct, error)) gogrpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return gogrpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
			in := P(new(R))
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ScoreboardServer), ctx, in)
			}
			info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(ScoreboardServer), ctx, req.(P))
			})
		},
	}
}

func streamEventsHandler(srv any, stream gogrpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ScoreboardServer).StreamEvents(in, &gogrpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream})
}

// ServiceDesc describes the scoreboard service for grpc.Server.RegisterService.
var ServiceDesc = gogrpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ScoreboardServer)(nil),
	Methods: []gogrpc.MethodDesc{
		unary("GetState", ScoreboardServer.GetState),
		unary("ScorePoint", ScoreboardServer.ScorePoint),
		unary("UndoPoint", ScoreboardServer.UndoPoint),
		unary("SwitchSides", ScoreboardServer.SwitchSides),
		unary("Reset", ScoreboardServer.Reset),
		unary("SetActive", ScoreboardServer.SetActive),
	},
	Streams: []gogrpc.StreamDesc{
		{
			StreamName:    "StreamEvents",
			Handler:       streamEventsHandler,
			ServerStreams: true,
		},
	},
	Metadata: "scorebored/v1/scoreboard.proto",
}

func RegisterScoreboardServer(s gogrpc.ServiceRegistrar, srv ScoreboardServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls the scoreboard service over an existing connection.
type Client struct {
	cc gogrpc.ClientConnInterface
}

func NewClient(cc gogrpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in proto.Message, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetState(ctx context.Context, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetState", &emptypb.Empty{}, opts...)
}

func (c *Client) ScorePoint(ctx context.Context, side string, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ScorePoint", wrapperspb.String(side), opts...)
}

func (c *Client) UndoPoint(ctx context.Context, side string, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "UndoPoint", wrapperspb.String(side), opts...)
}

func (c *Client) SwitchSides(ctx context.Context, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "SwitchSides", &emptypb.Empty{}, opts...)
}

func (c *Client) Reset(ctx context.Context, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Reset", &emptypb.Empty{}, opts...)
}

func (c *Client) SetActive(ctx context.Context, active bool, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "SetActive", wrapperspb.Bool(active), opts...)
}

// StreamEvents opens the event stream. Each message carries "type" and
// "payload" fields.
func (c *Client) StreamEvents(ctx context.Context, opts ...gogrpc.CallOption) (gogrpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], "/"+ServiceName+"/StreamEvents", opts...)
	if err != nil {
		return nil, err
	}
	x := &gogrpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(&emptypb.Empty{}); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
