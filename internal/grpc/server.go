package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/Billy-Davies-2/scorebored/internal/dal"
	"github.com/Billy-Davies-2/scorebored/internal/logger"
	"github.com/Billy-Davies-2/scorebored/internal/match"
	"github.com/Billy-Davies-2/scorebored/internal/models"
	"github.com/Billy-Davies-2/scorebored/internal/pubsub"
	"github.com/Billy-Davies-2/scorebored/internal/scoreboard"
)

// Server implements the gRPC scoreboard service
type Server struct {
	svc    *scoreboard.Service
	events pubsub.Broker
}

// NewServer creates a new gRPC server
func NewServer(svc *scoreboard.Service, events pubsub.Broker) *Server {
	return &Server{
		svc:    svc,
		events: events,
	}
}

// NewGRPCServer registers s and the standard health service on a new
// grpc.Server.
func NewGRPCServer(s *Server, opts ...gogrpc.ServerOption) (*gogrpc.Server, *health.Server) {
	opts = append(opts, gogrpc.ChainUnaryInterceptor(logUnary))
	grpcServer := gogrpc.NewServer(opts...)
	RegisterScoreboardServer(grpcServer, s)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	return grpcServer, healthServer
}

func logUnary(ctx context.Context, req any, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		logger.Warn("gRPC: call failed", "method", info.FullMethod, "code", status.Code(err), "error", err)
	} else {
		logger.Debug("gRPC: call", "method", info.FullMethod)
	}
	return resp, err
}

// GetState returns the current scoreboard
func (s *Server) GetState(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(s.svc.Snapshot())
}

// ScorePoint records a point call for the side named in req
func (s *Server) ScorePoint(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	side, err := parseSide(req)
	if err != nil {
		return nil, err
	}
	return reply(s.svc.Point(ctx, side))
}

func (s *Server) UndoPoint(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	side, err := parseSide(req)
	if err != nil {
		return nil, err
	}
	return reply(s.svc.Undo(ctx, side))
}

func (s *Server) SwitchSides(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	return reply(s.svc.SwitchSides(ctx))
}

func (s *Server) Reset(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	logger.Info("gRPC: Resetting match")
	return reply(s.svc.Reset(ctx))
}

func (s *Server) SetActive(ctx context.Context, req *wrapperspb.BoolValue) (*structpb.Struct, error) {
	return reply(s.svc.SetActive(ctx, req.GetValue()))
}

// StreamEvents forwards every bus event until the client goes away.
func (s *Server) StreamEvents(req *emptypb.Empty, stream gogrpc.ServerStreamingServer[structpb.Struct]) error {
	logger.Debug("gRPC: New client connected to event stream")
	eventChan := s.events.Subscribe()
	defer s.events.Unsubscribe(eventChan)

	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				return nil
			}
			msg, err := eventStruct(event)
			if err != nil {
				logger.Warn("gRPC: Skipping undecodable event", "type", event.Type, "error", err)
				continue
			}
			if err := stream.Send(msg); err != nil {
				logger.Error("gRPC: Failed to send event to stream", "error", err)
				return err
			}
		case <-stream.Context().Done():
			logger.Debug("gRPC: Client disconnected from event stream")
			return nil
		}
	}
}

func parseSide(req *wrapperspb.StringValue) (match.Side, error) {
	side, err := match.ParseSide(req.GetValue())
	if err != nil || side == match.NoSide {
		return match.NoSide, status.Errorf(codes.InvalidArgument, "side must be left or right, got %q", req.GetValue())
	}
	return side, nil
}

func reply(snap models.Snapshot, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(snap)
}

// toStatus maps domain errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, dal.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, match.ErrInvalidSide),
		errors.Is(err, match.ErrInvalidGameLength),
		errors.Is(err, match.ErrInvalidMatchLength),
		errors.Is(err, match.ErrInvalidStyle),
		errors.Is(err, match.ErrInvalidColor),
		errors.Is(err, models.ErrEmptyName):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// toStruct converts v through its JSON encoding, so gRPC clients see the
// same field names as the HTTP API.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode snapshot: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, status.Errorf(codes.Internal, "encode snapshot: %v", err)
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode snapshot: %v", err)
	}
	return out, nil
}

func eventStruct(e pubsub.Event) (*structpb.Struct, error) {
	fields := map[string]any{"type": e.Type}
	if len(e.Payload) > 0 {
		var payload any
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", e.Type, err)
		}
		fields["payload"] = payload
	}
	return structpb.NewStruct(fields)
}
