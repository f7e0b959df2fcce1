// Package grpcserver implements the TrustService gRPC server.
//
// It delegates all business logic to scam.Service and handles only the gRPC
// transport concerns: metadata extraction, error mapping, and conversion
// between the domain model and google.protobuf.Struct messages.
//
// The service is registered from a hand-written descriptor; messages are
// Structs carrying the same JSON shapes as the REST API.
package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"jobmate/trust-service/internal/scam"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "jobmate.trust.v1.TrustService"

// TrustServiceServer is the server API for TrustService.
type TrustServiceServer interface {
	AnalyzeJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckBanned(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes TrustService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TrustServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AnalyzeJob", Handler: unaryHandler("AnalyzeJob", TrustServiceServer.AnalyzeJob)},
		{MethodName: "CheckBanned", Handler: unaryHandler("CheckBanned", TrustServiceServer.CheckBanned)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jobmate/trust/v1/trust.proto",
}

type rpc func(TrustServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call rpc) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TrustServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(TrustServiceServer), ctx, req.(*structpb.Struct))
		})
	}
}

// Register attaches s to g.
func Register(g *grpc.Server, s TrustServiceServer) {
	g.RegisterService(&ServiceDesc, s)
}

// Server implements TrustServiceServer.
type Server struct {
	svc *scam.Service
}

var _ TrustServiceServer = (*Server)(nil)

// NewServer constructs a gRPC Server backed by the given scam.Service.
func NewServer(svc *scam.Service) *Server {
	return &Server{svc: svc}
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// AnalyzeJob scores a posting and enforces the decision.
// Request: {"jobData": {...}}. Response: {"isScam", "analysis", "action"}.
func (s *Server) AnalyzeJob(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	var body struct {
		JobData *scam.JobData `json:"jobData"`
	}
	if err := fromStruct(req, &body); err != nil {
		return nil, err
	}
	if body.JobData == nil {
		return nil, status.Error(codes.InvalidArgument, "jobData is required")
	}

	res, err := s.svc.AnalyzeJob(ctx, userID, *body.JobData)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(res)
}

// CheckBanned looks up company / url / email bans.
func (s *Server) CheckBanned(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if _, err := userIDFromCtx(ctx); err != nil {
		return nil, err
	}

	var q scam.BanQuery
	if err := fromStruct(req, &q); err != nil {
		return nil, err
	}

	res, err := s.svc.CheckBanned(ctx, q)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(res)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// userIDFromCtx extracts the x-user-id value forwarded by the Gateway
// via gRPC metadata.
func userIDFromCtx(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing metadata")
	}
	vals := md.Get("x-user-id")
	if len(vals) == 0 || vals[0] == "" {
		return "", status.Error(codes.Unauthenticated, "missing x-user-id metadata")
	}
	return vals[0], nil
}

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	if errors.Is(err, scam.ErrNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	if errors.Is(err, scam.ErrAlreadyReviewed) {
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	var ve *scam.ValidationError
	if errors.As(err, &ve) {
		return status.Error(codes.InvalidArgument, ve.Msg)
	}
	var dup *scam.DuplicateReportError
	if errors.As(err, &dup) {
		return status.Error(codes.AlreadyExists, dup.Error())
	}
	return status.Error(codes.Internal, "internal server error")
}

// fromStruct decodes a Struct into dst through its JSON form.
func fromStruct(s *structpb.Struct, dst any) error {
	b, err := json.Marshal(s.AsMap())
	if err != nil {
		return status.Error(codes.InvalidArgument, "invalid request")
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return status.Error(codes.InvalidArgument, fmt.Sprintf("invalid request: %v", err))
	}
	return nil
}

// toStruct encodes v as a Struct through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}
