// Package server exposes the decision orchestrator over gRPC and hot-reloads
// policy and vocabulary files.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ppiankov/ontoguard/internal/decide"
	"github.com/ppiankov/ontoguard/internal/graph"
	"github.com/ppiankov/ontoguard/internal/ingest"
)

// Server implements OntologyServiceServer.
type Server struct {
	orch       *decide.Orchestrator
	logger     *slog.Logger
	grpcServer *grpc.Server
}

// New creates a gRPC server over orch.
func New(orch *decide.Orchestrator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		orch:       orch,
		logger:     logger,
		grpcServer: grpc.NewServer(),
	}
	s.grpcServer.RegisterService(&ServiceDesc, s)
	return s
}

// Serve listens on addr. Blocks until stopped.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.ServeOn(lis)
}

// ServeOn starts the gRPC server on the given listener.
func (s *Server) ServeOn(lis net.Listener) error {
	s.logger.Info("grpc listening", "addr", lis.Addr().String())
	return s.grpcServer.Serve(lis)
}

// GracefulStop gracefully shuts down the gRPC server.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}

// Check implements the Check RPC.
func (s *Server) Check(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	data, err := StructToJSON(in)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	req, err := ingest.Parse(data)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	out, err := s.orch.Decide(ctx, req)
	if err != nil {
		return nil, grpcError(err)
	}
	return toStruct(ReplyFor(out))
}

// Snapshot implements the Snapshot RPC.
func (s *Server) Snapshot(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(s.orch.Store().Snapshot())
}

func grpcError(err error) error {
	switch {
	case decide.IsValidation(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, graph.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, decide.ErrorResponse(err).Message)
	default:
		return status.Error(codes.Internal, decide.ErrorResponse(err).Message)
	}
}
