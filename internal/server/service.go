package server

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ppiankov/ontoguard/internal/decide"
	"github.com/ppiankov/ontoguard/internal/model"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "ontoguard.v1.OntologyService"

// Full method names, used by the client.
const (
	CheckMethod    = "/" + ServiceName + "/Check"
	SnapshotMethod = "/" + ServiceName + "/Snapshot"
)

// OntologyServiceServer is the server API. Messages are google.protobuf.Struct
// carrying the same JSON shapes as the HTTP API.
type OntologyServiceServer interface {
	Check(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Snapshot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc registers OntologyServiceServer on a grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OntologyServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Check", Handler: checkHandler},
		{MethodName: "Snapshot", Handler: snapshotHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ontoguard/v1/ontology.proto",
}

func checkHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OntologyServiceServer).Check(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CheckMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OntologyServiceServer).Check(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func snapshotHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OntologyServiceServer).Snapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SnapshotMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OntologyServiceServer).Snapshot(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// RequestToStruct encodes an action request as a Struct.
func RequestToStruct(req model.ActionRequest) (*structpb.Struct, error) {
	return toStruct(req)
}

// StructToJSON re-encodes a Struct as JSON so it can go through ingest.Parse.
func StructToJSON(s *structpb.Struct) ([]byte, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.AsMap())
}

// CheckReply is the Check response body.
type CheckReply struct {
	RequestID string         `json:"requestId"`
	Status    model.Status   `json:"status"`
	Message   string         `json:"message"`
	Reason    string         `json:"reason,omitempty"`
	Signals   []model.Signal `json:"signals,omitempty"`
	Fields    model.FieldSet `json:"fields"`
}

// ReplyFor builds the Check response body for an outcome.
func ReplyFor(out decide.Outcome) CheckReply {
	return CheckReply{
		RequestID: out.RequestID,
		Status:    out.Response.Status,
		Message:   out.Response.Message,
		Reason:    out.Assessment.Reason,
		Signals:   out.Assessment.Signals,
		Fields:    out.Fields,
	}
}

// DecodeStruct decodes a Struct into v through its JSON form.
func DecodeStruct(s *structpb.Struct, v any) error {
	data, err := StructToJSON(s)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode struct: %w", err)
	}
	return nil
}

func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode struct: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("encode struct: %w", err)
	}
	return structpb.NewStruct(m)
}
