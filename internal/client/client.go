// Package client calls a remote ontoguard gRPC server.
package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ppiankov/ontoguard/internal/model"
	"github.com/ppiankov/ontoguard/internal/server"
)

// DefaultTimeout bounds each RPC.
const DefaultTimeout = 5 * time.Second

// Client connects to an ontoguard gRPC server.
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// New creates a gRPC client for the given address. The connection is lazy:
// an unreachable server surfaces on the first call.
func New(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ontology server: %w", err)
	}
	return &Client{conn: conn, timeout: DefaultTimeout}, nil
}

// Check sends an action request to the remote server.
// Fail-closed: transport failures come back as an error status, never caution.
// Rejected requests are also reported as an error status with the server's
// message; the returned error is non-nil only for local encoding failures.
func (c *Client) Check(ctx context.Context, req model.ActionRequest) (server.CheckReply, error) {
	in, err := server.RequestToStruct(req)
	if err != nil {
		return server.CheckReply{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, server.CheckMethod, in, out); err != nil {
		return failClosed(err), nil
	}

	var reply server.CheckReply
	if err := server.DecodeStruct(out, &reply); err != nil {
		return server.CheckReply{}, err
	}
	return reply, nil
}

// Snapshot fetches the remote graph.
func (c *Client) Snapshot(ctx context.Context) (model.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, server.SnapshotMethod, &structpb.Struct{}, out); err != nil {
		return model.Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}

	var snap model.Snapshot
	if err := server.DecodeStruct(out, &snap); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func failClosed(err error) server.CheckReply {
	st := status.Convert(err)
	msg := st.Message()
	switch st.Code() {
	case codes.InvalidArgument:
	case codes.Unavailable, codes.DeadlineExceeded:
		msg = fmt.Sprintf("ontology server unreachable: %s", msg)
	default:
		msg = "An error occurred: " + msg
	}
	return server.CheckReply{Status: model.StatusError, Message: msg}
}
