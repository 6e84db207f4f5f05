package client

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"

	"github.com/ppiankov/ontoguard/internal/decide"
	"github.com/ppiankov/ontoguard/internal/graph"
	"github.com/ppiankov/ontoguard/internal/model"
	"github.com/ppiankov/ontoguard/internal/server"
)

// startTestServer creates a server + returns its address.
func startTestServer(t *testing.T) string {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := decide.New(graph.NewMemory(), decide.WithLogger(logger))
	srv := server.New(orch, logger)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go srv.ServeOn(lis)
	t.Cleanup(srv.GracefulStop)

	return lis.Addr().String()
}

func newClient(t *testing.T, addr string) *Client {
	t.Helper()
	c, err := New(addr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientCheckCaution(t *testing.T) {
	c := newClient(t, startTestServer(t))

	reply, err := c.Check(context.Background(), model.ActionRequest{
		AgentType: "Researcher", Capability: "Search", Tool: "Browser", RiskLevel: "Low",
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if reply.Status != model.StatusCaution {
		t.Errorf("status: got %s, want caution (%s)", reply.Status, reply.Message)
	}
}

func TestClientCheckDanger(t *testing.T) {
	c := newClient(t, startTestServer(t))

	reply, err := c.Check(context.Background(), model.ActionRequest{
		AgentType: "Researcher", Capability: "Search", Tool: "Browser", RiskLevel: "High",
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if reply.Status != model.StatusDanger {
		t.Errorf("status: got %s, want danger", reply.Status)
	}
}

func TestClientCheckInvalid(t *testing.T) {
	c := newClient(t, startTestServer(t))

	reply, err := c.Check(context.Background(), model.ActionRequest{AgentType: "Researcher"})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if reply.Status != model.StatusError {
		t.Errorf("status: got %s, want error", reply.Status)
	}
	if !strings.Contains(reply.Message, "tool") {
		t.Errorf("message should name missing field: %q", reply.Message)
	}
}

func TestClientFailClosedWhenUnreachable(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := lis.Addr().String()
	lis.Close()

	c := newClient(t, addr)
	reply, err := c.Check(context.Background(), model.ActionRequest{
		AgentType: "Researcher", Capability: "Search", Tool: "Browser", RiskLevel: "Low",
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if reply.Status != model.StatusError {
		t.Errorf("unreachable server must not yield caution, got %s", reply.Status)
	}
}

func TestClientSnapshot(t *testing.T) {
	c := newClient(t, startTestServer(t))

	if _, err := c.Check(context.Background(), model.ActionRequest{
		AgentType: "Crawler", Capability: "Fetch", Tool: "Curl", RiskLevel: "Medium",
	}); err != nil {
		t.Fatal(err)
	}

	snap, err := c.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Instances) != 1 || snap.Instances[0].Name != "crawler_instance" {
		t.Errorf("instances: got %+v", snap.Instances)
	}
}
