package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ontoguard/internal/httpapi"
	"github.com/ppiankov/ontoguard/internal/server"
)

var (
	serveHTTPAddr string
	serveGRPCAddr string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHTTPAddr, "http", "", "HTTP listen address (overrides server.http_addr)")
	serveCmd.Flags().StringVar(&serveGRPCAddr, "grpc", "", "gRPC listen address (overrides server.grpc_addr)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC decision servers",
	Long: "Serves POST /ontology/check_and_update over HTTP and the\n" +
		"ontoguard.v1.OntologyService over gRPC against one shared graph.\n" +
		"Policy and vocabulary files are hot-reloaded.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := appCfg
	if serveHTTPAddr != "" {
		cfg.Server.HTTPAddr = serveHTTPAddr
	}
	if serveGRPCAddr != "" {
		cfg.Server.GRPCAddr = serveGRPCAddr
	}
	if cfg.Server.HTTPAddr == "" && cfg.Server.GRPCAddr == "" {
		return fmt.Errorf("no listener configured: set server.http_addr or server.grpc_addr")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := openRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	logger := slog.Default()

	// Start hot-reload watcher for policy and vocabulary files
	reloader, err := server.NewReloader(rt.reload.Reload, logger, []string{cfg.Policy, cfg.Vocabulary})
	if err != nil {
		logger.Warn("hot-reload disabled", "error", err)
	} else {
		go reloader.Run(ctx)
	}

	errCh := make(chan error, 2)

	var grpcSrv *server.Server
	if cfg.Server.GRPCAddr != "" {
		grpcSrv = server.New(rt.orch, logger)
		go func() { errCh <- grpcSrv.Serve(cfg.Server.GRPCAddr) }()
	}

	var httpSrv *httpapi.Server
	if cfg.Server.HTTPAddr != "" {
		httpSrv = httpapi.New(rt.orch, oracleFor(cfg), logger)
		go func() { errCh <- httpSrv.Start(cfg.Server.HTTPAddr) }()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	fmt.Fprintf(os.Stderr, "ontoguard serving (graph: %s %s)\n", cfg.Graph.Backend, cfg.Graph.Path)
	if reloader != nil {
		for _, p := range reloader.Paths() {
			fmt.Fprintf(os.Stderr, "Watching: %s (hot-reload enabled)\n", p)
		}
	}
	fmt.Fprintln(os.Stderr)

	var serveErr error
	select {
	case <-sigCh:
		fmt.Fprintln(os.Stderr, "\nShutting down ontoguard...")
	case serveErr = <-errCh:
	}

	cancel()
	if httpSrv != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", "error", err)
		}
		stop()
	}
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	return serveErr
}
