package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := DefaultConfig()
	if cfg.Graph.Backend != BackendSQLite {
		t.Errorf("backend: got %q", cfg.Graph.Backend)
	}
	if cfg.Server.HTTPAddr != def.Server.HTTPAddr {
		t.Errorf("http addr: got %q, want %q", cfg.Server.HTTPAddr, def.Server.HTTPAddr)
	}
	if cfg.Oracle.Timeout != 60*time.Second {
		t.Errorf("oracle timeout: got %s", cfg.Oracle.Timeout)
	}
	if !cfg.Audit.Enabled {
		t.Error("audit should be enabled by default")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
graph:
  backend: memory
server:
  http_addr: "0.0.0.0:8080"
  grpc_addr: ""
oracle:
  api_url: http://localhost:11434/v1/chat/completions
  model: llama3
  timeout: 5s
log:
  level: DEBUG
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Graph.Backend != BackendMemory {
		t.Errorf("backend: got %q", cfg.Graph.Backend)
	}
	if cfg.Server.HTTPAddr != "0.0.0.0:8080" {
		t.Errorf("http addr: got %q", cfg.Server.HTTPAddr)
	}
	if cfg.Server.GRPCAddr != "" {
		t.Errorf("grpc addr should be disabled, got %q", cfg.Server.GRPCAddr)
	}
	if cfg.Oracle.Model != "llama3" {
		t.Errorf("model: got %q", cfg.Oracle.Model)
	}
	if cfg.Oracle.Timeout != 5*time.Second {
		t.Errorf("timeout: got %s", cfg.Oracle.Timeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level should be lowercased, got %q", cfg.Log.Level)
	}
	if cfg.Oracle.MaxTokens != 150 {
		t.Errorf("unset keys keep defaults, got max_tokens %d", cfg.Oracle.MaxTokens)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ONTOGUARD_ORACLE_API_KEY", "secret")
	t.Setenv("ONTOGUARD_GRAPH_BACKEND", "memory")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Oracle.APIKey != "secret" {
		t.Errorf("api key: got %q", cfg.Oracle.APIKey)
	}
	if cfg.Graph.Backend != BackendMemory {
		t.Errorf("backend: got %q", cfg.Graph.Backend)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	path := writeConfig(t, "log:\n  level: warn\n")
	t.Setenv("ONTOGUARD_LOG_LEVEL", "error")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("log level: got %q, want error", cfg.Log.Level)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown backend", "graph:\n  backend: neo4j\n", "graph.backend"},
		{"sqlite without path", "graph:\n  backend: sqlite\n  path: \"\"\n", "graph.path"},
		{"bad address", "server:\n  http_addr: nope\n", "server.http_addr"},
		{"bad log level", "log:\n  level: loud\n", "log.level"},
		{"negative tokens", "oracle:\n  max_tokens: -1\n", "oracle.max_tokens"},
		{"audit without path", "audit:\n  enabled: true\n  path: \"\"\n", "audit.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "graph: [unclosed")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDefaultConfigYAMLLoads(t *testing.T) {
	var probe map[string]interface{}
	if err := yaml.Unmarshal([]byte(DefaultConfigYAML()), &probe); err != nil {
		t.Fatalf("default YAML is invalid: %v", err)
	}

	cfg, err := Load(writeConfig(t, DefaultConfigYAML()))
	if err != nil {
		t.Fatalf("load default YAML: %v", err)
	}
	if cfg.Graph.Path != DefaultConfig().Graph.Path {
		t.Errorf("graph path: got %q", cfg.Graph.Path)
	}
}
