// Package config loads the runtime configuration of ontoguard: storage
// paths, listen addresses, the interpretation oracle and logging.
// Policy and vocabulary live in their own YAML files so they can be
// hot-reloaded without restarting.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/ppiankov/ontoguard/internal/interpret"
)

// EnvPrefix prefixes every environment override, e.g. ONTOGUARD_ORACLE_API_KEY.
const EnvPrefix = "ONTOGUARD"

// Config is the root runtime configuration.
type Config struct {
	Graph      GraphConfig      `mapstructure:"graph"`
	Policy     string           `mapstructure:"policy"`
	Vocabulary string           `mapstructure:"vocabulary"`
	Audit      AuditConfig      `mapstructure:"audit"`
	Server     ServerConfig     `mapstructure:"server"`
	Oracle     interpret.Config `mapstructure:"oracle"`
	Log        LogConfig        `mapstructure:"log"`
}

// GraphConfig selects the graph backend.
type GraphConfig struct {
	Backend string `mapstructure:"backend"` // sqlite | memory
	Path    string `mapstructure:"path"`
}

// AuditConfig controls the decision audit log.
type AuditConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ServerConfig holds listen addresses. An empty address disables that listener.
type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
	GRPCAddr string `mapstructure:"grpc_addr"`
}

// LogConfig controls slog output.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Dir returns ~/.ontoguard.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Warn("failed to resolve home directory, using current directory as fallback", "error", err)
		home = "."
	}
	return filepath.Join(home, ".ontoguard")
}

// DefaultPath returns ~/.ontoguard/config.yaml.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() *Config {
	dir := Dir()
	return &Config{
		Graph: GraphConfig{
			Backend: BackendSQLite,
			Path:    filepath.Join(dir, "graph.db"),
		},
		Policy:     filepath.Join(dir, "policy.yaml"),
		Vocabulary: filepath.Join(dir, "vocabulary.yaml"),
		Audit: AuditConfig{
			Enabled: true,
			Path:    filepath.Join(dir, "audit.jsonl"),
		},
		Server: ServerConfig{
			HTTPAddr: "127.0.0.1:5001",
			GRPCAddr: "127.0.0.1:5002",
		},
		Oracle: interpret.Config{
			APIURL:    "",
			Model:     "gpt-4o-mini",
			MaxTokens: 150,
			Timeout:   60 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the config file at path (empty means DefaultPath) and applies
// ONTOGUARD_* environment overrides. A missing file yields defaults plus
// environment.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	if err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
		dc.MatchName = func(mapKey, fieldName string) bool {
			return normalizeKey(mapKey) == normalizeKey(fieldName)
		}
	}); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that
// are absent from the file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("graph.backend", cfg.Graph.Backend)
	v.SetDefault("graph.path", cfg.Graph.Path)
	v.SetDefault("policy", cfg.Policy)
	v.SetDefault("vocabulary", cfg.Vocabulary)
	v.SetDefault("audit.enabled", cfg.Audit.Enabled)
	v.SetDefault("audit.path", cfg.Audit.Path)
	v.SetDefault("server.http_addr", cfg.Server.HTTPAddr)
	v.SetDefault("server.grpc_addr", cfg.Server.GRPCAddr)
	v.SetDefault("oracle.api_url", cfg.Oracle.APIURL)
	v.SetDefault("oracle.api_key", cfg.Oracle.APIKey)
	v.SetDefault("oracle.model", cfg.Oracle.Model)
	v.SetDefault("oracle.max_tokens", cfg.Oracle.MaxTokens)
	v.SetDefault("oracle.timeout", cfg.Oracle.Timeout.String())
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
}

func normalizeKey(input string) string {
	input = strings.ReplaceAll(input, "_", "")
	input = strings.ReplaceAll(input, "-", "")
	return strings.ToLower(input)
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Graph.Backend)) {
	case BackendSQLite:
		c.Graph.Backend = BackendSQLite
		if strings.TrimSpace(c.Graph.Path) == "" {
			return fmt.Errorf("graph.path must be non-empty for the sqlite backend")
		}
	case BackendMemory:
		c.Graph.Backend = BackendMemory
	default:
		return fmt.Errorf("graph.backend must be one of sqlite, memory; got %q", c.Graph.Backend)
	}

	if c.Audit.Enabled && strings.TrimSpace(c.Audit.Path) == "" {
		return fmt.Errorf("audit.path must be non-empty when audit is enabled")
	}

	for name, addr := range map[string]string{
		"server.http_addr": c.Server.HTTPAddr,
		"server.grpc_addr": c.Server.GRPCAddr,
	} {
		if addr == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if c.Oracle.MaxTokens < 0 {
		return fmt.Errorf("oracle.max_tokens must not be negative, got %d", c.Oracle.MaxTokens)
	}
	if c.Oracle.Timeout < 0 {
		return fmt.Errorf("oracle.timeout must not be negative, got %s", c.Oracle.Timeout)
	}

	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	if level == "" {
		c.Log.Level = "info"
	} else {
		validLevels := map[string]bool{
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
		}
		if !validLevels[level] {
			return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
		}
		c.Log.Level = level
	}
	return nil
}

// DefaultConfigYAML returns a commented YAML string for init.
func DefaultConfigYAML() string {
	cfg := DefaultConfig()
	return fmt.Sprintf(`# ontoguard runtime configuration
# Generated by: ontoguard init
# Every key can be overridden with ONTOGUARD_<SECTION>_<KEY>,
# e.g. ONTOGUARD_ORACLE_API_KEY.

graph:
  backend: sqlite   # sqlite | memory
  path: %s

policy: %s
vocabulary: %s

audit:
  enabled: true
  path: %s

server:
  http_addr: %q
  grpc_addr: %q

# OpenAI-compatible chat completions endpoint used to interpret free text.
oracle:
  api_url: ""
  api_key: ""
  model: %s
  max_tokens: %d
  timeout: %s

log:
  level: info   # debug | info | warn | error
  file: ""
`, cfg.Graph.Path, cfg.Policy, cfg.Vocabulary, cfg.Audit.Path,
		cfg.Server.HTTPAddr, cfg.Server.GRPCAddr,
		cfg.Oracle.Model, cfg.Oracle.MaxTokens, cfg.Oracle.Timeout)
}
