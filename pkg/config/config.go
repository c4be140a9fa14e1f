package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"
)

// Supported storage backends.
const (
	BackendMemory  = "memory"
	BackendLevelDB = "leveldb"
	BackendSQLite  = "sqlite"
	BackendMySQL   = "mysql"
	BackendRaft    = "raft"
)

// Supported value codecs.
const (
	CodecBytes = "bytes"
	CodecText  = "text"
	CodecJSON  = "json"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	GRPCAddr string `yaml:"grpc_addr"` // empty disables the gRPC gateway

	Backend string `yaml:"backend"`
	DataDir string `yaml:"data_dir"`
	DSN     string `yaml:"dsn"`
	Table   string `yaml:"table"`
	Codec   string `yaml:"codec"`

	LogLevel string `yaml:"log_level"`

	NodeID     string `yaml:"node_id"`
	RaftAddr   string `yaml:"raft_addr"`
	RaftLeader bool   `yaml:"raft_leader"`
}

// LoadConfig loads configuration from a YAML file if path is provided,
// otherwise it falls back to environment variables alone.
// Environment variables always override file values.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) setDefaults() {
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendMemory
	}
	if cfg.Codec == "" {
		cfg.Codec = CodecBytes
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Backend == BackendRaft && cfg.DataDir == "" && cfg.NodeID != "" {
		cfg.DataDir = filepath.Join("kvrest", cfg.NodeID)
	}
	if cfg.Backend == BackendSQLite && cfg.DSN == "" && cfg.DataDir != "" {
		cfg.DSN = filepath.Join(cfg.DataDir, "kv.sqlite")
	}
}

// Validate checks that the fields required by the selected backend are set.
func (cfg *Config) Validate() error {
	switch cfg.Codec {
	case CodecBytes, CodecText, CodecJSON:
	default:
		return fmt.Errorf("unknown codec %q", cfg.Codec)
	}

	if hclog.LevelFromString(cfg.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}

	switch cfg.Backend {
	case BackendMemory:
	case BackendLevelDB:
		if cfg.DataDir == "" {
			return fmt.Errorf("DATA_DIR is required for the %s backend", cfg.Backend)
		}
	case BackendSQLite, BackendMySQL:
		if cfg.DSN == "" {
			return fmt.Errorf("KV_DSN is required for the %s backend", cfg.Backend)
		}
	case BackendRaft:
		if cfg.NodeID == "" {
			return fmt.Errorf("NODE_ID is required for the raft backend")
		}
		if cfg.RaftAddr == "" {
			return fmt.Errorf("RAFT_ADDR is required for the raft backend")
		}
	default:
		return fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	return nil
}

// applyEnvOverrides allows environment variables to override YAML config values
func applyEnvOverrides(cfg *Config) error {
	overrides := []struct {
		env string
		dst *string
	}{
		{"HTTP_ADDR", &cfg.HTTPAddr},
		{"GRPC_ADDR", &cfg.GRPCAddr},
		{"KV_BACKEND", &cfg.Backend},
		{"DATA_DIR", &cfg.DataDir},
		{"KV_DSN", &cfg.DSN},
		{"KV_TABLE", &cfg.Table},
		{"KV_CODEC", &cfg.Codec},
		{"LOG_LEVEL", &cfg.LogLevel},
		{"NODE_ID", &cfg.NodeID},
		{"RAFT_ADDR", &cfg.RaftAddr},
	}
	for _, s := range overrides {
		if v := os.Getenv(s.env); v != "" {
			*s.dst = v
		}
	}

	if v := os.Getenv("RAFT_LEADER"); v != "" {
		leader, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid RAFT_LEADER value: %w", err)
		}
		cfg.RaftLeader = leader
	}
	return nil
}
