// Package config loads the toydb server configuration from YAML or TOML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/example/toydb/go/pkg/models"
	"github.com/example/toydb/go/pkg/sandbox"
)

// Transports the MCP server can serve on.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" toml:"server"`
	MCP     MCPConfig     `yaml:"mcp" toml:"mcp"`
	REST    RESTConfig    `yaml:"rest" toml:"rest"`
	Data    DataConfig    `yaml:"data" toml:"data"`
	Export  ExportConfig  `yaml:"export" toml:"export"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// ServerConfig identifies the MCP server to clients.
type ServerConfig struct {
	Name    string `yaml:"name" toml:"name"`
	Version string `yaml:"version" toml:"version"`
}

// MCPConfig selects the MCP transport.
type MCPConfig struct {
	Transport string `yaml:"transport" toml:"transport"` // stdio, http
	Addr      string `yaml:"addr" toml:"addr"`           // listen address for http
}

// RESTConfig configures the JSON HTTP mirror of the tools.
type RESTConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Addr    string `yaml:"addr" toml:"addr"`
}

// DataConfig points at an optional seed fixture replacing the built-in rows.
// SeedFile is resolved inside Root and may not escape it.
type DataConfig struct {
	Root     string `yaml:"root" toml:"root"`
	SeedFile string `yaml:"seed_file" toml:"seed_file"`
}

// ExportConfig is the directory export commands may write under.
type ExportConfig struct {
	Root string `yaml:"root" toml:"root"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:    "ToyDatabaseServer",
			Version: "1.0.0",
		},
		MCP: MCPConfig{
			Transport: TransportStdio,
			Addr:      ":8080",
		},
		REST: RESTConfig{
			Enabled: false,
			Addr:    ":8081",
		},
		Data: DataConfig{
			Root: ".",
		},
		Export: ExportConfig{
			Root: "exports",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from a YAML (.yaml, .yml) or TOML (.toml) file
// on top of the defaults, then applies environment overrides. A missing
// file yields the defaults. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("config load failed (%s): %w", path, err)
		default:
			if err := decode(path, data, cfg); err != nil {
				return nil, fmt.Errorf("config parse failed (%s): %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, out any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, out)
	case ".yaml", ".yml", "":
		return yaml.Unmarshal(data, out)
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TOYDB_TRANSPORT"); v != "" {
		c.MCP.Transport = v
	}
	if v := os.Getenv("TOYDB_MCP_ADDR"); v != "" {
		c.MCP.Addr = v
	}
	if v := os.Getenv("TOYDB_REST_ADDR"); v != "" {
		c.REST.Addr = v
		c.REST.Enabled = true
	}
	if v := os.Getenv("TOYDB_DATA_ROOT"); v != "" {
		c.Data.Root = v
	}
	if v := os.Getenv("TOYDB_SEED_FILE"); v != "" {
		c.Data.SeedFile = v
	}
	if v := os.Getenv("TOYDB_EXPORT_ROOT"); v != "" {
		c.Export.Root = v
	}
	if v := os.Getenv("TOYDB_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the fields the server cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Name) == "" {
		return fmt.Errorf("config missing server.name")
	}
	switch c.MCP.Transport {
	case TransportStdio:
	case TransportHTTP:
		if strings.TrimSpace(c.MCP.Addr) == "" {
			return fmt.Errorf("config missing mcp.addr for http transport")
		}
	default:
		return fmt.Errorf("config mcp.transport must be %q or %q, got %q", TransportStdio, TransportHTTP, c.MCP.Transport)
	}
	if c.REST.Enabled && strings.TrimSpace(c.REST.Addr) == "" {
		return fmt.Errorf("config missing rest.addr")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// LoadSeed returns the built-in seed when d.SeedFile is empty, otherwise
// the validated rows of the YAML or TOML fixture read from inside d.Root.
func LoadSeed(d DataConfig) (models.Seed, error) {
	if d.SeedFile == "" {
		return models.DefaultSeed(), nil
	}
	dir, err := sandbox.New(d.Root)
	if err != nil {
		return models.Seed{}, fmt.Errorf("seed root: %w", err)
	}
	data, err := dir.ReadFile(d.SeedFile)
	if err != nil {
		return models.Seed{}, fmt.Errorf("seed load failed (%s): %w", d.SeedFile, err)
	}
	var seed models.Seed
	if err := decode(d.SeedFile, data, &seed); err != nil {
		return models.Seed{}, fmt.Errorf("seed parse failed (%s): %w", d.SeedFile, err)
	}
	if err := seed.Validate(); err != nil {
		return models.Seed{}, fmt.Errorf("seed %s: %w", d.SeedFile, err)
	}
	return seed, nil
}
