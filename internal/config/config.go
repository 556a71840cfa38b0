// Package config loads the reindex driver configuration from YAML files with
// ${VAR} environment expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the sunburnt reindex configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Index    IndexConfig    `yaml:"index"`
	Mapping  MappingConfig  `yaml:"mapping"`
	Source   SourceConfig   `yaml:"source"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Port int `yaml:"port"` // 0 disables the endpoint
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig describes the search index: its name, key prefix, batching, and
// schema fields.
type IndexConfig struct {
	Name          string               `yaml:"name"`
	KeyPrefix     string               `yaml:"key_prefix"`
	ChunkSize     int                  `yaml:"chunk_size"`
	Fields        []IndexFieldConfig   `yaml:"fields"`
	DynamicFields []DynamicFieldConfig `yaml:"dynamic_fields"`
}

// IndexFieldConfig declares one static schema field.
type IndexFieldConfig struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"` // tag, numeric, text
	Sortable bool   `yaml:"sortable"`
}

// DynamicFieldConfig declares one wildcard schema pattern such as "*_s".
type DynamicFieldConfig struct {
	Pattern string `yaml:"pattern"`
	Type    string `yaml:"type"` // tag, numeric, text
}

// MappingConfig describes how domain records map onto index documents.
type MappingConfig struct {
	Type    string                  `yaml:"type"`
	IDField string                  `yaml:"id_field"`
	Fields  map[string]FieldMapping `yaml:"fields"`
}

// FieldMapping declares one declared field. An empty attribute means the
// field is computed by a hook registered in code.
type FieldMapping struct {
	Attribute string `yaml:"attribute"`
	Optional  bool   `yaml:"optional"`
}

// SourceConfig identifies the record stream for a reindex pass.
type SourceConfig struct {
	Format string `yaml:"format"` // jsonl, parquet
	Path   string `yaml:"path"`
}

var fieldTypes = map[string]bool{"tag": true, "numeric": true, "text": true}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "doc:"
	}
	if c.Index.ChunkSize <= 0 {
		c.Index.ChunkSize = 1000
	}
	if c.Mapping.IDField == "" {
		c.Mapping.IDField = "id"
	}
	if c.Source.Format == "" {
		c.Source.Format = "jsonl"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Index.Name == "" {
		return fmt.Errorf("index.name is required")
	}
	for i, f := range c.Index.Fields {
		if f.Name == "" {
			return fmt.Errorf("index.fields[%d].name is required", i)
		}
		if !fieldTypes[f.Type] {
			return fmt.Errorf("index.fields[%d].type must be tag, numeric or text, got %q", i, f.Type)
		}
	}
	for i, p := range c.Index.DynamicFields {
		if strings.Count(p.Pattern, "*") != 1 {
			return fmt.Errorf("index.dynamic_fields[%d].pattern must contain exactly one *, got %q", i, p.Pattern)
		}
		if !fieldTypes[p.Type] {
			return fmt.Errorf("index.dynamic_fields[%d].type must be tag, numeric or text, got %q", i, p.Type)
		}
	}
	if c.Mapping.Type == "" {
		return fmt.Errorf("mapping.type is required")
	}
	if len(c.Mapping.Fields) == 0 {
		return fmt.Errorf("mapping.fields is required")
	}
	switch c.Source.Format {
	case "jsonl", "parquet":
		// ok
	default:
		return fmt.Errorf("source.format must be \"jsonl\" or \"parquet\", got %q", c.Source.Format)
	}
	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 0 and 65535, got %d", c.Metrics.Port)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
