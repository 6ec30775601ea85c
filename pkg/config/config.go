// Package config provides hierarchical configuration management.
// Priority: defaults < system < user < project < env < flags
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML accepts "5m" style strings.
type Duration time.Duration

// UnmarshalYAML parses Go duration strings and bare second counts.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		*d = Duration(time.Duration(seconds) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the plain time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all report generation settings.
type Config struct {
	Version int `yaml:"version"`

	// ExcludedTypes removes annotation types from every count. Layer
	// names match the source format exactly.
	ExcludedTypes []string `yaml:"excluded_types"`

	// IdleGap is the inactivity threshold splitting work sessions.
	IdleGap Duration `yaml:"idle_gap"`

	// Aggregation combines annotators per document: sum, average, max.
	Aggregation string `yaml:"aggregation"`

	// OutputDir receives exported summaries.
	OutputDir string `yaml:"output_dir"`

	Server    ServerConfig    `yaml:"server"`
	S3        S3Config        `yaml:"s3"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig for the dashboard HTTP server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// S3Config for pushing and pulling summaries through object storage.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`   // custom endpoint (MinIO etc.)
	PathStyle bool   `yaml:"path_style"` // required by most custom endpoints
}

// TelemetryConfig for optional tracing.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Default returns the default configuration: no excluded types, a
// five minute idle gap, sum aggregation.
func Default() *Config {
	return &Config{
		Version:     1,
		IdleGap:     Duration(5 * time.Minute),
		Aggregation: "sum",
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		S3: S3Config{
			Region: "us-east-1",
		},
		Telemetry: TelemetryConfig{
			Enabled: false,
		},
	}
}

// Manager handles configuration loading and merging.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	paths  []string // paths that were loaded
}

// NewManager creates a new configuration manager.
func NewManager() *Manager {
	return &Manager{
		config: Default(),
	}
}

// Load loads configuration from all sources in priority order. A
// missing config file is not an error: the defaults apply and the
// exclusion list stays empty.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.config = Default()
	m.paths = nil

	for _, path := range m.getConfigPaths() {
		if err := m.loadFile(path); err != nil {
			if !os.IsNotExist(err) {
				return err
			}
		} else {
			m.paths = append(m.paths, path)
		}
	}

	m.loadEnv()
	return nil
}

// getConfigPaths returns config file paths in priority order.
func (m *Manager) getConfigPaths() []string {
	var paths []string

	// System config
	if runtime.GOOS != "windows" {
		paths = append(paths, "/etc/annoflow/config.yaml")
	}

	// User config
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".annoflow", "config.yaml"))
	}

	// Project config (current directory)
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".annoflow.yaml"))
	}

	return paths
}

// loadFile loads a single config file and merges it.
func (m *Manager) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var partial Config
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	m.merge(&partial)
	return nil
}

// merge merges non-zero values from src into config.
func (m *Manager) merge(src *Config) {
	if len(src.ExcludedTypes) > 0 {
		m.config.ExcludedTypes = src.ExcludedTypes
	}
	if src.IdleGap != 0 {
		m.config.IdleGap = src.IdleGap
	}
	if src.Aggregation != "" {
		m.config.Aggregation = src.Aggregation
	}
	if src.OutputDir != "" {
		m.config.OutputDir = src.OutputDir
	}

	if src.Server.Host != "" {
		m.config.Server.Host = src.Server.Host
	}
	if src.Server.Port != 0 {
		m.config.Server.Port = src.Server.Port
	}

	if src.S3.Bucket != "" {
		m.config.S3.Bucket = src.S3.Bucket
	}
	if src.S3.Prefix != "" {
		m.config.S3.Prefix = src.S3.Prefix
	}
	if src.S3.Region != "" {
		m.config.S3.Region = src.S3.Region
	}
	if src.S3.Endpoint != "" {
		m.config.S3.Endpoint = src.S3.Endpoint
	}
	if src.S3.PathStyle {
		m.config.S3.PathStyle = true
	}

	if src.Telemetry.Enabled {
		m.config.Telemetry.Enabled = true
	}
	if src.Telemetry.Endpoint != "" {
		m.config.Telemetry.Endpoint = src.Telemetry.Endpoint
	}
}

// loadEnv loads configuration from environment variables.
func (m *Manager) loadEnv() {
	if v := os.Getenv("ANNOFLOW_IDLE_GAP"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			m.config.IdleGap = Duration(parsed)
		}
	}
	if v := os.Getenv("ANNOFLOW_AGGREGATION"); v != "" {
		m.config.Aggregation = v
	}
	if v := os.Getenv("ANNOFLOW_OUTPUT_DIR"); v != "" {
		m.config.OutputDir = v
	}
	if v := os.Getenv("ANNOFLOW_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			m.config.Server.Port = port
		}
	}
	if v := os.Getenv("ANNOFLOW_S3_BUCKET"); v != "" {
		m.config.S3.Bucket = v
	}
	if v := os.Getenv("ANNOFLOW_S3_ENDPOINT"); v != "" {
		m.config.S3.Endpoint = v
	}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetPaths returns the paths that were loaded.
func (m *Manager) GetPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths
}

// Save writes the current config to the user config file.
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(home, ".annoflow")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0644)
}

// Global instance
var (
	globalManager *Manager
	globalOnce    sync.Once
)

// Global returns the global configuration manager. The initial load
// error is logged, not swallowed; call Load to get it directly.
func Global() *Manager {
	globalOnce.Do(func() {
		globalManager = NewManager()
		if err := globalManager.Load(); err != nil {
			slog.Warn("loading config", "error", err)
		}
	})
	return globalManager
}
