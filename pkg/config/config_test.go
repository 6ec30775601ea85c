package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if len(cfg.ExcludedTypes) != 0 {
		t.Errorf("default exclusion list = %v, want empty", cfg.ExcludedTypes)
	}
	if cfg.IdleGap.Std() != 5*time.Minute {
		t.Errorf("idle gap = %v, want 5m", cfg.IdleGap.Std())
	}
	if cfg.Aggregation != "sum" {
		t.Errorf("aggregation = %q, want sum", cfg.Aggregation)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
}

func TestLoadFileMerges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
excluded_types:
  - "de.tudarmstadt.ukp.dkpro.core.api.segmentation.type.Token"
  - "custom.Span.Internal"
idle_gap: 10m
aggregation: average
server:
  port: 9090
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	if err := m.loadFile(path); err != nil {
		t.Fatal(err)
	}

	cfg := m.Get()
	if len(cfg.ExcludedTypes) != 2 {
		t.Errorf("excluded types = %v", cfg.ExcludedTypes)
	}
	if cfg.IdleGap.Std() != 10*time.Minute {
		t.Errorf("idle gap = %v, want 10m", cfg.IdleGap.Std())
	}
	if cfg.Aggregation != "average" {
		t.Errorf("aggregation = %q", cfg.Aggregation)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("host = %q, unset fields should keep defaults", cfg.Server.Host)
	}
}

func TestLoadFileMissingIsNotFatal(t *testing.T) {
	m := NewManager()
	err := m.loadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("err = %v, want not-exist", err)
	}
	if len(m.Get().ExcludedTypes) != 0 {
		t.Error("missing file must leave the empty exclusion set")
	}
}

func TestLoadFileMalformedNamesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("excluded_types: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	err := m.loadFile(path)
	if err == nil {
		t.Fatal("expected error for malformed config")
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q does not name the offending file", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ANNOFLOW_IDLE_GAP", "90s")
	t.Setenv("ANNOFLOW_AGGREGATION", "max")
	t.Setenv("ANNOFLOW_PORT", "7070")

	m := NewManager()
	m.loadEnv()

	cfg := m.Get()
	if cfg.IdleGap.Std() != 90*time.Second {
		t.Errorf("idle gap = %v, want 90s", cfg.IdleGap.Std())
	}
	if cfg.Aggregation != "max" {
		t.Errorf("aggregation = %q", cfg.Aggregation)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
}

func TestDurationYAML(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{`"5m"`, 5 * time.Minute},
		{`"1h30m"`, 90 * time.Minute},
		{`300`, 300 * time.Second},
	}
	for _, tt := range tests {
		var d Duration
		if err := yaml.Unmarshal([]byte(tt.in), &d); err != nil {
			t.Errorf("unmarshal %s: %v", tt.in, err)
			continue
		}
		if d.Std() != tt.want {
			t.Errorf("%s = %v, want %v", tt.in, d.Std(), tt.want)
		}
	}

	var bad Duration
	if err := yaml.Unmarshal([]byte(`"soon"`), &bad); err == nil {
		t.Error("invalid duration should fail to parse")
	}
}
