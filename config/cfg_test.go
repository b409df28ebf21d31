package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Compiler.MinDPI != 120 || cfg.Compiler.MaxDPI != 480 {
		t.Errorf("density range = [%d, %d], want [120, 480]", cfg.Compiler.MinDPI, cfg.Compiler.MaxDPI)
	}
	if cfg.Compiler.TargetDensity != DensityHd {
		t.Errorf("TargetDensity = %s, want hd", cfg.Compiler.TargetDensity)
	}
	if cfg.Compiler.AssetNameTemplate != "{{ .Prefix }}_{{ .Kind }}_{{ .Index }}" {
		t.Errorf("AssetNameTemplate expanded unexpectedly: %q", cfg.Compiler.AssetNameTemplate)
	}
	if cfg.Render.Timeout != 50*time.Second {
		t.Errorf("Render.Timeout = %v, want 50s", cfg.Render.Timeout)
	}
	if cfg.Cache.ChecksumFile != ".cn1_css_checksums" {
		t.Errorf("Cache.ChecksumFile = %q", cfg.Cache.ChecksumFile)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	configContent := `version: 1
compiler:
  min_dpi: 160
  max_dpi: 640
  target_density: veryhigh
  image_format: png
render:
  timeout: 5s
logging:
  console:
    level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Compiler.MinDPI != 160 || cfg.Compiler.MaxDPI != 640 {
		t.Errorf("density range = [%d, %d], want [160, 640]", cfg.Compiler.MinDPI, cfg.Compiler.MaxDPI)
	}
	if cfg.Compiler.TargetDensity != DensityVeryhigh {
		t.Errorf("TargetDensity = %s, want veryhigh", cfg.Compiler.TargetDensity)
	}
	if cfg.Compiler.ImageFormat != ImageFormatPng {
		t.Errorf("ImageFormat = %s, want png", cfg.Compiler.ImageFormat)
	}
	if cfg.Render.Timeout != 5*time.Second {
		t.Errorf("Render.Timeout = %v, want 5s", cfg.Render.Timeout)
	}
	// untouched values keep defaults
	if cfg.Compiler.JPEGQuality != 90 {
		t.Errorf("JPEGQuality = %d, want default 90", cfg.Compiler.JPEGQuality)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: 1\ncompiler:\n  min_dpi: 1\n  invalid indent\n"},
		{"unknown field", "version: 1\nunknown_field: value\n"},
		{"bad version", "version: 2\n"},
		{"inverted range", "version: 1\ncompiler:\n  min_dpi: 480\n  max_dpi: 120\n"},
		{"bad density", "version: 1\ncompiler:\n  target_density: retina\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}
			if _, err := LoadConfiguration(configPath); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestPrepareAndDump(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, true)
	if err != nil {
		t.Fatalf("Prepared config is not valid: %v", err)
	}

	out, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	cfg2, err := unmarshalConfig(out, &Config{}, false)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if cfg2.Compiler.TargetDensity != cfg.Compiler.TargetDensity {
		t.Errorf("TargetDensity mismatch after dump/load: got %s, want %s", cfg2.Compiler.TargetDensity, cfg.Compiler.TargetDensity)
	}
	if cfg2.Render.Timeout != cfg.Render.Timeout {
		t.Errorf("Timeout mismatch after dump/load: got %v, want %v", cfg2.Render.Timeout, cfg.Render.Timeout)
	}
}

func TestDensity_Parse(t *testing.T) {
	for _, name := range DensityNames() {
		d, err := ParseDensity(name)
		if err != nil {
			t.Fatalf("ParseDensity(%q) error = %v", name, err)
		}
		if d.String() != name {
			t.Errorf("String() = %q, want %q", d.String(), name)
		}
	}
	if _, err := ParseDensity("retina"); err == nil {
		t.Error("expected error for unknown density")
	}
	if got := Density(99).String(); got != "Density(99)" {
		t.Errorf("String() = %q", got)
	}
}
