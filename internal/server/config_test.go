package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iwvelando/mortgage-simulator/internal/config"
	"github.com/iwvelando/mortgage-simulator/pkg/constants"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), config.ServerConfig{})
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != constants.DefaultServerAddress {
		t.Fatalf("expected default address, got %q", cfg.Address)
	}
	if cfg.UploadSizeBytes() != constants.DefaultMaxUploadSizeBytes {
		t.Fatalf("expected default max upload size, got %d", cfg.UploadSizeBytes())
	}
	if cfg.Version != "dev" {
		t.Fatalf("expected version dev, got %q", cfg.Version)
	}
	if len(cfg.AllowedOrigins) != len(defaultAllowedOrigins) {
		t.Fatalf("expected default origins, got %v", cfg.AllowedOrigins)
	}
	if cfg.Logging.Level != "" || cfg.Logging.Format != "" || cfg.Logging.OutputFile != "" {
		t.Fatalf("expected empty logging defaults, got %+v", cfg.Logging)
	}
}

func TestLoadConfigUsesBase(t *testing.T) {
	base := config.ServerConfig{
		Address:        "127.0.0.1:9090",
		MaxUploadSize:  "512K",
		Version:        " 1.2.0 ",
		AllowedOrigins: []string{"https://simulador.example"},
	}

	cfg, err := LoadConfig("", base)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Address != base.Address {
		t.Fatalf("expected base address, got %s", cfg.Address)
	}
	if cfg.UploadSizeBytes() != 512*1024 {
		t.Fatalf("expected 512K upload size, got %d", cfg.UploadSizeBytes())
	}
	if cfg.Version != "1.2.0" {
		t.Fatalf("expected trimmed version, got %q", cfg.Version)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://simulador.example" {
		t.Fatalf("expected base origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server-config.yaml")

	contents := []byte(`address: 127.0.0.1:9000
maxUploadSize: 2M
version: 0.3.1
logging:
  level: debug
  format: console
  outputFile: /tmp/server.log
`)
	if err := os.WriteFile(path, contents, 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := LoadConfig(path, config.ServerConfig{Address: ":7000", MaxUploadSize: "1K"})
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != "127.0.0.1:9000" {
		t.Fatalf("expected address override, got %s", cfg.Address)
	}
	if cfg.UploadSizeBytes() != 2*1024*1024 {
		t.Fatalf("expected max upload override, got %d", cfg.UploadSizeBytes())
	}
	if cfg.Version != "0.3.1" {
		t.Fatalf("expected version override, got %s", cfg.Version)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected logging format console, got %s", cfg.Logging.Format)
	}
	if cfg.Logging.OutputFile != "/tmp/server.log" {
		t.Fatalf("expected logging outputFile /tmp/server.log, got %s", cfg.Logging.OutputFile)
	}
}

func TestLoadConfigInvalidYaml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")

	if err := os.WriteFile(path, []byte("maxUploadSize: invalid"), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	if _, err := LoadConfig(path, config.ServerConfig{}); err == nil {
		t.Fatal("expected error for invalid YAML but got nil")
	}
}

func TestNewConfigRejectsBadSize(t *testing.T) {
	if _, err := NewConfig(config.ServerConfig{MaxUploadSize: "10Q"}); err == nil {
		t.Fatal("expected error for unsupported unit")
	}
}

func TestSetUploadSizeBytes(t *testing.T) {
	cfg, err := NewConfig(config.ServerConfig{})
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	cfg.SetUploadSizeBytes(0)
	if cfg.UploadSizeBytes() != constants.DefaultMaxUploadSizeBytes {
		t.Fatalf("non-positive override should be ignored, got %d", cfg.UploadSizeBytes())
	}
	cfg.SetUploadSizeBytes(4096)
	if cfg.UploadSizeBytes() != 4096 || cfg.MaxUploadSize != "4096" {
		t.Fatalf("expected 4096 override, got %d (%s)", cfg.UploadSizeBytes(), cfg.MaxUploadSize)
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"":          constants.DefaultMaxUploadSizeBytes,
		"1024":      1024,
		"512b":      512,
		"256K":      256 * 1024,
		"1m":        1024 * 1024,
		"3MB":       3 * 1024 * 1024,
		"2G":        2 * 1024 * 1024 * 1024,
		"  4096   ": 4096,
	}

	for input, expected := range tests {
		got, err := ParseSize(input)
		if err != nil {
			t.Fatalf("parseSize(%q) returned error: %v", input, err)
		}
		if got != expected {
			t.Fatalf("parseSize(%q) = %d, expected %d", input, got, expected)
		}
	}

	if _, err := ParseSize("1TB"); err == nil {
		t.Fatal("expected error for unsupported unit")
	}
	if _, err := ParseSize("abc"); err == nil {
		t.Fatal("expected error for invalid number")
	}
	if _, err := ParseSize("-5K"); err == nil {
		t.Fatal("expected error for negative size")
	}
}

func TestParseSizeOverflow(t *testing.T) {
	for _, input := range []string{"9000000000000G", "9007199254740992K", "9223372036854775807M"} {
		if got, err := ParseSize(input); err == nil {
			t.Errorf("ParseSize(%q) = %d, expected overflow error", input, got)
		}
	}
	if got, err := ParseSize("8589934591G"); err != nil || got != 8589934591*1024*1024*1024 {
		t.Errorf("ParseSize(8589934591G) = %d, %v, expected the largest whole GB", got, err)
	}
}
