package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyFileOverridesKnownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "camclient.yaml")
	contents := "camera_host: 10.1.1.5\nhub_buffer: 128\nhandshake_timeout: 500ms\nmdns_enable: true\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg := Defaults()
	if err := ApplyFile(&cfg, path, true); err != nil {
		t.Fatalf("ApplyFile: %v", err)
	}
	if cfg.CameraHost != "10.1.1.5" {
		t.Fatalf("camera host = %q", cfg.CameraHost)
	}
	if cfg.HubBuffer != 128 {
		t.Fatalf("hub buffer = %d", cfg.HubBuffer)
	}
	if cfg.HandshakeTimeout != 500*time.Millisecond {
		t.Fatalf("handshake timeout = %v", cfg.HandshakeTimeout)
	}
	if !cfg.MDNSEnable {
		t.Fatalf("expected mdns enabled")
	}
	// Fields absent from the document are left at their defaults.
	if cfg.LogLevel != "info" {
		t.Fatalf("log level = %q, want default", cfg.LogLevel)
	}
}

func TestApplyFileMissingOptionalPathIsNoop(t *testing.T) {
	cfg := Defaults()
	if err := ApplyFile(&cfg, filepath.Join(t.TempDir(), "absent.yaml"), true); err != nil {
		t.Fatalf("expected no error for missing optional file, got %v", err)
	}
}

func TestApplyFileEmptyPathIsNoop(t *testing.T) {
	cfg := Defaults()
	before := cfg
	if err := ApplyFile(&cfg, "", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != before {
		t.Fatalf("config mutated by empty path")
	}
}
