package config

import (
	"testing"
	"time"
)

func TestApplyEnvOverridesBasic(t *testing.T) {
	cfg := Defaults()
	cfg.CameraHost = "192.168.1.50"

	t.Setenv("CAMCLIENT_HUB_BUFFER", "64")
	t.Setenv("CAMCLIENT_MDNS_ENABLE", "true")
	t.Setenv("CAMCLIENT_HANDSHAKE_TIMEOUT", "250ms")

	if err := ApplyEnv(&cfg, map[string]struct{}{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HubBuffer != 64 {
		t.Fatalf("hub buffer = %d, want 64", cfg.HubBuffer)
	}
	if !cfg.MDNSEnable {
		t.Fatalf("expected mdns enabled")
	}
	if cfg.HandshakeTimeout != 250*time.Millisecond {
		t.Fatalf("handshake timeout = %v", cfg.HandshakeTimeout)
	}
}

func TestApplyEnvOverridesFlagPrecedence(t *testing.T) {
	cfg := Defaults()
	cfg.HubBuffer = 40
	t.Setenv("CAMCLIENT_HUB_BUFFER", "999")

	if err := ApplyEnv(&cfg, map[string]struct{}{"hub-buffer": {}}); err != nil {
		t.Fatalf("err: %v", err)
	}
	if cfg.HubBuffer != 40 {
		t.Fatalf("expected flag precedence to keep 40, got %d", cfg.HubBuffer)
	}
}

func TestApplyEnvOverridesBadInt(t *testing.T) {
	cfg := Defaults()
	t.Setenv("CAMCLIENT_HUB_BUFFER", "notanumber")

	if err := ApplyEnv(&cfg, map[string]struct{}{}); err == nil {
		t.Fatalf("expected error for bad integer")
	}
}

func TestApplyEnvOverridesBadDurationDoesNotStopLaterFields(t *testing.T) {
	cfg := Defaults()
	t.Setenv("CAMCLIENT_HANDSHAKE_TIMEOUT", "not-a-duration")
	t.Setenv("CAMCLIENT_LOG_LEVEL", "debug")

	if err := ApplyEnv(&cfg, map[string]struct{}{}); err == nil {
		t.Fatalf("expected error for bad duration")
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected log level applied despite earlier error, got %q", cfg.LogLevel)
	}
}
