// Package config resolves the running configuration for camclient from, in
// increasing precedence: built-in defaults, an optional YAML file, process
// environment variables, and CLI flags.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the fully resolved, validated configuration for one camclient
// process driving a single camera.
type Config struct {
	CameraHost string

	ListenAddr  string // HTTP surface (/, /cam, /audio)
	MetricsAddr string // Prometheus + /ready; empty disables

	HandshakeTimeout  time.Duration
	HeartbeatInterval time.Duration
	ReceiveTimeout    time.Duration

	HubBuffer int
	HubPolicy string // "drop" is the only supported policy today

	LogFormat string // text|json
	LogLevel  string // debug|info|warn|error

	MDNSEnable bool
	MDNSName   string
}

// Defaults returns the built-in baseline configuration before any file,
// environment, or flag overrides are applied.
func Defaults() Config {
	return Config{
		ListenAddr:        "0.0.0.0:3000",
		MetricsAddr:       "",
		HandshakeTimeout:  1000 * time.Millisecond,
		HeartbeatInterval: 2000 * time.Millisecond,
		ReceiveTimeout:    100 * time.Millisecond,
		HubBuffer:         40,
		HubPolicy:         "drop",
		LogFormat:         "text",
		LogLevel:          "info",
		MDNSEnable:        false,
		MDNSName:          "",
	}
}

// Validate performs semantic validation without touching the network or
// filesystem, mirroring the teacher's appConfig.validate.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	if c.CameraHost == "" {
		return errors.New("camera host is required")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log-format: %s", c.LogFormat)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log-level: %s", c.LogLevel)
	}
	switch c.HubPolicy {
	case "drop":
	default:
		return fmt.Errorf("invalid hub-policy: %s", c.HubPolicy)
	}
	if c.HubBuffer <= 0 {
		return fmt.Errorf("hub-buffer must be > 0 (got %d)", c.HubBuffer)
	}
	if c.HandshakeTimeout <= 0 {
		return fmt.Errorf("handshake-timeout must be > 0")
	}
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat-interval must be > 0")
	}
	if c.ReceiveTimeout <= 0 {
		return fmt.Errorf("receive-timeout must be > 0")
	}
	if c.ListenAddr == "" {
		return errors.New("listen address is required")
	}
	return nil
}
