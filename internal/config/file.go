package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileOverrides mirrors the subset of Config a YAML file may set; a field
// left absent from the document keeps whatever value came before it (the
// built-in defaults, at this stage of the precedence chain).
type fileOverrides struct {
	CameraHost        *string        `yaml:"camera_host"`
	ListenAddr        *string        `yaml:"listen_addr"`
	MetricsAddr       *string        `yaml:"metrics_addr"`
	HandshakeTimeout  *time.Duration `yaml:"handshake_timeout"`
	HeartbeatInterval *time.Duration `yaml:"heartbeat_interval"`
	ReceiveTimeout    *time.Duration `yaml:"receive_timeout"`
	HubBuffer         *int           `yaml:"hub_buffer"`
	HubPolicy         *string        `yaml:"hub_policy"`
	LogFormat         *string        `yaml:"log_format"`
	LogLevel          *string        `yaml:"log_level"`
	MDNSEnable        *bool          `yaml:"mdns_enable"`
	MDNSName          *string        `yaml:"mdns_name"`
}

// ApplyFile merges a YAML config file at path into c. Fields the document
// omits are left untouched. A missing path is not an error when optional
// is true, matching the CLI's --config flag being unset.
func ApplyFile(c *Config, path string, optional bool) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	var ov fileOverrides
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	applyFileOverrides(c, &ov)
	return nil
}

func applyFileOverrides(c *Config, ov *fileOverrides) {
	if ov.CameraHost != nil {
		c.CameraHost = *ov.CameraHost
	}
	if ov.ListenAddr != nil {
		c.ListenAddr = *ov.ListenAddr
	}
	if ov.MetricsAddr != nil {
		c.MetricsAddr = *ov.MetricsAddr
	}
	if ov.HandshakeTimeout != nil {
		c.HandshakeTimeout = *ov.HandshakeTimeout
	}
	if ov.HeartbeatInterval != nil {
		c.HeartbeatInterval = *ov.HeartbeatInterval
	}
	if ov.ReceiveTimeout != nil {
		c.ReceiveTimeout = *ov.ReceiveTimeout
	}
	if ov.HubBuffer != nil {
		c.HubBuffer = *ov.HubBuffer
	}
	if ov.HubPolicy != nil {
		c.HubPolicy = *ov.HubPolicy
	}
	if ov.LogFormat != nil {
		c.LogFormat = *ov.LogFormat
	}
	if ov.LogLevel != nil {
		c.LogLevel = *ov.LogLevel
	}
	if ov.MDNSEnable != nil {
		c.MDNSEnable = *ov.MDNSEnable
	}
	if ov.MDNSName != nil {
		c.MDNSName = *ov.MDNSName
	}
}
