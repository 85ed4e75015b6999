package config

import "testing"

func validConfig() Config {
	c := Defaults()
	c.CameraHost = "10.0.0.20"
	return c
}

func TestConfigValidateOK(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"noHost", func(c *Config) { c.CameraHost = "" }},
		{"badFormat", func(c *Config) { c.LogFormat = "xx" }},
		{"badLevel", func(c *Config) { c.LogLevel = "nope" }},
		{"badHubPolicy", func(c *Config) { c.HubPolicy = "kick" }},
		{"badHubBuffer", func(c *Config) { c.HubBuffer = 0 }},
		{"badHandshakeTimeout", func(c *Config) { c.HandshakeTimeout = 0 }},
		{"badHeartbeatInterval", func(c *Config) { c.HeartbeatInterval = 0 }},
		{"badReceiveTimeout", func(c *Config) { c.ReceiveTimeout = 0 }},
		{"noListenAddr", func(c *Config) { c.ListenAddr = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mod(&c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
