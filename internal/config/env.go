package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnv maps CAMCLIENT_* environment variables onto c, skipping any
// field named in set (flags explicitly passed on the command line always
// win). Malformed numeric/duration values are reported via the returned
// error but do not stop later fields from being applied, matching the
// teacher's lax applyEnvOverrides.
func ApplyEnv(c *Config, set map[string]struct{}) error {
	var firstErr error
	get := func(k string) (string, bool) { v, ok := os.LookupEnv(k); return strings.TrimSpace(v), ok }
	noteErr := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	if _, ok := set["camera-host"]; !ok {
		if v, ok := get("CAMCLIENT_CAMERA_HOST"); ok && v != "" {
			c.CameraHost = v
		}
	}
	if _, ok := set["listen"]; !ok {
		if v, ok := get("CAMCLIENT_LISTEN"); ok && v != "" {
			c.ListenAddr = v
		}
	}
	if _, ok := set["metrics-addr"]; !ok {
		if v, ok := get("CAMCLIENT_METRICS"); ok {
			c.MetricsAddr = v
		}
	}
	if _, ok := set["handshake-timeout"]; !ok {
		if v, ok := get("CAMCLIENT_HANDSHAKE_TIMEOUT"); ok && v != "" {
			if d, err := time.ParseDuration(v); err == nil && d > 0 {
				c.HandshakeTimeout = d
			} else if err != nil {
				noteErr(fmt.Errorf("invalid CAMCLIENT_HANDSHAKE_TIMEOUT: %w", err))
			}
		}
	}
	if _, ok := set["heartbeat-interval"]; !ok {
		if v, ok := get("CAMCLIENT_HEARTBEAT_INTERVAL"); ok && v != "" {
			if d, err := time.ParseDuration(v); err == nil && d > 0 {
				c.HeartbeatInterval = d
			} else if err != nil {
				noteErr(fmt.Errorf("invalid CAMCLIENT_HEARTBEAT_INTERVAL: %w", err))
			}
		}
	}
	if _, ok := set["receive-timeout"]; !ok {
		if v, ok := get("CAMCLIENT_RECEIVE_TIMEOUT"); ok && v != "" {
			if d, err := time.ParseDuration(v); err == nil && d > 0 {
				c.ReceiveTimeout = d
			} else if err != nil {
				noteErr(fmt.Errorf("invalid CAMCLIENT_RECEIVE_TIMEOUT: %w", err))
			}
		}
	}
	if _, ok := set["hub-buffer"]; !ok {
		if v, ok := get("CAMCLIENT_HUB_BUFFER"); ok && v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.HubBuffer = n
			} else if err != nil {
				noteErr(fmt.Errorf("invalid CAMCLIENT_HUB_BUFFER: %w", err))
			}
		}
	}
	if _, ok := set["hub-policy"]; !ok {
		if v, ok := get("CAMCLIENT_HUB_POLICY"); ok && v != "" {
			c.HubPolicy = v
		}
	}
	if _, ok := set["log-format"]; !ok {
		if v, ok := get("CAMCLIENT_LOG_FORMAT"); ok && v != "" {
			c.LogFormat = v
		}
	}
	if _, ok := set["log-level"]; !ok {
		if v, ok := get("CAMCLIENT_LOG_LEVEL"); ok && v != "" {
			c.LogLevel = v
		}
	}
	if _, ok := set["mdns-enable"]; !ok {
		if v, ok := get("CAMCLIENT_MDNS_ENABLE"); ok && v != "" {
			switch strings.ToLower(v) {
			case "1", "true", "yes", "on":
				c.MDNSEnable = true
			case "0", "false", "no", "off":
				c.MDNSEnable = false
			}
		}
	}
	if _, ok := set["mdns-name"]; !ok {
		if v, ok := get("CAMCLIENT_MDNS_NAME"); ok && v != "" {
			c.MDNSName = v
		}
	}
	return firstErr
}
