package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// BindFlags registers every config flag on cmd and returns a function that,
// once cmd has parsed os.Args, resolves the final Config by layering
// defaults, an optional YAML file, the environment, and the flags
// themselves (highest precedence), in that order.
func BindFlags(cmd *cobra.Command) func() (*Config, error) {
	defaults := Defaults()
	flags := cmd.Flags()

	configPath := flags.String("config", "", "Optional YAML config file")
	listen := flags.String("listen", defaults.ListenAddr, "HTTP listen address for /, /cam, /audio")
	metricsAddr := flags.String("metrics-addr", defaults.MetricsAddr, "Metrics HTTP listen address (e.g. :9100); empty disables")
	handshakeTO := flags.Duration("handshake-timeout", defaults.HandshakeTimeout, "Discovery handshake timeout")
	heartbeatInterval := flags.Duration("heartbeat-interval", defaults.HeartbeatInterval, "Keep-alive send interval")
	receiveTO := flags.Duration("receive-timeout", defaults.ReceiveTimeout, "Per-datagram read deadline in the steady-state loop")
	hubBuffer := flags.Int("hub-buffer", defaults.HubBuffer, "Per-subscriber hub buffer depth (frames)")
	hubPolicy := flags.String("hub-policy", defaults.HubPolicy, "Backpressure policy: drop")
	logFormat := flags.String("log-format", defaults.LogFormat, "Log format: text|json")
	logLevel := flags.String("log-level", defaults.LogLevel, "Log level: debug|info|warn|error")
	mdnsEnable := flags.Bool("mdns-enable", defaults.MDNSEnable, "Enable mDNS advertisement")
	mdnsName := flags.String("mdns-name", defaults.MDNSName, "mDNS instance name (default camclient-<hostname>)")

	return func() (*Config, error) {
		cfg := Defaults()

		set := map[string]struct{}{}
		flags.Visit(func(f *pflag.Flag) { set[f.Name] = struct{}{} })

		if err := ApplyFile(&cfg, *configPath, true); err != nil {
			return nil, err
		}
		if err := ApplyEnv(&cfg, set); err != nil {
			return nil, err
		}

		// The positional camera-host argument is the CLI-level equivalent
		// of a flag, so it takes precedence over file/env just like one.
		if len(flags.Args()) > 0 {
			cfg.CameraHost = flags.Arg(0)
		}

		if _, ok := set["listen"]; ok {
			cfg.ListenAddr = *listen
		}
		if _, ok := set["metrics-addr"]; ok {
			cfg.MetricsAddr = *metricsAddr
		}
		if _, ok := set["handshake-timeout"]; ok {
			cfg.HandshakeTimeout = *handshakeTO
		}
		if _, ok := set["heartbeat-interval"]; ok {
			cfg.HeartbeatInterval = *heartbeatInterval
		}
		if _, ok := set["receive-timeout"]; ok {
			cfg.ReceiveTimeout = *receiveTO
		}
		if _, ok := set["hub-buffer"]; ok {
			cfg.HubBuffer = *hubBuffer
		}
		if _, ok := set["hub-policy"]; ok {
			cfg.HubPolicy = *hubPolicy
		}
		if _, ok := set["log-format"]; ok {
			cfg.LogFormat = *logFormat
		}
		if _, ok := set["log-level"]; ok {
			cfg.LogLevel = *logLevel
		}
		if _, ok := set["mdns-enable"]; ok {
			cfg.MDNSEnable = *mdnsEnable
		}
		if _, ok := set["mdns-name"]; ok {
			cfg.MDNSName = *mdnsName
		}

		return &cfg, cfg.Validate()
	}
}
