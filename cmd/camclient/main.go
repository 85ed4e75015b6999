// Command camclient discovers, authenticates with, and streams video/audio
// from a single IP camera over the vendor's UDP protocol, re-exposing both
// streams and operational endpoints over plain HTTP.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/camwire/camclient/internal/config"
	"github.com/camwire/camclient/internal/discovery"
	"github.com/camwire/camclient/internal/hub"
	"github.com/camwire/camclient/internal/httpapi"
	"github.com/camwire/camclient/internal/metrics"
	"github.com/camwire/camclient/internal/session"
)

func main() {
	root := &cobra.Command{
		Use:          "camclient [camera-host]",
		Short:        "Discover, authenticate, and stream video/audio from a UDP IP camera",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
	}
	resolve := config.BindFlags(root)
	showVersion := root.Flags().Bool("version", false, "Print version and exit")

	root.RunE = func(cmd *cobra.Command, args []string) error {
		if *showVersion {
			fmt.Printf("camclient %s (commit %s, built %s)\n", version, commit, date)
			return nil
		}
		cfg, err := resolve()
		if err != nil {
			return err
		}
		return run(cfg)
	}

	// "run" is an explicit alias for the root command's default action, so
	// both `camclient <camera-host>` and `camclient run <camera-host>` work.
	runCmd := &cobra.Command{
		Use:          "run [camera-host]",
		Short:        "Discover, authenticate, and stream video/audio from a UDP IP camera",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
	}
	resolveRun := config.BindFlags(runCmd)
	runCmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveRun()
		if err != nil {
			return err
		}
		return run(cfg)
	}
	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger := setupLogger(cfg.LogFormat, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	videoHub := hub.NewSized("video", cfg.HubBuffer)
	audioHub := hub.NewSized("audio", cfg.HubBuffer)
	sess := session.New(cfg.CameraHost, videoHub, audioHub, session.WithLogger(logger))

	var sessMu sync.Mutex
	var sessErr error
	go func() {
		if err := sess.Run(ctx); err != nil {
			logger.Error("session_error", "error", err)
			sessMu.Lock()
			sessErr = err
			sessMu.Unlock()
			cancel()
		}
	}()

	metrics.SetReadinessFunc(func() bool {
		return sess.State() == session.StateStreaming && ctx.Err() == nil
	})
	metrics.InitBuildInfo(version, commit, date)

	httpSrv := httpapi.Serve(cfg.ListenAddr, sess)
	defer func() { _ = httpSrv.Shutdown(context.Background()) }()

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = metrics.StartHTTP(cfg.MetricsAddr)
		defer func() { _ = metricsSrv.Shutdown(context.Background()) }()
	}

	if cfg.MDNSEnable {
		go advertiseOnceListening(ctx, cfg, logger)
	}

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sigCh:
		logger.Info("shutdown_signal", "signal", s.String())
	case <-ctx.Done():
		logger.Info("shutdown_session_ended")
	}
	cancel()

	sessMu.Lock()
	defer sessMu.Unlock()
	return sessErr
}

// advertiseOnceListening registers the HTTP surface over mDNS once its port
// is known; camclient's listener has no dedicated readiness channel the way
// the teacher's TCP server does, so the configured listen address is parsed
// directly instead of polling the live listener.
func advertiseOnceListening(ctx context.Context, cfg *config.Config, logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}) {
	port := 0
	if _, p, err := net.SplitHostPort(cfg.ListenAddr); err == nil {
		if pn, perr := strconv.Atoi(p); perr == nil {
			port = pn
		}
	}
	if port == 0 {
		if idx := strings.LastIndex(cfg.ListenAddr, ":"); idx >= 0 {
			if pn, perr := strconv.Atoi(cfg.ListenAddr[idx+1:]); perr == nil {
				port = pn
			}
		}
	}
	meta := []string{"version=" + version, "commit=" + commit}
	cleanup, err := discovery.Advertise(ctx, cfg.MDNSEnable, cfg.MDNSName, port, meta)
	if err != nil {
		logger.Warn("mdns_start_failed", "error", err)
		return
	}
	logger.Info("mdns_started", "service", discovery.ServiceType, "name", cfg.MDNSName, "port", port)
	go func() { <-ctx.Done(); cleanup() }()
}
