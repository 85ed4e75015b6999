// Package metrics exposes Prometheus counters/gauges for the ingest
// pipeline and a cheap local mirror for non-Prometheus logging.
package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/camwire/camclient/internal/logging"
)

// Prometheus series.
var (
	VideoFramesEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "video_frames_emitted_total",
		Help: "Total reassembled video frames published to the hub.",
	})
	VideoFramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "video_frames_dropped_total",
		Help: "Total video frames lost to a missing fragment.",
	})
	AudioFramesEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audio_frames_emitted_total",
		Help: "Total audio frames published to the hub.",
	})
	DatagramsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "udp_datagrams_received_total",
		Help: "Total UDP datagrams received from the camera.",
	})
	DatagramsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "udp_datagrams_sent_total",
		Help: "Total UDP datagrams sent to the camera (handshake + keep-alive).",
	})
	ProtocolAnomalies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "protocol_anomalies_total",
		Help: "Total datagrams that failed to decode or did not match a known (signature, command) pair.",
	})
	HubDroppedItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hub_dropped_items_total",
		Help: "Total items dropped by a hub due to a slow subscriber.",
	}, []string{"stream"})
	HubActiveSubscribers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hub_active_subscribers",
		Help: "Current number of active subscribers per stream.",
	}, []string{"stream"})
	HubBroadcastFanout = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hub_broadcast_fanout",
		Help: "Number of subscribers targeted in the most recent publish.",
	}, []string{"stream"})
	StreamFPS = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "video_stream_fps",
		Help: "Approximate emitted-video frames per second since stream start.",
	})
	SessionState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "session_state",
		Help: "Current session state: 0=discovering, 1=authenticating, 2=streaming.",
	})
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "Build metadata (value is always 1).",
	}, []string{"version", "commit", "date"})

	readinessMu sync.RWMutex
	readinessFn func() bool
)

// StartHTTP serves Prometheus metrics at /metrics and a readiness probe at
// /ready on addr. The returned server is owned by the caller for shutdown.
func StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if IsReady() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready\n"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready\n"))
	})
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logging.L().Info("metrics_listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Error("metrics_http_error", "error", err)
		}
	}()
	return srv
}

// Local mirrored counters, cheap to read for periodic log snapshots.
var (
	localVideoEmitted uint64
	localVideoDropped uint64
	localAudioEmitted uint64
	localDatagramsRx  uint64
	localDatagramsTx  uint64
	localAnomalies    uint64
)

// Snapshot is a cheap copy of the local counters.
type Snapshot struct {
	VideoEmitted uint64
	VideoDropped uint64
	AudioEmitted uint64
	DatagramsRx  uint64
	DatagramsTx  uint64
	Anomalies    uint64
}

// Snap returns the current local counter values.
func Snap() Snapshot {
	return Snapshot{
		VideoEmitted: atomic.LoadUint64(&localVideoEmitted),
		VideoDropped: atomic.LoadUint64(&localVideoDropped),
		AudioEmitted: atomic.LoadUint64(&localAudioEmitted),
		DatagramsRx:  atomic.LoadUint64(&localDatagramsRx),
		DatagramsTx:  atomic.LoadUint64(&localDatagramsTx),
		Anomalies:    atomic.LoadUint64(&localAnomalies),
	}
}

func IncVideoEmitted() { VideoFramesEmitted.Inc(); atomic.AddUint64(&localVideoEmitted, 1) }
func IncVideoDropped() { VideoFramesDropped.Inc(); atomic.AddUint64(&localVideoDropped, 1) }
func IncAudioEmitted() { AudioFramesEmitted.Inc(); atomic.AddUint64(&localAudioEmitted, 1) }
func IncDatagramsRx()  { DatagramsReceived.Inc(); atomic.AddUint64(&localDatagramsRx, 1) }
func AddDatagramsTx(n int) {
	DatagramsSent.Add(float64(n))
	atomic.AddUint64(&localDatagramsTx, uint64(n))
}
func IncAnomaly() { ProtocolAnomalies.Inc(); atomic.AddUint64(&localAnomalies, 1) }

// IncHubDrop records a hub item dropped for a slow subscriber on the given
// stream ("video" or "audio").
func IncHubDrop(stream string) { HubDroppedItems.WithLabelValues(stream).Inc() }

// SetHubSubscribers records the current subscriber count for a stream.
func SetHubSubscribers(stream string, n int) {
	HubActiveSubscribers.WithLabelValues(stream).Set(float64(n))
}

// SetHubFanout records the subscriber count targeted by the most recent publish.
func SetHubFanout(stream string, n int) { HubBroadcastFanout.WithLabelValues(stream).Set(float64(n)) }

// SetStreamFPS records the current emitted-video frame rate.
func SetStreamFPS(fps float64) { StreamFPS.Set(fps) }

// SetSessionState records the session's current protocol state.
func SetSessionState(n int) { SessionState.Set(float64(n)) }

// InitBuildInfo sets the build info gauge; call once at startup.
func InitBuildInfo(version, commit, date string) {
	BuildInfo.WithLabelValues(version, commit, date).Set(1)
}

// SetReadinessFunc registers the function used by /ready and IsReady.
func SetReadinessFunc(fn func() bool) { readinessMu.Lock(); readinessFn = fn; readinessMu.Unlock() }

// IsReady invokes the registered readiness function, defaulting to true
// until one has been registered so the endpoint doesn't flap at boot.
func IsReady() bool {
	readinessMu.RLock()
	fn := readinessFn
	readinessMu.RUnlock()
	if fn == nil {
		return true
	}
	return fn()
}
