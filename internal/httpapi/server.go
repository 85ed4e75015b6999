// Package httpapi exposes the camera's live streams and operational
// endpoints over plain HTTP: a landing page, raw chunked video/audio feeds
// backed by the session's publish hubs, metrics, and readiness.
package httpapi

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/camwire/camclient/internal/hub"
	"github.com/camwire/camclient/internal/logging"
	"github.com/camwire/camclient/internal/metrics"
)

//go:embed static/index.html
var staticFS embed.FS

// FramePublisher is the subset of *session.Session the HTTP surface needs:
// live hubs to subscribe to and the last emitted video frame to prime a new
// viewer with. Defined here, not in session, to keep httpapi's dependency
// on session to an interface rather than the concrete type.
type FramePublisher interface {
	VideoHub() *hub.Hub[[]byte]
	AudioHub() *hub.Hub[[]byte]
	LastFrame() []byte
}

// NewMux builds the full HTTP surface: landing page, live streams, metrics,
// and readiness.
func NewMux(session FramePublisher) *http.ServeMux {
	mux := http.NewServeMux()

	indexFS, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err) // embed.FS is compiled in; this cannot fail at runtime
	}
	mux.Handle("/", http.FileServer(http.FS(indexFS)))

	mux.HandleFunc("/cam", streamHandler("video/x-motion-jpeg", func() (*hub.Hub[[]byte], *hub.Subscription[[]byte], []byte) {
		h := session.VideoHub()
		return h, h.Subscribe(), session.LastFrame()
	}))
	mux.HandleFunc("/audio", streamHandler("audio/x-ima-adpcm", func() (*hub.Hub[[]byte], *hub.Subscription[[]byte], []byte) {
		h := session.AudioHub()
		return h, h.Subscribe(), nil
	}))

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if metrics.IsReady() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready\n"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready\n"))
	})

	return mux
}

// streamHandler returns an http.HandlerFunc that primes the response with
// an optional initial chunk, then relays published items from a fresh
// subscription until the client disconnects. The subscription is always
// deregistered from its owning hub on the way out, not just closed, so a
// disconnected client's slot doesn't linger forever.
func streamHandler(contentType string, subscribe func() (*hub.Hub[[]byte], *hub.Subscription[[]byte], []byte)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, sub, priming := subscribe()
		defer h.Unsubscribe(sub)

		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		flusher, canFlush := w.(http.Flusher)

		if len(priming) > 0 {
			if !writeChunk(w, priming) {
				return
			}
			if canFlush {
				flusher.Flush()
			}
		}

		log := logging.L()
		ctx := r.Context()
		for {
			item, status := sub.Next(ctx)
			switch status {
			case hub.StatusOK:
				if !writeChunk(w, item) {
					return
				}
				if canFlush {
					flusher.Flush()
				}
			case hub.StatusLagged:
				log.Debug("http_subscriber_lagged", "path", r.URL.Path)
			case hub.StatusClosed:
				return
			}
		}
	}
}

func writeChunk(w http.ResponseWriter, b []byte) bool {
	_, err := w.Write(b)
	return err == nil
}

// Serve starts the HTTP surface on addr and returns the *http.Server for
// the caller to shut down.
func Serve(addr string, session FramePublisher) *http.Server {
	srv := &http.Server{Addr: addr, Handler: NewMux(session)}
	go func() {
		logging.L().Info("http_listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Error("http_server_error", "error", err)
		}
	}()
	return srv
}
