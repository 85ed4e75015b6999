// Package session drives one camera from cold start to a steady stream of
// reassembled frames: the discovery/login handshake, the periodic
// keep-alive, and dispatch of incoming datagrams to the codec and
// reassembler. It is the protocol core's single cooperative task.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/camwire/camclient/internal/hub"
	"github.com/camwire/camclient/internal/logging"
	"github.com/camwire/camclient/internal/metrics"
	"github.com/camwire/camclient/internal/proto"
	"github.com/camwire/camclient/internal/reassembly"
)

const cameraPort = 10104

// Protocol timing constants. Declared as vars (not const) so tests in this
// package can shrink them; production code never overrides these.
var (
	handshakeTimeout  = 1000 * time.Millisecond
	interLoginDelay   = 20 * time.Millisecond
	keepAliveInterval = 2000 * time.Millisecond
	recvDeadline      = 100 * time.Millisecond
)

// Session owns one UDP endpoint for the lifetime of the process.
type Session struct {
	cameraHost string
	logger     *slog.Logger

	videoHub *hub.Hub[[]byte]
	audioHub *hub.Hub[[]byte]

	conn  *net.UDPConn
	state atomic.Int32

	cache lastFrameCache

	reassembler reassembly.Reassembler

	framesReceived int
	streamStart    time.Time

	anomalyLimiter anomalyLimiter
}

// Option configures a Session before Run is called.
type Option func(*Session)

// WithLogger overrides the session's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Session that will drive cameraHost (an IPv4 address or
// hostname) once Run is called, publishing reassembled media to the given
// hubs.
func New(cameraHost string, videoHub, audioHub *hub.Hub[[]byte], opts ...Option) *Session {
	s := &Session{
		cameraHost: cameraHost,
		videoHub:   videoHub,
		audioHub:   audioHub,
		logger:     logging.L(),
	}
	s.anomalyLimiter = newAnomalyLimiter()
	for _, o := range opts {
		o(s)
	}
	return s
}

// State returns the session's current protocol state.
func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
	metrics.SetSessionState(int(st))
}

// LastFrame returns the most recently emitted video frame, or nil if none
// has been emitted yet. Used to prime new /cam subscribers.
func (s *Session) LastFrame() []byte { return s.cache.get() }

// VideoHub returns the hub new video subscribers (e.g. the /cam endpoint)
// should subscribe to.
func (s *Session) VideoHub() *hub.Hub[[]byte] { return s.videoHub }

// AudioHub returns the hub new audio subscribers (e.g. the /audio endpoint)
// should subscribe to.
func (s *Session) AudioHub() *hub.Hub[[]byte] { return s.audioHub }

// Run performs the handshake and then loops forever dispatching datagrams
// and sending keep-alives, until ctx is cancelled or a fatal error occurs.
func (s *Session) Run(ctx context.Context) error {
	s.setState(StateDiscovering)

	conn, err := s.discover(ctx)
	if err != nil {
		return err
	}
	s.conn = conn
	defer conn.Close()

	s.setState(StateAuthenticating)
	if err := s.login(); err != nil {
		return err
	}

	s.setState(StateStreaming)
	s.logger.Info("session_streaming", "camera", s.cameraHost)
	return s.steadyState(ctx)
}

// discover runs steps 1-4 of the startup sequence: bind, send PortRequest,
// await PortResponse, and reconnect to the camera-assigned port.
func (s *Session) discover(ctx context.Context) (*net.UDPConn, error) {
	cameraAddr, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", s.cameraHost, cameraPort))
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %v", ErrBind, s.cameraHost, err)
	}
	return s.discoverAt(cameraAddr)
}

// discoverAt runs the discovery handshake against an explicit camera
// address, bypassing the fixed cameraPort; split out from discover so
// tests can target a loopback listener on an ephemeral port.
func (s *Session) discoverAt(cameraAddr *net.UDPAddr) (*net.UDPConn, error) {
	localAddr := &net.UDPAddr{IP: net.IPv4zero, Port: 0}

	conn, err := net.DialUDP("udp4", localAddr, cameraAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBind, err)
	}
	local, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || local.IP.To4() == nil {
		conn.Close()
		return nil, ErrNotIPv4
	}

	if _, err := conn.Write(proto.EncodePortRequest()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", ErrSend, err)
	}
	metrics.AddDatagramsTx(1)

	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", ErrHandshakeTimeout, err)
	}
	resp, err := proto.DecodePortResponse(buf[:n])
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", ErrHandshakeDecode, err)
	}
	s.logger.Info("port_response", "cam_name", cleanName(resp.CamName[:]), "udp_port", resp.UDPInfo.UDPPort)
	conn.Close()

	streamAddr, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", s.cameraHost, resp.UDPInfo.UDPPort))
	if err != nil {
		return nil, fmt.Errorf("%w: resolve stream addr: %v", ErrBind, err)
	}
	conn2, err := net.DialUDP("udp4", local, streamAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: reconnect: %v", ErrBind, err)
	}
	return conn2, nil
}

// login sends two LoginRequests 20ms apart, per the observed firmware
// flakiness where the camera sometimes drops the first one.
func (s *Session) login() error {
	local, ok := s.conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return ErrNotIPv4
	}
	info, err := proto.NewUDPInfo(local)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotIPv4, err)
	}
	login := proto.EncodeLoginRequest(info)
	if _, err := s.conn.Write(login); err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	metrics.AddDatagramsTx(1)
	time.Sleep(interLoginDelay)
	if _, err := s.conn.Write(login); err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	metrics.AddDatagramsTx(1)
	return nil
}

func cleanName(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}
