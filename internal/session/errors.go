package session

import "errors"

// Sentinel errors for fatal setup/runtime failures. Transient conditions
// (receive timeouts, unknown messages, reassembly drops) are never
// returned as errors — they are routine control flow or telemetry.
var (
	ErrNotIPv4          = errors.New("session: local address is not IPv4")
	ErrBind             = errors.New("session: udp bind failed")
	ErrHandshakeTimeout = errors.New("session: handshake timed out waiting for PortResponse")
	ErrHandshakeDecode  = errors.New("session: failed to decode PortResponse")
	ErrSend             = errors.New("session: udp write failed")
)
