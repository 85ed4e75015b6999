// Package proto implements the 1TEG/2TEG wire codec: stateless encode/decode
// of the handshake and media messages spoken by the camera over UDP.
package proto

import "errors"

// Sentinel decode errors, usable with errors.Is.
var (
	ErrShortBuffer    = errors.New("proto: buffer shorter than fixed message size")
	ErrBadSignature   = errors.New("proto: signature is neither 1TEG nor 2TEG")
	ErrUnknownCommand = errors.New("proto: unrecognized (signature, command) pair")
	ErrLengthMismatch = errors.New("proto: declared media_data_len extends past datagram")

	// ErrNotIPv4 is returned by NewUDPInfo when handed a non-IPv4 address; the
	// wire format has no field for anything wider than 4 bytes.
	ErrNotIPv4 = errors.New("proto: local address is not IPv4")
)
