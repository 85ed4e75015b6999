package proto

import "encoding/binary"

// HeaderSize is the fixed 8-byte prefix carried by every message.
const HeaderSize = 8

// Signature1TEG frames the discovery/login handshake.
var Signature1TEG = [4]byte{'1', 'T', 'E', 'G'}

// Signature2TEG frames steady-state media and control.
var Signature2TEG = [4]byte{'2', 'T', 'E', 'G'}

// Command codes observed on the wire.
const (
	CmdPortRequest  uint16 = 0x0B // 1TEG, client->cam
	CmdPortResponse uint16 = 0x0C // 1TEG, cam->client
	CmdLoginRequest uint16 = 0x0D // 1TEG, client->cam
	CmdHeartbeat    uint16 = 0x01 // 2TEG, client->cam
	CmdAudioKick    uint16 = 0x04 // 2TEG, client->cam
	CmdMediaFrame   uint16 = 0x03 // 2TEG, cam->client
)

// Header is the 8-byte prefix: a 4-byte ASCII signature, a little-endian
// command code, and an advisory little-endian payload length.
type Header struct {
	Signature [4]byte
	Cmd       uint16
	DataLen   uint16
}

// Version reports which signature family a header belongs to: 1 for 1TEG,
// 2 for 2TEG, 0 if neither.
func (h Header) Version() int {
	switch h.Signature {
	case Signature1TEG:
		return 1
	case Signature2TEG:
		return 2
	default:
		return 0
	}
}

func newHeader(version int, cmd uint16, dataLen uint16) Header {
	h := Header{Cmd: cmd, DataLen: dataLen}
	if version == 2 {
		h.Signature = Signature2TEG
	} else {
		h.Signature = Signature1TEG
	}
	return h
}

func (h Header) encodeTo(buf []byte) {
	copy(buf[0:4], h.Signature[:])
	binary.LittleEndian.PutUint16(buf[4:6], h.Cmd)
	binary.LittleEndian.PutUint16(buf[6:8], h.DataLen)
}

// DecodeHeader parses the 8-byte prefix of buf. It does not consult DataLen
// against len(buf); callers should prefer the datagram length as authoritative.
func DecodeHeader(buf []byte) (Header, error) {
	var h Header
	if len(buf) < HeaderSize {
		return h, ErrShortBuffer
	}
	copy(h.Signature[:], buf[0:4])
	if h.Signature != Signature1TEG && h.Signature != Signature2TEG {
		return h, ErrBadSignature
	}
	h.Cmd = binary.LittleEndian.Uint16(buf[4:6])
	h.DataLen = binary.LittleEndian.Uint16(buf[6:8])
	return h, nil
}
