package proto

import "encoding/binary"

// Credential is the fixed ASCII token sent verbatim in every LoginRequest.
// The protocol has no challenge/response; changing this stops the camera
// from accepting the session.
const Credential = "9e8040834b3a"

// heartbeatBody is the fixed 28-byte payload shared by Heartbeat and
// AudioKick: u64=1, u32=1, u64=8, u32=0, u32=1. The meaning of these fields
// is not understood; they are reproduced verbatim.
var heartbeatBody = [28]byte{
	1, 0, 0, 0, 0, 0, 0, 0, // u64 = 1
	1, 0, 0, 0, // u32 = 1
	8, 0, 0, 0, 0, 0, 0, 0, // u64 = 8
	0, 0, 0, 0, // u32 = 0
	1, 0, 0, 0, // u32 = 1
}

// --- PortRequest (1TEG / 0x0B), client -> cam ---

// PortRequestSize is the full wire size of a PortRequest datagram.
const PortRequestSize = HeaderSize + 12

// EncodePortRequest builds the discovery request: header + u16=1 + 10 zero bytes.
func EncodePortRequest() []byte {
	buf := make([]byte, PortRequestSize)
	newHeader(1, CmdPortRequest, 12).encodeTo(buf)
	binary.LittleEndian.PutUint16(buf[HeaderSize:HeaderSize+2], 1)
	return buf
}

// --- PortResponse (1TEG / 0x0C), cam -> client ---

// PortResponseSize is the full wire size of a PortResponse datagram.
const PortResponseSize = HeaderSize + 8 + UDPInfoSize + 28 + 8

// PortResponse carries the UDP port the camera wants steady-state traffic
// sent to, plus an advertised camera name.
type PortResponse struct {
	Header  Header
	UDPInfo UDPInfo
	CamName [28]byte
}

// DecodePortResponse parses a PortResponse. Trailing bytes beyond
// PortResponseSize are accepted and ignored (datagrams may be padded).
func DecodePortResponse(buf []byte) (PortResponse, error) {
	var r PortResponse
	if len(buf) < PortResponseSize {
		return r, ErrShortBuffer
	}
	h, err := DecodeHeader(buf)
	if err != nil {
		return r, err
	}
	r.Header = h
	off := HeaderSize + 8 // 8 opaque bytes precede UdpInfo
	r.UDPInfo = decodeUDPInfo(buf[off : off+UDPInfoSize])
	off += UDPInfoSize
	copy(r.CamName[:], buf[off:off+28])
	return r, nil
}

// --- LoginRequest (1TEG / 0x0D), client -> cam ---

// LoginRequestSize is the full wire size of a LoginRequest datagram.
const LoginRequestSize = HeaderSize + UDPInfoSize + 1 + 12 + 3

// EncodeLoginRequest builds the login/"set udp info" request embedding the
// socket's local endpoint and the fixed credential token.
func EncodeLoginRequest(info UDPInfo) []byte {
	buf := make([]byte, LoginRequestSize)
	newHeader(1, CmdLoginRequest, LoginRequestSize-HeaderSize).encodeTo(buf)
	off := HeaderSize
	info.encodeTo(buf[off : off+UDPInfoSize])
	off += UDPInfoSize
	buf[off] = 0x09
	off++
	copy(buf[off:off+12], []byte(Credential))
	// remaining 3 pad bytes are left zero
	return buf
}

// --- Heartbeat / AudioKick (2TEG / 0x01, 0x04), client -> cam ---

// KeepAliveSize is the full wire size of a Heartbeat or AudioKick datagram.
const KeepAliveSize = HeaderSize + len(heartbeatBody)

// EncodeHeartbeat builds the periodic keep-alive datagram that tells the
// camera to keep streaming video.
func EncodeHeartbeat() []byte { return encodeKeepAlive(CmdHeartbeat) }

// EncodeAudioKick builds the periodic keep-alive datagram that tells the
// camera to keep streaming audio.
func EncodeAudioKick() []byte { return encodeKeepAlive(CmdAudioKick) }

func encodeKeepAlive(cmd uint16) []byte {
	buf := make([]byte, KeepAliveSize)
	newHeader(2, cmd, uint16(len(heartbeatBody))).encodeTo(buf)
	copy(buf[HeaderSize:], heartbeatBody[:])
	return buf
}

// --- MediaFrame (2TEG / 0x03), cam -> client ---

// mediaFixedSize is the size of the fixed fields following the header:
// u32=1, u16=1, u16 is_audio, u16 frame_index, u16 pkt_index, u32 media_data_len.
const mediaFixedSize = 4 + 2 + 2 + 2 + 2 + 4

// MediaHeaderSize is sizeof(header)+sizeof(fixed fields); the constant the
// payload-offset rule adds back in. It is not the datagram's total header
// in any conventional sense, it is exactly what the firmware quirk expects.
const MediaHeaderSize = HeaderSize + mediaFixedSize

// MediaFrame describes one fragment of a video or audio frame.
type MediaFrame struct {
	Header       Header
	IsAudio      bool
	FrameIndex   uint16
	PktIndex     uint16
	MediaDataLen uint32
}

// DecodeMediaFrame parses the fixed portion of a MediaFrame datagram and
// locates its payload slice using the observed firmware offset rule:
//
//	payload_start = (data_len - 16 - media_data_len) + MediaHeaderSize
//
// datagram length, not the advisory data_len, is what bounds the returned
// slice; a media_data_len that would run past the datagram is rejected.
func DecodeMediaFrame(datagram []byte) (MediaFrame, []byte, error) {
	var f MediaFrame
	if len(datagram) < MediaHeaderSize {
		return f, nil, ErrShortBuffer
	}
	h, err := DecodeHeader(datagram)
	if err != nil {
		return f, nil, err
	}
	f.Header = h
	// First 6 bytes after the header are the two reserved constants
	// (u32=1, u16=1); the real fields start at offset 6.
	isAudio := binary.LittleEndian.Uint16(datagram[HeaderSize+6 : HeaderSize+8])
	f.IsAudio = isAudio == 1
	f.FrameIndex = binary.LittleEndian.Uint16(datagram[HeaderSize+8 : HeaderSize+10])
	f.PktIndex = binary.LittleEndian.Uint16(datagram[HeaderSize+10 : HeaderSize+12])
	f.MediaDataLen = binary.LittleEndian.Uint32(datagram[HeaderSize+12 : HeaderSize+16])

	start := int(f.Header.DataLen) - mediaFixedSize - int(f.MediaDataLen) + MediaHeaderSize
	end := start + int(f.MediaDataLen)
	if start < 0 || end < start || end > len(datagram) {
		return f, nil, ErrLengthMismatch
	}
	return f, datagram[start:end], nil
}
