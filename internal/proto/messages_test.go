package proto

import (
	"bytes"
	"net"
	"testing"
)

func TestPortRequestWire(t *testing.T) {
	got := EncodePortRequest()
	want := []byte{
		'1', 'T', 'E', 'G', 0x0B, 0x00, 0x0C, 0x00,
		0x01, 0x00,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("PortRequest wire mismatch:\n got  %X\n want %X", got, want)
	}
}

func TestPortResponseRoundTrip(t *testing.T) {
	buf := make([]byte, PortResponseSize)
	newHeader(1, CmdPortResponse, PortResponseSize-HeaderSize).encodeTo(buf)
	off := HeaderSize + 8
	info := UDPInfo{UDPPort: 0x2710, IP: [4]byte{192, 168, 1, 50}}
	info.encodeTo(buf[off : off+UDPInfoSize])
	// big-endian check: 0x2710 -> 0x27, 0x10
	portOff := off + 18
	if buf[portOff] != 0x27 || buf[portOff+1] != 0x10 {
		t.Fatalf("udp_port not big-endian on wire: %X", buf[portOff:portOff+2])
	}
	copy(buf[off+UDPInfoSize:off+UDPInfoSize+28], []byte("testcam-0001"))

	resp, err := DecodePortResponse(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.UDPInfo.UDPPort != 0x2710 {
		t.Fatalf("port = %x, want 0x2710", resp.UDPInfo.UDPPort)
	}
	if resp.UDPInfo.IP != [4]byte{192, 168, 1, 50} {
		t.Fatalf("ip = %v", resp.UDPInfo.IP)
	}
}

func TestDecodePortResponseShortBuffer(t *testing.T) {
	_, err := DecodePortResponse(make([]byte, PortResponseSize-1))
	if err != ErrShortBuffer {
		t.Fatalf("err = %v, want ErrShortBuffer", err)
	}
}

func TestDecodeHeaderBadSignature(t *testing.T) {
	buf := make([]byte, HeaderSize)
	copy(buf, []byte("XXXX"))
	_, err := DecodeHeader(buf)
	if err != ErrBadSignature {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
}

func TestLoginRequestEmbedsCredentialAndAddr(t *testing.T) {
	addr := &net.UDPAddr{IP: net.IPv4(10, 0, 0, 5), Port: 40000}
	info, err := NewUDPInfo(addr)
	if err != nil {
		t.Fatalf("NewUDPInfo: %v", err)
	}
	buf := EncodeLoginRequest(info)
	if len(buf) != LoginRequestSize {
		t.Fatalf("len = %d, want %d", len(buf), LoginRequestSize)
	}
	credOff := HeaderSize + UDPInfoSize + 1
	if string(buf[credOff:credOff+12]) != Credential {
		t.Fatalf("credential mismatch: %q", buf[credOff:credOff+12])
	}
	portOff := HeaderSize + 18
	if buf[portOff] != 0x9C || buf[portOff+1] != 0x40 { // 40000 = 0x9C40
		t.Fatalf("port bytes = %X, want 9C40", buf[portOff:portOff+2])
	}
}

func TestNewUDPInfoRejectsIPv6(t *testing.T) {
	addr := &net.UDPAddr{IP: net.ParseIP("::1"), Port: 1}
	if _, err := NewUDPInfo(addr); err != ErrNotIPv4 {
		t.Fatalf("err = %v, want ErrNotIPv4", err)
	}
}

func TestHeartbeatAndAudioKickWire(t *testing.T) {
	hb := EncodeHeartbeat()
	ak := EncodeAudioKick()
	wantHeader := []byte{'2', 'T', 'E', 'G', 0x01, 0x00, 0x1C, 0x00}
	if !bytes.Equal(hb[:HeaderSize], wantHeader) {
		t.Fatalf("heartbeat header = %X", hb[:HeaderSize])
	}
	wantHeaderAK := []byte{'2', 'T', 'E', 'G', 0x04, 0x00, 0x1C, 0x00}
	if !bytes.Equal(ak[:HeaderSize], wantHeaderAK) {
		t.Fatalf("audio kick header = %X", ak[:HeaderSize])
	}
	if !bytes.Equal(hb[HeaderSize:], ak[HeaderSize:]) {
		t.Fatalf("bodies differ between heartbeat and audio kick")
	}
	wantBody := []byte{
		1, 0, 0, 0, 0, 0, 0, 0,
		1, 0, 0, 0,
		8, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0,
		1, 0, 0, 0,
	}
	if !bytes.Equal(hb[HeaderSize:], wantBody) {
		t.Fatalf("body = %X, want %X", hb[HeaderSize:], wantBody)
	}
}

// buildMediaDatagram's field order must mirror DecodeMediaFrame's reads
// exactly: reserved u32=1, reserved u16=1, is_audio u16, frame_index u16,
// pkt_index u16, media_data_len u32, then the payload.
func buildMediaDatagram(isAudio bool, frameIndex, pktIndex uint16, payload []byte, pad int) []byte {
	dataLen := mediaFixedSize + len(payload) + pad
	buf := make([]byte, HeaderSize+mediaFixedSize+len(payload)+pad)
	newHeader(2, CmdMediaFrame, uint16(dataLen)).encodeTo(buf)
	off := HeaderSize
	putU32 := func(v uint32) {
		buf[off], buf[off+1], buf[off+2], buf[off+3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
		off += 4
	}
	putU16 := func(v uint16) {
		buf[off], buf[off+1] = byte(v), byte(v>>8)
		off += 2
	}
	putU32(1) // reserved
	putU16(1) // reserved
	if isAudio {
		putU16(1)
	} else {
		putU16(0)
	}
	putU16(frameIndex)
	putU16(pktIndex)
	putU32(uint32(len(payload)))
	copy(buf[off:], payload)
	// trailing pad bytes (simulating firmware metadata) are left as zero
	return buf
}

func TestDecodeMediaFrameNoPadding(t *testing.T) {
	payload := []byte("AA")
	buf := buildMediaDatagram(false, 7, 0, payload, 0)
	f, got, err := DecodeMediaFrame(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.IsAudio || f.FrameIndex != 7 || f.PktIndex != 0 {
		t.Fatalf("fields = %+v", f)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload = %q, want %q", got, payload)
	}
}

func TestDecodeMediaFrameWithTrailingPadding(t *testing.T) {
	payload := []byte("hello")
	buf := buildMediaDatagram(true, 1, 0, payload, 12)
	f, got, err := DecodeMediaFrame(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !f.IsAudio {
		t.Fatalf("expected audio frame")
	}
	if len(got) != len(payload) {
		t.Fatalf("payload len = %d, want %d", len(got), len(payload))
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload = %q, want %q", got, payload)
	}
}

func TestDecodeMediaFrameLengthMismatch(t *testing.T) {
	buf := buildMediaDatagram(false, 1, 0, []byte("x"), 0)
	// Corrupt media_data_len to claim more bytes than exist.
	buf[HeaderSize+12] = 0xFF
	buf[HeaderSize+13] = 0xFF
	_, _, err := DecodeMediaFrame(buf)
	if err != ErrLengthMismatch {
		t.Fatalf("err = %v, want ErrLengthMismatch", err)
	}
}
