package proto

import (
	"encoding/binary"
	"net"
)

// UDPInfoSize is the wire size of a UdpInfo block.
const UDPInfoSize = 24

// UDPInfo carries a local endpoint back to the camera. Every field is
// little-endian on the wire except UDPPort, which is big-endian; this is
// the one deliberate endianness exception in the whole protocol.
type UDPInfo struct {
	Unknown [18]byte
	UDPPort uint16
	IP      [4]byte
}

// NewUDPInfo builds a UDPInfo from a UDP local address. It returns an error
// if addr is not an IPv4 address; the wire format has no room for IPv6.
func NewUDPInfo(addr *net.UDPAddr) (UDPInfo, error) {
	var info UDPInfo
	ip4 := addr.IP.To4()
	if ip4 == nil {
		return info, ErrNotIPv4
	}
	info.UDPPort = uint16(addr.Port)
	copy(info.IP[:], ip4)
	return info, nil
}

func (u UDPInfo) encodeTo(buf []byte) {
	copy(buf[0:18], u.Unknown[:])
	binary.BigEndian.PutUint16(buf[18:20], u.UDPPort)
	copy(buf[20:24], u.IP[:])
}

func decodeUDPInfo(buf []byte) UDPInfo {
	var u UDPInfo
	copy(u.Unknown[:], buf[0:18])
	u.UDPPort = binary.BigEndian.Uint16(buf[18:20])
	copy(u.IP[:], buf[20:24])
	return u
}

// Addr renders the UDPInfo IP/port as a *net.UDPAddr.
func (u UDPInfo) Addr() *net.UDPAddr {
	return &net.UDPAddr{IP: net.IPv4(u.IP[0], u.IP[1], u.IP[2], u.IP[3]), Port: int(u.UDPPort)}
}
