package oscnet

/*------------------------------------------------------------------
 *
 * Purpose:	UDP transport: connectionless, one datagram per message,
 *		optional multicast with a TTL clamped to [1,255]. Resolution
 *		uses net.ResolveUDPAddr on the "udp" network, which accepts
 *		either address family and yields a single address; if binding
 *		or dialing that address fails, no other address is tried.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"net"
	"time"

	"golang.org/x/net/ipv4"

	"github.com/oscmex/engine/internal/oscerr"
)

// UDPSocket is a bound (and optionally connected) UDP socket.
type UDPSocket struct {
	conn  *net.UDPConn
	state State
	ttl   int
	rbuf  []byte // reused across Receive calls; sockets are single-reader
}

// ListenUDP opens a UDP socket bound to addr for receiving. Pass an empty
// host to bind on all interfaces.
func ListenUDP(addr Address) (*UDPSocket, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr.NetworkAddr())
	if err != nil {
		return nil, oscerr.New(oscerr.AddressError, addr.String(), err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, oscerr.New(oscerr.Network, addr.String(), err)
	}
	return &UDPSocket{conn: conn, state: Connected, ttl: 1}, nil
}

// DialUDP opens a UDP socket "connected" to a specific peer for Send,
// i.e. a socket whose destination is fixed, matching one sendto per call.
func DialUDP(addr Address) (*UDPSocket, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr.NetworkAddr())
	if err != nil {
		return nil, oscerr.New(oscerr.AddressError, addr.String(), err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, oscerr.New(oscerr.Network, addr.String(), err)
	}
	return &UDPSocket{conn: conn, state: Connected, ttl: 1}, nil
}

// SetMulticastTTL clamps ttl to [1,255] and applies it to the socket. It
// only makes sense on a multicast-joined UDP socket.
func (s *UDPSocket) SetMulticastTTL(ttl int) error {
	if ttl < 1 {
		ttl = 1
	}
	if ttl > 255 {
		ttl = 255
	}
	s.ttl = ttl
	pc := ipv4.NewPacketConn(s.conn)
	if err := pc.SetMulticastTTL(ttl); err != nil {
		return oscerr.New(oscerr.Network, "", err)
	}
	return nil
}

func (s *UDPSocket) Send(buf []byte) error {
	if len(buf) > MaxDatagramSize {
		return oscerr.New(oscerr.MessageTooLarge, "", fmt.Errorf("oscnet: datagram of %d bytes exceeds max %d", len(buf), MaxDatagramSize))
	}
	n, err := s.conn.Write(buf)
	if err != nil {
		// A send failure does not close the socket unless the OS-level
		// error is fatal; UDP has no such fatal error class, so we just
		// report it.
		return oscerr.New(oscerr.Network, "", err)
	}
	if n != len(buf) {
		return oscerr.New(oscerr.Network, "", fmt.Errorf("oscnet: short UDP write %d/%d", n, len(buf)))
	}
	return nil
}

func (s *UDPSocket) Receive(timeout time.Duration) ([]byte, net.Addr, error) {
	if timeout > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(timeout))
	} else {
		_ = s.conn.SetReadDeadline(time.Time{})
	}
	if s.rbuf == nil {
		s.rbuf = make([]byte, 64*1024)
	}
	n, peer, err := s.conn.ReadFromUDP(s.rbuf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, nil, ErrTimeout
		}
		return nil, nil, oscerr.New(oscerr.Network, "", err)
	}
	out := make([]byte, n)
	copy(out, s.rbuf[:n])
	return out, peer, nil
}

func (s *UDPSocket) Close() error {
	s.state = Closed
	return s.conn.Close()
}

func (s *UDPSocket) State() State { return s.state }
