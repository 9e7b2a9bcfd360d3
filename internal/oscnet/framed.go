package oscnet

/*------------------------------------------------------------------
 *
 * Purpose:	Shared 4-byte-length-prefixed framing used identically by
 *		TCP and Unix-domain sockets. Receivers buffer short reads:
 *		two half-records delivered across two OS reads still
 *		produce exactly one dispatched message.
 *
 *---------------------------------------------------------------*/

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/oscmex/engine/internal/oscerr"
)

// MaxFrameSize is the largest length header this transport will accept
// before failing the connection.
const MaxFrameSize = MaxDatagramSize

// FramedSocket wraps a stream net.Conn (TCP or Unix) with OSC's 4-byte
// big-endian length framing. It satisfies Socket.
type FramedSocket struct {
	conn  net.Conn
	r     *bufio.Reader
	mu    sync.Mutex
	state State

	// partial-frame reassembly state, carried across Receive calls so a
	// timeout mid-frame resumes where it left off instead of
	// desynchronizing the stream.
	hdr     [4]byte
	hdrGot  int
	body    []byte
	bodyGot int
}

func newFramedSocket(conn net.Conn) *FramedSocket {
	return &FramedSocket{conn: conn, r: bufio.NewReader(conn), state: Connected}
}

// DialTCP connects to addr and returns a framed socket. noDelay disables
// Nagle's algorithm per-socket when true (Nagle is enabled by default).
func DialTCP(addr Address, noDelay bool) (*FramedSocket, error) {
	conn, err := net.Dial("tcp", addr.NetworkAddr())
	if err != nil {
		return nil, oscerr.New(oscerr.Network, addr.String(), err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		// Go disables Nagle on new TCP connections; set it explicitly.
		_ = tc.SetNoDelay(noDelay)
	}
	return newFramedSocket(conn), nil
}

// DialUnix connects to a Unix-domain socket path. Fails with
// oscerr.NotImplemented on platforms without AF_UNIX support.
func DialUnix(addr Address) (*FramedSocket, error) {
	conn, err := net.Dial("unix", addr.NetworkAddr())
	if err != nil {
		if isUnixUnsupported(err) {
			return nil, oscerr.New(oscerr.NotImplemented, addr.String(), err)
		}
		return nil, oscerr.New(oscerr.Network, addr.String(), err)
	}
	return newFramedSocket(conn), nil
}

func (s *FramedSocket) Send(buf []byte) error {
	if len(buf) > MaxFrameSize {
		return oscerr.New(oscerr.MessageTooLarge, "", fmt.Errorf("oscnet: frame of %d bytes exceeds max %d", len(buf), MaxFrameSize))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(buf)))
	if _, err := s.conn.Write(hdr[:]); err != nil {
		return s.sendErr(err)
	}
	if _, err := s.conn.Write(buf); err != nil {
		return s.sendErr(err)
	}
	return nil
}

func (s *FramedSocket) sendErr(err error) error {
	if isFatalSocketErr(err) {
		s.state = Failed
		_ = s.conn.Close()
	}
	return oscerr.New(oscerr.Network, "", err)
}

func (s *FramedSocket) Receive(timeout time.Duration) ([]byte, net.Addr, error) {
	if timeout > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(timeout))
	} else {
		_ = s.conn.SetReadDeadline(time.Time{})
	}
	for s.hdrGot < 4 {
		n, err := s.r.Read(s.hdr[s.hdrGot:])
		s.hdrGot += n
		if err != nil {
			return nil, nil, s.recvErr(err)
		}
	}
	if s.body == nil {
		size := binary.BigEndian.Uint32(s.hdr[:])
		if size > MaxFrameSize {
			s.state = Failed
			_ = s.conn.Close()
			return nil, nil, oscerr.New(oscerr.MessageTooLarge, "", fmt.Errorf("oscnet: frame header %d exceeds max %d", size, MaxFrameSize))
		}
		s.body = make([]byte, size)
		s.bodyGot = 0
	}
	for s.bodyGot < len(s.body) {
		n, err := s.r.Read(s.body[s.bodyGot:])
		s.bodyGot += n
		if err != nil {
			return nil, nil, s.recvErr(err)
		}
	}
	buf := s.body
	s.hdrGot, s.body, s.bodyGot = 0, nil, 0
	return buf, s.conn.RemoteAddr(), nil
}

func (s *FramedSocket) recvErr(err error) error {
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return ErrTimeout
	}
	if err == io.EOF {
		s.state = Closed
		return oscerr.New(oscerr.SocketClosed, "", err)
	}
	if isFatalSocketErr(err) {
		s.state = Failed
	}
	return oscerr.New(oscerr.Network, "", err)
}

func (s *FramedSocket) Close() error {
	s.state = Closed
	return s.conn.Close()
}

func (s *FramedSocket) State() State { return s.state }
