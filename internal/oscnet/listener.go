package oscnet

/*------------------------------------------------------------------
 *
 * Purpose:	Accept loop for the stream transports, producing one
 *		FramedSocket per inbound connection. A fatal accept error
 *		stops only this listener.
 *
 *---------------------------------------------------------------*/

import (
	"net"

	"github.com/oscmex/engine/internal/oscerr"
)

// Listener accepts TCP or Unix connections and hands each one back as a
// FramedSocket over Accepted.
type Listener struct {
	ln       net.Listener
	Accepted chan *FramedSocket
	errc     chan *oscerr.Error
	done     chan struct{}
}

// ListenTCP binds a TCP listener at addr.
func ListenTCP(addr Address) (*Listener, error) {
	ln, err := net.Listen("tcp", addr.NetworkAddr())
	if err != nil {
		return nil, oscerr.New(oscerr.Network, addr.String(), err)
	}
	return newListener(ln), nil
}

// ListenUnix binds a Unix-domain listener at addr. Fails with
// oscerr.NotImplemented where AF_UNIX is unsupported.
func ListenUnix(addr Address) (*Listener, error) {
	ln, err := net.Listen("unix", addr.NetworkAddr())
	if err != nil {
		if isUnixUnsupported(err) {
			return nil, oscerr.New(oscerr.NotImplemented, addr.String(), err)
		}
		return nil, oscerr.New(oscerr.Network, addr.String(), err)
	}
	return newListener(ln), nil
}

func newListener(ln net.Listener) *Listener {
	l := &Listener{
		ln:       ln,
		Accepted: make(chan *FramedSocket, 8),
		errc:     make(chan *oscerr.Error, 8),
		done:     make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Listener) run() {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			select {
			case <-l.done:
				return
			default:
			}
			select {
			case l.errc <- oscerr.New(oscerr.Network, l.ln.Addr().String(), err):
			default:
			}
			return
		}
		select {
		case l.Accepted <- newFramedSocket(conn):
		case <-l.done:
			_ = conn.Close()
			return
		}
	}
}

// Errors surfaces a fatal accept error, if any. Non-blocking.
func (l *Listener) Errors() <-chan *oscerr.Error { return l.errc }

func (l *Listener) Close() error {
	close(l.done)
	return l.ln.Close()
}

func (l *Listener) Addr() net.Addr { return l.ln.Addr() }
