// Package oscserver drives a dispatcher from one or more sockets: a
// blocking single-pass receive, and a background goroutine variant with
// init/cleanup lifecycle hooks.
package oscserver

/*------------------------------------------------------------------
 *
 * Purpose:	Server loop. wait(timeout) polls for readability;
 *		receive(timeout) does one read-decode-dispatch pass on the
 *		calling goroutine. The background variant owns its socket
 *		until stop() closes it to unblock the outstanding receive.
 *
 *---------------------------------------------------------------*/

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/oscmex/engine/internal/dispatcher"
	"github.com/oscmex/engine/internal/osc"
	"github.com/oscmex/engine/internal/oscerr"
	"github.com/oscmex/engine/internal/oscnet"
)

// Server binds a single socket to a dispatcher. Sockets are owned by
// their own goroutine; the only cross-goroutine socket operation
// permitted is Close, used by Stop to unblock an outstanding receive.
type Server struct {
	Socket       oscnet.Socket
	Dispatcher   *dispatcher.Dispatcher
	ErrorHandler oscerr.Handler

	stopping atomic.Bool
	pending  []byte
	pendErr  error
}

func New(sock oscnet.Socket, d *dispatcher.Dispatcher, errHandler oscerr.Handler) *Server {
	if errHandler == nil {
		errHandler = oscerr.Discard
	}
	return &Server{Socket: sock, Dispatcher: d, ErrorHandler: errHandler}
}

// Wait blocks until a packet has actually arrived or timeout elapses,
// without dispatching it: the read is performed and stashed so the next
// Receive call picks it up rather than blocking on the OS again. This
// gives callers a poll/consume split without requiring a lower-level
// readability primitive from every Socket implementation.
func (s *Server) Wait(timeout time.Duration) bool {
	if s.pending != nil || s.pendErr != nil {
		return true
	}
	buf, _, err := s.Socket.Receive(timeout)
	if err != nil {
		if errors.Is(err, oscnet.ErrTimeout) {
			return false
		}
		s.pendErr = err
		return true
	}
	s.pending = buf
	return true
}

// Receive does one pass: read one datagram/framed record (or consume one
// stashed by Wait), decode it, and dispatch synchronously on the calling
// goroutine.
func (s *Server) Receive(timeout time.Duration) error {
	var buf []byte
	var err error
	switch {
	case s.pendErr != nil:
		buf, err = nil, s.pendErr
		s.pendErr = nil
	case s.pending != nil:
		buf, s.pending = s.pending, nil
	default:
		buf, _, err = s.Socket.Receive(timeout)
	}
	if err != nil {
		if errors.Is(err, oscnet.ErrTimeout) {
			return nil
		}
		if oe, ok := err.(*oscerr.Error); ok {
			s.ErrorHandler(oe)
			return err
		}
		s.ErrorHandler(oscerr.New(oscerr.Network, "", err))
		return err
	}
	elem, err := osc.Decode(buf)
	if err != nil {
		if oe, ok := err.(*oscerr.Error); ok {
			s.ErrorHandler(oe)
		}
		return err
	}
	switch e := elem.(type) {
	case osc.Message:
		s.Dispatcher.DispatchMessage(e)
	case osc.Bundle:
		s.Dispatcher.DispatchBundle(e)
	}
	return nil
}

// Stop closes the socket, which unblocks any outstanding Receive.
func (s *Server) Stop() error {
	s.stopping.Store(true)
	return s.Socket.Close()
}

func (s *Server) Stopping() bool { return s.stopping.Load() }

// Send is a convenience passthrough to the server's own socket.
func (s *Server) Send(buf []byte) error { return s.Socket.Send(buf) }
