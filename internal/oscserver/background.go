package oscserver

/*------------------------------------------------------------------
 *
 * Purpose:	Background server variant: runs receive() in a loop on its
 *		own goroutine, holds its socket until Stop() is requested,
 *		and invokes user-supplied init/cleanup hooks exactly once
 *		each on that goroutine.
 *
 *---------------------------------------------------------------*/

import (
	"time"

	"github.com/oscmex/engine/internal/oscnet"
)

// BackgroundServer drives a Server from a dedicated goroutine.
type BackgroundServer struct {
	*Server
	Init    func()
	Cleanup func()
	Timeout time.Duration

	done chan struct{}
}

// NewBackground wraps srv with the background lifecycle. Timeout bounds
// each Receive poll, so Stop joins within one tick of the outstanding
// receive.
func NewBackground(srv *Server, timeout time.Duration) *BackgroundServer {
	if timeout <= 0 {
		timeout = 200 * time.Millisecond
	}
	return &BackgroundServer{Server: srv, Timeout: timeout, done: make(chan struct{})}
}

// Run starts the loop and blocks until Stop is called or the socket
// fails fatally. Intended to be launched with `go bg.Run()`.
func (b *BackgroundServer) Run() {
	if b.Init != nil {
		b.Init()
	}
	defer func() {
		if b.Cleanup != nil {
			b.Cleanup()
		}
		close(b.done)
	}()
	for !b.Stopping() {
		_ = b.Receive(b.Timeout)
		// A remote hangup or fatal socket error ends the loop even
		// without an explicit Stop; a stopped listener must not spin.
		if st := b.Socket.State(); st == oscnet.Closed || st == oscnet.Failed {
			return
		}
	}
}

// Stop requests shutdown: sets the atomic flag and closes the socket to
// unblock the outstanding receive, then waits for Run to return.
func (b *BackgroundServer) Stop() error {
	err := b.Server.Stop()
	<-b.done
	return err
}
