// Package discovery announces this engine's OSC listener over mDNS/DNS-SD
// so a controller on the local network can find it without a typed-in IP
// and port.
package discovery

/*------------------------------------------------------------------
 *
 * Purpose:	Announce "_osc._udp" via github.com/brutella/dnssd, a pure
 *		Go mDNS/DNS-SD responder requiring no system daemon. Announce
 *		returns once the service is registered; the responder itself
 *		runs in a background goroutine until ctx is canceled.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/brutella/dnssd"
)

const ServiceType = "_osc._udp"

// DefaultName returns "<hostname> OSC Engine", or a fixed fallback if the
// hostname can't be resolved.
func DefaultName() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "OSC Engine"
	}
	hostname, _, _ = strings.Cut(hostname, ".")
	return hostname + " OSC Engine"
}

// Announce registers name (or DefaultName() if empty) on the local network
// as an _osc._udp service listening on port, and starts responding to
// mDNS queries in a background goroutine until ctx is canceled. The
// returned stop func removes the registration; errors encountered after
// Announce returns are reported to onError rather than panicking the
// caller's goroutine.
func Announce(ctx context.Context, name string, port int, onError func(error)) (stop func(), err error) {
	if name == "" {
		name = DefaultName()
	}
	if onError == nil {
		onError = func(error) {}
	}

	cfg := dnssd.Config{Name: name, Type: ServiceType, Port: port}
	svc, err := dnssd.NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("discovery: creating service: %w", err)
	}

	responder, err := dnssd.NewResponder()
	if err != nil {
		return nil, fmt.Errorf("discovery: creating responder: %w", err)
	}
	handle, err := responder.Add(svc)
	if err != nil {
		return nil, fmt.Errorf("discovery: registering service: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	go func() {
		if err := responder.Respond(runCtx); err != nil && runCtx.Err() == nil {
			onError(fmt.Errorf("discovery: responder: %w", err))
		}
	}()

	return func() {
		responder.Remove(handle)
		cancel()
	}, nil
}
