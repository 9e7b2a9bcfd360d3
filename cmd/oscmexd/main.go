package main

/*------------------------------------------------------------------
 *
 * Purpose:	Main program for oscmexd, which includes:
 *
 *			A graph of audio nodes (hardware/file sources and
 *			sinks, filter processors) assembled from a YAML
 *			descriptor.
 *			An OSC server accepting control messages on a UDP
 *			socket; the --listen address is always bound as UDP,
 *			whatever scheme it names.
 *			A control bridge mapping OSC addresses onto graph
 *			parameter updates. --mirror-to installs an outbound
 *			sink on the bridge, but no parameter is registered
 *			for mirroring here, so nothing is sent on it.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/oscmex/engine/internal/audio"
	"github.com/oscmex/engine/internal/bridge"
	"github.com/oscmex/engine/internal/config"
	"github.com/oscmex/engine/internal/deviceio"
	"github.com/oscmex/engine/internal/discovery"
	"github.com/oscmex/engine/internal/dispatcher"
	"github.com/oscmex/engine/internal/osc"
	"github.com/oscmex/engine/internal/oscerr"
	"github.com/oscmex/engine/internal/oscnet"
	"github.com/oscmex/engine/internal/oscserver"
)

// Set at build time via `-ldflags "-X 'main.buildVersion=X'"`.
var buildVersion string

const exitSuccess = 0
const exitInitFailure = 1
const exitRuntimeFailure = 2

/*-------------------------------------------------------------------
 *
 * Name:	main
 *
 * Purpose:	Entry point for the audio engine daemon.
 *
 * Inputs:	Command line arguments. See usage message for details.
 *
 * Outputs:	Exit code 0 on a clean shutdown, 1 if startup failed, 2 if
 *		a runtime failure forced an early exit.
 *
 *--------------------------------------------------------------------*/
func main() {
	os.Exit(run())
}

func run() int {
	var (
		graphFile  = pflag.StringP("graph", "g", "oscmexd.yaml", "Graph descriptor file.")
		listenAddr = pflag.StringP("listen", "l", "osc.udp://0.0.0.0:9000/", "OSC control endpoint to listen on.")
		outAddr    = pflag.StringP("mirror-to", "m", "", "OSC endpoint to mirror outbound parameter changes to, or empty to disable.")
		announce   = pflag.BoolP("announce", "a", true, "Advertise the OSC listener over mDNS/DNS-SD.")
		announceAs = pflag.String("announce-name", "", "Service name to advertise, or empty for a hostname-derived default.")
		verbose    = pflag.BoolP("verbose", "v", false, "Enable debug logging.")
		version    = pflag.BoolP("version", "V", false, "Print version and exit.")
	)
	pflag.Parse()

	logger := log.New(os.Stderr)
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if *version {
		fmt.Printf("oscmexd %s\n", versionString())
		return exitSuccess
	}

	onError := func(e *oscerr.Error) {
		logger.Error("runtime error", "kind", e.Kind, "origin", e.Origin, "err", e.Err)
	}

	doc, err := config.Load(*graphFile)
	if err != nil {
		logger.Error("loading graph", "err", err)
		return exitInitFailure
	}

	pool := audio.NewPool()
	driver := deviceio.NewPortAudioDriver()
	g, err := config.Build(doc, driver, pool, onError)
	if err != nil {
		logger.Error("building graph", "err", err)
		return exitInitFailure
	}

	addr, err := oscnet.ParseAddress(*listenAddr)
	if err != nil {
		logger.Error("parsing listen address", "err", err)
		return exitInitFailure
	}
	sock, err := oscnet.ListenUDP(addr)
	if err != nil {
		logger.Error("binding listen address", "addr", addr, "err", err)
		return exitInitFailure
	}

	d := dispatcher.New(onError)
	defer d.Close()

	br := bridge.New(g, onError)
	if *outAddr != "" {
		outA, err := oscnet.ParseAddress(*outAddr)
		if err != nil {
			logger.Error("parsing mirror address", "err", err)
			return exitInitFailure
		}
		outSock, err := oscnet.DialUDP(outA)
		if err != nil {
			logger.Error("dialing mirror address", "err", err)
			return exitInitFailure
		}
		defer outSock.Close()
		br.SetOutbound(func(msg osc.Message) error {
			buf, err := osc.Encode(msg)
			if err != nil {
				return err
			}
			return outSock.Send(buf)
		})
	}
	if _, err := br.RegisterInbound(d.Registry); err != nil {
		logger.Error("registering control bridge", "err", err)
		return exitInitFailure
	}

	srv := oscserver.New(sock, d, onError)
	bg := oscserver.NewBackground(srv, 200*time.Millisecond)
	bg.Init = func() { logger.Info("osc server listening", "addr", addr) }

	// The graph must already be running before the first parameter update
	// can possibly arrive.
	if err := g.Start(); err != nil {
		logger.Error("starting graph", "err", err)
		sock.Close()
		return exitInitFailure
	}
	go bg.Run()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var stopAnnounce func()
	if *announce && addr.Scheme == oscnet.SchemeUDP {
		stopAnnounce, err = discovery.Announce(ctx, *announceAs, addr.Port, func(err error) {
			logger.Error("mDNS discovery", "err", err)
		})
		if err != nil {
			logger.Warn("mDNS announce failed, continuing without it", "err", err)
		} else {
			defer stopAnnounce()
			logger.Info("advertising via mDNS", "type", discovery.ServiceType)
		}
	}

	tickerDone := make(chan struct{})
	go tickLoop(ctx, g, tickerDone)

	logger.Info("oscmexd running", "version", versionString())
	<-ctx.Done()
	logger.Info("shutting down")

	<-tickerDone
	exitCode := exitSuccess
	if err := g.Stop(); err != nil {
		logger.Error("stopping graph", "err", err)
		exitCode = exitRuntimeFailure
	}
	if err := bg.Stop(); err != nil {
		logger.Error("stopping osc server", "err", err)
		exitCode = exitRuntimeFailure
	}

	return exitCode
}

// tickLoop drives the graph's process() sweep at a fixed rate until ctx is
// canceled. This free-running ticker is the only thing that ticks the
// graph, hardware nodes included: device callbacks exchange buffers with
// the hardware nodes but never call Tick.
func tickLoop(ctx context.Context, g interface{ Tick() }, done chan struct{}) {
	defer close(done)
	const tickInterval = 20 * time.Millisecond
	t := time.NewTicker(tickInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			g.Tick()
		}
	}
}

func versionString() string {
	if buildVersion != "" {
		return buildVersion
	}
	return "dev"
}
