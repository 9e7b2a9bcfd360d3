// Package bridge is the control-plane coupling between the OSC dispatcher
// and the audio graph: inbound addresses become graph.Update deliveries,
// and selected graph-side changes mirror outbound to an external mixing
// console. Neither direction ever calls directly into a node from the
// dispatch goroutine; everything inbound goes through the graph's own
// bounded parameter queue.
package bridge

/*------------------------------------------------------------------
 *
 * Purpose:	Address scheme: /filter/<node>/<filter>/<key> f <value>
 *		sets a filter parameter; outbound mirroring resends the same
 *		shape (or a console-specific mapping) to a second transport
 *		whenever a value changes. Registration happens once, against
 *		a dispatcher.Registry, at startup.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"strings"

	"github.com/oscmex/engine/internal/dispatcher"
	"github.com/oscmex/engine/internal/graph"
	"github.com/oscmex/engine/internal/osc"
	"github.com/oscmex/engine/internal/oscerr"
)

// OutboundSink delivers a mirrored message to an external console; it is
// usually an oscserver.Server.Send-shaped closure but is kept as a plain
// function type here so bridge doesn't need to import oscnet/oscserver.
type OutboundSink func(osc.Message) error

// Bridge owns the inbound address-to-parameter mapping and, optionally, an
// outbound mirror sink.
type Bridge struct {
	graph    *graph.Graph
	onError  oscerr.Handler
	outbound OutboundSink
	mirror   map[string]string // node/filter/key -> outbound address prefix
}

func New(g *graph.Graph, onError oscerr.Handler) *Bridge {
	if onError == nil {
		onError = oscerr.Discard
	}
	return &Bridge{graph: g, onError: onError, mirror: map[string]string{}}
}

// SetOutbound installs the sink used by MirrorParameter-registered keys.
func (b *Bridge) SetOutbound(sink OutboundSink) { b.outbound = sink }

// RegisterInbound wires /filter/<node>/<filter>/<key> messages with one
// int32, int64, float32 or float64 argument into the graph's parameter
// queue.
func (b *Bridge) RegisterInbound(reg *dispatcher.Registry) (dispatcher.MethodID, error) {
	return reg.AddMethod("/filter/*/*/*", "", b.handleInbound)
}

func (b *Bridge) handleInbound(msg osc.Message) {
	node, filter, key, ok := parseFilterAddress(msg.Address)
	if !ok {
		b.onError(oscerr.New(oscerr.AddressError, msg.Address, fmt.Errorf("bridge: address does not match /filter/<node>/<filter>/<key>")))
		return
	}
	value, ok := floatArg(msg.Args)
	if !ok {
		b.onError(oscerr.New(oscerr.TypeMismatch, msg.Address, fmt.Errorf("bridge: expected a single numeric argument")))
		return
	}
	b.graph.Params().Push(graph.Update{Node: node, Filter: filter, Key: key, Value: value})

	if prefix, mirrored := b.mirror[node+"/"+filter+"/"+key]; mirrored && b.outbound != nil {
		out := osc.NewMessage(prefix, osc.Float32(float32(value)))
		if err := b.outbound(out); err != nil {
			b.onError(oscerr.New(oscerr.Network, prefix, err))
		}
	}
}

// MirrorParameter arranges for future updates to node/filter/key to also be
// resent to outboundAddress on the outbound sink, e.g. to keep a physical
// mixing console's motorized fader in sync with an OSC-driven change.
func (b *Bridge) MirrorParameter(node, filter, key, outboundAddress string) {
	b.mirror[node+"/"+filter+"/"+key] = outboundAddress
}

func parseFilterAddress(addr string) (node, filter, key string, ok bool) {
	parts := strings.Split(strings.TrimPrefix(addr, "/"), "/")
	if len(parts) != 4 || parts[0] != "filter" {
		return "", "", "", false
	}
	return parts[1], parts[2], parts[3], true
}

func floatArg(args []osc.Value) (float64, bool) {
	if len(args) != 1 {
		return 0, false
	}
	switch args[0].Tag {
	case osc.TagFloat32:
		return float64(args[0].Raw.(float32)), true
	case osc.TagFloat64:
		return args[0].Raw.(float64), true
	case osc.TagInt32:
		return float64(args[0].Raw.(int32)), true
	case osc.TagInt64:
		return float64(args[0].Raw.(int64)), true
	default:
		return 0, false
	}
}
