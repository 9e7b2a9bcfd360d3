// Package graph assembles node.Node instances into a directed topology,
// runs them tick by tick in topological order, and carries the bounded
// parameter-delivery queue that couples OSC dispatch to the audio thread
// without ever blocking it.
package graph

/*------------------------------------------------------------------
 *
 * Purpose:	{ add_node, connect(out_node, out_pad, in_node, in_pad),
 *		start, stop, tick }. Edges are validated for format
 *		compatibility at connect time, not at first tick; the
 *		topological order is computed once per connect and reused
 *		until the topology changes again.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"sync"

	"github.com/oscmex/engine/internal/audio"
	"github.com/oscmex/engine/internal/node"
	"github.com/oscmex/engine/internal/oscerr"
)

// Edge connects one node's output pad to another's input pad.
type Edge struct {
	FromNode, FromPad string
	ToNode, ToPad     string
}

type entry struct {
	n            node.Node
	tick         node.Tick
	inEdges      []resolvedEdge // which output feeds each input pad, in pad order
	outConsumers []int          // how many input pads read each output pad
	faulted      bool
}

type resolvedEdge struct {
	srcNode string
	srcPad  int
}

// Graph owns a set of named nodes, their connections, and the derived
// topological tick order.
type Graph struct {
	mu       sync.Mutex
	nodes    map[string]*entry
	order    []string // topological order, recomputed on AddNode/Connect
	onError  oscerr.Handler
	params   *ParamQueue
	running  bool
}

func New(onError oscerr.Handler) *Graph {
	if onError == nil {
		onError = oscerr.Discard
	}
	return &Graph{
		nodes:   make(map[string]*entry),
		onError: onError,
		params:  NewParamQueue(256, onError),
	}
}

// AddNode registers n under its own Name(). Names must be unique.
func (g *Graph) AddNode(n node.Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.nodes[n.Name()]; exists {
		return fmt.Errorf("graph: node %q already registered", n.Name())
	}
	g.nodes[n.Name()] = &entry{
		n:            n,
		tick:         node.Tick{Inputs: make([]*audio.Buffer, len(n.InputPads())), Outputs: make([]*audio.Buffer, len(n.OutputPads()))},
		inEdges:      make([]resolvedEdge, len(n.InputPads())),
		outConsumers: make([]int, len(n.OutputPads())),
	}
	for i := range g.nodes[n.Name()].inEdges {
		g.nodes[n.Name()].inEdges[i] = resolvedEdge{srcPad: -1}
	}
	return g.recomputeOrderLocked()
}

// Connect wires fromNode's fromPad output to toNode's toPad input. Pad
// indices are resolved by name against each node's declared pad list.
func (g *Graph) Connect(fromNode, fromPad, toNode, toPad string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	src, ok := g.nodes[fromNode]
	if !ok {
		return fmt.Errorf("graph: unknown node %q", fromNode)
	}
	dst, ok := g.nodes[toNode]
	if !ok {
		return fmt.Errorf("graph: unknown node %q", toNode)
	}
	srcIdx := padIndex(src.n.OutputPads(), fromPad)
	if srcIdx < 0 {
		return fmt.Errorf("graph: node %q has no output pad %q", fromNode, fromPad)
	}
	dstIdx := padIndex(dst.n.InputPads(), toPad)
	if dstIdx < 0 {
		return fmt.Errorf("graph: node %q has no input pad %q", toNode, toPad)
	}
	srcFmt := src.n.OutputPads()[srcIdx].Format
	dstFmt := dst.n.InputPads()[dstIdx].Format
	if !srcFmt.Equal(dstFmt) {
		return oscerr.New(oscerr.ConfigError, toNode, fmt.Errorf("graph: pad format mismatch on %s/%s -> %s/%s: %s vs %s",
			fromNode, fromPad, toNode, toPad, srcFmt, dstFmt))
	}
	dst.inEdges[dstIdx] = resolvedEdge{srcNode: fromNode, srcPad: srcIdx}
	return g.recomputeOrderLocked()
}

func padIndex(pads []node.Pad, name string) int {
	for i, p := range pads {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// recomputeOrderLocked runs Kahn's algorithm over the current edge set and
// reports a cycle as an error rather than silently truncating the order.
func (g *Graph) recomputeOrderLocked() error {
	indeg := make(map[string]int, len(g.nodes))
	deps := make(map[string][]string, len(g.nodes))
	for name, e := range g.nodes {
		indeg[name] = 0
		for i := range e.outConsumers {
			e.outConsumers[i] = 0
		}
	}
	for name, e := range g.nodes {
		seen := map[string]bool{}
		for _, edge := range e.inEdges {
			if edge.srcPad < 0 {
				continue
			}
			g.nodes[edge.srcNode].outConsumers[edge.srcPad]++
			if seen[edge.srcNode] {
				continue
			}
			seen[edge.srcNode] = true
			deps[edge.srcNode] = append(deps[edge.srcNode], name)
			indeg[name]++
		}
	}

	var queue, order []string
	for name, d := range indeg {
		if d == 0 {
			queue = append(queue, name)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, dep := range deps[n] {
			indeg[dep]--
			if indeg[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	if len(order) != len(g.nodes) {
		return fmt.Errorf("graph: connection topology contains a cycle")
	}
	g.order = order
	return nil
}

// Start configures is assumed already done by the caller; Start only
// transitions nodes Configured -> Running, in topological order so a
// downstream node never starts before its upstream source. It refuses
// if any node's declared input pad is still unconnected.
func (g *Graph) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for name, e := range g.nodes {
		for i, edge := range e.inEdges {
			if edge.srcPad < 0 {
				return oscerr.New(oscerr.ConfigError, name,
					fmt.Errorf("graph: input pad %q of node %q is unconnected", e.n.InputPads()[i].Name, name))
			}
		}
	}
	for _, name := range g.order {
		if err := g.nodes[name].n.Start(); err != nil {
			return fmt.Errorf("graph: starting %q: %w", name, err)
		}
	}
	g.running = true
	return nil
}

// Stop transitions every node Running -> Stopped in reverse topological
// order, so a sink stops before its upstream source does. Stop is
// idempotent: nodes already Stopped are left alone by node.Base.Stop.
func (g *Graph) Stop() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	var firstErr error
	for i := len(g.order) - 1; i >= 0; i-- {
		name := g.order[i]
		if err := g.nodes[name].n.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("graph: stopping %q: %w", name, err)
		}
	}
	g.running = false
	return firstErr
}

// Params returns the graph's parameter-delivery queue, the only path by
// which an OSC dispatch goroutine may influence a running node.
func (g *Graph) Params() *ParamQueue { return g.params }

// Tick drains pending parameter updates, then runs every node's process()
// exactly once in topological order, wiring each node's resolved input
// edges to its upstream's just-produced outputs. A node whose process()
// fails is faulted in place: its outputs are zero-filled for downstream
// consumers and the graph keeps ticking every other node.
func (g *Graph) Tick() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.params.Apply(func(u Update) {
		if fn, ok := g.nodes[u.Node]; ok {
			if p, ok := fn.n.(ParamTarget); ok {
				if err := p.UpdateParameter(u.Filter, u.Key, u.Value); err != nil {
					g.onError(&oscerr.Error{Kind: oscerr.RuntimeError, Origin: u.Node, Err: err})
				}
			}
		}
	})

	for _, name := range g.order {
		e := g.nodes[name]
		for i, edge := range e.inEdges {
			if edge.srcPad < 0 {
				e.tick.Inputs[i] = nil
				continue
			}
			src := g.nodes[edge.srcNode]
			e.tick.Inputs[i] = src.tick.Outputs[edge.srcPad]
		}
		if e.faulted {
			g.zeroOutputs(e)
			releaseInputs(e.tick.Inputs)
			continue
		}
		g.zeroOutputs(e) // a node that writes nothing this tick yields silence, not last tick's buffer
		err := e.n.Process(e.tick)
		if err != nil {
			e.faulted = true
			if f, ok := e.n.(interface{ Fault() }); ok {
				f.Fault()
			}
			g.zeroOutputs(e)
			g.onError(&oscerr.Error{Kind: oscerr.RuntimeError, Origin: name, Err: err})
		}
		releaseInputs(e.tick.Inputs)
		if err != nil {
			continue
		}
		// Hand each output off to its consumers: one reference per reader,
		// then drop the producer's own reference. An unconnected output
		// goes straight back to the pool.
		for i, out := range e.tick.Outputs {
			if out == nil {
				continue
			}
			for c := 0; c < e.outConsumers[i]; c++ {
				out.Retain()
			}
			out.Release()
		}
	}
}

func (g *Graph) zeroOutputs(e *entry) {
	for i := range e.tick.Outputs {
		e.tick.Outputs[i] = nil
	}
}

func releaseInputs(inputs []*audio.Buffer) {
	for _, b := range inputs {
		if b != nil {
			b.Release()
		}
	}
}

// ParamTarget is implemented by node variants that accept runtime
// parameter updates (currently just the filter node); nodes that don't
// implement it simply never receive queue deliveries.
type ParamTarget interface {
	UpdateParameter(filterName, key string, value float64) error
}
