// Package node implements the state machine and pad contract shared by
// every node variant (hardware source/sink, file source/sink, filter),
// plus the variants themselves.
package node

/*------------------------------------------------------------------
 *
 * Purpose:	Node state machine:
 *
 *		Unconfigured --configure--> Configured --start--> Running
 *		                                ^                    |
 *		                                +-------stop---------+
 *		any state, on fatal error --> Faulted (terminal until reconfigure)
 *
 *		configure validates parameters and acquires external
 *		resources; start resets internal state; stop releases
 *		transient state but preserves configuration; process reads
 *		input pads, writes output pads, and must not allocate.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"sync"

	"github.com/oscmex/engine/internal/audio"
)

// State is a node's position in the lifecycle state machine.
type State int

const (
	Unconfigured State = iota
	Configured
	Running
	Stopped
	Faulted
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Configured:
		return "configured"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	case Faulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Pad is one input or output endpoint of a node. Format is stamped by the
// variant's configure step; the graph compares the two formats of an edge
// when the pads are connected.
type Pad struct {
	Name   string
	Format audio.Format
}

// Node is the capability every variant implements. Implementations embed
// *Base to get the state machine and pad bookkeeping for free and only
// need to provide the variant-specific configure/start/stop/process
// behavior by overriding the corresponding Do* hooks.
type Node interface {
	Name() string
	Kind() string
	State() State
	InputPads() []Pad
	OutputPads() []Pad
	Configure(cfg interface{}) error
	Start() error
	Stop() error
	Process(tick Tick) error
}

// Tick carries the inputs available to a node for one graph tick and
// collects the outputs it produces; the graph runtime allocates the
// slices once per topology change, not per tick.
type Tick struct {
	Inputs  []*audio.Buffer
	Outputs []*audio.Buffer
}

// Base implements the state machine and is embedded by every concrete
// node variant. It is not itself a complete Node; variants supply
// DoConfigure/DoStart/DoStop/DoProcess.
type Base struct {
	name    string
	kind    string
	inputs  []Pad
	outputs []Pad

	mu    sync.Mutex
	state State

	DoConfigure func(cfg interface{}) error
	DoStart     func() error
	DoStop      func() error
	DoProcess   func(tick Tick) error
}

func NewBase(name, kind string, inputs, outputs []Pad) *Base {
	return &Base{name: name, kind: kind, inputs: inputs, outputs: outputs, state: Unconfigured}
}

func (b *Base) Name() string      { return b.name }
func (b *Base) Kind() string      { return b.kind }
func (b *Base) InputPads() []Pad  { return b.inputs }
func (b *Base) OutputPads() []Pad { return b.outputs }

func (b *Base) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Configure validates parameters and acquires external resources.
// configure(X); configure(X) leaves the node in the same state as a
// single configure(X): repeat calls are allowed from Unconfigured or
// Configured and simply redo the variant's setup.
func (b *Base) Configure(cfg interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Running {
		return fmt.Errorf("node %s: cannot configure while running", b.name)
	}
	if b.DoConfigure != nil {
		if err := b.DoConfigure(cfg); err != nil {
			b.state = Faulted
			return err
		}
	}
	b.state = Configured
	return nil
}

// Start resets internal state and transitions Configured -> Running.
func (b *Base) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != Configured && b.state != Stopped {
		return fmt.Errorf("node %s: start requires Configured or Stopped, got %s", b.name, b.state)
	}
	if b.DoStart != nil {
		if err := b.DoStart(); err != nil {
			b.state = Faulted
			return err
		}
	}
	b.state = Running
	return nil
}

// Stop releases transient state but preserves configuration. stop; stop
// is equivalent to a single stop: calling Stop when already Stopped (or
// never started) is a no-op.
func (b *Base) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != Running {
		return nil
	}
	if b.DoStop != nil {
		if err := b.DoStop(); err != nil {
			b.state = Faulted
			return err
		}
	}
	b.state = Stopped
	return nil
}

// Process must only be called while Running; the graph runtime enforces
// this by construction (it only calls Process on nodes it has started).
func (b *Base) Process(tick Tick) error {
	if b.State() != Running {
		return fmt.Errorf("node %s: process called outside Running (%s)", b.name, b.State())
	}
	if b.DoProcess == nil {
		return nil
	}
	return b.DoProcess(tick)
}

// Fault marks the node Faulted from any state, terminal until a fresh
// Configure call. Used by the graph runtime on a process() error.
func (b *Base) Fault() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = Faulted
}
