package node

/*------------------------------------------------------------------
 *
 * Purpose:	Filter processor node variant: one input pad, one output
 *		pad, wired to an external filterchain.Chain. UpdateParameter
 *		forwards straight to the chain's own SendCommand, which
 *		stores the value under the chain's short mutex, coalescing
 *		by key, and applies it on the next process() call. The graph
 *		calls UpdateParameter from Tick while draining its parameter
 *		queue, not from the OSC dispatch goroutine.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"

	"github.com/oscmex/engine/internal/audio"
	"github.com/oscmex/engine/internal/filterchain"
)

// FilterConfig configures a filter processor node.
type FilterConfig struct {
	Spec       string
	Format     audio.Format
	BufferSize int
	Pool       *audio.Pool
}

type Filter struct {
	*Base
	cfg   FilterConfig
	chain filterchain.Chain
}

func NewFilter(name string) *Filter {
	n := &Filter{}
	n.Base = NewBase(name, "filter", []Pad{{Name: "in"}}, []Pad{{Name: "out"}})
	n.DoConfigure = n.configure
	n.DoStop = n.stop
	n.DoProcess = n.process
	return n
}

func (n *Filter) configure(cfg interface{}) error {
	c, ok := cfg.(FilterConfig)
	if !ok {
		return fmt.Errorf("filter %s: expected FilterConfig, got %T", n.Name(), cfg)
	}
	if c.Pool == nil {
		return fmt.Errorf("filter %s: Pool is required", n.Name())
	}
	chain, err := filterchain.Build(c.Spec, c.Format, c.BufferSize)
	if err != nil {
		return fmt.Errorf("filter %s: building chain %q: %w", n.Name(), c.Spec, err)
	}
	if n.chain != nil {
		n.chain.Free()
	}
	n.cfg = c
	n.chain = chain
	n.inputs[0].Format = c.Format
	n.outputs[0].Format = c.Format
	return nil
}

func (n *Filter) stop() error {
	return n.chain.Reset()
}

func (n *Filter) process(tick Tick) error {
	in := tick.Inputs[0]
	if in == nil {
		return nil
	}
	out, err := n.chain.Process(in, n.cfg.Pool)
	if err != nil {
		return fmt.Errorf("filter %s: %w", n.Name(), err)
	}
	tick.Outputs[0] = out
	return nil
}

// UpdateParameter forwards a parameter update to the underlying chain
// without blocking the graph's process() call on any reconfiguration
// lock; the chain itself is responsible for coalescing by key.
func (n *Filter) UpdateParameter(filterName, key string, value float64) error {
	if n.chain == nil {
		return fmt.Errorf("filter %s: not configured", n.Name())
	}
	return n.chain.SendCommand(filterName, key, value)
}

// Introspect exposes the underlying chain's sub-filter list.
func (n *Filter) Introspect() []filterchain.StageInfo {
	if n.chain == nil {
		return nil
	}
	return n.chain.Introspect()
}
