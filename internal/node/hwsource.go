package node

/*------------------------------------------------------------------
 *
 * Purpose:	Hardware source node variant: one output pad, fed from the
 *		hardware driver collaborator's real-time callback. The
 *		callback thread and the graph's Process call are different
 *		threads; HWSource hands data between them via a single
 *		atomic pointer swap so neither side blocks or allocates in
 *		steady state.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"sync/atomic"

	"github.com/oscmex/engine/internal/audio"
	"github.com/oscmex/engine/internal/deviceio"
)

// HWSourceConfig configures a hardware source node.
type HWSourceConfig struct {
	DeviceName string
	Driver     deviceio.Driver
	Format     audio.Format
	Pool       *audio.Pool
}

type HWSource struct {
	*Base
	cfg    HWSourceConfig
	dev    deviceio.Device
	latest atomic.Pointer[audio.Buffer]
}

func NewHWSource(name string) *HWSource {
	n := &HWSource{}
	n.Base = NewBase(name, "hwsource", nil, []Pad{{Name: "out"}})
	n.DoConfigure = n.configure
	n.DoStart = n.start
	n.DoStop = n.stop
	n.DoProcess = n.process
	return n
}

func (n *HWSource) configure(cfg interface{}) error {
	c, ok := cfg.(HWSourceConfig)
	if !ok {
		return fmt.Errorf("hwsource %s: expected HWSourceConfig, got %T", n.Name(), cfg)
	}
	if c.Driver == nil || c.Pool == nil {
		return fmt.Errorf("hwsource %s: Driver and Pool are required", n.Name())
	}
	dev, err := c.Driver.Open(c.DeviceName)
	if err != nil {
		return fmt.Errorf("hwsource %s: opening device %q: %w", n.Name(), c.DeviceName, err)
	}
	n.cfg = c
	n.dev = dev
	n.outputs[0].Format = c.Format
	return nil
}

func (n *HWSource) start() error {
	n.dev.SetCallback(n.capture)
	return n.dev.Start()
}

func (n *HWSource) stop() error {
	return n.dev.Stop()
}

// capture runs on the driver's real-time thread: it copies the captured
// planar samples into a pooled buffer and atomically publishes it.
func (n *HWSource) capture(in [][]float32, _ [][]float32, frames int) {
	buf := n.cfg.Pool.Get(n.cfg.Format, frames)
	for ch := range buf.Planes {
		if ch >= len(in) {
			continue
		}
		encodeFloat32Plane(buf.Planes[ch], in[ch])
	}
	old := n.latest.Swap(buf)
	if old != nil {
		old.Release()
	}
}

// process hands the most recently captured buffer downstream. If the
// hardware callback hasn't produced anything yet, it hands a zeroed
// buffer rather than blocking the graph tick.
func (n *HWSource) process(tick Tick) error {
	buf := n.latest.Load()
	if buf == nil {
		tick.Outputs[0] = n.cfg.Pool.Get(n.cfg.Format, n.dev.BufferSize())
		return nil
	}
	buf.Retain()
	tick.Outputs[0] = buf
	return nil
}
