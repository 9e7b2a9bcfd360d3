package node

/*------------------------------------------------------------------
 *
 * Purpose:	Hardware sink node variant: one input pad, drained into the
 *		hardware driver collaborator's real-time callback. Mirrors
 *		HWSource's atomic hand-off in the other direction, and
 *		optionally asserts a GPIOKeyer enable line across Start/Stop
 *		for an amplifier or relay gated on the sink actually running.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"sync/atomic"

	"github.com/oscmex/engine/internal/audio"
	"github.com/oscmex/engine/internal/deviceio"
)

// HWSinkConfig configures a hardware sink node.
type HWSinkConfig struct {
	DeviceName string
	Driver     deviceio.Driver
	Format     audio.Format
	Pool       *audio.Pool
	Keyer      *deviceio.GPIOKeyer // optional
}

type HWSink struct {
	*Base
	cfg    HWSinkConfig
	dev    deviceio.Device
	latest atomic.Pointer[audio.Buffer]
}

func NewHWSink(name string) *HWSink {
	n := &HWSink{}
	n.Base = NewBase(name, "hwsink", []Pad{{Name: "in"}}, nil)
	n.DoConfigure = n.configure
	n.DoStart = n.start
	n.DoStop = n.stop
	n.DoProcess = n.process
	return n
}

func (n *HWSink) configure(cfg interface{}) error {
	c, ok := cfg.(HWSinkConfig)
	if !ok {
		return fmt.Errorf("hwsink %s: expected HWSinkConfig, got %T", n.Name(), cfg)
	}
	if c.Driver == nil || c.Pool == nil {
		return fmt.Errorf("hwsink %s: Driver and Pool are required", n.Name())
	}
	dev, err := c.Driver.Open(c.DeviceName)
	if err != nil {
		return fmt.Errorf("hwsink %s: opening device %q: %w", n.Name(), c.DeviceName, err)
	}
	n.cfg = c
	n.dev = dev
	n.inputs[0].Format = c.Format
	return nil
}

func (n *HWSink) start() error {
	n.dev.SetCallback(n.render)
	if err := n.dev.Start(); err != nil {
		return err
	}
	if n.cfg.Keyer != nil {
		return n.cfg.Keyer.Assert()
	}
	return nil
}

func (n *HWSink) stop() error {
	if err := n.dev.Stop(); err != nil {
		return err
	}
	if n.cfg.Keyer != nil {
		return n.cfg.Keyer.Release()
	}
	return nil
}

// render runs on the driver's real-time thread, copying the most recently
// delivered buffer into the hardware's output planes. Silence plays only
// until process() delivers its first buffer; after that, the latest buffer
// is replayed whenever no newer one has arrived.
func (n *HWSink) render(_ [][]float32, out [][]float32, frames int) {
	buf := n.latest.Load()
	if buf == nil {
		for ch := range out {
			clearF32(out[ch][:frames])
		}
		return
	}
	for ch := range out {
		if ch >= len(buf.Planes) {
			clearF32(out[ch][:frames])
			continue
		}
		decodeFloat32Plane(out[ch][:frames], buf.Planes[ch])
	}
}

func (n *HWSink) process(tick Tick) error {
	in := tick.Inputs[0]
	if in == nil {
		return nil
	}
	in.Retain()
	old := n.latest.Swap(in)
	if old != nil {
		old.Release()
	}
	return nil
}

func clearF32(s []float32) {
	for i := range s {
		s[i] = 0
	}
}
