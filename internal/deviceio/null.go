package deviceio

/*------------------------------------------------------------------
 *
 * Purpose:	Null driver: a Driver/Device pair that never touches real
 *		hardware, for tests and for running the graph without a
 *		sound card. Start/Stop spin nothing; a caller can still
 *		pump frames through the callback with Tick for deterministic
 *		tests of the node/graph layers.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"

	"github.com/oscmex/engine/internal/audio"
)

type Null struct {
	Devices []DeviceInfo
}

func NewNull(devices ...DeviceInfo) *Null {
	if len(devices) == 0 {
		devices = []DeviceInfo{{Name: "null", InputCount: 2, OutputCount: 2, SampleRate: 48000, SampleFormat: audio.SampleFormatF32}}
	}
	return &Null{Devices: devices}
}

func (n *Null) ListDevices() ([]DeviceInfo, error) { return n.Devices, nil }

func (n *Null) Open(name string) (Device, error) {
	for _, d := range n.Devices {
		if d.Name == name {
			return &nullDevice{info: d}, nil
		}
	}
	return nil, fmt.Errorf("deviceio: null driver has no device %q", name)
}

type nullDevice struct {
	info    DeviceInfo
	cb      Callback
	running bool
}

func (d *nullDevice) SampleRate() int                  { return d.info.SampleRate }
func (d *nullDevice) BufferSize() int                  { return 128 }
func (d *nullDevice) SampleFormat() audio.SampleFormat { return d.info.SampleFormat }
func (d *nullDevice) InputCount() int                  { return d.info.InputCount }
func (d *nullDevice) OutputCount() int                 { return d.info.OutputCount }
func (d *nullDevice) SetCallback(cb Callback)           { d.cb = cb }
func (d *nullDevice) Start() error                      { d.running = true; return nil }
func (d *nullDevice) Stop() error                       { d.running = false; return nil }
func (d *nullDevice) Close() error                      { return nil }

// Tick lets a test drive the callback exactly like a real hardware
// interrupt would, without a background goroutine.
func (d *nullDevice) Tick(in, out [][]float32, frames int) {
	if d.running && d.cb != nil {
		d.cb(in, out, frames)
	}
}
