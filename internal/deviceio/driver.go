// Package deviceio defines the hardware driver collaborator interface
// and a portaudio-backed default implementation, plus a Null fake for
// tests that never touch real hardware. The driver itself (device
// enumeration, ASIO-specific behavior) is an external collaborator whose
// internals this engine does not prescribe; only the interface boundary
// is in scope.
package deviceio

/*------------------------------------------------------------------
 *
 * Purpose:	{ list_devices, open(name), sample_rate, buffer_size,
 *		sample_format, input_count, output_count, set_callback,
 *		start, stop }. The driver runs the callback on a
 *		real-time thread; this engine's audio thread IS that
 *		callback, so Callback must not allocate or block.
 *
 *---------------------------------------------------------------*/

import "github.com/oscmex/engine/internal/audio"

// DeviceInfo describes one enumerable device. Device enumeration itself
// is left to the backend; this type exists only so a Driver CAN expose a
// list when its concrete backend supports it.
type DeviceInfo struct {
	Name         string
	InputCount   int
	OutputCount  int
	SampleRate   int
	SampleFormat audio.SampleFormat
}

// Callback is invoked once per hardware tick with planar input buffers
// (one per input channel) and planar output buffers to fill (one per
// output channel), frames long. It runs on the real-time thread and must
// not allocate, lock, or perform I/O.
type Callback func(in [][]float32, out [][]float32, frames int)

// Device is an opened, not-yet-started hardware I/O stream.
type Device interface {
	SampleRate() int
	BufferSize() int
	SampleFormat() audio.SampleFormat
	InputCount() int
	OutputCount() int
	SetCallback(cb Callback)
	Start() error
	Stop() error
	Close() error
}

// Driver is the external hardware collaborator boundary.
type Driver interface {
	ListDevices() ([]DeviceInfo, error)
	Open(name string) (Device, error)
}
