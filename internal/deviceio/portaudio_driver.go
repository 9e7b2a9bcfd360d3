package deviceio

/*------------------------------------------------------------------
 *
 * Purpose:	Default Driver backed by github.com/gordonklaus/portaudio.
 *		Delegating to the PortAudio binding keeps the hardware
 *		boundary a single external collaborator rather than
 *		engine-owned cgo against each platform's sound API.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/oscmex/engine/internal/audio"
)

// PortAudioDriver implements Driver using the host's default PortAudio
// devices.
type PortAudioDriver struct {
	mu          sync.Mutex
	initialized bool
}

func NewPortAudioDriver() *PortAudioDriver {
	return &PortAudioDriver{}
}

func (d *PortAudioDriver) ensureInit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initialized {
		return nil
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("deviceio: portaudio init: %w", err)
	}
	d.initialized = true
	return nil
}

func (d *PortAudioDriver) ListDevices() ([]DeviceInfo, error) {
	if err := d.ensureInit(); err != nil {
		return nil, err
	}
	devs, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("deviceio: portaudio devices: %w", err)
	}
	out := make([]DeviceInfo, 0, len(devs))
	for _, pd := range devs {
		out = append(out, DeviceInfo{
			Name:         pd.Name,
			InputCount:   pd.MaxInputChannels,
			OutputCount:  pd.MaxOutputChannels,
			SampleRate:   int(pd.DefaultSampleRate),
			SampleFormat: audio.SampleFormatF32,
		})
	}
	return out, nil
}

func (d *PortAudioDriver) Open(name string) (Device, error) {
	if err := d.ensureInit(); err != nil {
		return nil, err
	}
	devs, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("deviceio: portaudio devices: %w", err)
	}
	var target *portaudio.DeviceInfo
	for _, pd := range devs {
		if pd.Name == name {
			target = pd
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("deviceio: no portaudio device named %q", name)
	}
	return &portAudioDevice{info: target}, nil
}

// portAudioDevice is a configured-but-not-yet-started PortAudio stream.
type portAudioDevice struct {
	info   *portaudio.DeviceInfo
	stream *portaudio.Stream
	cb     Callback

	sampleRate int
	bufferSize int
	inCount    int
	outCount   int

	inBufs  [][]float32
	outBufs [][]float32
}

func (d *portAudioDevice) SampleRate() int                    { return d.sampleRate }
func (d *portAudioDevice) BufferSize() int                    { return d.bufferSize }
func (d *portAudioDevice) SampleFormat() audio.SampleFormat   { return audio.SampleFormatF32 }
func (d *portAudioDevice) InputCount() int                    { return d.inCount }
func (d *portAudioDevice) OutputCount() int                   { return d.outCount }

func (d *portAudioDevice) SetCallback(cb Callback) { d.cb = cb }

func (d *portAudioDevice) Start() error {
	d.sampleRate = int(d.info.DefaultSampleRate)
	d.bufferSize = 256
	d.inCount = d.info.MaxInputChannels
	d.outCount = d.info.MaxOutputChannels

	d.inBufs = make([][]float32, d.inCount)
	d.outBufs = make([][]float32, d.outCount)
	for i := range d.inBufs {
		d.inBufs[i] = make([]float32, d.bufferSize)
	}
	for i := range d.outBufs {
		d.outBufs[i] = make([]float32, d.bufferSize)
	}

	params := portaudio.StreamParameters{
		SampleRate:      d.info.DefaultSampleRate,
		FramesPerBuffer: d.bufferSize,
	}
	params.Input.Device = d.info
	params.Input.Channels = d.inCount
	params.Input.Latency = d.info.DefaultLowInputLatency
	params.Output.Device = d.info
	params.Output.Channels = d.outCount
	params.Output.Latency = d.info.DefaultLowOutputLatency

	stream, err := portaudio.OpenStream(params, func(in, out []float32) {
		deinterleave(in, d.inBufs, d.inCount)
		if d.cb != nil {
			d.cb(d.inBufs, d.outBufs, d.bufferSize)
		}
		interleave(d.outBufs, out, d.outCount)
	})
	if err != nil {
		return fmt.Errorf("deviceio: open portaudio stream: %w", err)
	}
	d.stream = stream
	return d.stream.Start()
}

func (d *portAudioDevice) Stop() error {
	if d.stream == nil {
		return nil
	}
	return d.stream.Stop()
}

func (d *portAudioDevice) Close() error {
	if d.stream == nil {
		return nil
	}
	return d.stream.Close()
}

func deinterleave(src []float32, dst [][]float32, channels int) {
	if channels == 0 {
		return
	}
	frames := len(src) / channels
	for ch := 0; ch < channels; ch++ {
		for f := 0; f < frames && f < len(dst[ch]); f++ {
			dst[ch][f] = src[f*channels+ch]
		}
	}
}

func interleave(src [][]float32, dst []float32, channels int) {
	if channels == 0 {
		return
	}
	frames := len(dst) / channels
	for ch := 0; ch < channels; ch++ {
		for f := 0; f < frames && f < len(src[ch]); f++ {
			dst[f*channels+ch] = src[ch][f]
		}
	}
}
