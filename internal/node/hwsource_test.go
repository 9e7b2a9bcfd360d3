package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscmex/engine/internal/audio"
	"github.com/oscmex/engine/internal/deviceio"
)

func Test_hwsource_process_emits_silence_before_first_capture(t *testing.T) {
	pool := audio.NewPool()
	driver := deviceio.NewNull(deviceio.DeviceInfo{Name: "null", InputCount: 1, OutputCount: 1, SampleRate: 48000, SampleFormat: audio.SampleFormatF32})
	src := NewHWSource("src")

	require.NoError(t, src.Configure(HWSourceConfig{DeviceName: "null", Driver: driver, Format: fileTestFormat, Pool: pool}))
	require.NoError(t, src.Start())

	tick := Tick{Outputs: make([]*audio.Buffer, 1)}
	require.NoError(t, src.Process(tick))
	require.NotNil(t, tick.Outputs[0])
}

func Test_hwsource_process_delivers_most_recently_captured_buffer(t *testing.T) {
	pool := audio.NewPool()
	driver := deviceio.NewNull(deviceio.DeviceInfo{Name: "null", InputCount: 1, OutputCount: 1, SampleRate: 48000, SampleFormat: audio.SampleFormatF32})
	src := NewHWSource("src")

	require.NoError(t, src.Configure(HWSourceConfig{DeviceName: "null", Driver: driver, Format: fileTestFormat, Pool: pool}))
	require.NoError(t, src.Start())

	// Drive the capture callback directly, exactly as the driver's
	// real-time thread would invoke it.
	in := [][]float32{{1, 2, 3, 4}}
	src.capture(in, nil, 4)

	tick := Tick{Outputs: make([]*audio.Buffer, 1)}
	require.NoError(t, src.Process(tick))
	require.NotNil(t, tick.Outputs[0])

	samples := make([]float32, 4)
	decodeFloat32Plane(samples, tick.Outputs[0].Planes[0])
	assert.Equal(t, []float32{1, 2, 3, 4}, samples)
}

func Test_hwsource_configure_requires_driver_and_pool(t *testing.T) {
	src := NewHWSource("src")
	err := src.Configure(HWSourceConfig{DeviceName: "null"})
	assert.Error(t, err)
}
