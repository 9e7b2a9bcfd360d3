package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscmex/engine/internal/audio"
	"github.com/oscmex/engine/internal/filterchain"
)

func Test_filter_process_passes_buffer_through_configured_chain(t *testing.T) {
	pool := audio.NewPool()
	f := NewFilter("f")
	require.NoError(t, f.Configure(FilterConfig{Spec: "passthrough", Format: fileTestFormat, BufferSize: 960, Pool: pool}))
	require.NoError(t, f.Start())

	in := pool.Get(fileTestFormat, 4)
	tick := Tick{Inputs: []*audio.Buffer{in}, Outputs: make([]*audio.Buffer, 1)}
	require.NoError(t, f.Process(tick))
	require.NotNil(t, tick.Outputs[0])
	assert.NotSame(t, in, tick.Outputs[0])
}

func Test_filter_process_skips_when_no_input_available(t *testing.T) {
	pool := audio.NewPool()
	f := NewFilter("f")
	require.NoError(t, f.Configure(FilterConfig{Spec: "passthrough", Format: fileTestFormat, BufferSize: 960, Pool: pool}))
	require.NoError(t, f.Start())

	tick := Tick{Inputs: []*audio.Buffer{nil}, Outputs: make([]*audio.Buffer, 1)}
	require.NoError(t, f.Process(tick))
	assert.Nil(t, tick.Outputs[0])
}

func Test_filter_update_parameter_requires_configuration(t *testing.T) {
	f := NewFilter("f")
	err := f.UpdateParameter("gain", "db", 6)
	assert.Error(t, err)
}

func Test_filter_update_parameter_forwards_to_chain(t *testing.T) {
	pool := audio.NewPool()
	f := NewFilter("f")
	require.NoError(t, f.Configure(FilterConfig{Spec: "gain=db=0", Format: fileTestFormat, BufferSize: 960, Pool: pool}))
	require.NoError(t, f.Start())

	require.NoError(t, f.UpdateParameter("gain", "db", 20))

	in := pool.Get(fileTestFormat, 1)
	in.Planes[0][0], in.Planes[0][1], in.Planes[0][2], in.Planes[0][3] = 0, 0, 0x80, 0x3F // 1.0f little-endian
	tick := Tick{Inputs: []*audio.Buffer{in}, Outputs: make([]*audio.Buffer, 1)}
	require.NoError(t, f.Process(tick))
	require.NotNil(t, tick.Outputs[0])
	samples := make([]float32, 1)
	decodeFloat32Plane(samples, tick.Outputs[0].Planes[0])
	assert.InDelta(t, 10.0, float64(samples[0]), 1e-4, "+20 dB is a linear gain of 10")
}

func Test_filter_introspect_exposes_chain_stage_list(t *testing.T) {
	pool := audio.NewPool()
	f := NewFilter("f")
	require.NoError(t, f.Configure(FilterConfig{Spec: "equalizer=f=1000:g=3", Format: fileTestFormat, BufferSize: 960, Pool: pool}))

	info := f.Introspect()
	require.Len(t, info, 1)
	assert.Equal(t, filterchain.KindEqualizer, info[0].Kind)
}

func Test_filter_stop_resets_chain_state(t *testing.T) {
	pool := audio.NewPool()
	f := NewFilter("f")
	require.NoError(t, f.Configure(FilterConfig{Spec: "equalizer=f=1000:g=6", Format: fileTestFormat, BufferSize: 960, Pool: pool}))
	require.NoError(t, f.Start())
	require.NoError(t, f.Stop())
}
