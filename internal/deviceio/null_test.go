package deviceio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_null_open_unknown_device_errors(t *testing.T) {
	n := NewNull()
	_, err := n.Open("does-not-exist")
	assert.Error(t, err)
}

func Test_null_tick_invokes_callback_only_while_running(t *testing.T) {
	n := NewNull()
	dev, err := n.Open("null")
	require.NoError(t, err)
	nd := dev.(*nullDevice)

	var calls int
	nd.SetCallback(func(in, out [][]float32, frames int) { calls++ })

	nd.Tick(nil, nil, 64)
	assert.Equal(t, 0, calls, "ticking a stopped device must not invoke the callback")

	require.NoError(t, dev.Start())
	nd.Tick(nil, nil, 64)
	assert.Equal(t, 1, calls)

	require.NoError(t, dev.Stop())
	nd.Tick(nil, nil, 64)
	assert.Equal(t, 1, calls, "ticking after Stop must not invoke the callback again")
}

func Test_null_list_devices_defaults_to_one_stereo_device(t *testing.T) {
	n := NewNull()
	devs, err := n.ListDevices()
	require.NoError(t, err)
	require.Len(t, devs, 1)
	assert.Equal(t, "null", devs[0].Name)
	assert.Equal(t, 2, devs[0].InputCount)
}
