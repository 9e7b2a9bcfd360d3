package node

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_configure_configure_is_idempotent(t *testing.T) {
	b := NewBase("n", "k", nil, nil)
	var calls int
	b.DoConfigure = func(interface{}) error { calls++; return nil }

	require.NoError(t, b.Configure(1))
	require.NoError(t, b.Configure(1))
	assert.Equal(t, 2, calls, "repeat configure calls must redo setup, not be skipped")
	assert.Equal(t, Configured, b.State())
}

func Test_stop_stop_is_idempotent(t *testing.T) {
	b := NewBase("n", "k", nil, nil)
	var stops int
	b.DoStart = func() error { return nil }
	b.DoStop = func() error { stops++; return nil }

	require.NoError(t, b.Configure(nil))
	require.NoError(t, b.Start())
	require.NoError(t, b.Stop())
	require.NoError(t, b.Stop())
	assert.Equal(t, 1, stops, "stop on an already-stopped node must be a no-op")
}

func Test_configure_failure_faults_the_node(t *testing.T) {
	b := NewBase("n", "k", nil, nil)
	b.DoConfigure = func(interface{}) error { return errors.New("bad config") }

	err := b.Configure(nil)
	assert.Error(t, err)
	assert.Equal(t, Faulted, b.State())
}

func Test_start_requires_configured_or_stopped(t *testing.T) {
	b := NewBase("n", "k", nil, nil)
	err := b.Start()
	assert.Error(t, err, "starting an unconfigured node must fail")
}

func Test_process_requires_running(t *testing.T) {
	b := NewBase("n", "k", nil, nil)
	err := b.Process(Tick{})
	assert.Error(t, err)
}

func Test_fault_is_reachable_from_any_state(t *testing.T) {
	b := NewBase("n", "k", nil, nil)
	b.Fault()
	assert.Equal(t, Faulted, b.State())
}
