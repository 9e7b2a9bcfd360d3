package dispatcher

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscmex/engine/internal/osc"
)

func Test_dispatch_prefers_non_default_methods(t *testing.T) {
	d := New(nil)
	defer d.Close()

	var matched, fellThrough bool
	_, err := d.Registry.AddMethod("/foo", "", func(osc.Message) { matched = true })
	require.NoError(t, err)
	d.Registry.AddDefaultMethod(func(osc.Message) { fellThrough = true })

	d.DispatchMessage(osc.NewMessage("/foo"))
	assert.True(t, matched)
	assert.False(t, fellThrough, "default method must not fire when a non-default method matched")
}

func Test_dispatch_falls_back_to_default_when_nothing_matches(t *testing.T) {
	d := New(nil)
	defer d.Close()

	var fellThrough bool
	_, err := d.Registry.AddMethod("/foo", "", func(osc.Message) { t.Fatal("must not match /bar") })
	require.NoError(t, err)
	d.Registry.AddDefaultMethod(func(osc.Message) { fellThrough = true })

	d.DispatchMessage(osc.NewMessage("/bar"))
	assert.True(t, fellThrough)
}

func Test_dispatch_handler_panic_does_not_abort_remaining_methods(t *testing.T) {
	d := New(nil)
	defer d.Close()

	var secondFired bool
	_, _ = d.Registry.AddMethod("/foo", "", func(osc.Message) { panic("boom") })
	_, _ = d.Registry.AddMethod("/foo", "", func(osc.Message) { secondFired = true })

	assert.NotPanics(t, func() { d.DispatchMessage(osc.NewMessage("/foo")) })
	assert.True(t, secondFired)
}

func Test_bundle_dispatch_visits_nested_bundles_in_order(t *testing.T) {
	d := New(nil)
	defer d.Close()

	var order []string
	var mu sync.Mutex
	record := func(name string) func(osc.Message) {
		return func(osc.Message) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}
	d.Registry.AddMethod("/a", "", record("a"))
	d.Registry.AddMethod("/b", "", record("b"))

	inner := osc.NewBundle(osc.Immediate, osc.NewMessage("/b"))
	outer := osc.NewBundle(osc.Immediate, osc.NewMessage("/a"), inner)

	d.DispatchBundle(outer)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b"}, order)
}

func Test_future_bundle_dispatches_no_earlier_than_its_timetag(t *testing.T) {
	d := New(nil)
	defer d.Close()

	fired := make(chan time.Time, 1)
	d.Registry.AddMethod("/go", "", func(osc.Message) { fired <- time.Now() })

	due := time.Now().Add(80 * time.Millisecond)
	scheduledAt := time.Now()
	d.DispatchBundle(osc.NewBundle(osc.TimetagFromTime(due), osc.NewMessage("/go")))

	select {
	case at := <-fired:
		assert.True(t, !at.Before(due.Add(-5*time.Millisecond)), "must not dispatch before its timetag")
		assert.True(t, at.Sub(scheduledAt) < time.Second, "should not take unreasonably long")
	case <-time.After(time.Second):
		t.Fatal("future bundle was never dispatched")
	}
}

func Test_type_reconciliation_rejects_mismatched_arity(t *testing.T) {
	d := New(nil)
	defer d.Close()

	var called bool
	d.Registry.AddMethod("/x", "if", func(osc.Message) { called = true })
	d.DispatchMessage(osc.NewMessage("/x", osc.Int32(1)))
	assert.False(t, called, "arity mismatch must not match")
}

func Test_type_reconciliation_coerces_int_to_float(t *testing.T) {
	d := New(nil)
	defer d.Close()

	var got osc.Value
	d.Registry.AddMethod("/x", "f", func(m osc.Message) { got = m.Args[0] })
	d.DispatchMessage(osc.NewMessage("/x", osc.Int32(7)))
	assert.Equal(t, osc.TagFloat32, got.Tag)
	assert.Equal(t, float32(7), got.Raw)
}
