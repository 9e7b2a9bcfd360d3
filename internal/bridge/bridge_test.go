package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscmex/engine/internal/graph"
	"github.com/oscmex/engine/internal/osc"
)

func Test_handle_inbound_pushes_a_parameter_update(t *testing.T) {
	g := graph.New(nil)
	b := New(g, nil)

	b.handleInbound(osc.NewMessage("/filter/eq1/gain/db", osc.Float32(6)))

	var got []graph.Update
	g.Params().Apply(func(u graph.Update) { got = append(got, u) })

	require.Len(t, got, 1)
	assert.Equal(t, "eq1", got[0].Node)
	assert.Equal(t, "gain", got[0].Filter)
	assert.Equal(t, "db", got[0].Key)
	assert.Equal(t, 6.0, got[0].Value)
}

func Test_handle_inbound_rejects_malformed_address(t *testing.T) {
	g := graph.New(nil)
	b := New(g, nil)
	b.handleInbound(osc.NewMessage("/not/a/filter/address", osc.Float32(1)))

	var got []graph.Update
	g.Params().Apply(func(u graph.Update) { got = append(got, u) })
	assert.Empty(t, got, "a malformed address must never reach the parameter queue")
}

func Test_handle_inbound_rejects_non_numeric_argument(t *testing.T) {
	g := graph.New(nil)
	b := New(g, nil)
	b.handleInbound(osc.NewMessage("/filter/eq1/gain/db", osc.String("nope")))

	var got []graph.Update
	g.Params().Apply(func(u graph.Update) { got = append(got, u) })
	assert.Empty(t, got)
}

func Test_mirror_parameter_resends_on_outbound_sink(t *testing.T) {
	g := graph.New(nil)
	b := New(g, nil)

	var sent []osc.Message
	b.SetOutbound(func(msg osc.Message) error {
		sent = append(sent, msg)
		return nil
	})
	b.MirrorParameter("eq1", "gain", "db", "/console/eq1/db")

	b.handleInbound(osc.NewMessage("/filter/eq1/gain/db", osc.Float32(3)))

	require.Len(t, sent, 1)
	assert.Equal(t, "/console/eq1/db", sent[0].Address)
}

func Test_mirror_parameter_does_not_fire_for_unregistered_keys(t *testing.T) {
	g := graph.New(nil)
	b := New(g, nil)

	var sent []osc.Message
	b.SetOutbound(func(msg osc.Message) error {
		sent = append(sent, msg)
		return nil
	})

	b.handleInbound(osc.NewMessage("/filter/eq1/gain/db", osc.Float32(3)))
	assert.Empty(t, sent)
}
