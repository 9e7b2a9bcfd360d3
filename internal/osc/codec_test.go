package osc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func Test_encode_decode_message_round_trip(t *testing.T) {
	msg := NewMessage("/synth/freq",
		Int32(42), Float32(3.5), String("hello"), BlobValue([]byte{1, 2, 3}),
		Bool(true), Bool(false), Nil(), Inf(),
		Array(Int32(1), Int32(2), Array(String("nested"))),
	)

	buf, err := Encode(msg)
	require.NoError(t, err)
	assert.Equal(t, 0, len(buf)%4, "encoded packet must be 4-byte aligned")

	elem, err := Decode(buf)
	require.NoError(t, err)
	got, ok := elem.(Message)
	require.True(t, ok)
	assert.Equal(t, msg.Address, got.Address)
	assert.Equal(t, msg.Args, got.Args)
}

func Test_decode_rejects_unclosed_array(t *testing.T) {
	msg := NewMessage("/x", Int32(1), Int32(2))
	buf, err := Encode(msg)
	require.NoError(t, err)

	// Corrupt the type tag string to open an array but never close it:
	// find the ',' type tag string and overwrite its first tag with '[',
	// turning ",ii" into an unterminated ",[i".
	corrupted := append([]byte(nil), buf...)
	tagStart := len(msg.Address) + 1
	tagStart = pad4(tagStart)
	for i := tagStart; i < len(corrupted); i++ {
		if corrupted[i] == ',' {
			if i+1 < len(corrupted) {
				corrupted[i+1] = '['
			}
			break
		}
	}

	_, err = Decode(corrupted)
	assert.Error(t, err, "an unclosed '[' in the type tag string must be rejected, not silently accepted")
}

func Test_bundle_round_trip_with_nested_bundle(t *testing.T) {
	inner := NewBundle(Immediate, NewMessage("/inner", String("a")))
	outer := NewBundle(TimetagFromTime(inner.Timetag.Time()), NewMessage("/outer", Int32(1)), inner)

	buf, err := Encode(outer)
	require.NoError(t, err)

	elem, err := Decode(buf)
	require.NoError(t, err)
	got, ok := elem.(Bundle)
	require.True(t, ok)
	require.Len(t, got.Elements, 2)

	_, isMsg := got.Elements[0].(Message)
	assert.True(t, isMsg)
	nestedBundle, isBundle := got.Elements[1].(Bundle)
	require.True(t, isBundle, "nested bundles must decode as Bundle, not be skipped")
	require.Len(t, nestedBundle.Elements, 1)
}

func Test_message_encode_decode_round_trip_property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		addr := "/" + rapid.StringMatching(`[a-z]{1,8}(/[a-z]{1,8}){0,2}`).Draw(rt, "addr")
		n := rapid.IntRange(0, 5).Draw(rt, "n")
		args := make([]Value, n)
		for i := range args {
			switch rapid.IntRange(0, 3).Draw(rt, "kind") {
			case 0:
				args[i] = Int32(rapid.Int32().Draw(rt, "i"))
			case 1:
				args[i] = Float32(rapid.Float32().Draw(rt, "f"))
			case 2:
				args[i] = String(rapid.StringMatching(`[a-zA-Z0-9 ]{0,12}`).Draw(rt, "s"))
			default:
				args[i] = Bool(rapid.Bool().Draw(rt, "b"))
			}
		}
		msg := NewMessage(addr, args...)
		buf, err := Encode(msg)
		require.NoError(rt, err)
		elem, err := Decode(buf)
		require.NoError(rt, err)
		got, ok := elem.(Message)
		require.True(rt, ok)
		assert.Equal(rt, msg.Address, got.Address)
		assert.Equal(rt, len(msg.Args), len(got.Args))
	})
}
