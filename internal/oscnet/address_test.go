package oscnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parse_address_round_trips_through_url(t *testing.T) {
	for _, raw := range []string{
		"osc.udp://239.255.0.1:9000/",
		"osc.tcp://control.example.com:5005/",
		"osc.unix:///tmp/engine.sock/",
	} {
		a, err := ParseAddress(raw)
		require.NoError(t, err, raw)
		b, err := ParseAddress(a.URL())
		require.NoError(t, err, a.URL())
		assert.Equal(t, a, b, "Address must round-trip through its own URL")
	}
}

func Test_parse_address_rejects_unknown_scheme(t *testing.T) {
	_, err := ParseAddress("http://example.com:80/")
	assert.Error(t, err)
}

func Test_parse_address_rejects_missing_host(t *testing.T) {
	_, err := ParseAddress("osc.udp://:9000/")
	assert.Error(t, err)
}

func Test_unix_address_carries_path_in_host(t *testing.T) {
	a, err := ParseAddress("osc.unix:///var/run/osc.sock")
	require.NoError(t, err)
	assert.Equal(t, SchemeUnix, a.Scheme)
	assert.Equal(t, "/var/run/osc.sock", a.NetworkAddr())
}
