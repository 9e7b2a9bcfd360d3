package deviceio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_sanitize_maps_spaces_to_underscores(t *testing.T) {
	assert.Equal(t, "USB_Audio_CODEC", sanitize("USB Audio CODEC"))
}

func Test_sanitize_drops_characters_outside_filename_alphabet(t *testing.T) {
	got := sanitize("hw:0,0")
	assert.Equal(t, "hw00", got)
	for _, r := range got {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-'
		assert.True(t, ok, "unexpected character %q in sanitized name", r)
	}
}

func Test_save_writes_snapshot_under_config_dir_with_expected_name_shape(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	snap := StateSnapshot{
		DeviceName:   "USB Audio",
		SampleRate:   48000,
		BufferSize:   960,
		InputCount:   2,
		OutputCount:  2,
		SampleFormat: "f32",
	}
	at := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)

	path, err := Save(snap, at)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "device_config", "audio-device_USB_Audio_date-time_2026-07-31_12-00-00.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got StateSnapshot
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "USB Audio", got.DeviceName)
	assert.Equal(t, at.UTC().Format(time.RFC3339), got.SavedAt)
}
