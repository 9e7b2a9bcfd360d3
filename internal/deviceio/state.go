package deviceio

/*------------------------------------------------------------------
 *
 * Purpose:	Persisted device-state snapshot:
 *
 *		~/device_config/audio-device_<sanitized-name>_date-time_
 *			<YYYY-MM-DD_HH-MM-SS>.json
 *
 *		Filenames sanitize the device name to [A-Za-z0-9_-] with
 *		spaces mapped to '_'.
 *
 *---------------------------------------------------------------*/

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"
)

// StateSnapshot is the on-disk shape of one device's configuration at the
// moment it was saved.
type StateSnapshot struct {
	DeviceName   string `json:"device_name"`
	SampleRate   int    `json:"sample_rate"`
	BufferSize   int    `json:"buffer_size"`
	InputCount   int    `json:"input_count"`
	OutputCount  int    `json:"output_count"`
	SampleFormat string `json:"sample_format"`
	SavedAt      string `json:"saved_at"`
}

var filenameFormat = strftime.MustNew("date-time_%Y-%m-%d_%H-%M-%S")

// sanitize maps a device name to the [A-Za-z0-9_-] filename alphabet,
// mapping spaces to underscores and dropping everything else.
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ' ':
			b.WriteByte('_')
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ConfigDir is ~/device_config, created on demand by Save.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("deviceio: resolving home dir: %w", err)
	}
	return filepath.Join(home, "device_config"), nil
}

// Save writes snap to ~/device_config/audio-device_<name>_<date-time>.json
// and returns the path written.
func Save(snap StateSnapshot, at time.Time) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("deviceio: creating %s: %w", dir, err)
	}
	snap.SavedAt = at.UTC().Format(time.RFC3339)
	filename := fmt.Sprintf("audio-device_%s_%s.json", sanitize(snap.DeviceName), filenameFormat.FormatString(at))
	path := filepath.Join(dir, filename)
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("deviceio: marshaling state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("deviceio: writing %s: %w", path, err)
	}
	return path, nil
}
