package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscmex/engine/internal/audio"
	"github.com/oscmex/engine/internal/deviceio"
)

const sampleDoc = `
buffer_size: 480
nodes:
  - name: mic
    kind: filesource
    path: TESTFILE
    format: {sample_rate: 48000, sample: f32, channels: 1}
  - name: gain
    kind: filter
    spec: "passthrough"
    format: {sample_rate: 48000, sample: f32, channels: 1}
  - name: speaker
    kind: hwsink
    device: "null"
    format: {sample_rate: 48000, sample: f32, channels: 1}
edges:
  - from: mic
    from_pad: out
    to: gain
    to_pad: in
  - from: gain
    from_pad: out
    to: speaker
    to_pad: in
`

func Test_load_defaults_buffer_size_when_absent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nodes: []\n"), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 960, doc.BufferSize)
}

func Test_load_and_build_wires_nodes_and_edges(t *testing.T) {
	dir := t.TempDir()
	rawPath := filepath.Join(dir, "in.raw")
	require.NoError(t, os.WriteFile(rawPath, make([]byte, 4096), 0o644))

	docPath := filepath.Join(dir, "graph.yaml")
	content := strings.ReplaceAll(sampleDoc, "TESTFILE", rawPath)
	require.NoError(t, os.WriteFile(docPath, []byte(content), 0o644))

	doc, err := Load(docPath)
	require.NoError(t, err)
	assert.Equal(t, 480, doc.BufferSize)
	require.Len(t, doc.Nodes, 3)
	require.Len(t, doc.Edges, 2)

	pool := audio.NewPool()
	driver := deviceio.NewNull(deviceio.DeviceInfo{Name: "null", InputCount: 1, OutputCount: 1, SampleRate: 48000, SampleFormat: audio.SampleFormatF32})

	g, err := Build(doc, driver, pool, nil)
	require.NoError(t, err)
	require.NotNil(t, g)
}

func Test_build_rejects_unknown_node_kind(t *testing.T) {
	doc := &Document{
		BufferSize: 960,
		Nodes: []NodeSpec{
			{Name: "x", Kind: "nonsense", Format: FormatSpec{SampleRate: 48000, Sample: "f32", Channels: 1}},
		},
	}
	pool := audio.NewPool()
	driver := deviceio.NewNull()
	_, err := Build(doc, driver, pool, nil)
	assert.Error(t, err)
}

func Test_format_spec_defaults_channels_and_rejects_unknown_sample(t *testing.T) {
	f := FormatSpec{SampleRate: 48000}
	got, err := f.toAudio()
	require.NoError(t, err)
	assert.Equal(t, 2, got.Layout.Channels)
	assert.Equal(t, audio.SampleFormatF32, got.Sample)

	_, err = FormatSpec{Sample: "bogus"}.toAudio()
	assert.Error(t, err)
}
