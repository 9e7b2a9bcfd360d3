// Package audio is the shared-ownership carrier of planar/interleaved PCM
// buffers that flow between nodes in the graph runtime, without
// allocation on the audio thread once a pool has warmed up.
package audio

/*------------------------------------------------------------------
 *
 * Purpose:	Format metadata describing a buffer's sample layout. Two
 *		buffers are compatible (can connect across a graph edge)
 *		only when every field here matches.
 *
 *---------------------------------------------------------------*/

import "fmt"

// SampleFormat names the per-sample encoding. Only the widths this engine
// actually moves between nodes are represented; sample-rate conversion
// and exotic formats are left to the external DSP collaborator.
type SampleFormat int

const (
	SampleFormatS16 SampleFormat = iota
	SampleFormatS32
	SampleFormatF32
)

// BytesPerSample is the on-wire/in-memory width of one sample.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case SampleFormatS16:
		return 2
	case SampleFormatS32, SampleFormatF32:
		return 4
	default:
		return 0
	}
}

func (f SampleFormat) String() string {
	switch f {
	case SampleFormatS16:
		return "s16"
	case SampleFormatS32:
		return "s32"
	case SampleFormatF32:
		return "f32"
	default:
		return "unknown"
	}
}

// ChannelLayout names how many channels a buffer carries and in what
// order. Only channel count is load-bearing for this engine; named
// layouts (stereo, 5.1, ...) are informational.
type ChannelLayout struct {
	Channels int
	Name     string
}

func Mono() ChannelLayout   { return ChannelLayout{Channels: 1, Name: "mono"} }
func Stereo() ChannelLayout { return ChannelLayout{Channels: 2, Name: "stereo"} }

// Format is the full descriptor carried by every buffer and validated at
// every node boundary: a mismatch on input is a configuration error, not
// a runtime condition.
type Format struct {
	SampleRate int
	Sample     SampleFormat
	Layout     ChannelLayout
	Planar     bool
}

func (f Format) Equal(o Format) bool {
	return f.SampleRate == o.SampleRate &&
		f.Sample == o.Sample &&
		f.Layout.Channels == o.Layout.Channels &&
		f.Planar == o.Planar
}

func (f Format) String() string {
	kind := "interleaved"
	if f.Planar {
		kind = "planar"
	}
	return fmt.Sprintf("%dHz %s %dch %s", f.SampleRate, f.Sample, f.Layout.Channels, kind)
}
