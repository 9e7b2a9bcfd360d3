package filterchain

/*------------------------------------------------------------------
 *
 * Purpose:	Built-in chain stages: gain, passthrough, and a one-band
 *		biquad equalizer. Each takes its parameters from the opaque
 *		spec string as "key=value" pairs separated by ':', e.g.
 *		"equalizer=f=1000:g=6". Operates on SampleFormatF32 buffers;
 *		a real FFmpeg-backed Chain would handle every format the
 *		graph can produce, but that library is the out-of-scope
 *		external collaborator this package stands in for.
 *
 *---------------------------------------------------------------*/

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/oscmex/engine/internal/audio"
)

func init() {
	Register("gain", buildGain)
	Register("passthrough", buildPassthrough)
	Register("equalizer", buildEqualizer)
}

func parseParams(spec string) map[string]string {
	out := map[string]string{}
	// Drop the leading stage name ("equalizer=" in "equalizer=f=1000:g=6").
	if i := strings.IndexAny(spec, "=:"); i >= 0 {
		spec = spec[i+1:]
	} else {
		return out
	}
	parts := strings.Split(spec, ":")
	for _, p := range parts {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) == 2 {
			out[kv[0]] = kv[1]
		}
	}
	return out
}

func floatParam(params map[string]string, key string, def float64) float64 {
	if s, ok := params[key]; ok {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	}
	return def
}

// readPlanarF32 interprets buf (assumed SampleFormatF32, planar) as
// per-channel float32 slices, decoding each plane into a newly allocated
// slice on every call.
func readPlanarF32(b *audio.Buffer) ([][]float32, error) {
	if b.Format.Sample != audio.SampleFormatF32 || !b.Format.Planar {
		return nil, fmt.Errorf("filterchain: built-in stages require planar f32 buffers, got %s", b.Format)
	}
	out := make([][]float32, len(b.Planes))
	for i, plane := range b.Planes {
		samples := make([]float32, b.Frames)
		for f := 0; f < b.Frames; f++ {
			bits := binary.LittleEndian.Uint32(plane[f*4:])
			samples[f] = math.Float32frombits(bits)
		}
		out[i] = samples
	}
	return out, nil
}

func writePlanarF32(b *audio.Buffer, channels [][]float32) {
	for i, plane := range b.Planes {
		for f := 0; f < b.Frames && f < len(channels[i]); f++ {
			binary.LittleEndian.PutUint32(plane[f*4:], math.Float32bits(channels[i][f]))
		}
	}
}

// --- gain ---

type gainStage struct {
	mu      sync.Mutex
	gainDB  float64
	pending map[string]float64
}

func buildGain(spec string, format audio.Format, bufferSize int) (Chain, error) {
	params := parseParams(spec)
	return &gainStage{gainDB: floatParam(params, "db", 0), pending: map[string]float64{}}, nil
}

func (g *gainStage) Process(in *audio.Buffer, pool *audio.Pool) (*audio.Buffer, error) {
	g.mu.Lock()
	if v, ok := g.pending["db"]; ok {
		g.gainDB = v
		delete(g.pending, "db")
	}
	linear := math.Pow(10, g.gainDB/20)
	g.mu.Unlock()

	chans, err := readPlanarF32(in)
	if err != nil {
		return nil, err
	}
	out := pool.Get(in.Format, in.Frames)
	for _, ch := range chans {
		for i := range ch {
			ch[i] = float32(float64(ch[i]) * linear)
		}
	}
	writePlanarF32(out, chans)
	return out, nil
}

func (g *gainStage) SendCommand(filterName, key string, value float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending[key] = value
	return nil
}

func (g *gainStage) Introspect() []StageInfo { return []StageInfo{{Name: "gain", Kind: KindGain}} }
func (g *gainStage) Reset() error            { return nil }
func (g *gainStage) Free()                   {}

// --- passthrough ---

type passthroughStage struct{}

func buildPassthrough(spec string, format audio.Format, bufferSize int) (Chain, error) {
	return passthroughStage{}, nil
}

func (passthroughStage) Process(in *audio.Buffer, pool *audio.Pool) (*audio.Buffer, error) {
	return in.Copy(pool), nil
}
func (passthroughStage) SendCommand(filterName, key string, value float64) error { return nil }
func (passthroughStage) Introspect() []StageInfo {
	return []StageInfo{{Name: "passthrough", Kind: KindPassthrough}}
}
func (passthroughStage) Reset() error { return nil }
func (passthroughStage) Free()        {}

// --- equalizer: one-band peaking biquad, RBJ cookbook coefficients ---

type equalizerStage struct {
	mu         sync.Mutex
	freq, gain float64
	sampleRate int
	pending    map[string]float64
	// per-channel filter state (direct form I)
	x1, x2, y1, y2 []float64
}

func buildEqualizer(spec string, format audio.Format, bufferSize int) (Chain, error) {
	params := parseParams(spec)
	ch := format.Layout.Channels
	return &equalizerStage{
		freq:       floatParam(params, "f", 1000),
		gain:       floatParam(params, "g", 0),
		sampleRate: format.SampleRate,
		pending:    map[string]float64{},
		x1:         make([]float64, ch), x2: make([]float64, ch),
		y1: make([]float64, ch), y2: make([]float64, ch),
	}, nil
}

// biquadCoeffs computes RBJ peaking-EQ coefficients for the current
// freq/gain. Process calls it once per buffer (not per sample), whether or
// not a parameter changed.
func (e *equalizerStage) biquadCoeffs() (b0, b1, b2, a0, a1, a2 float64) {
	A := math.Pow(10, e.gain/40)
	w0 := 2 * math.Pi * e.freq / float64(e.sampleRate)
	alpha := math.Sin(w0) / (2 * 1.0) // Q = 1
	cosw0 := math.Cos(w0)

	b0 = 1 + alpha*A
	b1 = -2 * cosw0
	b2 = 1 - alpha*A
	a0 = 1 + alpha/A
	a1 = -2 * cosw0
	a2 = 1 - alpha/A
	return
}

func (e *equalizerStage) Process(in *audio.Buffer, pool *audio.Pool) (*audio.Buffer, error) {
	e.mu.Lock()
	for _, key := range []string{"f", "g"} {
		if v, ok := e.pending[key]; ok {
			if key == "f" {
				e.freq = v
			} else {
				e.gain = v
			}
			delete(e.pending, key)
		}
	}
	b0, b1, b2, a0, a1, a2 := e.biquadCoeffs()
	e.mu.Unlock()

	chans, err := readPlanarF32(in)
	if err != nil {
		return nil, err
	}
	out := pool.Get(in.Format, in.Frames)
	for c, ch := range chans {
		x1, x2, y1, y2 := e.x1[c], e.x2[c], e.y1[c], e.y2[c]
		for i, x0 := range ch {
			y0 := (b0/a0)*float64(x0) + (b1/a0)*x1 + (b2/a0)*x2 - (a1/a0)*y1 - (a2/a0)*y2
			ch[i] = float32(y0)
			x2, x1 = x1, float64(x0)
			y2, y1 = y1, y0
		}
		e.x1[c], e.x2[c], e.y1[c], e.y2[c] = x1, x2, y1, y2
	}
	writePlanarF32(out, chans)
	return out, nil
}

func (e *equalizerStage) SendCommand(filterName, key string, value float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending[key] = value
	return nil
}

func (e *equalizerStage) Introspect() []StageInfo {
	return []StageInfo{{Name: "equalizer", Kind: KindEqualizer}}
}
func (e *equalizerStage) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.x1 {
		e.x1[i], e.x2[i], e.y1[i], e.y2[i] = 0, 0, 0, 0
	}
	return nil
}
func (e *equalizerStage) Free() {}
