// Package filterchain defines the external DSP collaborator boundary and
// a small built-in registry of named stages good enough to exercise
// process/send_command/introspect end-to-end. Emulating FFmpeg's filter
// grammar is out of scope here, so the chain description string is
// treated as an opaque key into this registry rather than parsed as a
// graph language.
package filterchain

/*------------------------------------------------------------------
 *
 * Purpose:	{ build_graph(spec, sr, fmt, layout, buffer_size),
 *		process(in) -> out, send_command(name, key, value),
 *		introspect() -> [(name, kind)], free }. The spec string is
 *		passed through unmodified to whichever builder is registered
 *		for it.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"sync"

	"github.com/oscmex/engine/internal/audio"
)

// StageKind names an introspectable sub-filter's behavior.
type StageKind string

const (
	KindGain        StageKind = "gain"
	KindPassthrough StageKind = "passthrough"
	KindEqualizer   StageKind = "equalizer"
)

// StageInfo is one entry of introspect()'s (name, kind) list.
type StageInfo struct {
	Name string
	Kind StageKind
}

// Chain is the opaque external filter-chain handle.
type Chain interface {
	Process(in *audio.Buffer, pool *audio.Pool) (*audio.Buffer, error)
	SendCommand(filterName, key string, value float64) error
	Introspect() []StageInfo
	Reset() error
	Free()
}

// Builder constructs a Chain from a spec string, sample rate, format,
// layout and buffer size, mirroring build_graph(spec, sr, fmt, layout,
// buffer_size).
type Builder func(spec string, format audio.Format, bufferSize int) (Chain, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Builder{}
)

// Register adds a named chain builder. The default registry is seeded by
// init() with gain/passthrough/equalizer; callers may register more
// without touching this package.
func Register(name string, b Builder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = b
}

// Build looks spec up in the registry and invokes its builder. The
// lookup key is the spec string verbatim, up to its first '=' or ':', e.g.
// "equalizer=f=1000:g=6" resolves to the "equalizer" builder, which then
// receives the whole spec string unmodified to interpret as it sees fit.
func Build(spec string, format audio.Format, bufferSize int) (Chain, error) {
	name := spec
	for i := 0; i < len(spec); i++ {
		if spec[i] == '=' || spec[i] == ':' {
			name = spec[:i]
			break
		}
	}
	registryMu.RLock()
	b, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("filterchain: no builder registered for %q", name)
	}
	return b(spec, format, bufferSize)
}
