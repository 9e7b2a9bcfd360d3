package audio

/*------------------------------------------------------------------
 *
 * Purpose:	Shared-ownership carrier of planar-or-interleaved PCM
 *		frames. A Buffer is immutable once produced and handed to a
 *		downstream node; any retained reference is read-only and
 *		must be copied before mutation. Buffers are drawn from a
 *		Pool so steady-state process() calls allocate nothing.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Buffer is (frames, format, plane_storage). Interleaved formats use one
// contiguous plane; planar formats use one allocation per channel. The
// invariant bytes_per_plane = frames * bytes_per_sample * (planar ? 1 :
// channels) holds for every plane in Planes.
type Buffer struct {
	Format Format
	Frames int
	Planes [][]byte

	pool *Pool
	refs atomic.Int32
}

// BytesPerPlane returns the per-plane byte length implied by Frames and
// Format.
func (b *Buffer) BytesPerPlane() int {
	bps := b.Format.Sample.BytesPerSample()
	if b.Format.Planar {
		return b.Frames * bps
	}
	return b.Frames * bps * b.Format.Layout.Channels
}

// Retain increments the reader refcount. A node that holds onto a buffer
// past the end of its own process() call (rather than handing it
// downstream and forgetting it) must Retain it and Release it itself.
func (b *Buffer) Retain() {
	b.refs.Add(1)
}

// Release drops a reference; when the last reference goes away the
// buffer's planes return to their Pool for reuse, which is what keeps the
// audio thread allocation-free in steady state.
func (b *Buffer) Release() {
	if b.refs.Add(-1) <= 0 && b.pool != nil {
		b.pool.put(b)
	}
}

// Copy produces a fresh, independently-owned Buffer with the same
// contents, for the rare case a consumer needs to mutate what it
// retained.
func (b *Buffer) Copy(pool *Pool) *Buffer {
	out := pool.Get(b.Format, b.Frames)
	for i := range b.Planes {
		copy(out.Planes[i], b.Planes[i])
	}
	return out
}

// Pool hands out Buffers of a fixed (Format, Frames) shape without
// allocating once warmed up; Get/put recycle plane backing arrays via
// sync.Pool keyed by plane size.
type Pool struct {
	mu    sync.Mutex
	byKey map[poolKey]*sync.Pool
}

type poolKey struct {
	sampleRate int
	sample     SampleFormat
	channels   int
	planar     bool
	frames     int
}

func NewPool() *Pool {
	return &Pool{byKey: make(map[poolKey]*sync.Pool)}
}

func keyFor(f Format, frames int) poolKey {
	return poolKey{f.SampleRate, f.Sample, f.Layout.Channels, f.Planar, frames}
}

// Get returns a Buffer of the given shape, reusing backing storage from
// a prior Put when available.
func (p *Pool) Get(f Format, frames int) *Buffer {
	key := keyFor(f, frames)
	p.mu.Lock()
	sp, ok := p.byKey[key]
	if !ok {
		sp = &sync.Pool{}
		p.byKey[key] = sp
	}
	p.mu.Unlock()

	if v := sp.Get(); v != nil {
		buf := v.(*Buffer)
		buf.refs.Store(1)
		return buf
	}

	bps := f.Sample.BytesPerSample()
	nPlanes := 1
	planeLen := frames * bps * f.Layout.Channels
	if f.Planar {
		nPlanes = f.Layout.Channels
		planeLen = frames * bps
	}
	planes := make([][]byte, nPlanes)
	for i := range planes {
		planes[i] = make([]byte, planeLen)
	}
	buf := &Buffer{Format: f, Frames: frames, Planes: planes, pool: p}
	buf.refs.Store(1)
	return buf
}

func (p *Pool) put(b *Buffer) {
	key := keyFor(b.Format, b.Frames)
	for _, plane := range b.Planes {
		clear(plane)
	}
	p.mu.Lock()
	sp := p.byKey[key]
	p.mu.Unlock()
	if sp != nil {
		sp.Put(b)
	}
}

func (b *Buffer) String() string {
	return fmt.Sprintf("buffer(%s, %d frames, %d planes)", b.Format, b.Frames, len(b.Planes))
}
