package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFormat = Format{SampleRate: 48000, Sample: SampleFormatF32, Layout: Stereo(), Planar: true}

func Test_pool_get_after_warmup_allocates_nothing(t *testing.T) {
	pool := NewPool()

	// Warm the pool: acquire and fully release one buffer of the shape
	// under test so its backing arrays are available for reuse.
	warm := pool.Get(testFormat, 256)
	warm.Release()

	allocs := testing.AllocsPerRun(100, func() {
		b := pool.Get(testFormat, 256)
		b.Release()
	})
	assert.Equal(t, float64(0), allocs, "steady-state Get/Release must not allocate once the pool is warm")
}

func Test_buffer_refcounting_returns_to_pool_only_at_zero(t *testing.T) {
	pool := NewPool()
	b := pool.Get(testFormat, 64)
	b.Retain()

	b.Release() // refs: 2 -> 1, should not yet be pooled
	other := pool.Get(testFormat, 64)
	assert.NotSame(t, b, other, "buffer must not be recycled while still retained")

	b.Release() // refs: 1 -> 0, now eligible for reuse
}

func Test_copy_produces_independent_buffer(t *testing.T) {
	pool := NewPool()
	b := pool.Get(testFormat, 8)
	b.Planes[0][0] = 0xAB

	cp := b.Copy(pool)
	require.NotSame(t, b, cp)
	assert.Equal(t, b.Planes[0][0], cp.Planes[0][0])

	cp.Planes[0][0] = 0xCD
	assert.NotEqual(t, b.Planes[0][0], cp.Planes[0][0], "mutating a copy must not affect the original")
}

func Test_bytes_per_plane_matches_planar_and_interleaved_invariant(t *testing.T) {
	pool := NewPool()
	planar := pool.Get(Format{SampleRate: 48000, Sample: SampleFormatS16, Layout: Stereo(), Planar: true}, 10)
	assert.Equal(t, 20, planar.BytesPerPlane()) // 10 frames * 2 bytes, per channel plane

	interleaved := pool.Get(Format{SampleRate: 48000, Sample: SampleFormatS16, Layout: Stereo(), Planar: false}, 10)
	assert.Equal(t, 40, interleaved.BytesPerPlane()) // 10 frames * 2 bytes * 2 channels, one plane
}
