package node

/*------------------------------------------------------------------
 *
 * Purpose:	Shared little-endian float32 plane encode/decode helpers used
 *		by the hardware and file node variants to move samples
 *		between a driver/file's []float32 view and a Buffer's raw
 *		byte planes.
 *
 *---------------------------------------------------------------*/

import (
	"encoding/binary"
	"math"
)

func putFloat32LE(dst []byte, v float32) {
	binary.LittleEndian.PutUint32(dst, math.Float32bits(v))
}

func getFloat32LE(src []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(src))
}

// encodeFloat32Plane writes samples into plane as little-endian float32s,
// truncating to whichever of the two is shorter.
func encodeFloat32Plane(plane []byte, samples []float32) {
	n := len(samples)
	if max := len(plane) / 4; n > max {
		n = max
	}
	for i := 0; i < n; i++ {
		putFloat32LE(plane[i*4:], samples[i])
	}
}

// decodeFloat32Plane reads plane into samples as little-endian float32s,
// truncating to whichever of the two is shorter.
func decodeFloat32Plane(samples []float32, plane []byte) {
	n := len(samples)
	if max := len(plane) / 4; n > max {
		n = max
	}
	for i := 0; i < n; i++ {
		samples[i] = getFloat32LE(plane[i*4:])
	}
}
