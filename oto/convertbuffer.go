package oto

import (
	"encoding/binary"
	"math"

	"github.com/beatgrid/beatgrid"
)

// AppendPCM16LE appends the frames to dst as interleaved 16-bit
// little-endian samples, clipping at full scale.
func AppendPCM16LE(dst []byte, frames beatgrid.AudioBuffer) []byte {
	for _, f := range frames {
		for _, v := range f {
			var uv int16
			switch {
			case v < -1.0:
				uv = -math.MaxInt16
			case v > 1.0:
				uv = math.MaxInt16
			default:
				uv = int16(v * math.MaxInt16)
			}
			dst = binary.LittleEndian.AppendUint16(dst, uint16(uv))
		}
	}
	return dst
}
