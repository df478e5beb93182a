package audioinput

import (
	"encoding/binary"
	"math"
)

func convertFloat32LEToInt16LE(pcm []byte) []byte {
	sampleCount := len(pcm) / 4
	out := make([]byte, sampleCount*2)
	for i := 0; i < sampleCount; i++ {
		s := math.Float32frombits(binary.LittleEndian.Uint32(pcm[i*4:]))
		switch {
		case s > 1:
			s = 1
		case s < -1:
			s = -1
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s*32767)))
	}
	return out
}
