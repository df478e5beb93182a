package whisper

import (
	"unsafe"
)

func convertInt16LEBytesToFloat32Slice(b []byte) []float32 {
	ptr := unsafe.SliceData(b)
	samples := unsafe.Slice((*int16)(unsafe.Pointer(ptr)), len(b)/2)
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32768
	}
	return out
}
