package energy

import (
	"unsafe"
)

func convertBytesToInt16Slice(b []byte) []int16 {
	ptr := unsafe.SliceData(b)
	return unsafe.Slice((*int16)(unsafe.Pointer(ptr)), len(b)/2)
}

func convertBytesToFloat32Slice(b []byte) []float32 {
	ptr := unsafe.SliceData(b)
	return unsafe.Slice((*float32)(unsafe.Pointer(ptr)), len(b)/4)
}
