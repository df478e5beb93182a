package wavfile

import (
	"fmt"
	"io"
)

// Buffer is an in-memory io.WriteSeeker; the WAV encoder needs to seek back
// to patch chunk sizes into the header after the samples are written.
type Buffer struct {
	data []byte
	pos  int64
}

var _ io.WriteSeeker = (*Buffer)(nil)

func (b *Buffer) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.data)) {
		grown := make([]byte, end)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.pos:end], p)
	b.pos = end
	return len(p), nil
}

func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = b.pos + offset
	case io.SeekEnd:
		pos = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("unknown whence: %d", whence)
	}
	if pos < 0 {
		return 0, fmt.Errorf("negative position: %d", pos)
	}
	b.pos = pos
	return pos, nil
}

func (b *Buffer) Bytes() []byte {
	return b.data
}
