// Package audiodevice abstracts the microphone: backends open a capture
// stream and hand fixed-size frames to a sink, in arrival order. The sink is
// a cheap hand-off (a buffer push), never the consumer logic itself, so
// nothing slow ever runs inside a driver callback.
package audiodevice

import (
	"context"
	"io"

	"github.com/xaionaro-go/audio/pkg/audio"
)

// Info describes one capture-capable device.
//
// MaxChannels and DefaultSampleRate are zero when the backend cannot query
// them without fully initializing the device.
type Info struct {
	Index             int
	Name              string
	ID                string
	IsDefault         bool
	MaxChannels       int
	DefaultSampleRate int
}

// DefaultDeviceIndex selects whatever the OS considers the default
// microphone.
const DefaultDeviceIndex = -1

// Params describes the stream to open. ChunkSize is in samples per channel:
// every frame delivered to the sink is exactly
// ChunkSize × Channels × sample-size bytes, except possibly the last one
// before the stream stops.
type Params struct {
	Encoding    audio.EncodingPCM
	Channels    audio.Channel
	DeviceIndex int
	ChunkSize   int
}

// FrameBytes returns the size of one full frame in bytes.
func (p Params) FrameBytes() int {
	sampleSize := 2
	if p.Encoding.PCMFormat == audio.PCMFormatFloat32LE {
		sampleSize = 4
	}
	return p.ChunkSize * int(p.Channels) * sampleSize
}

// Sink receives captured frames. The slice is owned by the receiver; the
// backend never reuses it.
type Sink func(frame []byte)

// Callbacks is how an open device talks back to its owner. OnFrame is
// invoked with captured frames in arrival order. OnError (optional) is
// invoked at most once, when the stream dies outside of Stop; no frames
// follow it.
type Callbacks struct {
	OnFrame Sink
	OnError func(err error)
}

// ReportError invokes OnError when set.
func (cb Callbacks) ReportError(err error) {
	if cb.OnError != nil {
		cb.OnError(err)
	}
}

// Device is one open capture stream.
//
// Stop is idempotent: the underlying handle is released exactly once, and
// the sink receives no frames after the first Stop returns. Close implies
// Stop.
type Device interface {
	io.Closer

	Start(ctx context.Context) error
	Stop() error
}

// Backend is a capture driver (miniaudio, portaudio, a test fake).
//
// Open either returns a fully usable Device or a typed error with every
// partially acquired resource already released.
type Backend interface {
	io.Closer

	ListDevices(ctx context.Context) ([]Info, error)
	Open(ctx context.Context, params Params, callbacks Callbacks) (Device, error)
}
