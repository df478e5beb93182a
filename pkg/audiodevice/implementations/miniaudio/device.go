package miniaudio

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/xaionaro-go/voice2text/pkg/audiodevice"
)

type Device struct {
	MalgoContext *malgo.AllocatedContext
	MalgoDevice  *malgo.Device
	Params       audiodevice.Params
	Callbacks    audiodevice.Callbacks

	stopped  atomic.Bool
	stopOnce sync.Once

	// accessed from the data callback only (and from Stop, after the
	// device has been stopped and callbacks have ceased)
	rechunk []byte
}

var _ audiodevice.Device = (*Device)(nil)

func (d *Device) Start(ctx context.Context) error {
	return d.MalgoDevice.Start()
}

// onReceiveFrames runs in the driver's callback context: it only re-chunks
// and hands off, the heavy lifting happens on the consumer side.
func (d *Device) onReceiveFrames(_, samples []byte, frameCount uint32) {
	if d.stopped.Load() {
		return
	}

	d.rechunk = append(d.rechunk, samples...)
	frameBytes := d.Params.FrameBytes()
	for len(d.rechunk) >= frameBytes {
		frame := make([]byte, frameBytes)
		copy(frame, d.rechunk[:frameBytes])
		d.rechunk = d.rechunk[frameBytes:]
		d.Callbacks.OnFrame(frame)
	}
}

// onDeviceStopped is the driver's stop notification; reaching it without a
// Stop call from our side means the stream died underneath us.
func (d *Device) onDeviceStopped() {
	if d.stopped.Load() {
		return
	}
	d.Callbacks.ReportError(audiodevice.ErrStreamRead{
		Err: fmt.Errorf("the capture device stopped unexpectedly"),
	})
}

// flushTail emits whatever is left in the re-chunk buffer as one short final
// frame. Must only be called once callbacks have ceased.
func (d *Device) flushTail() {
	if len(d.rechunk) == 0 {
		return
	}
	tail := make([]byte, len(d.rechunk))
	copy(tail, d.rechunk)
	d.rechunk = nil
	d.Callbacks.OnFrame(tail)
}

// Stop is idempotent; the malgo device and context are released exactly once.
// The re-chunk tail is flushed to the sink as a short final frame before the
// handles go away.
func (d *Device) Stop() error {
	d.stopOnce.Do(func() {
		d.stopped.Store(true)
		_ = d.MalgoDevice.Stop()
		d.flushTail()
		d.MalgoDevice.Uninit()
		_ = d.MalgoContext.Uninit()
		d.MalgoContext.Free()
	})
	return nil
}

func (d *Device) Close() error {
	return d.Stop()
}
