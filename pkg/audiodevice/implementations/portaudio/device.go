package portaudio

import (
	"context"
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"

	"github.com/facebookincubator/go-belt/tool/logger"
	pa "github.com/gordonklaus/portaudio"
	"github.com/xaionaro-go/audio/pkg/audio"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/voice2text/pkg/audiodevice"
)

type Device struct {
	Stream    *pa.Stream
	Params    audiodevice.Params
	Callbacks audiodevice.Callbacks

	int16Buf   []int16
	float32Buf []float32

	stopped  atomic.Bool
	stopOnce sync.Once
	readerWG sync.WaitGroup
}

var _ audiodevice.Device = (*Device)(nil)

func (d *Device) Start(ctx context.Context) error {
	if err := d.Stream.Start(); err != nil {
		return audiodevice.ErrStreamRead{Err: err}
	}
	d.readerWG.Add(1)
	observability.Go(ctx, func() {
		defer d.readerWG.Done()
		d.readLoop(ctx)
	})
	return nil
}

// readLoop blocks on the driver's Read for one frame at a time; the stop
// flag is observed between reads, so shutdown latency is bounded by one
// frame duration.
func (d *Device) readLoop(ctx context.Context) {
	logger.Debugf(ctx, "readLoop()")
	defer logger.Debugf(ctx, "/readLoop()")

	for {
		if d.stopped.Load() {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := d.Stream.Read(); err != nil {
			if d.stopped.Load() {
				return
			}
			logger.Errorf(ctx, "unable to read a frame: %v", err)
			d.Callbacks.ReportError(audiodevice.ErrStreamRead{Err: err})
			return
		}
		d.Callbacks.OnFrame(d.frameBytes())
	}
}

func (d *Device) frameBytes() []byte {
	frame := make([]byte, d.Params.FrameBytes())
	switch d.Params.Encoding.PCMFormat {
	case audio.PCMFormatFloat32LE:
		for i, s := range d.float32Buf {
			binary.LittleEndian.PutUint32(frame[i*4:], math.Float32bits(s))
		}
	default:
		for i, s := range d.int16Buf {
			binary.LittleEndian.PutUint16(frame[i*2:], uint16(s))
		}
	}
	return frame
}

// Stop is idempotent: it waits for the reader goroutine and releases the
// stream handle exactly once.
func (d *Device) Stop() error {
	d.stopOnce.Do(func() {
		d.stopped.Store(true)
		_ = d.Stream.Stop()
		d.readerWG.Wait()
		_ = d.Stream.Close()
		_ = pa.Terminate()
	})
	return nil
}

func (d *Device) Close() error {
	return d.Stop()
}
