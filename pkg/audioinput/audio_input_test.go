package audioinput

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/audio/pkg/audio"
	"github.com/xaionaro-go/voice2text/pkg/audiodevice"
)

// fakeBackend plays back a scripted sequence of frames instead of opening a
// real device. With FailAfter > 0 the device reports a read error once that
// many frames have been delivered.
type fakeBackend struct {
	Frames    [][]byte
	FailAfter int
	OpenCount atomic.Int64

	device *fakeDevice
}

var _ audiodevice.Backend = (*fakeBackend)(nil)

func (b *fakeBackend) Close() error {
	return nil
}

func (b *fakeBackend) ListDevices(context.Context) ([]audiodevice.Info, error) {
	return []audiodevice.Info{{Index: 0, Name: "fake", IsDefault: true}}, nil
}

func (b *fakeBackend) Open(
	ctx context.Context,
	params audiodevice.Params,
	callbacks audiodevice.Callbacks,
) (audiodevice.Device, error) {
	b.OpenCount.Add(1)
	b.device = &fakeDevice{
		Frames:    b.Frames,
		Callbacks: callbacks,
		FailAfter: b.FailAfter,
	}
	return b.device, nil
}

type fakeDevice struct {
	Frames    [][]byte
	Callbacks audiodevice.Callbacks
	FailAfter int
	StopCount atomic.Int64

	stopped atomic.Bool
	wg      sync.WaitGroup
}

func (d *fakeDevice) Start(context.Context) error {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for i, frame := range d.Frames {
			if d.stopped.Load() {
				return
			}
			if d.FailAfter > 0 && i >= d.FailAfter {
				d.Callbacks.ReportError(audiodevice.ErrStreamRead{Err: errFakeRead})
				return
			}
			d.Callbacks.OnFrame(frame)
			time.Sleep(time.Millisecond)
		}
	}()
	return nil
}

func (d *fakeDevice) Stop() error {
	if d.stopped.CompareAndSwap(false, true) {
		d.StopCount.Add(1)
		d.wg.Wait()
	}
	return nil
}

func (d *fakeDevice) Close() error {
	return d.Stop()
}

var errFakeRead = errors.New("input overflowed")

// scriptVAD classifies by the first byte of the frame: 1 means speech.
type scriptVAD struct{}

func (scriptVAD) Close() error { return nil }

func (scriptVAD) Encoding(context.Context) (audio.Encoding, error) {
	return audio.EncodingPCM{PCMFormat: audio.PCMFormatS16LE, SampleRate: 16000}, nil
}

func (scriptVAD) Channels(context.Context) (audio.Channel, error) {
	return 1, nil
}

func (scriptVAD) IsSpeech(_ context.Context, frame []byte) (bool, error) {
	return len(frame) > 0 && frame[0] == 1, nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.VADEnabled = false
	return cfg
}

func scriptFrames(cfg Config, script ...byte) [][]byte {
	frames := make([][]byte, 0, len(script))
	for _, marker := range script {
		frame := make([]byte, cfg.FrameBytes())
		frame[0] = marker
		frames = append(frames, frame)
	}
	return frames
}

func newTestInput(t *testing.T, cfg Config, backend *fakeBackend) *AudioInput {
	in, err := New(context.Background(), cfg, backend, OptionVAD{VAD: scriptVAD{}})
	require.NoError(t, err)
	return in
}

func TestCaptureWaitsForSpeechAndEndpoints(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	backend := &fakeBackend{
		Frames: scriptFrames(cfg, 0, 0, 0, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0),
	}
	in := newTestInput(t, cfg, backend)
	defer in.Close()

	pcm, err := in.Capture(ctx, 0, true)
	require.NoError(t, err)

	// 1 lead-in + 5 speech + 4 trailing silence frames
	assert.Equal(t, 10*cfg.FrameBytes(), len(pcm))
}

func TestCaptureFixedDuration(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	backend := &fakeBackend{
		Frames: scriptFrames(cfg, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1),
	}
	in := newTestInput(t, cfg, backend)
	defer in.Close()

	// 500ms at 64ms per frame truncates to 7 frames
	pcm, err := in.Capture(ctx, 500*time.Millisecond, false)
	require.NoError(t, err)
	assert.Equal(t, 7*cfg.FrameBytes(), len(pcm))
}

func TestCaptureTimeoutWithoutSpeech(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Timeout = 200 * time.Millisecond
	backend := &fakeBackend{
		Frames: scriptFrames(cfg, 0, 0, 0, 0, 0),
	}
	in := newTestInput(t, cfg, backend)
	defer in.Close()

	startTS := time.Now()
	pcm, err := in.Capture(ctx, 0, true)
	require.NoError(t, err)
	assert.Nil(t, pcm)
	assert.Less(t, time.Since(startTS), time.Second)
}

func TestCaptureTimeoutKeepsPartial(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Timeout = 200 * time.Millisecond
	// speech starts but the stream never goes silent long enough
	backend := &fakeBackend{
		Frames: scriptFrames(cfg, 1, 1),
	}
	in := newTestInput(t, cfg, backend)
	defer in.Close()

	pcm, err := in.Capture(ctx, 0, true)
	require.NoError(t, err)
	assert.Equal(t, 2*cfg.FrameBytes(), len(pcm))
}

func TestCaptureReturnsPartialWhenTheStreamDies(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Timeout = 30 * time.Second
	// the device dies after two speech frames, long before the timeout
	backend := &fakeBackend{
		Frames:    scriptFrames(cfg, 1, 1, 1, 1, 1),
		FailAfter: 2,
	}
	in := newTestInput(t, cfg, backend)
	defer in.Close()

	startTS := time.Now()
	pcm, err := in.Capture(ctx, 0, true)
	require.NoError(t, err)

	assert.Equal(t, 2*cfg.FrameBytes(), len(pcm))
	assert.Less(t, time.Since(startTS), time.Second)

	// the dead stream was torn down; the next capture reopens the device
	backend.Frames = scriptFrames(cfg, 1, 1, 0, 0, 0, 0)
	backend.FailAfter = 0
	pcm, err = in.Capture(ctx, 0, true)
	require.NoError(t, err)
	require.NotEmpty(t, pcm)
	assert.Equal(t, int64(2), backend.OpenCount.Load())
}

func TestCaptureReusesTheStream(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Timeout = 200 * time.Millisecond
	backend := &fakeBackend{
		Frames: scriptFrames(cfg, 1, 1, 0, 0, 0, 0, 1, 1, 0, 0, 0, 0),
	}
	in := newTestInput(t, cfg, backend)
	defer in.Close()

	_, err := in.Capture(ctx, 0, true)
	require.NoError(t, err)
	_, err = in.Capture(ctx, 0, true)
	require.NoError(t, err)

	assert.Equal(t, int64(1), backend.OpenCount.Load())
}

func TestStopStreamIsIdempotent(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	backend := &fakeBackend{
		Frames: scriptFrames(cfg, 0, 0, 0),
	}
	in := newTestInput(t, cfg, backend)

	require.NoError(t, in.StartStream(ctx))
	device := backend.device
	require.NoError(t, in.StopStream(ctx))
	require.NoError(t, in.StopStream(ctx))
	require.NoError(t, in.Close())

	assert.Equal(t, int64(1), device.StopCount.Load())
}

func TestCapturesAreSerialized(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Timeout = 200 * time.Millisecond
	backend := &fakeBackend{
		Frames: scriptFrames(cfg, 1, 1, 0, 0, 0, 0),
	}
	in := newTestInput(t, cfg, backend)
	defer in.Close()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := in.Capture(ctx, 0, true)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), backend.OpenCount.Load())
}

func TestInvalidConfigIsRejected(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.ChunkSize = 0

	_, err := New(ctx, cfg, &fakeBackend{})
	require.Error(t, err)
	assert.ErrorAs(t, err, &ErrInvalidConfig{})
}
