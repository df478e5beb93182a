// Package audioinput captures microphone audio and cuts it into utterances.
//
// The capture pipeline is split in two halves that meet in a FrameStore:
// the device backend produces fixed-size PCM frames (from a driver callback
// or a blocking reader), and Capture consumes them, classifies each frame as
// speech or silence and assembles one padded utterance per call.
package audioinput

import (
	"context"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/audio/pkg/audio"
	"github.com/xaionaro-go/voice2text/pkg/audiodevice"
	"github.com/xaionaro-go/voice2text/pkg/vad"
	"github.com/xaionaro-go/voice2text/pkg/vad/implementations/energy"
	"github.com/xaionaro-go/voice2text/pkg/vad/implementations/libfvad"
	"github.com/xaionaro-go/voice2text/pkg/wavfile"
	"github.com/xaionaro-go/xsync"
)

// PollInterval is how often the capture loop checks the FrameStore for
// freshly delivered frames.
const PollInterval = 10 * time.Millisecond

type AudioInput struct {
	Config  Config
	Backend audiodevice.Backend
	VAD     vad.VAD

	StreamLocker  xsync.Mutex
	CaptureLocker xsync.Mutex

	// ErrLocker guards streamErr alone. The device reports errors from its
	// reader goroutine, which may be blocked exactly while StopStream holds
	// StreamLocker waiting for that goroutine, so the error hand-off must not
	// contend on StreamLocker.
	ErrLocker xsync.Mutex

	device        audiodevice.Device
	store         *FrameStore
	stopRequested bool
	streamErr     error
}

// New builds a capture session on top of the given device backend. The
// classifier is assembled from the Config: the energy threshold always, and
// the WebRTC detector in front of it when enabled and the format allows
// (libfvad takes mono int16 only).
func New(
	ctx context.Context,
	cfg Config,
	backend audiodevice.Backend,
	opts ...Option,
) (*AudioInput, error) {
	if err := cfg.Validate(); err != nil {
		return nil, ErrInvalidConfig{Err: err}
	}

	sessionCfg := Options(opts).config()
	detector := sessionCfg.VAD
	if detector == nil {
		detector = buildVAD(ctx, cfg)
	}

	return &AudioInput{
		Config:  cfg,
		Backend: backend,
		VAD:     detector,
		store:   NewFrameStore(0),
	}, nil
}

func buildVAD(ctx context.Context, cfg Config) vad.VAD {
	energyVAD := energy.NewVAD(
		cfg.Encoding(),
		audio.Channel(cfg.Channels),
		cfg.SilenceThreshold,
		cfg.DynamicSilence,
	)
	if !cfg.VADEnabled {
		return energyVAD
	}
	if cfg.Format != SampleFormatInt16 || cfg.Channels != 1 {
		logger.Debugf(ctx, "the WebRTC detector takes mono int16 only, falling back to the energy threshold")
		return energyVAD
	}

	oracle, err := libfvad.NewVAD(audio.SampleRate(cfg.SampleRate), cfg.VADMode)
	if err != nil {
		logger.Warnf(ctx, "unable to initialize the WebRTC detector, falling back to the energy threshold: %v", err)
		return energyVAD
	}
	return &vad.Fallback{
		Primary: oracle,
		Backup:  energyVAD,
	}
}

func (in *AudioInput) params() audiodevice.Params {
	return audiodevice.Params{
		Encoding:    in.Config.Encoding(),
		Channels:    audio.Channel(in.Config.Channels),
		DeviceIndex: in.Config.DeviceIndex,
		ChunkSize:   in.Config.ChunkSize,
	}
}

func (in *AudioInput) ListDevices(ctx context.Context) ([]audiodevice.Info, error) {
	return in.Backend.ListDevices(ctx)
}

// StartStream opens the device and begins feeding the FrameStore. Calling
// it while the stream is already running is a no-op.
func (in *AudioInput) StartStream(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "StartStream()")
	defer func() { logger.Debugf(ctx, "/StartStream(): %v", _err) }()

	return xsync.DoR1(ctx, &in.StreamLocker, func() error {
		if in.device != nil {
			return nil
		}
		in.stopRequested = false
		in.setStreamError(ctx, nil)

		device, err := in.Backend.Open(ctx, in.params(), audiodevice.Callbacks{
			OnFrame: func(frame []byte) {
				in.store.Push(ctx, frame)
			},
			OnError: func(err error) {
				logger.Errorf(ctx, "the capture stream died: %v", err)
				in.setStreamError(ctx, err)
			},
		})
		if err != nil {
			return ErrStreamStart{Err: err}
		}
		if err := device.Start(ctx); err != nil {
			_ = device.Close()
			return ErrStreamStart{Err: err}
		}
		in.device = device
		return nil
	})
}

// StopStream stops the device and marks any in-flight Capture to wind down
// with whatever it accumulated. It is safe to call at any moment, any number
// of times.
func (in *AudioInput) StopStream(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "StopStream()")
	defer func() { logger.Debugf(ctx, "/StopStream(): %v", _err) }()

	return xsync.DoR1(ctx, &in.StreamLocker, func() error {
		in.stopRequested = true
		if in.device == nil {
			return nil
		}
		err := in.device.Stop()
		in.device = nil
		return err
	})
}

func (in *AudioInput) isStopRequested(ctx context.Context) bool {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &in.StreamLocker, func() bool {
		return in.stopRequested
	})
}

func (in *AudioInput) setStreamError(ctx context.Context, err error) {
	in.ErrLocker.Do(xsync.WithNoLogging(ctx, true), func() {
		in.streamErr = err
	})
}

func (in *AudioInput) streamError(ctx context.Context) error {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &in.ErrLocker, func() error {
		return in.streamErr
	})
}

// Capture records one utterance and returns it as raw PCM.
//
// With waitForSpeech the call idles until the classifier reports speech,
// prepending up to SpeechPadStart of lead-in, and ends the utterance once
// trailing silence outlasts SpeechPadEnd; without it recording starts
// immediately. A positive duration caps the utterance at that length.
// If the timeout elapses first, whatever was accumulated is returned; nil
// audio with nil error means no speech was heard at all.
//
// Concurrent calls are serialized: the stream cannot feed two captures at
// once.
func (in *AudioInput) Capture(
	ctx context.Context,
	duration time.Duration,
	waitForSpeech bool,
) (_ret []byte, _err error) {
	logger.Debugf(ctx, "Capture(ctx, %v, %t)", duration, waitForSpeech)
	defer func() { logger.Debugf(ctx, "/Capture(ctx, %v, %t): %d bytes, %v", duration, waitForSpeech, len(_ret), _err) }()

	return xsync.DoR2(ctx, &in.CaptureLocker, func() ([]byte, error) {
		return in.captureNoLock(ctx, duration, waitForSpeech)
	})
}

func (in *AudioInput) captureNoLock(
	ctx context.Context,
	duration time.Duration,
	waitForSpeech bool,
) ([]byte, error) {
	if err := in.StartStream(ctx); err != nil {
		return nil, err
	}
	in.store.Clear(ctx)

	maxFrames := 0
	if duration > 0 {
		maxFrames = int(duration / in.Config.FrameDuration())
	}
	seg := NewSegmenter(
		in.Config.FrameDuration(),
		in.Config.SpeechPadStart,
		in.Config.SpeechPadEnd,
		maxFrames,
		waitForSpeech,
	)

	deadline := time.Now().Add(in.Config.Timeout)
	for !seg.State().IsTerminal() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if in.isStopRequested(ctx) {
			seg.MarkTimedOut()
			break
		}

		for _, frame := range in.store.Drain(ctx) {
			if seg.Feed(frame, in.classifyFrame(ctx, frame)).IsTerminal() {
				break
			}
		}
		if seg.State().IsTerminal() {
			break
		}

		// the producer is dead; the drain above already consumed
		// everything it delivered before dying
		if in.streamError(ctx) != nil {
			seg.MarkError()
			break
		}

		if time.Now().After(deadline) {
			seg.MarkTimedOut()
			break
		}
		time.Sleep(PollInterval)
	}

	switch state := seg.State(); state {
	case StateCompleted:
		return seg.Bytes(), nil
	case StateTimedOut:
		buf := seg.Bytes()
		if len(buf) == 0 {
			logger.Debugf(ctx, "no speech was heard within %v", in.Config.Timeout)
			return nil, nil
		}
		logger.Debugf(ctx, "the timeout preempted the capture, returning %d frames", seg.FrameCount())
		return buf, nil
	case StateError:
		// tear the dead stream down so the next Capture reopens it
		if err := in.StopStream(ctx); err != nil {
			logger.Errorf(ctx, "unable to stop the dead stream: %v", err)
		}
		logger.Errorf(ctx, "the stream died mid-capture, returning %d frames: %v", seg.FrameCount(), in.streamError(ctx))
		return seg.Bytes(), nil
	default:
		logger.Errorf(ctx, "the capture ended in an unexpected state: %v", state)
		return seg.Bytes(), nil
	}
}

func (in *AudioInput) classifyFrame(ctx context.Context, frame []byte) bool {
	isSpeech, err := in.VAD.IsSpeech(ctx, frame)
	if err != nil {
		logger.Errorf(ctx, "unable to classify a frame, treating it as silence: %v", err)
		return false
	}
	return isSpeech
}

// SaveWAV writes an utterance returned by Capture to a RIFF/WAVE file.
// Float32 captures are converted to int16, so the result is always playable
// 16-bit PCM.
func (in *AudioInput) SaveWAV(
	ctx context.Context,
	path string,
	pcm []byte,
) (_err error) {
	logger.Debugf(ctx, "SaveWAV(ctx, '%s', %d bytes)", path, len(pcm))
	defer func() { logger.Debugf(ctx, "/SaveWAV(ctx, '%s', %d bytes): %v", path, len(pcm), _err) }()

	if in.Config.Format == SampleFormatFloat32 {
		pcm = convertFloat32LEToInt16LE(pcm)
	}
	return wavfile.Save(
		path,
		pcm,
		audio.SampleRate(in.Config.SampleRate),
		audio.Channel(in.Config.Channels),
	)
}

func (in *AudioInput) Close() error {
	ctx := context.TODO()
	var result *multierror.Error
	result = multierror.Append(result, in.StopStream(ctx))
	result = multierror.Append(result, in.VAD.Close())
	result = multierror.Append(result, in.Backend.Close())
	return result.ErrorOrNil()
}
