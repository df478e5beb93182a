package audioinput

import (
	"fmt"
	"time"

	"github.com/xaionaro-go/audio/pkg/audio"
)

type SampleFormat string

const (
	SampleFormatInt16   = SampleFormat("int16")
	SampleFormatFloat32 = SampleFormat("float32")
)

func (f SampleFormat) Size() int {
	if f == SampleFormatFloat32 {
		return 4
	}
	return 2
}

func (f SampleFormat) PCMFormat() audio.PCMFormat {
	if f == SampleFormatFloat32 {
		return audio.PCMFormatFloat32LE
	}
	return audio.PCMFormatS16LE
}

// Config describes one capture session. It is immutable after the session is
// constructed; changing anything requires a new session.
type Config struct {
	SampleRate int
	Channels   int
	Format     SampleFormat
	ChunkSize  int

	SilenceThreshold  float64
	DynamicSilence    bool
	MinSpeechDuration time.Duration
	SpeechPadStart    time.Duration
	SpeechPadEnd      time.Duration

	DeviceIndex int
	Timeout     time.Duration

	VADEnabled bool
	VADMode    int
	VADFrameMs int
}

// DefaultConfig mirrors the defaults the tool has always shipped with:
// 16kHz mono int16, 1024-sample chunks, adaptive energy floor starting at
// 300, WebRTC VAD in mode 1.
func DefaultConfig() Config {
	return Config{
		SampleRate: 16000,
		Channels:   1,
		Format:     SampleFormatInt16,
		ChunkSize:  1024,

		SilenceThreshold:  300,
		DynamicSilence:    true,
		MinSpeechDuration: 50 * time.Millisecond,
		SpeechPadStart:    100 * time.Millisecond,
		SpeechPadEnd:      200 * time.Millisecond,

		DeviceIndex: -1,
		Timeout:     2 * time.Second,

		VADEnabled: true,
		VADMode:    1,
		VADFrameMs: 30,
	}
}

func (cfg Config) Validate() error {
	if cfg.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", cfg.SampleRate)
	}
	if cfg.Channels <= 0 {
		return fmt.Errorf("channels must be positive, got %d", cfg.Channels)
	}
	switch cfg.Format {
	case SampleFormatInt16, SampleFormatFloat32:
	default:
		return fmt.Errorf("unknown sample format: '%s'", cfg.Format)
	}
	if cfg.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", cfg.ChunkSize)
	}
	if cfg.SilenceThreshold < 0 {
		return fmt.Errorf("silence threshold must be non-negative, got %f", cfg.SilenceThreshold)
	}
	if cfg.SpeechPadStart < 0 || cfg.SpeechPadEnd < 0 {
		return fmt.Errorf("speech paddings must be non-negative, got %v and %v", cfg.SpeechPadStart, cfg.SpeechPadEnd)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", cfg.Timeout)
	}
	if cfg.VADMode < 0 || cfg.VADMode > 3 {
		return fmt.Errorf("VAD mode must be within 0..3, got %d", cfg.VADMode)
	}
	switch cfg.VADFrameMs {
	case 10, 20, 30:
	default:
		return fmt.Errorf("VAD frame length must be 10, 20 or 30 ms, got %d", cfg.VADFrameMs)
	}
	return nil
}

func (cfg Config) Encoding() audio.EncodingPCM {
	return audio.EncodingPCM{
		PCMFormat:  cfg.Format.PCMFormat(),
		SampleRate: audio.SampleRate(cfg.SampleRate),
	}
}

// FrameDuration is how much wall-clock audio one chunk-size frame holds.
func (cfg Config) FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) * float64(cfg.ChunkSize) / float64(cfg.SampleRate))
}

// FrameBytes is the size of one full frame in bytes.
func (cfg Config) FrameBytes() int {
	return cfg.ChunkSize * cfg.Channels * cfg.Format.Size()
}
