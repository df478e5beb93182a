package recognizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/audio/pkg/audio"
)

func TestCheckAudioFormatMatchingHostedEngine(t *testing.T) {
	ctx := context.Background()
	engine, err := New(ctx, "whisper_api", Params{
		APIKey:     "test-key",
		SampleRate: 44100,
		Channels:   2,
	})
	require.NoError(t, err)
	defer engine.Close()

	// the hosted engine adopted the capture format
	require.NoError(t, CheckAudioFormat(ctx, engine, audio.EncodingPCM{
		PCMFormat:  audio.PCMFormatS16LE,
		SampleRate: 44100,
	}, 2))
}

func TestCheckAudioFormatRejectsRateMismatch(t *testing.T) {
	ctx := context.Background()
	engine, err := New(ctx, "whisper_api", Params{APIKey: "test-key"})
	require.NoError(t, err)
	defer engine.Close()

	// the engine defaulted to 16 kHz, the capture runs at 44.1 kHz
	err = CheckAudioFormat(ctx, engine, audio.EncodingPCM{
		PCMFormat:  audio.PCMFormatS16LE,
		SampleRate: 44100,
	}, 1)
	require.Error(t, err)
	assert.ErrorAs(t, err, &ErrAudioFormatMismatch{})
}

func TestCheckAudioFormatRejectsFloat32ForInt16Engine(t *testing.T) {
	ctx := context.Background()
	engine, err := New(ctx, "deepgram", Params{APIKey: "test-key", SampleRate: 16000, Channels: 1})
	require.NoError(t, err)
	defer engine.Close()

	err = CheckAudioFormat(ctx, engine, audio.EncodingPCM{
		PCMFormat:  audio.PCMFormatFloat32LE,
		SampleRate: 16000,
	}, 1)
	require.Error(t, err)
	assert.ErrorAs(t, err, &ErrAudioFormatMismatch{})
}

func TestCheckAudioFormatRejectsChannelMismatch(t *testing.T) {
	ctx := context.Background()
	engine, err := New(ctx, "deepgram", Params{APIKey: "test-key", SampleRate: 16000, Channels: 1})
	require.NoError(t, err)
	defer engine.Close()

	err = CheckAudioFormat(ctx, engine, audio.EncodingPCM{
		PCMFormat:  audio.PCMFormatS16LE,
		SampleRate: 16000,
	}, 2)
	require.Error(t, err)
	assert.ErrorAs(t, err, &ErrAudioChannelsMismatch{})
}
