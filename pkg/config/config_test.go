package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "miniaudio", cfg.Audio.Backend)
	assert.Equal(t, 16000, cfg.Audio.SampleRate)
	assert.Equal(t, 1, cfg.Audio.Channels)
	assert.Equal(t, "int16", cfg.Audio.Format)
	assert.Equal(t, 1024, cfg.Audio.ChunkSize)
	assert.Equal(t, float64(300), cfg.Audio.SilenceThreshold)
	assert.True(t, cfg.Audio.DynamicSilence)
	assert.Equal(t, 0.2, cfg.Audio.SpeechPadEnd)
	assert.Equal(t, -1, cfg.Audio.DeviceIndex)
	assert.True(t, cfg.Audio.VADEnabled)
	assert.Equal(t, 1, cfg.Audio.VADMode)

	require.NoError(t, cfg.Validate())
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
audio:
  backend: portaudio
  silence_threshold: 500
  speech_pad_end: 0.3
engine:
  name: whisper
  model_path: /models/ggml-base.bin
  language: en-US
`))
	require.NoError(t, err)

	assert.Equal(t, "portaudio", cfg.Audio.Backend)
	assert.Equal(t, float64(500), cfg.Audio.SilenceThreshold)
	// untouched keys keep their defaults
	assert.Equal(t, 16000, cfg.Audio.SampleRate)
	assert.Equal(t, 1024, cfg.Audio.ChunkSize)

	assert.Equal(t, "whisper", cfg.Engine.Name)
	assert.Equal(t, "/models/ggml-base.bin", cfg.Engine.ModelPath)

	audioCfg := cfg.AudioInput()
	assert.Equal(t, 300*time.Millisecond, audioCfg.SpeechPadEnd)
	assert.Equal(t, 2*time.Second, audioCfg.Timeout)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(`
audio:
  sample_rte: 8000
`))
	require.Error(t, err)
}

func TestParseRejectsUnknownBackend(t *testing.T) {
	_, err := Parse([]byte(`
audio:
  backend: pulseaudio
`))
	require.Error(t, err)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	_, err := Parse([]byte(`
audio:
  chunk_size: -1
`))
	require.Error(t, err)

	_, err = Parse([]byte(`
audio:
  vad_mode: 7
`))
	require.Error(t, err)

	_, err = Parse([]byte(`
audio:
  vad_frame_ms: 25
`))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
}
