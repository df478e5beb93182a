// Package config loads the tool's YAML configuration file. Durations are
// written as seconds (floats) in the file, the way they are spoken about:
// `speech_pad_end: 0.2`.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/xaionaro-go/voice2text/pkg/audioinput"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Audio  Audio  `yaml:"audio"`
	Engine Engine `yaml:"engine"`
}

type Audio struct {
	Backend           string  `yaml:"backend"`
	SampleRate        int     `yaml:"sample_rate"`
	Channels          int     `yaml:"channels"`
	Format            string  `yaml:"format"`
	ChunkSize         int     `yaml:"chunk_size"`
	SilenceThreshold  float64 `yaml:"silence_threshold"`
	DynamicSilence    bool    `yaml:"dynamic_silence"`
	MinSpeechDuration float64 `yaml:"min_speech_duration"`
	SpeechPadStart    float64 `yaml:"speech_pad_start"`
	SpeechPadEnd      float64 `yaml:"speech_pad_end"`
	DeviceIndex       int     `yaml:"device_index"`
	Timeout           float64 `yaml:"timeout"`
	VADEnabled        bool    `yaml:"vad_enabled"`
	VADMode           int     `yaml:"vad_mode"`
	VADFrameMs        int     `yaml:"vad_frame_ms"`
}

type Engine struct {
	Name      string `yaml:"name"`
	Language  string `yaml:"language"`
	ModelPath string `yaml:"model_path"`
	Translate bool   `yaml:"translate"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	Endpoint  string `yaml:"endpoint"`
}

func Default() Config {
	audioCfg := audioinput.DefaultConfig()
	return Config{
		Audio: Audio{
			Backend:           "miniaudio",
			SampleRate:        audioCfg.SampleRate,
			Channels:          audioCfg.Channels,
			Format:            string(audioCfg.Format),
			ChunkSize:         audioCfg.ChunkSize,
			SilenceThreshold:  audioCfg.SilenceThreshold,
			DynamicSilence:    audioCfg.DynamicSilence,
			MinSpeechDuration: audioCfg.MinSpeechDuration.Seconds(),
			SpeechPadStart:    audioCfg.SpeechPadStart.Seconds(),
			SpeechPadEnd:      audioCfg.SpeechPadEnd.Seconds(),
			DeviceIndex:       audioCfg.DeviceIndex,
			Timeout:           audioCfg.Timeout.Seconds(),
			VADEnabled:        audioCfg.VADEnabled,
			VADMode:           audioCfg.VADMode,
			VADFrameMs:        audioCfg.VADFrameMs,
		},
		Engine: Engine{},
	}
}

// Parse overlays the YAML document onto the defaults. Unknown keys are
// rejected, so a typo in the file fails loudly instead of silently keeping
// the default.
func Parse(b []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to parse the config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read the config file '%s': %w", path, err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return Config{}, fmt.Errorf("in '%s': %w", path, err)
	}
	return cfg, nil
}

func (cfg Config) Validate() error {
	switch cfg.Audio.Backend {
	case "miniaudio", "portaudio":
	default:
		return fmt.Errorf("unknown audio backend: '%s'", cfg.Audio.Backend)
	}
	return cfg.AudioInput().Validate()
}

// AudioInput converts the file representation into the capture config.
func (cfg Config) AudioInput() audioinput.Config {
	return audioinput.Config{
		SampleRate:        cfg.Audio.SampleRate,
		Channels:          cfg.Audio.Channels,
		Format:            audioinput.SampleFormat(cfg.Audio.Format),
		ChunkSize:         cfg.Audio.ChunkSize,
		SilenceThreshold:  cfg.Audio.SilenceThreshold,
		DynamicSilence:    cfg.Audio.DynamicSilence,
		MinSpeechDuration: secondsToDuration(cfg.Audio.MinSpeechDuration),
		SpeechPadStart:    secondsToDuration(cfg.Audio.SpeechPadStart),
		SpeechPadEnd:      secondsToDuration(cfg.Audio.SpeechPadEnd),
		DeviceIndex:       cfg.Audio.DeviceIndex,
		Timeout:           secondsToDuration(cfg.Audio.Timeout),
		VADEnabled:        cfg.Audio.VADEnabled,
		VADMode:           cfg.Audio.VADMode,
		VADFrameMs:        cfg.Audio.VADFrameMs,
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
