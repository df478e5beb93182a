// Package recognizer wires the concrete speech recognition engines into a
// registry keyed by engine name and selects the best available one.
package recognizer

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/mutablelogic/go-whisper/sys/whisper"
	"github.com/xaionaro-go/audio/pkg/audio"
	"github.com/xaionaro-go/voice2text/pkg/speech"
	"github.com/xaionaro-go/voice2text/pkg/speech/recognizer/implementations/deepgram"
	whisperlocal "github.com/xaionaro-go/voice2text/pkg/speech/recognizer/implementations/whisper"
	"github.com/xaionaro-go/voice2text/pkg/speech/recognizer/implementations/whisperapi"
)

// Params carries everything any engine might need; each engine picks the
// fields it cares about and ignores the rest.
type Params struct {
	Language speech.Language

	// what the caller will feed into Recognize; hosted engines stamp this
	// into the uploaded WAV header, zero means the engine default
	SampleRate audio.SampleRate
	Channels   audio.Channel

	// local engines
	ModelPath       string
	ShouldTranslate bool
	UseGPU          *bool
	GPUDeviceID     *int

	// hosted engines
	APIKey   string
	Model    string
	Endpoint string
}

type Factory struct {
	// IsConfigured reports whether Params carry enough to even try this
	// engine (a model file for local ones, an API key for hosted ones).
	IsConfigured func(params Params) bool

	New func(ctx context.Context, params Params) (speech.Recognizer, error)
}

func builtin() map[string]Factory {
	return map[string]Factory{
		"whisper": {
			IsConfigured: func(params Params) bool { return params.ModelPath != "" },
			New:          newWhisper,
		},
		"whisper_api": {
			IsConfigured: func(params Params) bool { return params.APIKey != "" },
			New:          newWhisperAPI,
		},
		"deepgram": {
			IsConfigured: func(params Params) bool { return params.APIKey != "" },
			New:          newDeepgram,
		},
	}
}

// List returns the names of all known engines, sorted.
func List() []string {
	factories := builtin()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs the engine with the given name.
func New(
	ctx context.Context,
	name string,
	params Params,
) (speech.Recognizer, error) {
	factory, ok := builtin()[name]
	if !ok {
		return nil, ErrUnknownEngine{Name: name}
	}
	return factory.New(ctx, params)
}

func newWhisper(ctx context.Context, params Params) (speech.Recognizer, error) {
	modelBytes, err := os.ReadFile(params.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read the model file '%s': %w", params.ModelPath, err)
	}
	var opts whisperlocal.Options
	if params.UseGPU != nil {
		opts = append(opts, whisperlocal.OptionUseGPU(*params.UseGPU))
	}
	if params.GPUDeviceID != nil {
		opts = append(opts, whisperlocal.OptionGPUDeviceID(*params.GPUDeviceID))
	}
	return whisperlocal.New(
		ctx,
		modelBytes,
		params.Language,
		whisperlocal.SamplingStrategyGreedy,
		params.ShouldTranslate,
		whisper.AlignmentAheadsPresetNone,
		opts...,
	)
}

func newWhisperAPI(_ context.Context, params Params) (speech.Recognizer, error) {
	var opts whisperapi.Options
	if params.Endpoint != "" {
		opts = append(opts, whisperapi.OptionEndpoint(params.Endpoint))
	}
	if params.Model != "" {
		opts = append(opts, whisperapi.OptionModel(params.Model))
	}
	if params.SampleRate > 0 {
		opts = append(opts, whisperapi.OptionSampleRate(params.SampleRate))
	}
	if params.Channels > 0 {
		opts = append(opts, whisperapi.OptionChannels(params.Channels))
	}
	return whisperapi.New(params.APIKey, params.Language, opts...), nil
}

func newDeepgram(_ context.Context, params Params) (speech.Recognizer, error) {
	var opts deepgram.Options
	if params.Endpoint != "" {
		opts = append(opts, deepgram.OptionEndpoint(params.Endpoint))
	}
	if params.Model != "" {
		opts = append(opts, deepgram.OptionModel(params.Model))
	}
	if params.SampleRate > 0 {
		opts = append(opts, deepgram.OptionSampleRate(params.SampleRate))
	}
	if params.Channels > 0 {
		opts = append(opts, deepgram.OptionChannels(params.Channels))
	}
	return deepgram.New(params.APIKey, params.Language, opts...), nil
}
