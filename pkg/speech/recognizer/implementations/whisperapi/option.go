package whisperapi

import (
	"net/http"

	"github.com/xaionaro-go/audio/pkg/audio"
)

type config struct {
	Endpoint   string
	Model      string
	SampleRate audio.SampleRate
	Channels   audio.Channel
	HTTPClient *http.Client
}

func defaultConfig() config {
	return config{
		Endpoint:   DefaultEndpoint,
		Model:      DefaultModel,
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
		HTTPClient: http.DefaultClient,
	}
}

type Option interface {
	apply(*config)
}

type Options []Option

func (opts Options) apply(cfg *config) {
	for _, opt := range opts {
		opt.apply(cfg)
	}
}

func (opts Options) config() config {
	cfg := defaultConfig()
	opts.apply(&cfg)
	return cfg
}

type OptionEndpoint string

func (opt OptionEndpoint) apply(cfg *config) {
	cfg.Endpoint = string(opt)
}

type OptionModel string

func (opt OptionModel) apply(cfg *config) {
	cfg.Model = string(opt)
}

// OptionSampleRate declares the rate of the PCM handed to Recognize, so the
// WAV header describes the audio truthfully.
type OptionSampleRate audio.SampleRate

func (opt OptionSampleRate) apply(cfg *config) {
	cfg.SampleRate = audio.SampleRate(opt)
}

type OptionChannels audio.Channel

func (opt OptionChannels) apply(cfg *config) {
	cfg.Channels = audio.Channel(opt)
}

type OptionHTTPClient struct {
	Client *http.Client
}

func (opt OptionHTTPClient) apply(cfg *config) {
	cfg.HTTPClient = opt.Client
}
