package audioinput

import (
	"github.com/xaionaro-go/voice2text/pkg/vad"
)

type sessionConfig struct {
	VAD vad.VAD
}

type Option interface {
	apply(*sessionConfig)
}

type Options []Option

func (opts Options) apply(cfg *sessionConfig) {
	for _, opt := range opts {
		opt.apply(cfg)
	}
}

func (opts Options) config() sessionConfig {
	cfg := sessionConfig{}
	opts.apply(&cfg)
	return cfg
}

// OptionVAD overrides the classifier built from the Config. It is mostly
// useful to substitute the classifier in tests.
type OptionVAD struct {
	VAD vad.VAD
}

func (opt OptionVAD) apply(cfg *sessionConfig) {
	cfg.VAD = opt.VAD
}
