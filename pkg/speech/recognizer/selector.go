package recognizer

import (
	"context"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/voice2text/pkg/speech"
)

// DefaultPriority is the order engines are tried in when none is requested
// explicitly: the local model first, hosted APIs as fallbacks.
var DefaultPriority = []string{"whisper", "whisper_api", "deepgram"}

// Select returns a ready-to-use engine. A non-empty preferred name is
// binding: if that engine cannot be constructed, the error is returned as
// is. Otherwise the engines are tried in DefaultPriority order, skipping
// the ones Params do not configure, and the first one that constructs
// successfully wins.
func Select(
	ctx context.Context,
	preferred string,
	params Params,
) (speech.Recognizer, error) {
	if preferred != "" {
		return New(ctx, preferred, params)
	}

	factories := builtin()
	var result *multierror.Error
	for _, name := range DefaultPriority {
		factory := factories[name]
		if !factory.IsConfigured(params) {
			logger.Debugf(ctx, "engine '%s' is not configured, skipping", name)
			continue
		}
		engine, err := factory.New(ctx, params)
		if err != nil {
			logger.Warnf(ctx, "unable to initialize engine '%s': %v", name, err)
			result = multierror.Append(result, err)
			continue
		}
		logger.Infof(ctx, "selected engine '%s'", name)
		return engine, nil
	}
	return nil, ErrNoEngineAvailable{Err: result.ErrorOrNil()}
}
