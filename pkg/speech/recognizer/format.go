package recognizer

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/audio/pkg/audio"
	"github.com/xaionaro-go/voice2text/pkg/speech"
)

type ErrAudioFormatMismatch struct {
	EngineName string
	Expected   audio.EncodingPCM
	Got        audio.EncodingPCM
}

func (e ErrAudioFormatMismatch) Error() string {
	return fmt.Sprintf(
		"engine '%s' expects %v audio, the capture is configured for %v",
		e.EngineName, e.Expected, e.Got,
	)
}

type ErrAudioChannelsMismatch struct {
	EngineName string
	Expected   audio.Channel
	Got        audio.Channel
}

func (e ErrAudioChannelsMismatch) Error() string {
	return fmt.Sprintf(
		"engine '%s' expects %d-channel audio, the capture is configured for %d channels",
		e.EngineName, e.Expected, e.Got,
	)
}

// CheckAudioFormat verifies that the capture format matches what the engine
// expects to be fed. Feeding an engine PCM of a different rate or layout than
// it declares produces garbage transcripts rather than errors, so callers
// should fail loudly on a mismatch instead of recognizing anyway.
func CheckAudioFormat(
	ctx context.Context,
	engine speech.Recognizer,
	encoding audio.EncodingPCM,
	channels audio.Channel,
) error {
	engineEncoding, err := engine.AudioEncoding(ctx)
	if err != nil {
		return fmt.Errorf("unable to query the audio encoding of engine '%s': %w", engine.Name(), err)
	}
	if expected, ok := engineEncoding.(audio.EncodingPCM); ok && expected != encoding {
		return ErrAudioFormatMismatch{
			EngineName: engine.Name(),
			Expected:   expected,
			Got:        encoding,
		}
	}

	engineChannels, err := engine.AudioChannels(ctx)
	if err != nil {
		return fmt.Errorf("unable to query the channel count of engine '%s': %w", engine.Name(), err)
	}
	if engineChannels != channels {
		return ErrAudioChannelsMismatch{
			EngineName: engine.Name(),
			Expected:   engineChannels,
			Got:        channels,
		}
	}
	return nil
}
