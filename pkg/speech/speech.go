package speech

import (
	"context"
	"io"
	"strings"
	"unicode"

	"github.com/xaionaro-go/audio/pkg/audio"
)

type Text string

func (t Text) ContainsAlphaNum() bool {
	return strings.ContainsFunc(string(t), func(r rune) bool {
		if r == '-' {
			return false
		}
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
}

// Result is the outcome of one successful recognition pass over one utterance.
type Result struct {
	Text       Text
	Confidence float32
	Language   Language
}

// Recognizer converts one finished utterance (raw PCM of the format reported
// by AudioEncoding/AudioChannels) into text. A nil *Result with a nil error
// means the recognizer understood the audio as containing no usable speech;
// it is a normal outcome, not a failure.
type Recognizer interface {
	io.Closer
	Name() string
	AudioEncoding(context.Context) (audio.Encoding, error)
	AudioChannels(context.Context) (audio.Channel, error)
	Recognize(ctx context.Context, pcm []byte) (*Result, error)
}
