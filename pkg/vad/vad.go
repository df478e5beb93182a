package vad

import (
	"context"
	"io"

	"github.com/xaionaro-go/audio/pkg/audio"
)

// VAD classifies one audio frame as speech-bearing or silent.
//
// Implementations are stateful (adaptive thresholds, detector contexts) and
// are not safe for concurrent use; the capture loop is the single caller.
type VAD interface {
	io.Closer

	Encoding(context.Context) (audio.Encoding, error)
	Channels(context.Context) (audio.Channel, error)

	IsSpeech(ctx context.Context, frame []byte) (bool, error)
}
