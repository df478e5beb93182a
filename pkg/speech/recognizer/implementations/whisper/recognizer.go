package whisper

import (
	"context"
	"crypto/sha1"
	"strings"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mutablelogic/go-whisper/sys/whisper"
	"github.com/xaionaro-go/audio/pkg/audio"
	"github.com/xaionaro-go/voice2text/pkg/speech"
	"github.com/xaionaro-go/xsync"
)

// #cgo pkg-config: libwhisper
// #cgo linux pkg-config: libwhisper-linux
// #cgo darwin pkg-config: libwhisper-darwin
import "C"

// whisper.cpp refuses buffers shorter than a second, so shorter utterances
// are padded with trailing silence up to this length.
const minAudioDuration = 1100 * time.Millisecond

// Recognizer transcribes one utterance per call with a local whisper.cpp
// model. Calls are serialized on the Mutex: a whisper context can process
// only one buffer at a time.
type Recognizer struct {
	xsync.Mutex
	Context   *whisper.Context
	Params    whisper.FullParams
	Language  speech.Language
	ModelHash [sha1.Size]byte
}

var _ speech.Recognizer = (*Recognizer)(nil)

func New(
	ctx context.Context,
	modelBytes []byte,
	language speech.Language,
	samplingStrategy SamplingStrategy,
	shouldTranslate bool,
	alignmentAheadsPreset whisper.AlignmentAheadsPreset,
	opts ...Option,
) (*Recognizer, error) {
	cfg := Options(opts).config()
	contextParams := whisper.DefaultContextParams()
	if cfg.UseGPU != nil {
		contextParams.SetUseGpu(*cfg.UseGPU)
	}
	if cfg.GPUDeviceID != nil {
		contextParams.SetGpuDevice(*cfg.GPUDeviceID)
	}
	if cfg.FlashAttn != nil {
		contextParams.SetFlashAttn(*cfg.FlashAttn)
	}
	contextParams.SetTokenTimestamps(false)
	contextParams.SetDTWAheadsPreset(alignmentAheadsPreset)
	whisper.Whisper_log_set(func(level whisper.LogLevel, text string) {
		logger.FromCtx(ctx).Log(logLevelFromWhisper(level), text)
	})

	h := sha1.Sum(modelBytes)
	logger.Debugf(ctx, "model SHA1: %X", h)

	whisperCtx := whisper.Whisper_init_from_buffer_with_params(modelBytes, contextParams)
	if whisperCtx == nil {
		return nil, ErrInitModel{}
	}

	r := &Recognizer{
		Context:   whisperCtx,
		Params:    whisper.DefaultFullParams(samplingStrategy.ToWhisper()),
		Language:  language,
		ModelHash: h,
	}

	if shouldTranslate {
		if !whisper.Whisper_is_multilingual(r.Context) {
			whisper.Whisper_free(r.Context)
			return nil, ErrModelCannotTranslate{}
		}
	}

	lang := LanguageToWhisper(language)
	logger.Infof(ctx, "language: '%v'; shouldTranslate: %v", lang, shouldTranslate)

	r.Params.SetTranslate(shouldTranslate)
	r.Params.SetTokenTimestamps(true)
	r.Params.SetLanguage(lang)
	return r, nil
}

func (r *Recognizer) Name() string {
	return "whisper"
}

func (r *Recognizer) Close() error {
	ctx := context.TODO()
	r.Mutex.Do(xsync.WithNoLogging(ctx, true), func() {
		if r.Context != nil {
			whisper.Whisper_free(r.Context)
			r.Context = nil
		}
	})
	return nil
}

func (r *Recognizer) AudioEncoding(context.Context) (audio.Encoding, error) {
	return r.AudioEncodingNoErr(), nil
}

func (*Recognizer) AudioEncodingNoErr() audio.EncodingPCM {
	return audio.EncodingPCM{
		PCMFormat:  audio.PCMFormatS16LE,
		SampleRate: 16000,
	}
}

func (r *Recognizer) AudioChannels(context.Context) (audio.Channel, error) {
	return r.AudioChannelsNoErr(), nil
}

func (*Recognizer) AudioChannelsNoErr() audio.Channel {
	return 1
}

func (r *Recognizer) Recognize(
	ctx context.Context,
	pcm []byte,
) (_ret *speech.Result, _err error) {
	logger.Debugf(ctx, "Recognize(ctx, pcm[len:%d])", len(pcm))
	defer func() { logger.Debugf(ctx, "/Recognize(ctx, pcm[len:%d]): %#+v, %v", len(pcm), _ret, _err) }()

	if len(pcm) == 0 {
		return nil, nil
	}

	samples := convertInt16LEBytesToFloat32Slice(pcm)
	minSamples := int(r.AudioEncodingNoErr().SampleRate) * int(minAudioDuration) / int(time.Second)
	if len(samples) < minSamples {
		samples = append(samples, make([]float32, minSamples-len(samples))...)
	}

	return xsync.DoR2(xsync.WithNoLogging(ctx, true), &r.Mutex, func() (*speech.Result, error) {
		return r.recognizeNoLock(ctx, samples)
	})
}

func (r *Recognizer) recognizeNoLock(
	ctx context.Context,
	samples []float32,
) (*speech.Result, error) {
	r.Params.SetAbortCallback(r.Context, func() bool {
		select {
		case <-ctx.Done():
			return true
		default:
			return false
		}
	})

	startTS := time.Now()
	if err := whisper.Whisper_full(r.Context, r.Params, samples); err != nil {
		return nil, ErrTranscribe{Err: err}
	}
	logger.Debugf(ctx, "transcribed %d samples, it took %v", len(samples), time.Since(startTS))

	numSegments := r.Context.NumSegments()
	logger.Debugf(ctx, "numSegments == %d", numSegments)

	var texts []string
	var confidenceSum float64
	var confidenceCount int
	for i := 0; i < numSegments; i++ {
		segment := r.Context.Segment(i)
		if isNonSpeechMarker(segment.Text) {
			logger.Debugf(ctx, "skipping a non-speech marker: '%s'", segment.Text)
			continue
		}
		if !speech.Text(segment.Text).ContainsAlphaNum() {
			continue
		}
		texts = append(texts, strings.Trim(segment.Text, " "))
		for _, token := range segment.Tokens {
			confidenceSum += float64(token.P)
			confidenceCount++
		}
	}
	if len(texts) == 0 {
		return nil, nil
	}

	confidence := float32(0.5)
	if confidenceCount > 0 {
		confidence = float32(confidenceSum / float64(confidenceCount))
	}

	lang := r.Language
	if lang.IsAuto() {
		lang = speech.Language(whisper.Whisper_lang_str(r.Context.DefaultLangId()))
	}
	return &speech.Result{
		Text:       speech.Text(strings.Join(texts, " ")),
		Confidence: confidence,
		Language:   lang,
	}, nil
}

// isNonSpeechMarker reports whether a segment is one of the markers whisper
// emits for non-speech audio, e.g. [silence], [music], (clicking), *thump*,
// or a pair of note signs.
func isNonSpeechMarker(text string) bool {
	trimmed := strings.ToLower(strings.Trim(text, " "))
	switch {
	case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
		return true
	case strings.HasPrefix(trimmed, "(") && strings.HasSuffix(trimmed, ")"):
		return true
	case strings.HasPrefix(trimmed, "*") && strings.HasSuffix(trimmed, "*"):
		return true
	case strings.HasPrefix(trimmed, "♪") && strings.HasSuffix(trimmed, "♪"):
		return true
	}
	return false
}
