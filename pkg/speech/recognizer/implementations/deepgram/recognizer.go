// Package deepgram transcribes utterances through Deepgram's `/v1/listen`
// API. The audio is submitted as a WAV body in a single POST per utterance.
package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/audio/pkg/audio"
	"github.com/xaionaro-go/voice2text/pkg/speech"
	"github.com/xaionaro-go/voice2text/pkg/wavfile"
)

const (
	DefaultEndpoint   = "https://api.deepgram.com"
	DefaultModel      = "nova-2"
	DefaultSampleRate = audio.SampleRate(16000)
	DefaultChannels   = audio.Channel(1)
)

type Recognizer struct {
	Endpoint   string
	Model      string
	APIKey     string
	Language   speech.Language
	SampleRate audio.SampleRate
	Channels   audio.Channel
	HTTPClient *http.Client
}

var _ speech.Recognizer = (*Recognizer)(nil)

func New(
	apiKey string,
	language speech.Language,
	opts ...Option,
) *Recognizer {
	cfg := Options(opts).config()
	return &Recognizer{
		Endpoint:   cfg.Endpoint,
		Model:      cfg.Model,
		APIKey:     apiKey,
		Language:   language,
		SampleRate: cfg.SampleRate,
		Channels:   cfg.Channels,
		HTTPClient: cfg.HTTPClient,
	}
}

func (r *Recognizer) Name() string {
	return "deepgram"
}

func (r *Recognizer) Close() error {
	return nil
}

func (r *Recognizer) AudioEncoding(context.Context) (audio.Encoding, error) {
	return audio.EncodingPCM{
		PCMFormat:  audio.PCMFormatS16LE,
		SampleRate: r.SampleRate,
	}, nil
}

func (r *Recognizer) AudioChannels(context.Context) (audio.Channel, error) {
	return r.Channels, nil
}

type listenResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float32 `json:"confidence"`
			} `json:"alternatives"`
			DetectedLanguage string `json:"detected_language"`
		} `json:"channels"`
	} `json:"results"`
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

	wavBytes, err := wavfile.EncodeBytes(pcm, r.SampleRate, r.Channels)
	if err != nil {
		return nil, fmt.Errorf("unable to encode the audio as WAV: %w", err)
	}

	query := url.Values{}
	query.Set("model", r.Model)
	query.Set("punctuate", "true")
	query.Set("smart_format", "true")
	if r.Language.IsAuto() {
		query.Set("detect_language", "true")
	} else {
		query.Set("language", string(r.Language.Family()))
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		strings.TrimRight(r.Endpoint, "/")+"/v1/listen?"+query.Encode(),
		bytes.NewReader(wavBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to construct the request: %w", err)
	}
	req.Header.Set("Content-Type", "audio/wav")
	req.Header.Set("Authorization", "Token "+r.APIKey)

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return nil, ErrRequest{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, ErrBadStatus{StatusCode: resp.StatusCode, Body: string(msg)}
	}

	var parsed listenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("unable to parse the response: %w", err)
	}

	if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
		return nil, nil
	}
	channel := parsed.Results.Channels[0]
	alternative := channel.Alternatives[0]

	text := speech.Text(strings.TrimSpace(alternative.Transcript))
	if !text.ContainsAlphaNum() {
		return nil, nil
	}
	lang := r.Language
	if lang.IsAuto() && channel.DetectedLanguage != "" {
		lang = speech.Language(channel.DetectedLanguage)
	}
	return &speech.Result{
		Text:       text,
		Confidence: alternative.Confidence,
		Language:   lang,
	}, nil
}
