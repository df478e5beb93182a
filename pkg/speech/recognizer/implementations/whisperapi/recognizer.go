// Package whisperapi transcribes utterances through an OpenAI-compatible
// `/v1/audio/transcriptions` endpoint (api.openai.com itself, or any
// self-hosted server speaking the same protocol).
package whisperapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/audio/pkg/audio"
	"github.com/xaionaro-go/voice2text/pkg/speech"
	"github.com/xaionaro-go/voice2text/pkg/wavfile"
)

const (
	DefaultEndpoint   = "https://api.openai.com"
	DefaultModel      = "whisper-1"
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
	return "whisper_api"
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

type transcriptionResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
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

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, fmt.Errorf("unable to create the file part: %w", err)
	}
	if _, err := fw.Write(wavBytes); err != nil {
		return nil, fmt.Errorf("unable to write the file part: %w", err)
	}
	if err := mw.WriteField("model", r.Model); err != nil {
		return nil, fmt.Errorf("unable to write the model field: %w", err)
	}
	if !r.Language.IsAuto() {
		if err := mw.WriteField("language", string(r.Language.Family())); err != nil {
			return nil, fmt.Errorf("unable to write the language field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("unable to finalize the multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		strings.TrimRight(r.Endpoint, "/")+"/v1/audio/transcriptions",
		&body,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to construct the request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+r.APIKey)

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return nil, ErrRequest{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, ErrBadStatus{StatusCode: resp.StatusCode, Body: string(msg)}
	}

	var parsed transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("unable to parse the response: %w", err)
	}

	text := speech.Text(strings.TrimSpace(parsed.Text))
	if !text.ContainsAlphaNum() {
		return nil, nil
	}
	lang := r.Language
	if lang.IsAuto() && parsed.Language != "" {
		lang = speech.Language(parsed.Language)
	}
	return &speech.Result{
		Text:       text,
		Confidence: 1,
		Language:   lang,
	}, nil
}
