package deepgram

import (
	"context"
	"encoding/binary"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/voice2text/pkg/speech"
)

func TestRecognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/listen", r.URL.Path)
		assert.Equal(t, "Token test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "audio/wav", r.Header.Get("Content-Type"))
		assert.Equal(t, "nova-2", r.URL.Query().Get("model"))
		assert.Equal(t, "ru", r.URL.Query().Get("language"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"results": {
				"channels": [{
					"alternatives": [{"transcript": "привет мир", "confidence": 0.97}]
				}]
			}
		}`))
	}))
	defer srv.Close()

	r := New("test-key", speech.LanguageRussian, OptionEndpoint(srv.URL))
	result, err := r.Recognize(context.Background(), make([]byte, 3200))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, speech.Text("привет мир"), result.Text)
	assert.InDelta(t, 0.97, result.Confidence, 1e-6)
}

func TestRecognizeLanguageDetection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("detect_language"))
		_, _ = w.Write([]byte(`{
			"results": {
				"channels": [{
					"alternatives": [{"transcript": "hello", "confidence": 0.9}],
					"detected_language": "en"
				}]
			}
		}`))
	}))
	defer srv.Close()

	r := New("test-key", speech.LanguageAuto, OptionEndpoint(srv.URL))
	result, err := r.Recognize(context.Background(), make([]byte, 3200))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, speech.Language("en"), result.Language)
}

func TestRecognizeUploadsTheConfiguredFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(body), 44)
		assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(body[22:24]))
		assert.Equal(t, uint32(48000), binary.LittleEndian.Uint32(body[24:28]))

		_, _ = w.Write([]byte(`{
			"results": {
				"channels": [{
					"alternatives": [{"transcript": "ok", "confidence": 1}]
				}]
			}
		}`))
	}))
	defer srv.Close()

	r := New(
		"test-key",
		speech.LanguageAuto,
		OptionEndpoint(srv.URL),
		OptionSampleRate(48000),
		OptionChannels(2),
	)
	_, err := r.Recognize(context.Background(), make([]byte, 3200))
	require.NoError(t, err)
}

func TestRecognizeEmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": {"channels": []}}`))
	}))
	defer srv.Close()

	r := New("test-key", speech.LanguageAuto, OptionEndpoint(srv.URL))
	result, err := r.Recognize(context.Background(), make([]byte, 3200))
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestRecognizeBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	r := New("test-key", speech.LanguageAuto, OptionEndpoint(srv.URL))
	_, err := r.Recognize(context.Background(), make([]byte, 3200))
	require.Error(t, err)

	var badStatus ErrBadStatus
	require.ErrorAs(t, err, &badStatus)
	assert.Equal(t, http.StatusTooManyRequests, badStatus.StatusCode)
}
