package recognizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	assert.Equal(t, []string{"deepgram", "whisper", "whisper_api"}, List())
}

func TestNewUnknownEngine(t *testing.T) {
	_, err := New(context.Background(), "siri", Params{})
	require.Error(t, err)
	assert.ErrorAs(t, err, &ErrUnknownEngine{})
}

func TestSelectNothingConfigured(t *testing.T) {
	_, err := Select(context.Background(), "", Params{})
	require.Error(t, err)
	assert.ErrorAs(t, err, &ErrNoEngineAvailable{})
}

func TestSelectPrefersHostedWhenOnlyKeyIsGiven(t *testing.T) {
	engine, err := Select(context.Background(), "", Params{APIKey: "test-key"})
	require.NoError(t, err)
	defer engine.Close()

	// without a local model, the first configured engine in priority order
	// is the hosted whisper API
	assert.Equal(t, "whisper_api", engine.Name())
}

func TestSelectPreferredNameIsBinding(t *testing.T) {
	engine, err := New(context.Background(), "deepgram", Params{APIKey: "test-key"})
	require.NoError(t, err)
	defer engine.Close()
	assert.Equal(t, "deepgram", engine.Name())
}

func TestSelectPreferredWhisperWithoutModelFails(t *testing.T) {
	_, err := Select(context.Background(), "whisper", Params{ModelPath: "/nonexistent/model.bin"})
	require.Error(t, err)
}
