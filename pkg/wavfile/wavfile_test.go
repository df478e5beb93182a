package wavfile

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pcmOf(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func TestEncodeBytesHeader(t *testing.T) {
	pcm := pcmOf(0, 100, -100, 32767, -32768)
	b, err := EncodeBytes(pcm, 16000, 1)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(b), 44)
	assert.Equal(t, "RIFF", string(b[0:4]))
	assert.Equal(t, "WAVE", string(b[8:12]))
	assert.Equal(t, "fmt ", string(b[12:16]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(b[20:22]), "audio format should be PCM")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(b[22:24]), "channels")
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(b[24:28]), "sample rate")
	assert.Equal(t, uint32(32000), binary.LittleEndian.Uint32(b[28:32]), "byte rate")
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(b[34:36]), "bits per sample")
}

func TestEncodeBytesRoundTrip(t *testing.T) {
	pcm := pcmOf(1, -1, 12345, -12345, 0)
	b, err := EncodeBytes(pcm, 16000, 1)
	require.NoError(t, err)

	dec := wav.NewDecoder(bytes.NewReader(b))
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	require.Equal(t, 16000, buf.Format.SampleRate)
	require.Equal(t, 1, buf.Format.NumChannels)
	assert.Equal(t, []int{1, -1, 12345, -12345, 0}, buf.Data)
}

func TestEncodeRejectsOddBuffers(t *testing.T) {
	_, err := EncodeBytes([]byte{0x01}, 16000, 1)
	require.Error(t, err)
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "utterance.wav")
	require.NoError(t, Save(path, pcmOf(1, 2, 3), 16000, 1))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(b[0:4]))
}

func TestBufferSeeking(t *testing.T) {
	var buf Buffer
	_, err := buf.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)

	_, err = buf.Seek(0, 0)
	require.NoError(t, err)
	_, err = buf.Write([]byte{9})
	require.NoError(t, err)

	assert.Equal(t, []byte{9, 2, 3, 4}, buf.Bytes())
}
