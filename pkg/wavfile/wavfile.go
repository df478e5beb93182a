// Package wavfile turns raw PCM utterance buffers into RIFF/WAVE files, the
// interchange format between the capture engine and recognition backends.
package wavfile

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/xaionaro-go/audio/pkg/audio"
)

const (
	formatPCM = 1
)

// Encode writes pcm (little-endian 16-bit samples) as a PCM WAV stream.
func Encode(
	w io.WriteSeeker,
	pcm []byte,
	sampleRate audio.SampleRate,
	channels audio.Channel,
) error {
	if len(pcm)%2 != 0 {
		return fmt.Errorf("the PCM buffer is not whole int16 samples: %d bytes", len(pcm))
	}

	enc := wav.NewEncoder(w, int(sampleRate), 16, int(channels), formatPCM)
	buf := &goaudio.IntBuffer{
		Data: int16BytesToInts(pcm),
		Format: &goaudio.Format{
			SampleRate:  int(sampleRate),
			NumChannels: int(channels),
		},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("unable to write the samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("unable to finalize the WAV stream: %w", err)
	}
	return nil
}

// EncodeBytes is Encode into a fresh in-memory buffer; used for engine
// uploads.
func EncodeBytes(
	pcm []byte,
	sampleRate audio.SampleRate,
	channels audio.Channel,
) ([]byte, error) {
	var buf Buffer
	if err := Encode(&buf, pcm, sampleRate, channels); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes pcm as a WAV file at path.
func Save(
	path string,
	pcm []byte,
	sampleRate audio.SampleRate,
	channels audio.Channel,
) (_err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create '%s': %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil && _err == nil {
			_err = fmt.Errorf("unable to close '%s': %w", path, err)
		}
	}()
	return Encode(f, pcm, sampleRate, channels)
}

func int16BytesToInts(pcm []byte) []int {
	samples := make([]int, 0, len(pcm)/2)
	for i := 0; i+1 < len(pcm); i += 2 {
		samples = append(samples, int(int16(uint16(pcm[i])|uint16(pcm[i+1])<<8)))
	}
	return samples
}
