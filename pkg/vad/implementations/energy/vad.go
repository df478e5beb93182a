package energy

import (
	"context"
	"math"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/audio/pkg/audio"
	"github.com/xaionaro-go/voice2text/pkg/vad"
)

// VAD is the energy-threshold classifier: a frame is speech iff its RMS
// energy exceeds the current (possibly adaptive) silence floor.
type VAD struct {
	Threshold     *Threshold
	EncodingValue audio.EncodingPCM
	ChannelsValue audio.Channel
}

var _ vad.VAD = (*VAD)(nil)

func NewVAD(
	encoding audio.EncodingPCM,
	channels audio.Channel,
	silenceThreshold float64,
	dynamic bool,
) *VAD {
	return &VAD{
		Threshold:     NewThreshold(silenceThreshold, dynamic),
		EncodingValue: encoding,
		ChannelsValue: channels,
	}
}

func (v *VAD) Close() error {
	return nil
}

func (v *VAD) Encoding(context.Context) (audio.Encoding, error) {
	return v.EncodingValue, nil
}

func (v *VAD) Channels(context.Context) (audio.Channel, error) {
	return v.ChannelsValue, nil
}

// IsSpeech never returns an error: an empty or malformed frame is classified
// as silence (and logged), so that a glitchy driver buffer cannot abort a
// capture. Silence frames additionally feed the adaptive floor.
func (v *VAD) IsSpeech(ctx context.Context, frame []byte) (bool, error) {
	rms, ok := v.rms(ctx, frame)
	if !ok {
		return false, nil
	}

	if rms > v.Threshold.Current() {
		return true, nil
	}
	v.Threshold.Observe(rms)
	return false, nil
}

func (v *VAD) rms(ctx context.Context, frame []byte) (float64, bool) {
	sampleSize := sampleSizeOf(v.EncodingValue.PCMFormat)
	if len(frame) == 0 || len(frame)%sampleSize != 0 {
		logger.Debugf(ctx, "malformed frame of %d bytes (sample size %d), classifying as silence", len(frame), sampleSize)
		return 0, false
	}

	var sum float64
	var count int
	switch v.EncodingValue.PCMFormat {
	case audio.PCMFormatFloat32LE:
		samples := convertBytesToFloat32Slice(frame)
		for _, s := range samples {
			sum += float64(s) * float64(s)
		}
		count = len(samples)
	default:
		samples := convertBytesToInt16Slice(frame)
		for _, s := range samples {
			sum += float64(s) * float64(s)
		}
		count = len(samples)
	}
	if count == 0 {
		return 0, false
	}
	return math.Sqrt(sum / float64(count)), true
}

func sampleSizeOf(format audio.PCMFormat) int {
	if format == audio.PCMFormatFloat32LE {
		return 4
	}
	return 2
}
