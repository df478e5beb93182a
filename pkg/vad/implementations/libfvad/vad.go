package libfvad

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/josharian/fvad"
	"github.com/xaionaro-go/audio/pkg/audio"
	"github.com/xaionaro-go/voice2text/pkg/vad"
)

// VAD classifies frames with libfvad (the WebRTC voice activity detector).
// The detector accepts only 10/20/30ms pieces at 8/16/32/48kHz, so an
// arbitrary capture frame is walked in the largest pieces that fit; any
// voiced piece marks the whole frame as speech. A tail shorter than 10ms is
// ignored.
type VAD struct {
	*fvad.Detector
	SampleRate audio.SampleRate
}

var _ vad.VAD = (*VAD)(nil)

func NewVAD(
	sampleRate audio.SampleRate,
	sensitivityMode int,
) (*VAD, error) {
	detector := fvad.NewDetector()
	if err := detector.SetSampleRate(int(sampleRate)); err != nil {
		return nil, fmt.Errorf("unable to set the sample rate: %w", err)
	}
	if err := detector.SetMode(sensitivityMode); err != nil {
		return nil, fmt.Errorf("unable to set the sensitivity mode: %w", err)
	}
	return &VAD{
		SampleRate: sampleRate,
		Detector:   detector,
	}, nil
}

func (v *VAD) Close() error {
	v.Detector.Close()
	return nil
}

func (v *VAD) Encoding(context.Context) (audio.Encoding, error) {
	return v.EncodingNoErr(), nil
}

func (v *VAD) EncodingNoErr() audio.EncodingPCM {
	return audio.EncodingPCM{
		PCMFormat:  audio.PCMFormatS16LE,
		SampleRate: v.SampleRate,
	}
}

func (v *VAD) Channels(context.Context) (audio.Channel, error) {
	return v.ChannelsNoErr(), nil
}

func (*VAD) ChannelsNoErr() audio.Channel {
	return 1
}

func (v *VAD) IsSpeech(
	ctx context.Context,
	frame []byte,
) (bool, error) {
	if len(frame) == 0 {
		return false, nil
	}
	if len(frame)%2 != 0 {
		return false, fmt.Errorf("the frame is not whole int16 samples: %d bytes", len(frame))
	}

	// see the description of (*fvad.Detector).Process
	minPortion := v.pieceSize10Ms()
	midPortion := minPortion * 2
	maxPortion := minPortion * 3
	for {
		var piece []byte
		switch {
		case len(frame) >= int(maxPortion):
			piece = frame[:maxPortion]
		case len(frame) >= int(midPortion):
			piece = frame[:midPortion]
		case len(frame) >= int(minPortion):
			piece = frame[:minPortion]
		default:
			return false, nil
		}
		frame = frame[len(piece):]

		voiced, err := v.Detector.Process(convertBytesToInt16Slice(piece))
		if err != nil {
			return false, fmt.Errorf("unable to process a %d-byte piece: %w", len(piece), err)
		}
		if voiced {
			return true, nil
		}
	}
}

func (v *VAD) pieceSize10Ms() uint32 {
	return uint32(2 * 80 * uint64(v.SampleRate) / 8000)
}

func convertBytesToInt16Slice(b []byte) []int16 {
	ptr := unsafe.SliceData(b)
	return unsafe.Slice((*int16)(unsafe.Pointer(ptr)), len(b)/2)
}
