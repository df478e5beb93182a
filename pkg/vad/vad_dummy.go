package vad

import (
	"context"

	"github.com/xaionaro-go/audio/pkg/audio"
)

type Dummy struct {
	EncodingValue audio.Encoding
	ChannelsValue audio.Channel
	SpeechValue   bool
}

var _ VAD = (*Dummy)(nil)

func NewDummy(
	encoding audio.Encoding,
	channels audio.Channel,
	speechValue bool,
) *Dummy {
	return &Dummy{
		EncodingValue: encoding,
		ChannelsValue: channels,
		SpeechValue:   speechValue,
	}
}

func (vad *Dummy) Close() error {
	return nil
}

func (vad *Dummy) Encoding(context.Context) (audio.Encoding, error) {
	return vad.EncodingValue, nil
}

func (vad *Dummy) Channels(context.Context) (audio.Channel, error) {
	return vad.ChannelsValue, nil
}

func (vad *Dummy) IsSpeech(context.Context, []byte) (bool, error) {
	return vad.SpeechValue, nil
}
