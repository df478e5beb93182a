package vad

import (
	"context"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/audio/pkg/audio"
)

// Fallback delegates classification to Primary and, whenever Primary fails on
// a frame, classifies that one frame with Backup instead. A detector failure
// therefore degrades a single classification, it never fails the capture.
type Fallback struct {
	Primary VAD
	Backup  VAD
}

var _ VAD = (*Fallback)(nil)

func NewFallback(primary, backup VAD) *Fallback {
	return &Fallback{
		Primary: primary,
		Backup:  backup,
	}
}

func (vad *Fallback) Close() error {
	var mErr *multierror.Error
	if err := vad.Primary.Close(); err != nil {
		mErr = multierror.Append(mErr, err)
	}
	if err := vad.Backup.Close(); err != nil {
		mErr = multierror.Append(mErr, err)
	}
	return mErr.ErrorOrNil()
}

func (vad *Fallback) Encoding(ctx context.Context) (audio.Encoding, error) {
	return vad.Primary.Encoding(ctx)
}

func (vad *Fallback) Channels(ctx context.Context) (audio.Channel, error) {
	return vad.Primary.Channels(ctx)
}

func (vad *Fallback) IsSpeech(ctx context.Context, frame []byte) (bool, error) {
	isSpeech, err := vad.Primary.IsSpeech(ctx, frame)
	if err == nil {
		return isSpeech, nil
	}
	logger.Debugf(ctx, "primary VAD failed on the frame: %v; falling back", err)
	return vad.Backup.IsSpeech(ctx, frame)
}
