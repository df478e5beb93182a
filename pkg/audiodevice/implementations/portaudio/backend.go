// Package portaudio captures microphone audio through gordonklaus/portaudio.
// This is the pull-mode backend: a reader goroutine blocks on the driver's
// Read call at the frame cadence and hands each filled frame to the sink.
package portaudio

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	pa "github.com/gordonklaus/portaudio"
	"github.com/xaionaro-go/audio/pkg/audio"
	"github.com/xaionaro-go/voice2text/pkg/audiodevice"
)

type Backend struct{}

var _ audiodevice.Backend = (*Backend)(nil)

func NewBackend() *Backend {
	return &Backend{}
}

func (b *Backend) Close() error {
	return nil
}

func (b *Backend) ListDevices(ctx context.Context) (_ret []audiodevice.Info, _err error) {
	logger.Debugf(ctx, "ListDevices()")
	defer func() { logger.Debugf(ctx, "/ListDevices(): %d devices, %v", len(_ret), _err) }()

	if err := pa.Initialize(); err != nil {
		return nil, audiodevice.ErrDeviceUnavailable{Err: fmt.Errorf("unable to initialize portaudio: %w", err)}
	}
	defer func() {
		if err := pa.Terminate(); err != nil {
			logger.Errorf(ctx, "unable to terminate portaudio: %v", err)
		}
	}()

	infos, err := pa.Devices()
	if err != nil {
		return nil, audiodevice.ErrDeviceUnavailable{Err: fmt.Errorf("unable to enumerate devices: %w", err)}
	}
	defaultInput, _ := pa.DefaultInputDevice()

	var devices []audiodevice.Info
	for i, info := range infos {
		if info.MaxInputChannels <= 0 {
			continue
		}
		devices = append(devices, audiodevice.Info{
			Index:             i,
			Name:              info.Name,
			IsDefault:         defaultInput != nil && info == defaultInput,
			MaxChannels:       info.MaxInputChannels,
			DefaultSampleRate: int(info.DefaultSampleRate),
		})
	}
	return devices, nil
}

func (b *Backend) Open(
	ctx context.Context,
	params audiodevice.Params,
	callbacks audiodevice.Callbacks,
) (_ret audiodevice.Device, _err error) {
	logger.Debugf(ctx, "Open(ctx, %#+v, callbacks)", params)
	defer func() { logger.Debugf(ctx, "/Open(ctx, %#+v, callbacks): %v", params, _err) }()

	if err := pa.Initialize(); err != nil {
		return nil, audiodevice.ErrDeviceUnavailable{Err: fmt.Errorf("unable to initialize portaudio: %w", err)}
	}

	d := &Device{
		Params:    params,
		Callbacks: callbacks,
	}

	var stream *pa.Stream
	var err error
	switch {
	case params.DeviceIndex == audiodevice.DefaultDeviceIndex:
		stream, err = d.openDefaultStream()
	default:
		stream, err = d.openSelectedStream(params.DeviceIndex)
	}
	if err != nil {
		_ = pa.Terminate()
		return nil, audiodevice.ErrDeviceOpenFailed{DeviceIndex: params.DeviceIndex, Err: err}
	}

	d.Stream = stream
	return d, nil
}

func (d *Device) openDefaultStream() (*pa.Stream, error) {
	switch d.Params.Encoding.PCMFormat {
	case audio.PCMFormatFloat32LE:
		d.float32Buf = make([]float32, d.Params.ChunkSize*int(d.Params.Channels))
		return pa.OpenDefaultStream(
			int(d.Params.Channels), 0,
			float64(d.Params.Encoding.SampleRate), d.Params.ChunkSize,
			d.float32Buf,
		)
	default:
		d.int16Buf = make([]int16, d.Params.ChunkSize*int(d.Params.Channels))
		return pa.OpenDefaultStream(
			int(d.Params.Channels), 0,
			float64(d.Params.Encoding.SampleRate), d.Params.ChunkSize,
			d.int16Buf,
		)
	}
}

func (d *Device) openSelectedStream(deviceIndex int) (*pa.Stream, error) {
	infos, err := pa.Devices()
	if err != nil {
		return nil, fmt.Errorf("unable to enumerate devices: %w", err)
	}
	if deviceIndex < 0 || deviceIndex >= len(infos) {
		return nil, fmt.Errorf("device index out of range: have %d devices", len(infos))
	}
	info := infos[deviceIndex]

	streamParams := pa.StreamParameters{
		Input: pa.StreamDeviceParameters{
			Device:   info,
			Channels: int(d.Params.Channels),
			Latency:  info.DefaultLowInputLatency,
		},
		SampleRate:      float64(d.Params.Encoding.SampleRate),
		FramesPerBuffer: d.Params.ChunkSize,
	}
	switch d.Params.Encoding.PCMFormat {
	case audio.PCMFormatFloat32LE:
		d.float32Buf = make([]float32, d.Params.ChunkSize*int(d.Params.Channels))
		return pa.OpenStream(streamParams, d.float32Buf)
	default:
		d.int16Buf = make([]int16, d.Params.ChunkSize*int(d.Params.Channels))
		return pa.OpenStream(streamParams, d.int16Buf)
	}
}
