// Package miniaudio captures microphone audio through gen2brain/malgo
// (miniaudio). This is the push-mode backend: the driver invokes a data
// callback, which re-chunks the delivered buffers into exact frames and
// hands them to the sink.
package miniaudio

import (
	"context"
	"encoding/hex"
	"fmt"
	"runtime"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/gen2brain/malgo"
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

	malgoCtx, err := initContext(ctx)
	if err != nil {
		return nil, audiodevice.ErrDeviceUnavailable{Err: err}
	}
	defer func() {
		_ = malgoCtx.Uninit()
		malgoCtx.Free()
	}()

	infos, err := malgoCtx.Devices(malgo.Capture)
	if err != nil {
		return nil, audiodevice.ErrDeviceUnavailable{Err: fmt.Errorf("unable to enumerate capture devices: %w", err)}
	}

	var devices []audiodevice.Info
	for i, info := range infos {
		devices = append(devices, audiodevice.Info{
			Index:     i,
			Name:      info.Name(),
			ID:        decodeDeviceID(info.ID.String()),
			IsDefault: info.IsDefault != 0,
			// miniaudio cannot report channel/rate limits without fully
			// initializing the device, so these stay zero here.
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

	malgoCtx, err := initContext(ctx)
	if err != nil {
		return nil, audiodevice.ErrDeviceUnavailable{Err: err}
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = formatOf(params.Encoding.PCMFormat)
	deviceConfig.Capture.Channels = uint32(params.Channels)
	deviceConfig.SampleRate = uint32(params.Encoding.SampleRate)
	deviceConfig.Alsa.NoMMap = 1
	deviceConfig.PeriodSizeInFrames = uint32(params.ChunkSize)

	if params.DeviceIndex != audiodevice.DefaultDeviceIndex {
		infos, err := malgoCtx.Devices(malgo.Capture)
		if err != nil {
			_ = malgoCtx.Uninit()
			malgoCtx.Free()
			return nil, audiodevice.ErrDeviceUnavailable{Err: fmt.Errorf("unable to enumerate capture devices: %w", err)}
		}
		if params.DeviceIndex < 0 || params.DeviceIndex >= len(infos) {
			_ = malgoCtx.Uninit()
			malgoCtx.Free()
			return nil, audiodevice.ErrDeviceOpenFailed{
				DeviceIndex: params.DeviceIndex,
				Err:         fmt.Errorf("device index out of range: have %d devices", len(infos)),
			}
		}
		deviceConfig.Capture.DeviceID = infos[params.DeviceIndex].ID.Pointer()
	}

	d := &Device{
		MalgoContext: malgoCtx,
		Params:       params,
		Callbacks:    callbacks,
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: d.onReceiveFrames,
		Stop: d.onDeviceStopped,
	})
	if err != nil {
		_ = malgoCtx.Uninit()
		malgoCtx.Free()
		return nil, audiodevice.ErrDeviceOpenFailed{DeviceIndex: params.DeviceIndex, Err: err}
	}
	d.MalgoDevice = device
	return d, nil
}

func initContext(ctx context.Context) (*malgo.AllocatedContext, error) {
	var backends []malgo.Backend
	switch runtime.GOOS {
	case "linux":
		backends = []malgo.Backend{malgo.BackendAlsa}
	case "windows":
		backends = []malgo.Backend{malgo.BackendWasapi}
	case "darwin":
		backends = []malgo.Backend{malgo.BackendCoreaudio}
	}
	malgoCtx, err := malgo.InitContext(backends, malgo.ContextConfig{}, func(message string) {
		logger.Tracef(ctx, "miniaudio: %s", message)
	})
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the miniaudio context: %w", err)
	}
	return malgoCtx, nil
}

func formatOf(format audio.PCMFormat) malgo.FormatType {
	if format == audio.PCMFormatFloat32LE {
		return malgo.FormatF32
	}
	return malgo.FormatS16
}

// decodeDeviceID converts miniaudio's hex-encoded device IDs (ALSA names on
// Linux) back to a readable string.
func decodeDeviceID(hexStr string) string {
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return hexStr
	}
	return string(b)
}
