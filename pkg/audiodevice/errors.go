package audiodevice

import (
	"fmt"
)

type ErrDeviceUnavailable struct {
	Err error
}

func (e ErrDeviceUnavailable) Error() string {
	return fmt.Sprintf("no usable audio capture device: %v", e.Err)
}

func (e ErrDeviceUnavailable) Unwrap() error {
	return e.Err
}

type ErrDeviceOpenFailed struct {
	DeviceIndex int
	Err         error
}

func (e ErrDeviceOpenFailed) Error() string {
	return fmt.Sprintf("unable to open the capture device %d: %v", e.DeviceIndex, e.Err)
}

func (e ErrDeviceOpenFailed) Unwrap() error {
	return e.Err
}

type ErrStreamRead struct {
	Err error
}

func (e ErrStreamRead) Error() string {
	return fmt.Sprintf("unable to read from the capture stream: %v", e.Err)
}

func (e ErrStreamRead) Unwrap() error {
	return e.Err
}
