package audioinput

import (
	"fmt"
)

type ErrInvalidConfig struct {
	Err error
}

func (err ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid capture config: %v", err.Err)
}

func (err ErrInvalidConfig) Unwrap() error {
	return err.Err
}

type ErrStreamStart struct {
	Err error
}

func (err ErrStreamStart) Error() string {
	return fmt.Sprintf("unable to start the capture stream: %v", err.Err)
}

func (err ErrStreamStart) Unwrap() error {
	return err.Err
}
