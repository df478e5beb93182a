package recognizer

import (
	"fmt"
	"strings"
)

type ErrUnknownEngine struct {
	Name string
}

func (e ErrUnknownEngine) Error() string {
	return fmt.Sprintf("unknown engine '%s', known engines are: %s", e.Name, strings.Join(List(), ", "))
}

type ErrNoEngineAvailable struct {
	Err error
}

func (e ErrNoEngineAvailable) Error() string {
	if e.Err == nil {
		return "no speech recognition engine is configured"
	}
	return fmt.Sprintf("no speech recognition engine is available: %v", e.Err)
}

func (e ErrNoEngineAvailable) Unwrap() error {
	return e.Err
}
