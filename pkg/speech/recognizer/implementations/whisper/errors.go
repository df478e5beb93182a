package whisper

import (
	"fmt"
)

type ErrInitModel struct{}

func (ErrInitModel) Error() string {
	return "unable to initialize the model"
}

type ErrModelCannotTranslate struct{}

func (ErrModelCannotTranslate) Error() string {
	return "the provided model cannot translate"
}

type ErrTranscribe struct {
	Err error
}

func (e ErrTranscribe) Error() string {
	return fmt.Sprintf("unable to transcribe the audio: %v", e.Err)
}

func (e ErrTranscribe) Unwrap() error {
	return e.Err
}
