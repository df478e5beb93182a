package whisperapi

import (
	"fmt"
)

type ErrRequest struct {
	Err error
}

func (e ErrRequest) Error() string {
	return fmt.Sprintf("unable to perform the request: %v", e.Err)
}

func (e ErrRequest) Unwrap() error {
	return e.Err
}

type ErrBadStatus struct {
	StatusCode int
	Body       string
}

func (e ErrBadStatus) Error() string {
	return fmt.Sprintf("the server returned status %d: %s", e.StatusCode, e.Body)
}
