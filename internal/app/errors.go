package app

import (
	"errors"
	"fmt"

	"github.com/blackwell-systems/hops/internal/profile"
)

// UsageError reports invalid command-line input. It is returned before any
// file or process is touched.
type UsageError struct {
	Msg string
	Err error
}

func (e *UsageError) Error() string {
	return e.Msg
}

func (e *UsageError) Unwrap() error { return e.Err }

// validateMachine checks the --machine flag.
func validateMachine(name string) error {
	err := profile.ValidateName(name)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, profile.ErrMissingProfile):
		return &UsageError{Msg: "--machine is required", Err: err}
	case errors.Is(err, profile.ErrReservedProfile):
		return &UsageError{Msg: fmt.Sprintf("--machine cannot be %q: it is merged into every machine", profile.Shared), Err: err}
	default:
		return &UsageError{Msg: err.Error(), Err: err}
	}
}
