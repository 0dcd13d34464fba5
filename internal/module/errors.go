package module

import (
	"errors"
	"fmt"
)

var (
	// ErrInstallFailed reports that an install attempt did not succeed.
	// The backend's error is wrapped alongside it.
	ErrInstallFailed = errors.New("install failed")

	// ErrUnknownModule is returned by backends asked for a module they
	// cannot deliver.
	ErrUnknownModule = errors.New("unknown module")
)

// PreconditionError is the panic value raised when a provider operation is
// used before the module is ready. It marks a programming error in the
// caller, never a runtime condition to recover from.
type PreconditionError struct {
	Module Name
	Op     string
	State  State
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("module %s: %s called while %s: %s", e.Module, e.Op, e.State, e.Reason)
}
