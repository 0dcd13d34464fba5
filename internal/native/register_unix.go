//go:build darwin || linux

package native

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// registerFunc wraps a C function address in a Go func of fptr's type.
// purego panics on unsupported signatures; that becomes an error here.
func registerFunc(fptr any, addr uintptr) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("register func: %v", r)
		}
	}()
	purego.RegisterFunc(fptr, addr)
	return nil
}
