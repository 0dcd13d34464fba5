//go:build !darwin && !linux

package native

func registerFunc(_ any, _ uintptr) error {
	return ErrUnsupported
}
