// ABOUTME: Install state enumeration for feature modules
// ABOUTME: Text form is snake_case for config files, manifests, and CLI output

package module

import "fmt"

// State is the install state of a module.
type State int

const (
	NotInstalled State = iota
	Installing
	Installed
	Failed
)

// String returns the snake_case name of the state.
func (s State) String() string {
	switch s {
	case NotInstalled:
		return "not_installed"
	case Installing:
		return "installing"
	case Installed:
		return "installed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "not_installed":
		*s = NotInstalled
	case "installing":
		*s = Installing
	case "installed":
		*s = Installed
	case "failed":
		*s = Failed
	default:
		return fmt.Errorf("unknown module state %q", b)
	}
	return nil
}
