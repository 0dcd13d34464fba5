// ABOUTME: Module name type with validation and Unicode case folding
// ABOUTME: Names are lower-case ASCII identifiers, at most 64 bytes; input is folded first

package module

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

const maxNameLen = 64

// Name identifies a feature module. Names are unique per application.
type Name string

// String returns the name as a plain string.
func (n Name) String() string { return string(n) }

// ParseName case-folds and validates a module name, so TEST_DUMMY and
// test_dummy name the same module.
func ParseName(raw string) (Name, error) {
	s := cases.Fold().String(strings.TrimSpace(raw))
	if s == "" {
		return "", fmt.Errorf("invalid module name %q: empty", raw)
	}
	if len(s) > maxNameLen {
		return "", fmt.Errorf("invalid module name %q: longer than %d bytes", raw, maxNameLen)
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return "", fmt.Errorf("invalid module name %q: character %q at %d", raw, r, i)
		}
	}
	return Name(s), nil
}

// MustName is ParseName for compile-time constants. It panics on error.
func MustName(raw string) Name {
	n, err := ParseName(raw)
	if err != nil {
		panic(err)
	}
	return n
}
