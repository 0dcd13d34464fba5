// ABOUTME: Delivery types: source kinds and parsed source specs
// ABOUTME: Supports builtin, local, git, and HTTP archive sources

package delivery

import "fmt"

// Kind identifies how a module is delivered.
type Kind int

const (
	KindBuiltin Kind = iota
	KindLocal
	KindGit
	KindHTTP
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBuiltin:
		return "builtin"
	case KindLocal:
		return "local"
	case KindGit:
		return "git"
	case KindHTTP:
		return "http"
	default:
		return "unknown"
	}
}

// ParseKind converts a kind name back to Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "builtin":
		return KindBuiltin, nil
	case "local":
		return KindLocal, nil
	case "git":
		return KindGit, nil
	case "http":
		return KindHTTP, nil
	default:
		return 0, fmt.Errorf("unknown source kind %q", s)
	}
}

// MarshalText stores a kind by name so manifests stay readable.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Source is a parsed module source specification.
type Source struct {
	Raw      string // original catalog string
	Kind     Kind
	Location string // path or URL without fragment
	Tag      string // git branch/tag
	SHA256   string // expected archive digest (http only)
}
