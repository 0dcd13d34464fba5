// ABOUTME: Source spec parser: builtin, local paths, git URLs, HTTP(S) archives
// ABOUTME: Detects the kind from the input format and extracts location/tag/digest

package delivery

import (
	"fmt"
	"strings"
)

// ParseSource parses a catalog source string.
// Supported formats:
//   - Builtin: "builtin"
//   - Local:   "./path", "../path", "/absolute/path", "~/path", "file:///path"
//   - Git:     "https://github.com/user/repo.git#tag", "git@host:user/repo.git", "git://..."
//   - HTTP:    "https://host/module.tar.gz#sha256=<hex>"
func ParseSource(raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Source{}, fmt.Errorf("empty source")
	}

	if raw == "builtin" {
		return Source{Raw: raw, Kind: KindBuiltin}, nil
	}

	if after, ok := strings.CutPrefix(raw, "file://"); ok {
		return Source{Raw: raw, Kind: KindLocal, Location: after}, nil
	}
	if strings.HasPrefix(raw, ".") || strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "~") {
		return Source{Raw: raw, Kind: KindLocal, Location: raw}, nil
	}

	location, fragment, _ := strings.Cut(raw, "#")

	if isArchiveURL(location) {
		src := Source{Raw: raw, Kind: KindHTTP, Location: location}
		if fragment != "" {
			digest, ok := strings.CutPrefix(fragment, "sha256=")
			if !ok || !isHex(digest, 64) {
				return Source{}, fmt.Errorf("invalid archive fragment %q: want sha256=<64 hex digits>", fragment)
			}
			src.SHA256 = strings.ToLower(digest)
		}
		return src, nil
	}

	if isGitURL(location) {
		return Source{Raw: raw, Kind: KindGit, Location: location, Tag: fragment}, nil
	}

	return Source{}, fmt.Errorf("unrecognized source %q", raw)
}

// isArchiveURL detects an HTTP(S) URL pointing at a gzipped tarball.
func isArchiveURL(s string) bool {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}
	path := s
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return strings.HasSuffix(path, ".tar.gz") || strings.HasSuffix(path, ".tgz")
}

// isGitURL detects if a string looks like a git repository URL.
func isGitURL(s string) bool {
	if strings.HasPrefix(s, "git@") || strings.HasPrefix(s, "git://") || strings.HasPrefix(s, "ssh://") {
		return true
	}
	if strings.HasSuffix(s, ".git") {
		return true
	}
	for _, host := range []string{"github.com/", "gitlab.com/", "bitbucket.org/"} {
		if strings.Contains(s, host) {
			return true
		}
	}
	return false
}

func isHex(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
