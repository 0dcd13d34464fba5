// ABOUTME: Git fetcher clones module repositories at an optional branch/tag
// ABOUTME: Shallow clones; version is the tag or the short HEAD commit

package delivery

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"unicode"
)

// GitFetcher implements Fetcher using git clone.
type GitFetcher struct {
	// Git is the git binary; empty means "git" from PATH.
	Git string
}

func (g GitFetcher) bin() string {
	if g.Git == "" {
		return "git"
	}
	return g.Git
}

// Fetch clones src.Location into dest, checking out src.Tag when set.
func (g GitFetcher) Fetch(ctx context.Context, name string, src Source, dest string) (string, error) {
	if err := validateGitArg(src.Location); err != nil {
		return "", fmt.Errorf("git url %q: %w", src.Location, err)
	}
	args := []string{"clone", "--depth", "1", "--quiet"}
	if src.Tag != "" {
		if err := validateGitArg(src.Tag); err != nil {
			return "", fmt.Errorf("git ref %q: %w", src.Tag, err)
		}
		args = append(args, "--branch", src.Tag)
	}
	args = append(args, "--", src.Location, dest)

	cmd := exec.CommandContext(ctx, g.bin(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git clone %s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}

	if src.Tag != "" {
		return src.Tag, nil
	}
	return g.headRef(ctx, dest), nil
}

// validateGitArg rejects values git could read as options or that carry
// control characters.
func validateGitArg(s string) error {
	if s == "" {
		return fmt.Errorf("empty value")
	}
	if len(s) > 1024 {
		return fmt.Errorf("too long (max 1024 characters)")
	}
	if strings.HasPrefix(s, "-") {
		return fmt.Errorf("cannot start with dash")
	}
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return fmt.Errorf("contains non-printable character")
		}
	}
	return nil
}

// headRef returns the short HEAD commit hash for a repository.
func (g GitFetcher) headRef(ctx context.Context, repoDir string) string {
	cmd := exec.CommandContext(ctx, g.bin(), "-C", repoDir, "rev-parse", "--short", "HEAD")
	out, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}
