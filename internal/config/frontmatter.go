// ABOUTME: Generic YAML frontmatter parser used for module descriptors (MODULE.md)
// ABOUTME: Splits --- delimited YAML from the Markdown body with CRLF normalization

package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// ErrUnterminatedFrontmatter is returned when the closing --- is missing.
var ErrUnterminatedFrontmatter = errors.New("unterminated frontmatter: missing closing ---")

// SplitFrontmatter separates the YAML block from the body. ok is false when
// content has no frontmatter, in which case body is content unchanged.
func SplitFrontmatter(content string) (front, body string, ok bool, err error) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, frontmatterDelimiter+"\n") {
		return "", content, false, nil
	}

	rest := normalized[len(frontmatterDelimiter)+1:]
	if rest == frontmatterDelimiter || strings.HasPrefix(rest, frontmatterDelimiter+"\n") {
		return "", strings.TrimPrefix(rest[len(frontmatterDelimiter):], "\n"), true, nil
	}

	before, after, found := strings.Cut(rest, "\n"+frontmatterDelimiter)
	if !found {
		return "", "", true, ErrUnterminatedFrontmatter
	}
	// The closing delimiter must occupy a whole line.
	if after != "" && after[0] != '\n' {
		return "", "", true, ErrUnterminatedFrontmatter
	}
	return before, strings.TrimPrefix(after, "\n"), true, nil
}

// ParseFrontmatter decodes the YAML frontmatter of content into T and returns
// the remaining body. Content without frontmatter yields the zero T.
func ParseFrontmatter[T any](content string) (T, string, error) {
	var zero T

	front, body, ok, err := SplitFrontmatter(content)
	if err != nil {
		return zero, "", err
	}
	if !ok {
		return zero, content, nil
	}

	var result T
	if err := yaml.Unmarshal([]byte(front), &result); err != nil {
		return zero, "", fmt.Errorf("parse frontmatter YAML: %w", err)
	}
	return result, body, nil
}
