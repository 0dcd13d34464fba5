// ABOUTME: Display width, truncation, and padding for terminal columns
// ABOUTME: Grapheme-aware via uniseg, cell widths via go-runewidth, ANSI sequences count as zero

package textwidth

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Ellipsis is appended by Truncate.
const Ellipsis = "…"

// Width returns the number of terminal cells s occupies.
func Width(s string) int {
	if isPlainASCII(s) {
		return len(s)
	}
	w := 0
	state := -1
	rest := StripANSI(s)
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		w += clusterWidth(cluster)
	}
	return w
}

// Truncate shortens s to at most max cells, ending in Ellipsis when cut.
// Escape sequences are dropped from truncated output.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if Width(s) <= max {
		return s
	}
	ellipsis := runewidth.StringWidth(Ellipsis)
	if max <= ellipsis {
		return strings.Repeat(".", max)
	}

	var b strings.Builder
	budget := max - ellipsis
	state := -1
	rest := StripANSI(s)
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		cw := clusterWidth(cluster)
		if cw > budget {
			break
		}
		b.WriteString(cluster)
		budget -= cw
	}
	b.WriteString(Ellipsis)
	return b.String()
}

// PadRight pads s with spaces to width cells. Wider strings are returned as is.
func PadRight(s string, width int) string {
	if gap := width - Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// StripANSI removes CSI and OSC escape sequences.
func StripANSI(s string) string {
	if !strings.ContainsRune(s, '\x1b') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\x1b' {
			i = skipEscape(s, i)
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// skipEscape returns the index just past the escape sequence starting at i.
func skipEscape(s string, i int) int {
	i++
	if i >= len(s) {
		return i
	}
	switch s[i] {
	case '[':
		for i++; i < len(s); i++ {
			if s[i] >= 0x40 && s[i] <= 0x7E {
				return i + 1
			}
		}
		return i
	case ']':
		for i++; i < len(s); i++ {
			if s[i] == '\x07' {
				return i + 1
			}
			if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '\\' {
				return i + 2
			}
		}
		return i
	default:
		return i + 1
	}
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7E {
			return false
		}
	}
	return true
}

func clusterWidth(cluster string) int {
	r, _ := utf8.DecodeRuneInString(cluster)
	return runewidth.RuneWidth(r)
}
