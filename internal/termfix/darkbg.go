// ABOUTME: Fixes the lipgloss background guess before the install progress view starts
// ABOUTME: Import with _ ahead of packages using bubbletea so no OSC 11 query is sent

package termfix

import "github.com/charmbracelet/lipgloss"

func init() {
	// With the background already known, lipgloss skips the OSC 11 query
	// whose late reply would otherwise land in the progress view as input.
	// Must not import bubbletea itself.
	lipgloss.SetHasDarkBackground(true)
}
