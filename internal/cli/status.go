// ABOUTME: status and list subcommands rendering module tables
// ABOUTME: lipgloss tables on a TTY; aligned plain columns for pipes and tests

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mauromedda/featuremod-go/internal/delivery"
	"github.com/mauromedda/featuremod-go/internal/module"
	"github.com/mauromedda/featuremod-go/internal/textwidth"
)

// maxDescriptionWidth caps the description column.
const maxDescriptionWidth = 48

func (r *Runner) status() error {
	m, err := r.App.Delivery.Manifest()
	if err != nil {
		return err
	}

	headers := []string{"MODULE", "STATE", "VERSION", "MODE", "DESCRIPTION"}
	var rows [][]string
	for _, spec := range r.App.Settings.Modules {
		name := module.Name(spec.Name)
		version := "-"
		if e := m.Find(spec.Name); e != nil {
			version = e.Version
		}
		mode := "on-demand"
		if !spec.IsOnDemand() {
			mode = "eager"
		}
		rows = append(rows, []string{
			spec.Name,
			r.App.Registry.State(name).String(),
			version,
			mode,
			textwidth.Truncate(spec.Description, maxDescriptionWidth),
		})
	}
	r.table(headers, rows, 1)
	return nil
}

func (r *Runner) list() error {
	m, err := r.App.Delivery.Manifest()
	if err != nil {
		return err
	}
	if len(m.Modules) == 0 {
		r.printf("no modules installed in %s\n", r.App.Delivery.Dir())
		return nil
	}

	headers := []string{"MODULE", "KIND", "VERSION", "INSTALLED", "PATH"}
	rows := make([][]string, 0, len(m.Modules))
	for _, e := range m.Modules {
		path := e.Path
		if e.Kind == delivery.KindBuiltin {
			path = "(built in)"
		}
		rows = append(rows, []string{
			e.Name,
			e.Kind.String(),
			e.Version,
			e.InstalledAt.Local().Format("2006-01-02 15:04"),
			path,
		})
	}
	r.table(headers, rows, -1)
	return nil
}

// table prints rows under headers. stateCol, when >= 0, is colored by state.
func (r *Runner) table(headers []string, rows [][]string, stateCol int) {
	if !r.TTY {
		r.printf("%s", plainTable(headers, rows))
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			cell := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if col == stateCol && row >= 0 && row < len(rows) {
				var st module.State
				if err := st.UnmarshalText([]byte(rows[row][col])); err == nil {
					return stateStyle(st).Padding(0, 1)
				}
			}
			return cell
		})
	r.printf("%s\n", t.Render())
}

// plainTable aligns columns with two spaces between them.
func plainTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = textwidth.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], textwidth.Width(cell))
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i == len(cells)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(textwidth.PadRight(cell, widths[i]))
			b.WriteString("  ")
		}
		b.WriteByte('\n')
	}
	writeRow(headers)
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}
