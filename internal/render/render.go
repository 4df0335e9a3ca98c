// Package render turns check reports into terminal tables, JSON, and fix
// previews.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/serverfence/serverfence/pkg/rule"
)

// Output formats accepted by the renderer.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Color modes accepted by the renderer.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Summary aggregates one whole check run.
type Summary struct {
	FilesScanned  int           `json:"filesScanned"`
	FilesEligible int           `json:"filesEligible"`
	Violations    int           `json:"violations"`
	Duration      time.Duration `json:"-"`
	DurationMS    int64         `json:"durationMs"`
}

// Renderer writes check results in the configured format.
type Renderer struct {
	out    io.Writer
	format string
}

// New builds a renderer. The color mode mutates the process-wide color
// toggle, matching how terminal detection works in the color library.
func New(out io.Writer, format, colorMode string) *Renderer {
	switch colorMode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	}

	return &Renderer{out: out, format: format}
}

// Render writes the per-file reports and the run summary. Reports with no
// diagnostics are omitted from the table but counted in the summary.
func (r *Renderer) Render(reports []*rule.FileReport, summary Summary) error {
	summary.DurationMS = summary.Duration.Milliseconds()

	if r.format == FormatJSON {
		return r.renderJSON(reports, summary)
	}

	r.renderTable(reports)
	r.renderSummary(summary)

	return nil
}

// jsonOutput is the stable machine-readable envelope.
type jsonOutput struct {
	Files   []*rule.FileReport `json:"files"`
	Summary Summary            `json:"summary"`
}

func (r *Renderer) renderJSON(reports []*rule.FileReport, summary Summary) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")

	if reports == nil {
		reports = []*rule.FileReport{}
	}

	return enc.Encode(jsonOutput{Files: reports, Summary: summary})
}

func (r *Renderer) renderTable(reports []*rule.FileReport) {
	rows := 0

	tw := table.NewWriter()
	tw.SetOutputMirror(r.out)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"File", "Position", "Kind", "Module", "Message"})

	for _, report := range reports {
		for _, diag := range report.Diagnostics {
			tw.AppendRow(table.Row{
				report.Path,
				fmt.Sprintf("%d:%d", diag.Start.Row+1, diag.Start.Col+1),
				kindColor(diag.Kind).Sprint(string(diag.Kind)),
				diag.Module,
				diag.Message,
			})

			rows++
		}
	}

	if rows > 0 {
		tw.Render()
	}
}

func (r *Renderer) renderSummary(summary Summary) {
	if summary.Violations == 0 {
		color.New(color.FgGreen).Fprintf(r.out, "No violations in %s files (%s eligible) in %v\n",
			humanize.Comma(int64(summary.FilesScanned)),
			humanize.Comma(int64(summary.FilesEligible)),
			summary.Duration.Round(time.Millisecond))

		return
	}

	color.New(color.FgRed).Fprintf(r.out, "%s violations across %s files (%s eligible) in %v\n",
		humanize.Comma(int64(summary.Violations)),
		humanize.Comma(int64(summary.FilesScanned)),
		humanize.Comma(int64(summary.FilesEligible)),
		summary.Duration.Round(time.Millisecond))
}

func kindColor(kind rule.Kind) *color.Color {
	switch kind {
	case rule.KindServerOnlyImport:
		return color.New(color.FgRed)
	case rule.KindServerOnlyRequire:
		return color.New(color.FgMagenta)
	default:
		return color.New(color.FgYellow)
	}
}
