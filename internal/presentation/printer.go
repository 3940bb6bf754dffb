package presentation

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"shootproxy/internal/domain"
	appErrors "shootproxy/internal/errors"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

type Printer struct {
	Writer  io.Writer
	Verbose bool
	Color   bool
}

// New styles output only when w is a terminal and NO_COLOR is unset.
func New(w io.Writer, verbose bool) Printer {
	return Printer{Writer: w, Verbose: verbose, Color: IsTerminal(w) && os.Getenv("NO_COLOR") == ""}
}

func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (p Printer) PrintDryRun(plan domain.ProxyPlan, destination string) {
	fmt.Fprintln(p.Writer, p.style(headingStyle, "Would stage:"))
	fmt.Fprintln(p.Writer)

	for _, line := range formatPlanLines(plan) {
		fmt.Fprintln(p.Writer, line)
	}

	fmt.Fprintln(p.Writer)
	fmt.Fprintf(p.Writer, "Would transcode %d videos and %d images and copy %d files into %s.\n",
		plan.VideoCount, plan.ImageCount, plan.CopyCount, destination)
	fmt.Fprintf(p.Writer, "Would omit %d files.\n", len(plan.Omitted))

	if p.Verbose && len(plan.Omitted) > 0 {
		fmt.Fprintln(p.Writer)
		fmt.Fprintln(p.Writer, "Omitted:")
		for _, name := range plan.Omitted {
			fmt.Fprintln(p.Writer, "- "+name)
		}
	}
}

func (p Printer) PrintRun(report domain.RunReport) {
	fmt.Fprintln(p.Writer, p.style(headingStyle, "Staged:"))
	fmt.Fprintln(p.Writer)

	for _, line := range formatItemLines(report.Items) {
		fmt.Fprintln(p.Writer, line)
	}

	fmt.Fprintln(p.Writer)
	fmt.Fprintln(p.Writer, renderSummaryTable(report.Summaries()))
	fmt.Fprintln(p.Writer)

	manifest := filepath.Join(report.Destination, domain.ManifestName)
	if len(report.Omitted) == 0 {
		fmt.Fprintln(p.Writer, "No files were omitted.")
	} else {
		fmt.Fprintf(p.Writer, "Omitted %d files, listed in %s.\n", len(report.Omitted), manifest)
	}

	if p.Verbose && len(report.Warnings) > 0 {
		fmt.Fprintln(p.Writer)
		fmt.Fprintln(p.Writer, p.style(warningStyle, "Warnings:"))
		for _, warning := range report.Warnings {
			fmt.Fprintln(p.Writer, "- "+warning)
		}
	}

	fmt.Fprintln(p.Writer, p.style(successStyle, fmt.Sprintf("%s has been proxied.", report.Shoot)))
}

func (p Printer) PrintCompressed(output string) {
	fmt.Fprintln(p.Writer, p.style(successStyle, "Video compression complete: "+output))
}

func (p Printer) PrintEncodeFailure(err *appErrors.EncodeError) {
	fmt.Fprintln(p.Writer, p.style(errorStyle, fmt.Sprintf("FFmpeg process exited with code %d", err.ExitCode)))
	fmt.Fprintf(p.Writer, "Error message: %s\n", strings.TrimRight(err.Stderr, "\n"))
}

func (p Printer) PrintError(message string) {
	fmt.Fprintln(p.Writer, p.style(errorStyle, "Error: "+message))
}

func (p Printer) style(s lipgloss.Style, value string) string {
	if !p.Color {
		return value
	}
	return s.Render(value)
}

func formatItemLines(items []domain.ProxyItem) []string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		verb := "Copy"
		if item.Transcoded {
			verb = "Proxy"
		}
		date := item.CapturedAt.Format("2006-01-02 15:04")
		lines = append(lines, fmt.Sprintf("%s %s/%s  %s", verb, item.Camera, item.Name, date))
	}
	return truncate(lines)
}

func formatPlanLines(plan domain.ProxyPlan) []string {
	var lines []string
	for _, camera := range plan.Cameras {
		for _, entry := range camera.Entries {
			verb := "Copy"
			if entry.Category.Transcoded() {
				verb = "Proxy"
			}
			lines = append(lines, fmt.Sprintf("%s %s/%s  %s", verb, entry.Camera, entry.Name, humanize.Bytes(uint64(entry.Size))))
		}
	}
	return truncate(lines)
}

// truncate keeps the first two and last two lines of long listings.
func truncate(lines []string) []string {
	if len(lines) <= 4 {
		return lines
	}
	head := lines[:2]
	tail := lines[len(lines)-2:]
	return append(append(append([]string{}, head...), "..."), tail...)
}

func renderSummaryTable(summaries []domain.CameraSummary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Camera", "Proxied", "Copied", "Original", "Staged"})

	var totals domain.CameraSummary
	for _, s := range summaries {
		tw.AppendRow(table.Row{s.Name, s.Transcoded, s.Copied, humanize.Bytes(uint64(s.SourceSize)), humanize.Bytes(uint64(s.OutputSize))})
		totals.Transcoded += s.Transcoded
		totals.Copied += s.Copied
		totals.SourceSize += s.SourceSize
		totals.OutputSize += s.OutputSize
	}
	tw.AppendFooter(table.Row{"Total", totals.Transcoded, totals.Copied, humanize.Bytes(uint64(totals.SourceSize)), humanize.Bytes(uint64(totals.OutputSize))})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	return tw.Render()
}
