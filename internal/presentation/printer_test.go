package presentation

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"shootproxy/internal/domain"
	appErrors "shootproxy/internal/errors"
)

func TestFormatItemLinesTruncates(t *testing.T) {
	items := make([]domain.ProxyItem, 0, 6)
	for i := 0; i < 6; i++ {
		items = append(items, domain.ProxyItem{
			Camera:     "A-cam",
			Name:       fmt.Sprintf("C000%d.MP4", i),
			Transcoded: true,
			CapturedAt: time.Date(2024, 10, 2, 10+i, 0, 0, 0, time.Local),
		})
	}

	lines := formatItemLines(items)
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
	if lines[2] != "..." {
		t.Fatalf("expected ellipsis, got %q", lines[2])
	}
	if lines[0] != "Proxy A-cam/C0000.MP4  2024-10-02 10:00" {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if len(items) != 6 || items[2].Name != "C0002.MP4" {
		t.Fatalf("truncate must not modify the input")
	}
}

func TestPrintRunIncludesSummaryAndConfirmation(t *testing.T) {
	var buf bytes.Buffer
	printer := Printer{Writer: &buf}

	now := time.Date(2024, 10, 2, 15, 1, 0, 0, time.Local)
	report := domain.RunReport{
		Shoot:       "2024.10.02_Brand",
		Destination: "/Users/studio/Desktop/_proxy",
		Cameras:     []string{"A-cam", "B-cam"},
		Items: []domain.ProxyItem{
			{Camera: "A-cam", Name: "C0001.MP4", Transcoded: true, SourceSize: 2_000_000, OutputSize: 1_000, CapturedAt: now},
			{Camera: "B-cam", Name: "still.jpg", SourceSize: 18, OutputSize: 18, CapturedAt: now},
		},
		Omitted: []string{"notes.txt"},
	}

	printer.PrintRun(report)
	output := buf.String()
	for _, want := range []string{
		"Staged:",
		"Proxy A-cam/C0001.MP4",
		"Copy B-cam/still.jpg",
		"A-cam",
		"2.0 MB",
		"18 B",
		"Omitted 1 files, listed in /Users/studio/Desktop/_proxy/omitted_files.txt.",
		"2024.10.02_Brand has been proxied.",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestPrintRunWarningsOnlyWhenVerbose(t *testing.T) {
	report := domain.RunReport{Shoot: "s", Warnings: []string{"EXIF not found for a.jpg, using filesystem time"}}

	var quiet bytes.Buffer
	Printer{Writer: &quiet}.PrintRun(report)
	if strings.Contains(quiet.String(), "Warnings:") {
		t.Fatalf("warnings should be hidden without verbose")
	}

	var verbose bytes.Buffer
	Printer{Writer: &verbose, Verbose: true}.PrintRun(report)
	if !strings.Contains(verbose.String(), "EXIF not found for a.jpg") {
		t.Fatalf("expected warning in verbose output")
	}
	if !strings.Contains(verbose.String(), "No files were omitted.") {
		t.Fatalf("expected empty-manifest line")
	}
}

func TestPrintDryRun(t *testing.T) {
	var buf bytes.Buffer
	plan := domain.ProxyPlan{
		Cameras: []domain.CameraPlan{{
			Name: "A-cam",
			Entries: []domain.PlanEntry{
				{Camera: "A-cam", Name: "C0001.MP4", Category: domain.CategoryVideo, Size: 1_500_000},
				{Camera: "A-cam", Name: "a.gif", Category: domain.CategoryPassThrough, Size: 10},
			},
		}},
		Omitted:    []string{"x.txt"},
		VideoCount: 1,
		CopyCount:  1,
	}

	Printer{Writer: &buf, Verbose: true}.PrintDryRun(plan, "/dest")
	output := buf.String()
	for _, want := range []string{"Proxy A-cam/C0001.MP4  1.5 MB", "Copy A-cam/a.gif  10 B", "into /dest", "Would omit 1 files.", "- x.txt"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestPrintCompressResults(t *testing.T) {
	var buf bytes.Buffer
	printer := Printer{Writer: &buf}

	printer.PrintCompressed("/media/take-compressed.mp4")
	printer.PrintEncodeFailure(&appErrors.EncodeError{ExitCode: 1, Stderr: "No such file or directory\n"})

	want := "Video compression complete: /media/take-compressed.mp4\n" +
		"FFmpeg process exited with code 1\n" +
		"Error message: No such file or directory\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestIsTerminalFalseForBuffers(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Fatalf("buffer is not a terminal")
	}
	if New(&bytes.Buffer{}, false).Color {
		t.Fatalf("color must be off for non-terminals")
	}
}
