package diagnostics

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// DiagnosticColorer defines the interface for coloring diagnostic output.
type DiagnosticColorer interface {
	Title() string
	PrimaryColor(text string) string
}

// ErrorColorer provides coloring for error diagnostics.
type ErrorColorer struct{}

func (ErrorColorer) Title() string { return "error" }

func (ErrorColorer) PrimaryColor(text string) string {
	return color.New(color.FgRed, color.Bold).Sprint(text)
}

// WarningColorer provides coloring for warnings.
type WarningColorer struct{}

func (WarningColorer) Title() string { return "warning" }

func (WarningColorer) PrimaryColor(text string) string {
	return color.New(color.FgYellow, color.Bold).Sprint(text)
}

// PrettyPrint writes description together with the source line the span
// points into, the offending text highlighted and underlined.
func PrettyPrint(
	w io.Writer,
	fileName string,
	text string,
	span Span,
	description string,
	colorer DiagnosticColorer,
) error {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	start := clamp(span.Start, 0, len(text))
	end := clamp(span.End, start, len(text))

	lineNumber := strings.Count(text[:start], "\n")
	lineStart := strings.LastIndexByte(text[:start], '\n') + 1
	lineEnd := strings.IndexByte(text[start:], '\n')
	if lineEnd < 0 {
		lineEnd = len(text)
	} else {
		lineEnd += start
	}
	if end > lineEnd {
		end = lineEnd
	}

	line := text[lineStart:lineEnd]
	startInLine := start - lineStart
	prefix := line[:startInLine]
	offending := line[startInLine : end-lineStart]
	suffix := line[end-lineStart:]

	titleColor := color.New(color.Bold)
	arrowColor := color.New(color.FgCyan, color.Bold)
	filePathColor := color.New(color.Underline)
	lineNumColor := color.New(color.FgCyan, color.Bold)

	if _, err := titleColor.Fprintf(w, "%s: %s\n", colorer.Title(), description); err != nil {
		return err
	}
	arrowColor.Fprint(w, "  --> ")
	filePathColor.Fprintf(w, "%s:%d:%d\n", fileName, lineNumber+1, startInLine+1)
	lineNumColor.Fprint(w, "   | \n")

	lineNumColor.Fprintf(w, "%2d | ", lineNumber+1)
	fmt.Fprintf(w, "%s%s%s\n", prefix, colorer.PrimaryColor(offending), suffix)

	lineNumColor.Fprint(w, "   | ")
	marker := strings.Repeat("^", max(len(offending), 1))
	fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", startInLine), colorer.PrimaryColor(marker))

	_, err := lineNumColor.Fprint(w, "   | \n")
	return err
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
