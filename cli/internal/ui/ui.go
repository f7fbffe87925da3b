// Package ui renders CLI output: styled messages, tables, migration plans
// and confirmation prompts.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/satishbabariya/schema-forge/migrate/plan"
)

var (
	// Colors
	PrimaryColor   = lipgloss.Color("#00D9FF")
	SuccessColor   = lipgloss.Color("#00FF88")
	WarningColor   = lipgloss.Color("#FFB800")
	ErrorColor     = lipgloss.Color("#FF4444")
	SecondaryColor = lipgloss.Color("#6C757D")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)
)

// DisableColor turns off styling in every renderer the CLI uses.
func DisableColor() {
	color.NoColor = true
	pterm.DisableStyling()
	plain := lipgloss.NewStyle()
	TitleStyle, SuccessStyle, ErrorStyle = plain, plain, plain
	WarningStyle, InfoStyle, SecondaryStyle = plain, plain, plain
}

// PrintHeader prints a boxed title
func PrintHeader(title string, subtitle string) {
	header := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(0, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render(title), SecondaryStyle.Render(subtitle)))

	fmt.Println(header)
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...any) {
	fmt.Println(SuccessStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

// PrintError prints an error message to stderr
func PrintError(format string, args ...any) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...any) {
	fmt.Println(WarningStyle.Render("⚠ " + fmt.Sprintf(format, args...)))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...any) {
	fmt.Println(InfoStyle.Render("ℹ " + fmt.Sprintf(format, args...)))
}

// PrintSection prints an underlined section title
func PrintSection(title string) {
	fmt.Println(lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(SecondaryColor).
		Render(title))
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Printf("  • %s\n", item)
	}
}

// PrintTable prints a table with a header row
func PrintTable(headers []string, rows [][]string) error {
	data := pterm.TableData{headers}
	data = append(data, rows...)
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// PrintMarkdown renders markdown for the terminal
func PrintMarkdown(content string) error {
	style := glamour.WithAutoStyle()
	if color.NoColor {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
	if err != nil {
		return err
	}
	out, err := r.Render(content)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// Spinner starts a spinner; call Success or Fail on it when done.
func Spinner(message string) *pterm.SpinnerPrinter {
	spinner, _ := pterm.DefaultSpinner.WithRemoveWhenDone(false).Start(message)
	return spinner
}

// SafetyColor is the color a step or plan of the given safety prints in.
func SafetyColor(s plan.Safety) *color.Color {
	switch s {
	case plan.Destructive:
		return color.New(color.FgRed, color.Bold)
	case plan.RequiresConfirmation:
		return color.New(color.FgYellow)
	}
	return color.New(color.FgGreen)
}

// FormatPlan renders a plan with every step colored by its safety.
func FormatPlan(p *plan.MigrationPlan) string {
	var b strings.Builder
	overall := p.OverallSafety()
	fmt.Fprintf(&b, "%s %s (v%d → v%d, %s)\n",
		color.New(color.Bold).Sprint("Plan for"),
		p.SchemaName(), p.FromVersion(), p.ToVersion(),
		SafetyColor(overall).Sprint(overall))
	for i, s := range p.Steps() {
		fmt.Fprintf(&b, "  %2d. %s %s\n", i+1, s, SafetyColor(s.Safety()).Sprintf("[%s]", s.Safety()))
	}
	return b.String()
}

// PrintPlan prints FormatPlan output.
func PrintPlan(p *plan.MigrationPlan) {
	fmt.Print(FormatPlan(p))
}

// Confirm asks a yes/no question on the terminal.
func Confirm(message string, def bool) (bool, error) {
	answer := def
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &answer); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return answer, nil
}
