package console

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ColorMode selects when console output is styled.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a --color value
func ParseColorMode(s string) (ColorMode, error) {
	switch mode := ColorMode(strings.ToLower(s)); mode {
	case ColorAuto, ColorAlways, ColorNever:
		return mode, nil
	}
	return "", fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
}

var colorMode atomic.Value

// SetColorMode changes the styling policy for all console output
func SetColorMode(mode ColorMode) {
	colorMode.Store(mode)
}

func currentColorMode() ColorMode {
	if mode, ok := colorMode.Load().(ColorMode); ok {
		return mode
	}
	return ColorAuto
}

// Position is a location in a source document
type Position struct {
	File   string
	Line   int
	Column int
}

// Diagnostic is a located message rendered in the file:line:col form that
// editors understand
type Diagnostic struct {
	Position Position
	Severity string   // "fatal", "error", "warning", "info"
	Message  string
	Context  []string // Source lines centred on Position.Line
	Hint     string
}

// Styles for different severities
var (
	fatalStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(lipgloss.Color("#FF5555"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5555"))

	warningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))

	infoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	filePathStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#BD93F9"))

	lineNumberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	contextLineStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F8F8F2"))

	highlightStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#FF5555")).
			Foreground(lipgloss.Color("#282A36"))

	hintStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#50FA7B"))
)

// isTTY checks if stderr is a terminal. Console messages and reports go to
// stderr; stdout carries the document.
func isTTY() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

// ColorEnabled reports whether console output is currently styled
func ColorEnabled() bool {
	switch currentColorMode() {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	return isTTY()
}

// applyStyle conditionally applies styling
func applyStyle(style lipgloss.Style, text string) string {
	if ColorEnabled() {
		return style.Render(text)
	}
	return text
}

// ToRelativePath converts an absolute path to a relative path from the current working directory
func ToRelativePath(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}

	wd, err := os.Getwd()
	if err != nil {
		return path
	}

	relPath, err := filepath.Rel(wd, path)
	if err != nil {
		return path
	}

	return relPath
}

// ContextLines returns up to radius lines either side of line (1-based)
// from source, for use as Diagnostic.Context
func ContextLines(source []byte, line, radius int) []string {
	if line < 1 || len(source) == 0 {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(string(source), "\r\n", "\n"), "\n")
	if line > len(lines) {
		return nil
	}
	start := max(1, line-radius)
	end := min(len(lines), line+radius)

	// keep the error line centred so renderContext can number the lines
	before := line - start
	after := end - line
	if before > after {
		start = line - after
	} else {
		end = line + before
	}
	return lines[start-1 : end]
}

func severityStyle(severity string) (lipgloss.Style, string) {
	switch severity {
	case "fatal":
		return fatalStyle, "fatal"
	case "warning":
		return warningStyle, "warning"
	case "info":
		return infoStyle, "info"
	default:
		return errorStyle, "error"
	}
}

// FormatDiagnostic renders a Diagnostic with its source context
func FormatDiagnostic(d Diagnostic) string {
	var output strings.Builder

	typeStyle, prefix := severityStyle(d.Severity)

	if d.Position.File != "" {
		location := fmt.Sprintf("%s:%d:%d:",
			ToRelativePath(d.Position.File),
			d.Position.Line,
			d.Position.Column)
		output.WriteString(applyStyle(filePathStyle, location))
		output.WriteString(" ")
	}

	output.WriteString(applyStyle(typeStyle, prefix+":"))
	output.WriteString(" ")
	output.WriteString(d.Message)
	output.WriteString("\n")

	if len(d.Context) > 0 && d.Position.Line > 0 {
		output.WriteString(renderContext(d))
	}

	if d.Hint != "" {
		output.WriteString(applyStyle(hintStyle, "hint: "))
		output.WriteString(d.Hint)
		output.WriteString("\n")
	}

	return output.String()
}

// renderContext renders source lines with line numbers and a caret under
// the reported column
func renderContext(d Diagnostic) string {
	var output strings.Builder

	maxLineNum := d.Position.Line + len(d.Context)/2
	lineNumWidth := len(fmt.Sprintf("%d", maxLineNum))

	for i, line := range d.Context {
		lineNum := d.Position.Line - len(d.Context)/2 + i
		if lineNum < 1 {
			continue
		}

		output.WriteString(applyStyle(lineNumberStyle, fmt.Sprintf("%*d", lineNumWidth, lineNum)))
		output.WriteString(" | ")

		if lineNum != d.Position.Line {
			output.WriteString(applyStyle(contextLineStyle, line))
			output.WriteString("\n")
			continue
		}

		col := d.Position.Column
		if col > 0 && col <= len(line) {
			output.WriteString(applyStyle(contextLineStyle, line[:col-1]))
			output.WriteString(applyStyle(highlightStyle, line[col-1:col]))
			output.WriteString(applyStyle(contextLineStyle, line[col:]))
		} else {
			output.WriteString(applyStyle(highlightStyle, line))
		}
		output.WriteString("\n")

		if col > 0 {
			output.WriteString(strings.Repeat(" ", lineNumWidth+3+col-1))
			output.WriteString(applyStyle(errorStyle, "^"))
			output.WriteString("\n")
		}
	}

	return output.String()
}

// FormatSuccessMessage formats a success message with styling
func FormatSuccessMessage(message string) string {
	successStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#50FA7B"))

	return applyStyle(successStyle, "✓ ") + message
}

// FormatInfoMessage formats an informational message
func FormatInfoMessage(message string) string {
	return applyStyle(infoStyle, "ℹ ") + message
}

// FormatWarningMessage formats a warning message
func FormatWarningMessage(message string) string {
	return applyStyle(warningStyle, "⚠ ") + message
}

// FormatErrorMessage formats a simple error message (for stderr output)
func FormatErrorMessage(message string) string {
	return applyStyle(errorStyle, "✗ ") + message
}

// FormatVerboseMessage formats verbose debugging output
func FormatVerboseMessage(message string) string {
	verboseStyle := lipgloss.NewStyle().
		Italic(true).
		Foreground(lipgloss.Color("#6272A4"))

	return applyStyle(verboseStyle, "🔍 ") + message
}

// FormatLocationMessage formats a watched file or directory message
func FormatLocationMessage(message string) string {
	locationStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFB86C"))

	return applyStyle(locationStyle, "📁 ") + message
}

// FormatProgressMessage formats a progress/activity message
func FormatProgressMessage(message string) string {
	progressStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F1FA8C"))

	return applyStyle(progressStyle, "🔨 ") + message
}
