// Package ui provides colored terminal output helpers for the CLI.
// All output goes to stderr so stdout stays clean for JSON results.
package ui

import (
	"os"
	"strings"

	"github.com/fatih/color"
)

const headerWidth = 60

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	stepColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgBlue)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

// Header prints a centered section header.
func Header(text string) {
	line := strings.Repeat("=", headerWidth)
	headerColor.Fprintln(os.Stderr, line)
	headerColor.Fprintln(os.Stderr, center(text, headerWidth))
	headerColor.Fprintln(os.Stderr, line)
}

// Step prints a numbered progress step.
func Step(current, total int, text string) {
	stepColor.Fprintf(os.Stderr, "[%d/%d] %s\n", current, total, text)
}

// Success prints a green checkmark line.
func Success(text string) {
	successColor.Fprintf(os.Stderr, "✓ %s\n", text)
}

// Info prints a neutral informational line.
func Info(text string) {
	infoColor.Fprintf(os.Stderr, "• %s\n", text)
}

// Warning prints a yellow warning line.
func Warning(text string) {
	warnColor.Fprintf(os.Stderr, "⚠ %s\n", text)
}

// Error prints a red error line.
func Error(text string) {
	errorColor.Fprintf(os.Stderr, "✗ %s\n", text)
}

// BlueText returns text wrapped in blue for inline use.
func BlueText(text string) string {
	return infoColor.Sprint(text)
}

// YellowText returns text wrapped in yellow for inline use.
func YellowText(text string) string {
	return warnColor.Sprint(text)
}

// center left-pads text so it sits in the middle of width columns.
// Text wider than width is returned unchanged.
func center(text string, width int) string {
	if len(text) >= width {
		return text
	}
	return strings.Repeat(" ", (width-len(text))/2) + text
}
