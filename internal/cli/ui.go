// Package cli renders extraction runs on a terminal.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// UI writes user-facing messages. Normal output goes to out, failures to
// errOut.
type UI struct {
	out     io.Writer
	errOut  io.Writer
	noColor bool
}

// NewUI creates a UI. Nil writers default to stdout and stderr.
func NewUI(out, errOut io.Writer, noColor bool) *UI {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &UI{out: out, errOut: errOut, noColor: noColor}
}

func (ui *UI) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if ui.noColor {
		c.DisableColor()
	}
	return c
}

// Success prints a success message.
func (ui *UI) Success(format string, args ...interface{}) {
	ui.paint(color.FgGreen).Fprintf(ui.out, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (ui *UI) Error(format string, args ...interface{}) {
	ui.paint(color.FgRed).Fprintf(ui.errOut, "✗ %s\n", fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (ui *UI) Warning(format string, args ...interface{}) {
	ui.paint(color.FgYellow).Fprintf(ui.errOut, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// Info prints an info message.
func (ui *UI) Info(format string, args ...interface{}) {
	ui.paint(color.FgCyan).Fprintf(ui.out, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// Section prints a section header.
func (ui *UI) Section(title string) {
	ui.paint(color.FgMagenta, color.Bold).Fprintf(ui.out, "━━━ %s ━━━\n", title)
}

// KeyValue prints an indented key and value.
func (ui *UI) KeyValue(key string, value interface{}) {
	ui.paint(color.FgYellow).Fprintf(ui.out, "  %s: ", key)
	fmt.Fprintf(ui.out, "%v\n", value)
}
