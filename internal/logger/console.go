package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Console prints operator-facing progress lines. Structured logs go to stderr,
// console lines go to stdout so they stay readable when piped.
type Console struct {
	out     io.Writer
	success *color.Color
	failure *color.Color
}

func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}

	return &Console{
		out:     out,
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
	}
}

// Success prints a "✅ ..." line.
func (c *Console) Success(format string, args ...any) {
	_, _ = c.success.Fprint(c.out, "✅ ")
	_, _ = fmt.Fprintf(c.out, format+"\n", args...)
}

// Failure prints a "❌ ..." line.
func (c *Console) Failure(format string, args ...any) {
	_, _ = c.failure.Fprint(c.out, "❌ ")
	_, _ = fmt.Fprintf(c.out, format+"\n", args...)
}

// Info prints a plain line.
func (c *Console) Info(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format+"\n", args...)
}
