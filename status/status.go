// Package status prints the prefixed progress lines
// that make up htpublish's normal output.
//
// Example:
//
//	[OK]   STOR /site/index.html
//	[INFO] SKIP (mtime) /site/style.css
package status

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Output is where progress lines go.
var Output io.Writer = os.Stdout

var (
	okColor   = color.New(color.FgGreen)
	infoColor = color.New(color.FgBlue)
	noteColor = color.New(color.FgYellow)
	cmdColor  = color.New(color.FgMagenta)
	errColor  = color.New(color.FgRed)
)

// Disable turns off colored output.
func Disable() {
	color.NoColor = true
}

func line(c *color.Color, prompt, format string, args ...interface{}) {
	msg := fmt.Sprintf("%-6s %s", prompt, fmt.Sprintf(format, args...))
	fmt.Fprintln(Output, c.Sprint(msg))
}

// Okf reports a completed remote operation.
func Okf(format string, args ...interface{}) {
	line(okColor, "[OK]", format, args...)
}

// Infof reports a skipped operation.
func Infof(format string, args ...interface{}) {
	line(infoColor, "[INFO]", format, args...)
}

// Notef reports a destructive or recovery operation.
func Notef(format string, args ...interface{}) {
	line(noteColor, "[NOTE]", format, args...)
}

// Cmdf echoes a command before it is sent.
func Cmdf(format string, args ...interface{}) {
	line(cmdColor, "[CMD]", format, args...)
}

// Errorf reports a non-fatal error.
func Errorf(format string, args ...interface{}) {
	line(errColor, "[ERR]", format, args...)
}
