package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Warnf writes a warning line, yellow when the formatter is colored.
func (f *Formatter) Warnf(w io.Writer, format string, args ...any) {
	label := paint(f.color, color.FgYellow, color.Bold)
	_, _ = fmt.Fprintf(w, "%s %s\n", label("Warning:"), fmt.Sprintf(format, args...))
}

// Successf writes a success line, green when the formatter is colored.
func (f *Formatter) Successf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintln(w, paint(f.color, color.FgGreen)(fmt.Sprintf(format, args...)))
}
