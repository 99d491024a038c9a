// Package output renders command results as text or JSON and formats errors
// for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Format selects how results are written.
type Format string

// Supported formats. FormatAuto picks text for a terminal and JSON otherwise.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatAuto Format = "auto"
)

// TextRenderer is implemented by results with a human-readable layout.
type TextRenderer interface {
	RenderText(w io.Writer, colored bool) error
}

// Formatter carries the resolved format and color choice for a run.
type Formatter struct {
	format Format
	writer io.Writer
	color  bool
}

// NewFormatter returns a formatter writing to w. Color starts disabled.
func NewFormatter(format Format, w io.Writer) *Formatter {
	return &Formatter{format: format, writer: w}
}

// WithColor sets whether text output uses ANSI color.
func (f *Formatter) WithColor(enabled bool) *Formatter {
	f.color = enabled
	return f
}

// Format returns the resolved format.
func (f *Formatter) Format() Format { return f.format }

// Color reports whether text output is colored.
func (f *Formatter) Color() bool { return f.color }

// Print renders v to the formatter's writer.
func (f *Formatter) Print(v any) error {
	return Render(f.writer, f.format, f.color, v)
}

// Render writes v as indented JSON when format is FormatJSON. Otherwise it
// uses v's RenderText method, falling back to String or %v on one line.
func Render(w io.Writer, format Format, colored bool, v any) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	var line string
	switch val := v.(type) {
	case TextRenderer:
		return val.RenderText(w, colored)
	case string:
		line = val
	case fmt.Stringer:
		line = val.String()
	default:
		line = fmt.Sprint(val)
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// DetectFormat resolves FormatAuto: text when w is a terminal, JSON when it
// is piped or redirected. Explicit formats are returned unchanged.
func DetectFormat(w io.Writer, explicit Format) Format {
	if explicit != FormatAuto {
		return explicit
	}
	if isTerminal(w) {
		return FormatText
	}
	return FormatJSON
}

// ParseFormat maps a config or flag value to a Format. Unknown values mean auto.
func ParseFormat(s string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON
	case FormatText:
		return FormatText
	default:
		return FormatAuto
	}
}

// ColorEnabled resolves a color mode ("always", "never" or "auto") for w.
func ColorEnabled(mode string, w io.Writer) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "always":
		return true
	case "never":
		return false
	default:
		return isTerminal(w)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: file descriptors fit in int
}
