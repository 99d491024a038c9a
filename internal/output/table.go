package output

import (
	"io"

	"github.com/fatih/color"
	"github.com/rodaine/table"
)

// Field is one labeled value of a text summary.
type Field struct {
	Key   string
	Value string
}

// NewTable returns a table writing to w with the given column headers.
// Headers are cyan and underlined when colored is true.
func NewTable(w io.Writer, colored bool, headers ...string) table.Table {
	cols := make([]any, len(headers))
	for i, h := range headers {
		cols[i] = h
	}

	tbl := table.New(cols...).WithWriter(w)
	if colored {
		headerFmt := color.New(color.FgCyan, color.Underline)
		headerFmt.EnableColor()
		tbl.WithHeaderFormatter(headerFmt.SprintfFunc())
	}
	return tbl
}

// RenderFields writes a two-column field/value summary.
func RenderFields(w io.Writer, colored bool, fields []Field) {
	tbl := NewTable(w, colored, "Field", "Value")
	for _, f := range fields {
		tbl.AddRow(f.Key, f.Value)
	}
	tbl.Print()
}
