package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

// ErrorOutput represents a structured error for JSON output.
type ErrorOutput struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	ExitCode   int               `json:"exit_code"`
}

// NewErrorDetail flattens err into its machine-readable fields.
func NewErrorDetail(err error) ErrorDetail {
	var ee *ethlerr.EthliteError
	if errors.As(err, &ee) {
		return ErrorDetail{
			Code:       ee.Code,
			Message:    messageOf(ee),
			Details:    ee.Details,
			Suggestion: ee.Suggestion,
			ExitCode:   ee.ExitCode,
		}
	}
	return ErrorDetail{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		ExitCode: ethlerr.ExitGeneral,
	}
}

// messageOf appends the innermost non-structured cause to the message,
// which is usually the actionable part ("nonce too low", "odd length").
func messageOf(ee *ethlerr.EthliteError) string {
	cause := ee.Cause
	for cause != nil {
		inner, ok := cause.(*ethlerr.EthliteError)
		if !ok {
			break
		}
		cause = inner.Cause
	}
	if cause == nil {
		return ee.Message
	}
	return fmt.Sprintf("%s: %v", ee.Message, cause)
}

// FormatError formats an error for display without color.
func FormatError(w io.Writer, err error, format Format) error {
	return formatError(w, err, format, false)
}

// FormatError formats an error using the formatter's format and color setting.
func (f *Formatter) FormatError(w io.Writer, err error) error {
	return formatError(w, err, f.format, f.color)
}

func formatError(w io.Writer, err error, format Format, colored bool) error {
	if err == nil {
		return nil
	}

	if format == FormatJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(ErrorOutput{Error: NewErrorDetail(err)})
	}
	return formatErrorText(w, NewErrorDetail(err), colored)
}

func formatErrorText(w io.Writer, detail ErrorDetail, colored bool) error {
	label := paint(colored, color.FgRed, color.Bold)
	hint := paint(colored, color.FgYellow)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s\n", label("Error:"), detail.Message))

	if len(detail.Details) > 0 {
		keys := make([]string, 0, len(detail.Details))
		for k := range detail.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("\nDetails:\n")
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", k, detail.Details[k]))
		}
	}

	if detail.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("\n%s %s\n", hint("Suggestion:"), detail.Suggestion))
	}

	_, writeErr := io.WriteString(w, sb.String())
	return writeErr
}

// paint returns a sprint function for attrs, or a plain one when colored is false.
func paint(colored bool, attrs ...color.Attribute) func(a ...any) string {
	c := color.New(attrs...)
	if colored {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.SprintFunc()
}
