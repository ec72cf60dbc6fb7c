package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter renders the full report as indented JSON
type JSONFormatter struct {
	Indent string
}

// NewJSONFormatter creates a JSON formatter with two-space indentation
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{Indent: "  "}
}

// Format returns the format type
func (f *JSONFormatter) Format() Format {
	return FormatJSON
}

// Render writes the report
func (f *JSONFormatter) Render(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", f.Indent)
	enc.SetEscapeHTML(false)
	return enc.Encode(report)
}
