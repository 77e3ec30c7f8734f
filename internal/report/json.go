package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/mdcrawl/internal/model"
)

// JSONWriter renders a JSONReport.
type JSONWriter struct {
	baseWriter

	version      string
	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion stamps the mdcrawl version into the output.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport wraps a RunReport with the fields that do not serialize on
// their own: the error messages and the per-status counts.
type JSONReport struct {
	Version    string           `json:"version,omitempty"`
	Status     string           `json:"status"`
	DurationMS int64            `json:"duration_ms"`
	Counts     map[string]int   `json:"counts"`
	Errors     []string         `json:"errors"`
	Report     *model.RunReport `json:"report"`
}

// NewJSONReport builds the JSON view of report.
func NewJSONReport(report *model.RunReport, version string) *JSONReport {
	counts := make(map[string]int, len(statusOrder))
	for _, s := range statusOrder {
		counts[string(s)] = report.Count(s)
	}
	return &JSONReport{
		Version:    version,
		Status:     runState(report),
		DurationMS: report.Duration().Milliseconds(),
		Counts:     counts,
		Errors:     report.ErrorMessages(),
		Report:     report,
	}
}

// Write implements Writer. Output ends with a newline.
func (w *JSONWriter) Write(report *model.RunReport) (int, error) {
	return w.writeJSON(NewJSONReport(report, w.version))
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}

