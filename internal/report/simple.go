package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/mdcrawl/internal/model"
)

const (
	timeLayout   = "2006-01-02 15:04:05 MST"
	timeRounding = time.Millisecond
	ruleWidth    = 70
)

// SimpleWriter renders a plain text report for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose lists every page, not only the failed ones.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose lists every processed page.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write implements Writer.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeCounts(&sb, report)
	w.writePages(&sb, report)
	w.writeErrors(&sb, report)

	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                        MDCRAWL RUN REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Seed:      %s\n", report.Seed)
	fmt.Fprintf(sb, "Output:    %s\n", report.OutputPath)
	fmt.Fprintf(sb, "Started:   %s\n", report.StartedAt.Format(timeLayout))
	fmt.Fprintf(sb, "Duration:  %s\n", report.Duration().Round(timeRounding))
	fmt.Fprintf(sb, "Status:    %s\n", runState(report))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeCounts(sb *strings.Builder, report *model.RunReport) {
	w.section(sb, "PAGES")
	for _, s := range statusOrder {
		fmt.Fprintf(sb, "  %-13s %d\n", strings.ToUpper(string(s))+":", report.Count(s))
	}
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  %-13s %d\n", "FETCHED:", report.Fetched())
	sb.WriteString("\n")
}

func (w *SimpleWriter) writePages(sb *strings.Builder, report *model.RunReport) {
	var pages []model.PageRecord
	for _, p := range report.Pages {
		if w.verbose || p.Failed() {
			pages = append(pages, p)
		}
	}
	if len(pages) == 0 {
		return
	}

	if w.verbose {
		w.section(sb, "PAGE LOG")
	} else {
		w.section(sb, "FAILED PAGES")
	}
	for _, p := range pages {
		fmt.Fprintf(sb, "  [%s] d=%d %s\n", pageIndicator(p.Status), p.Depth, p.URL)
		if p.Strategy != "" && w.verbose {
			fmt.Fprintf(sb, "      via %s, %d bytes, %d links\n", p.Strategy, p.Bytes, p.Links)
		}
		if p.Error != "" {
			fmt.Fprintf(sb, "      %s\n", p.Error)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeErrors(sb *strings.Builder, report *model.RunReport) {
	if len(report.Errors) == 0 {
		return
	}
	w.section(sb, "ERRORS")
	for _, msg := range report.ErrorMessages() {
		fmt.Fprintf(sb, "  * %s\n", msg)
	}
	sb.WriteString("\n")
}

func pageIndicator(s model.PageStatus) string {
	switch s {
	case model.StatusWritten:
		return "+"
	case model.StatusDuplicate:
		return "="
	case model.StatusEmpty:
		return "."
	case model.StatusFetchFailed, model.StatusWriteFailed:
		return "!"
	default:
		return "?"
	}
}
