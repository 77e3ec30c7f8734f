package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/mdcrawl/internal/model"
)

// MarkdownWriter renders a markdown report.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write implements Writer.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeCounts(md, report)
	w.writePages(md, report)
	w.writeErrors(md, report)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [mdcrawl](https://github.com/nao1215/mdcrawl)*")

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("mdcrawl Run Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed", "`" + report.Seed + "`"},
			{"Output", "`" + report.OutputPath + "`"},
			{"Started", report.StartedAt.Format(timeLayout)},
			{"Duration", report.Duration().Round(timeRounding).String()},
			{"Status", runState(report)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Pages")
	md.PlainText("")

	rows := make([][]string, 0, len(statusOrder)+1)
	for _, s := range statusOrder {
		rows = append(rows, []string{string(s), strconv.Itoa(report.Count(s))})
	}
	rows = append(rows, []string{"**fetched**", "**" + strconv.Itoa(report.Fetched()) + "**"})
	md.Table(markdown.TableSet{
		Header: []string{"Status", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if report.Fetched() > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Page outcomes"),
			piechart.WithShowData(true),
		)
		for _, s := range statusOrder {
			if n := report.Count(s); n > 0 {
				chart.LabelAndIntValue(string(s), uint64(n))
			}
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	failed := report.Count(model.StatusFetchFailed) + report.Count(model.StatusWriteFailed)
	switch {
	case report.Canceled:
		md.Warningf("The run was canceled after %d page(s); the output file is partial.", report.Fetched())
	case report.Count(model.StatusWriteFailed) > 0:
		md.Cautionf("%d page(s) could not be appended to the output file.", report.Count(model.StatusWriteFailed))
	case failed > 0:
		md.Importantf("%d page(s) could not be fetched by any strategy.", failed)
	case report.Count(model.StatusWritten) == 0:
		md.Note("No page text was written.")
	default:
		md.Tip("Every fetched page was processed without errors.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Page Log")
	md.PlainText("")

	if len(report.Pages) == 0 {
		md.PlainText("No pages were fetched.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Pages))
	for i, p := range report.Pages {
		strategy := p.Strategy
		if strategy == "" {
			strategy = "-"
		}
		rows[i] = []string{
			truncateString(p.URL, 60),
			strconv.Itoa(p.Depth),
			strategy,
			string(p.Status),
			strconv.Itoa(p.Bytes),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Depth", "Strategy", "Status", "Bytes"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, report *model.RunReport) {
	if len(report.Errors) == 0 {
		return
	}
	md.H2("Errors")
	md.PlainText("")
	md.BulletList(report.ErrorMessages()...)
	md.PlainText("")
}

// truncateString truncates s to maxLen bytes with an ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
