package render

import (
	"fmt"
	"strings"

	"github.com/dkoosis/cdashreport/pkg/pattern"
)

const maxDetailLines = 3

// LLM renders patterns as terse plain text for AI consumption: no ANSI
// codes, a SCOPE line first, one line per table row.
type LLM struct{}

// NewLLM creates an LLM renderer.
func NewLLM() *LLM {
	return &LLM{}
}

// Render formats all patterns for LLM consumption.
func (l *LLM) Render(patterns []pattern.Pattern) string {
	var sb strings.Builder
	for _, p := range patterns {
		switch v := p.(type) {
		case *pattern.Summary:
			l.renderSummary(&sb, v)
		case *pattern.DataTable:
			l.renderTable(&sb, v)
		case *pattern.Leaderboard:
			l.renderLeaderboard(&sb, v)
		case *pattern.Error:
			sb.WriteString("SCOPE: " + v.Label + "\n")
			writeClipped(&sb, v.Message, "  ")
		}
	}
	return sb.String()
}

func (l *LLM) renderSummary(sb *strings.Builder, s *pattern.Summary) {
	switch s.Kind {
	case pattern.SummaryKindVerdict:
		sb.WriteString("SCOPE: " + s.Label + "\n")
	case pattern.SummaryKindHeader:
		sb.WriteString(s.Label + "\n")
		for _, m := range s.Metrics {
			sb.WriteString("  " + m.Label + ": " + m.Value)
			if m.URL != "" {
				sb.WriteString(" " + m.URL)
			}
			sb.WriteString("\n")
		}
	}
}

func (l *LLM) renderTable(sb *strings.Builder, t *pattern.DataTable) {
	sb.WriteString("\n## " + TableTitle(t.Title, t.Acronym, t.Total, t.Limit) + "\n")
	for _, row := range t.Rows {
		var fields []string
		var details string
		for _, c := range t.Columns {
			if c.Key == "details" {
				details = strings.TrimSpace(row.Str(c.Key))
				continue
			}
			v := row.Str(c.Key)
			if v == "" {
				continue
			}
			if c.Align == pattern.AlignRight {
				v = shortHeader(c.Header) + "=" + v
			}
			fields = append(fields, v)
		}
		sb.WriteString("  " + strings.Join(fields, " | ") + "\n")
		if details != "" {
			writeClipped(sb, details, "    ")
		}
	}
}

// shortHeader turns "Non-pass Last 30 Days" into "non-pass_last_30_days".
func shortHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(PlainText(h)), " ", "_")
}

func (l *LLM) renderLeaderboard(sb *strings.Builder, lb *pattern.Leaderboard) {
	if len(lb.Items) == 0 {
		return
	}
	sb.WriteString("\n## " + lb.Label + "\n")
	for _, item := range lb.Items {
		sb.WriteString(fmt.Sprintf("  %d. %s %s", item.Rank, item.Name, item.Metric))
		if item.Context != "" {
			sb.WriteString(" (" + item.Context + ")")
		}
		sb.WriteString("\n")
	}
}

func writeClipped(sb *strings.Builder, text, indent string) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	n := min(len(lines), maxDetailLines)
	for _, line := range lines[:n] {
		sb.WriteString(indent + line + "\n")
	}
	if len(lines) > maxDetailLines {
		sb.WriteString(fmt.Sprintf("%s... (%d more lines)\n", indent, len(lines)-maxDetailLines))
	}
}
