package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dkoosis/cdashreport/pkg/cdash"
	"github.com/dkoosis/cdashreport/pkg/pattern"
	"github.com/dkoosis/cdashreport/pkg/record"
)

// maxCellWidth caps a terminal table cell; longer values are truncated.
const maxCellWidth = 40

// upperCaserPool pools casers, which are not safe for concurrent use.
var upperCaserPool = sync.Pool{
	New: func() any {
		c := cases.Upper(language.English)
		return &c
	},
}

func upper(s string) string {
	c := upperCaserPool.Get().(*cases.Caser)
	defer upperCaserPool.Put(c)
	return c.String(s)
}

// Terminal renders patterns as styled terminal output via lipgloss.
type Terminal struct {
	theme Theme
	width int
}

// NewTerminal creates a terminal renderer with the given theme.
func NewTerminal(theme Theme, width int) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{theme: theme, width: width}
}

// Render formats all patterns for terminal display.
func (t *Terminal) Render(patterns []pattern.Pattern) string {
	var sections []string
	for _, p := range patterns {
		s := t.renderOne(p)
		if s != "" {
			sections = append(sections, s)
		}
	}
	return strings.Join(sections, "\n")
}

func (t *Terminal) renderOne(p pattern.Pattern) string {
	switch v := p.(type) {
	case *pattern.Summary:
		return t.renderSummary(v)
	case *pattern.DataTable:
		return t.renderTable(v)
	case *pattern.Leaderboard:
		return t.renderLeaderboard(v)
	case *pattern.Sparkline:
		return t.renderSparkline(v)
	case *pattern.Error:
		return t.renderError(v)
	default:
		return ""
	}
}

func (t *Terminal) renderSummary(s *pattern.Summary) string {
	var sb strings.Builder
	if s.Label != "" {
		style := t.theme.Bold
		if s.Kind == pattern.SummaryKindVerdict {
			style = t.theme.Success.Bold(true)
			if strings.HasPrefix(s.Label, "FAILED") {
				style = t.theme.Error.Bold(true)
			}
		}
		sb.WriteString(style.Render(s.Label))
		sb.WriteString("\n")
	}
	for _, m := range s.Metrics {
		sb.WriteString("  ")
		icon, style := t.iconStyle(m.Kind)
		sb.WriteString(style.Render(icon + " " + m.Label + ": " + m.Value))
		if m.URL != "" {
			sb.WriteString("\n    ")
			sb.WriteString(t.theme.Muted.Render(m.URL))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderTable(tbl *pattern.DataTable) string {
	var sb strings.Builder
	title := TableTitle(tbl.Title, tbl.Acronym, tbl.Total, tbl.Limit)
	sb.WriteString(t.theme.ColorStyle(tbl.Color).Bold(true).Render(title))
	sb.WriteString("\n")
	sb.WriteString(t.theme.Muted.Render(strings.Repeat("─", min(runewidth.StringWidth(title), t.width))))
	sb.WriteString("\n")
	if len(tbl.Rows) == 0 {
		return sb.String()
	}

	headers := make([]string, len(tbl.Columns))
	widths := make([]int, len(tbl.Columns))
	for j, c := range tbl.Columns {
		headers[j] = upper(PlainText(c.Header))
		widths[j] = runewidth.StringWidth(headers[j])
	}
	cells := make([][]string, len(tbl.Rows))
	for i, row := range tbl.Rows {
		cells[i] = make([]string, len(tbl.Columns))
		for j, c := range tbl.Columns {
			v := TerminalCell(row, c.Key)
			if c.Key == "status" && v != "" {
				v = t.statusIcon(v) + " " + v
			}
			cells[i][j] = v
			if w := runewidth.StringWidth(v); w > widths[j] {
				widths[j] = w
			}
		}
	}

	line := make([]string, len(headers))
	for j, h := range headers {
		line[j] = pad(h, widths[j], tbl.Columns[j].Align)
	}
	sb.WriteString("  " + t.theme.Muted.Render(strings.Join(line, "  ")) + "\n")

	for i, row := range tbl.Rows {
		for j, c := range tbl.Columns {
			text := pad(cells[i][j], widths[j], c.Align)
			if color := row.Str(c.Key + "_color"); color != "" {
				text = t.theme.ColorStyle(color).Render(text)
			}
			line[j] = text
		}
		sb.WriteString("  " + strings.Join(line, "  ") + "\n")
	}
	return sb.String()
}

// PlainText removes the HTML soft hyphens used in headers.
func PlainText(s string) string {
	return strings.ReplaceAll(s, "&shy;", "")
}

// TerminalCell is the one-line, width-capped text of a record field.
func TerminalCell(row record.Record, key string) string {
	v := strings.TrimSpace(row.Str(key))
	if i := strings.IndexByte(v, '\n'); i >= 0 {
		v = v[:i] + " ..."
	}
	return runewidth.Truncate(v, maxCellWidth, "...")
}

func (t *Terminal) renderLeaderboard(l *pattern.Leaderboard) string {
	if len(l.Items) == 0 {
		return ""
	}
	var sb strings.Builder
	if l.Label != "" {
		header := l.Label
		if l.TotalCount > len(l.Items) {
			header += fmt.Sprintf(" (top %d of %d)", len(l.Items), l.TotalCount)
		}
		sb.WriteString(t.theme.Bold.Render(header))
		sb.WriteString("\n")
	}

	maxName, maxMetric := 0, 0
	for _, item := range l.Items {
		maxName = max(maxName, runewidth.StringWidth(item.Name))
		maxMetric = max(maxMetric, runewidth.StringWidth(item.Metric))
	}
	maxName = min(maxName, 50)

	for _, item := range l.Items {
		sb.WriteString("  ")
		if l.ShowRank {
			sb.WriteString(t.theme.Muted.Render(fmt.Sprintf("%2d. ", item.Rank)))
		}
		name := runewidth.Truncate(item.Name, maxName, "...")
		sb.WriteString(t.theme.Primary.Render(pad(name, maxName, pattern.AlignLeft)))
		sb.WriteString("  ")
		sb.WriteString(t.theme.Warning.Render(pad(item.Metric, maxMetric, pattern.AlignRight)))
		if item.Context != "" {
			sb.WriteString("  ")
			sb.WriteString(t.theme.Muted.Render(item.Context))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderSparkline(s *pattern.Sparkline) string {
	if len(s.Values) == 0 {
		return ""
	}
	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.theme.Primary.Render(s.Label + ": "))
	}

	minVal, maxVal := s.Min, s.Max
	if minVal == 0 && maxVal == 0 {
		minVal, maxVal = s.Values[0], s.Values[0]
		for _, v := range s.Values {
			minVal = min(minVal, v)
			maxVal = max(maxVal, v)
		}
	}
	valueRange := maxVal - minVal
	if valueRange == 0 {
		valueRange = 1
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	var spark strings.Builder
	for _, v := range s.Values {
		idx := int((v - minVal) / valueRange * 7)
		spark.WriteRune(blocks[max(0, min(idx, 7))])
	}
	sb.WriteString(t.theme.Success.Render(spark.String()))

	latest := s.Values[len(s.Values)-1]
	sb.WriteString(t.theme.Muted.Render(fmt.Sprintf(" %.0f%s", latest, s.Unit)))
	sb.WriteString("\n")
	return sb.String()
}

func (t *Terminal) renderError(e *pattern.Error) string {
	var sb strings.Builder
	sb.WriteString(t.theme.Error.Bold(true).Render(t.theme.Icons.Fail + " " + e.Label))
	sb.WriteString("\n")
	text := e.Stack
	if text == "" {
		text = e.Message
	}
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		sb.WriteString("  " + t.theme.Muted.Render(line) + "\n")
	}
	return sb.String()
}

func (t *Terminal) iconStyle(kind string) (string, lipgloss.Style) {
	switch kind {
	case "success":
		return t.theme.Icons.Pass, t.theme.Success
	case "error":
		return t.theme.Icons.Fail, t.theme.Error
	case "warning":
		return t.theme.Icons.Warn, t.theme.Warning
	default:
		return t.theme.Icons.Info, t.theme.Primary
	}
}

func (t *Terminal) statusIcon(status string) string {
	switch status {
	case cdash.StatusPassed:
		return t.theme.Icons.Pass
	case cdash.StatusFailed:
		return t.theme.Icons.Fail
	case cdash.StatusNotRun:
		return t.theme.Icons.Warn
	case cdash.StatusMissing:
		return t.theme.Icons.WIP
	default:
		return t.theme.Icons.Info
	}
}

func pad(s string, width int, align pattern.Align) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	if align == pattern.AlignRight {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}
