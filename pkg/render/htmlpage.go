package render

import (
	"html"
	"strings"

	"github.com/dkoosis/cdashreport/pkg/pattern"
)

// HTML renders a report as the body of an e-mail: title, CDash links, the
// list of non-empty sets and one table per set. Leaderboards and sparklines
// are terminal views and are skipped.
type HTML struct {
	CSS        string
	TableAttrs string
}

// NewHTML creates an HTML renderer with the default table style.
func NewHTML() *HTML {
	return &HTML{CSS: DefaultCSS, TableAttrs: DefaultTableAttrs}
}

// Render formats the page. A table that cannot be rendered ends the page
// with the error in a code block.
func (h *HTML) Render(patterns []pattern.Pattern) string {
	page, err := h.Page(patterns)
	if err != nil {
		return page + codeBlock(err.Error())
	}
	return page
}

// Page formats the page, stopping at the first table that cannot be
// rendered. The returned string holds everything before that table.
func (h *HTML) Page(patterns []pattern.Pattern) (string, error) {
	var sb strings.Builder
	for _, p := range patterns {
		switch v := p.(type) {
		case *pattern.Summary:
			if err := h.writeSummary(&sb, v); err != nil {
				return sb.String(), err
			}
		case *pattern.DataTable:
			title, err := ColorHTMLText(TableTitle(v.Title, v.Acronym, v.Total, v.Limit), v.Color)
			if err != nil {
				return sb.String(), err
			}
			tbl, err := HTMLTable(title, v.Columns, v.Rows, h.CSS, h.TableAttrs)
			if err != nil {
				return sb.String(), err
			}
			sb.WriteString(tbl)
		case *pattern.Error:
			text := v.Stack
			if text == "" {
				text = v.Message
			}
			sb.WriteString(codeBlock(text))
		}
	}
	return sb.String(), nil
}

func (h *HTML) writeSummary(sb *strings.Builder, s *pattern.Summary) error {
	switch s.Kind {
	case pattern.SummaryKindHeader:
		sb.WriteString("<h2>" + s.Label + "</h2>\n\n")
		if len(s.Metrics) == 0 {
			return nil
		}
		sb.WriteString("<p>\n")
		for _, m := range s.Metrics {
			text := m.Label
			if m.URL != "" {
				text = `<a href="` + m.URL + `">` + m.Label + "</a>"
			}
			sb.WriteString(text + " (" + m.Value + ")<br>\n")
		}
		sb.WriteString("</p>\n\n")
	case pattern.SummaryKindVerdict:
		if len(s.Metrics) == 0 {
			return nil
		}
		sb.WriteString("<p>\n")
		for _, m := range s.Metrics {
			line, err := ColorHTMLText(m.Label+": "+m.Value, m.Color)
			if err != nil {
				return err
			}
			sb.WriteString(line + "<br>\n")
		}
		sb.WriteString("</p>\n\n")
	}
	return nil
}

func codeBlock(text string) string {
	return "<pre><code>\n" + html.EscapeString(strings.TrimRight(text, "\n")) + "\n</code></pre>\n"
}
