package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dkoosis/cdashreport/pkg/pattern"
	"github.com/dkoosis/cdashreport/pkg/record"
)

// DefaultCSS is the style block placed before every HTML table.
const DefaultCSS = `table, th, td {
  padding: 5px;
  border: 1px solid black;
  border-collapse: collapse;
}
tr:nth-child(even) {background-color: #eee;}
tr:nth-child(odd) {background-color: #fff;}
`

// DefaultTableAttrs are the attributes of the <table> tag.
const DefaultTableAttrs = `style="width:100%" boarder="1"`

var htmlColors = []string{"red", "green", "gray", "orange"}

// ColorHTMLText wraps text in a <font> tag of color. An empty color leaves
// text unchanged.
func ColorHTMLText(text, color string) (string, error) {
	if color == "" {
		return text, nil
	}
	for _, c := range htmlColors {
		if c == color {
			return `<font color="` + color + `">` + text + `</font>`, nil
		}
	}
	return "", fmt.Errorf("Error, color='%s' is invalid.  Only 'red', 'green', 'gray' and 'orange' are supported!", color)
}

// SoftWordBreaks lets a browser wrap long underscore-joined names.
func SoftWordBreaks(text string) string {
	return strings.ReplaceAll(text, "_", "_&shy;")
}

// TableTitle is "title: acronym=count", with "(limited to N)" after the
// title when limit is not negative.
func TableTitle(title, acronym string, count, limit int) string {
	if limit >= 0 {
		title += " (limited to " + strconv.Itoa(limit) + ")"
	}
	return title + ": " + acronym + "=" + strconv.Itoa(count)
}

// HTMLTable renders rows under cols. Every cell gets soft word breaks, then
// the color in <key>_color and the link in <key>_url when those are set. A
// row without a column's field is an error.
func HTMLTable(title string, cols []pattern.Column, rows []record.Record, css, tableAttrs string) (string, error) {
	var sb strings.Builder
	sb.WriteString("<style>" + css + "</style>\n")
	sb.WriteString("<h3>" + title + "</h3>\n")
	sb.WriteString("<table " + tableAttrs + ">\n\n")

	sb.WriteString("<tr>\n")
	for _, c := range cols {
		sb.WriteString("<th>" + c.Header + "</th>\n")
	}
	sb.WriteString("</tr>\n\n")

	for i, row := range rows {
		sb.WriteString("<tr>\n")
		for j, c := range cols {
			cell, err := htmlCell(row, c.Key, i, j)
			if err != nil {
				return "", err
			}
			align := c.Align
			if align == "" {
				align = pattern.AlignLeft
			}
			sb.WriteString(`<td align="` + string(align) + `">` + cell + "</td>\n")
		}
		sb.WriteString("</tr>\n\n")
	}

	sb.WriteString("</table>\n\n")
	return sb.String(), nil
}

func htmlCell(row record.Record, key string, i, j int) (string, error) {
	v, ok := row[key]
	if !ok || v == nil {
		return "", fmt.Errorf("Error, column %d dict key='%s' row %d entry is 'None' which is not allowed!\n\nRow dict = %s",
			j, key, i, row)
	}
	text := SoftWordBreaks(record.ValueString(v))
	text, err := ColorHTMLText(text, row.Str(key+"_color"))
	if err != nil {
		return "", err
	}
	if url := row.Str(key + "_url"); url != "" {
		text = `<a href="` + url + `">` + text + "</a>"
	}
	return text, nil
}
