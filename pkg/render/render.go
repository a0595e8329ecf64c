// Package render provides output renderers for report patterns.
package render

import "github.com/dkoosis/cdashreport/pkg/pattern"

// Renderer converts patterns to formatted output.
type Renderer interface {
	Render(patterns []pattern.Pattern) string
}

// ByFormat returns the renderer for an output format name: "html", "json",
// "llm" or "terminal". ok is false for an unknown name.
func ByFormat(format string, theme Theme, width int) (r Renderer, ok bool) {
	switch format {
	case "html":
		return NewHTML(), true
	case "json":
		return NewJSON(), true
	case "llm":
		return NewLLM(), true
	case "terminal":
		return NewTerminal(theme, width), true
	}
	return nil, false
}
