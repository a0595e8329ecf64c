package pattern

// SummaryKind identifies what a summary describes so renderers can dispatch
// without matching on labels.
type SummaryKind string

const (
	// SummaryKindHeader carries the report title and the CDash links.
	SummaryKindHeader SummaryKind = "header"
	// SummaryKindVerdict carries the PASSED/FAILED line and one item per
	// non-empty set.
	SummaryKindVerdict SummaryKind = "verdict"
)

// Summary represents high-level metrics and counts.
type Summary struct {
	Label   string
	Kind    SummaryKind
	Metrics []SummaryItem
}

// SummaryItem is a single metric in a summary.
type SummaryItem struct {
	Label string // e.g. "Builds Missing"
	Value string // formatted value, e.g. "bm=2"
	Kind  string // "success", "error", "warning", "info"; affects coloring
	// Color is the HTML color name, "" for none.
	Color string `json:",omitempty"`
	URL   string `json:",omitempty"`
}

func (s *Summary) Type() PatternType { return PatternTypeSummary }

// KindForColor maps an HTML set color to a summary item kind.
func KindForColor(color string) string {
	switch color {
	case "red":
		return "error"
	case "orange":
		return "warning"
	case "green":
		return "success"
	}
	return "info"
}
