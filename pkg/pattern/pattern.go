// Package pattern defines the semantic data types of a CDash report view.
// Patterns are pure data; renderers decide presentation.
package pattern

// PatternType identifies the kind of visualization pattern.
type PatternType string

const (
	PatternTypeSummary     PatternType = "summary"
	PatternTypeTable       PatternType = "table"
	PatternTypeLeaderboard PatternType = "leaderboard"
	PatternTypeSparkline   PatternType = "sparkline"
	PatternTypeError       PatternType = "error"
)

// Pattern is the interface all visualization patterns implement.
type Pattern interface {
	Type() PatternType
}
