package pattern

// Error reports an analysis that stopped before completing.
type Error struct {
	Label   string
	Message string
	Stack   string
}

func (e *Error) Type() PatternType { return PatternTypeError }
