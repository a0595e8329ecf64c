package pattern

import "github.com/dkoosis/cdashreport/pkg/record"

// Align is a column's cell alignment.
type Align string

const (
	AlignLeft  Align = "left"
	AlignRight Align = "right"
)

// Column maps a header to a record field.
type Column struct {
	Header string
	Key    string
	Align  Align
}

// DataTable is one reported set laid out as rows of records. A cell's value
// is Rows[i][Key]; optional Key+"_url" and Key+"_color" fields link and
// color it.
type DataTable struct {
	Title   string // e.g. "Builds with Build Failures"
	Acronym string
	// Color colors the label; "" leaves it plain.
	Color   string
	Total   int // rows in the set before limiting
	Limit   int // -1 when not limited
	Columns []Column
	Rows    []record.Record
}

func (t *DataTable) Type() PatternType { return PatternTypeTable }
