package index

import (
	"fmt"
	"strings"

	"github.com/dkoosis/cdashreport/pkg/record"
)

// DuplicateKeyError reports two records sharing a composite key.
type DuplicateKeyError struct {
	Keys       []string
	Index      int
	Record     record.Record
	PrevIndex  int
	PrevRecord record.Record
	// Difference names the first differing field; empty when the two
	// records are identical.
	Difference string
}

func (e *DuplicateKeyError) Error() string {
	var sb strings.Builder
	sb.WriteString("Error, The element\n\n")
	fmt.Fprintf(&sb, "    %s =\n\n", listElemName(e.Index))
	fmt.Fprintf(&sb, "      %s\n\n", e.Record)
	sb.WriteString("  has duplicate values for the list of keys\n\n")
	fmt.Fprintf(&sb, "    %s\n\n", record.Repr(e.Keys))
	sb.WriteString("  with the element already added\n\n")
	fmt.Fprintf(&sb, "    %s =\n\n", listElemName(e.PrevIndex))
	fmt.Fprintf(&sb, "      %s", e.PrevRecord)
	if e.Difference != "" {
		sb.WriteString("\n\n  and differs by at least the key/value pair\n\n")
		sb.WriteString("    " + e.Difference)
	}
	return sb.String()
}

// ValueMismatchError reports a lookup whose value count does not match the
// number of key fields.
type ValueMismatchError struct {
	Keys   []string
	Values []string
}

func (e *ValueMismatchError) Error() string {
	return fmt.Sprintf("Error, len(listOfKeys)=%d != len(listOfValues)=%d where listOfKeys=%s and listOfValues=%s!",
		len(e.Keys), len(e.Values), record.Repr(e.Keys), record.Repr(e.Values))
}

func listElemName(i int) string {
	return fmt.Sprintf("listOfDicts[%d]", i)
}
