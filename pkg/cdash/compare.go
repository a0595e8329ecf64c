package cdash

import (
	"fmt"
	"math"

	"github.com/dkoosis/cdashreport/pkg/record"
)

// DefaultTimeTolerance is the largest difference in "time" two runs of the
// same test may show and still count as the same run.
const DefaultTimeTolerance = 0.45

// TestRunComparer compares two records of what should be one test run. CDash
// sometimes reports a run twice with different test ids and slightly
// different timings; those still compare equal.
type TestRunComparer struct {
	TimeTolerance float64
}

// Compare has the signature of index.EqualityFunc.
func (c TestRunComparer) Compare(a record.Record, nameA string, b record.Record, nameB string) (bool, string) {
	if len(a) != len(b) {
		return false, fmt.Sprintf("len(%s.keys())=%d != len(%s.keys())=%d", nameA, len(a), nameB, len(b))
	}
	for _, k := range a.Keys() {
		vb, ok := b[k]
		if !ok {
			return false, fmt.Sprintf("%s['%s'] does not exist in %s", nameA, k, nameB)
		}
		va := a[k]
		switch k {
		case "testId", "buildId":
			// Covered by testDetailsLink.
			continue
		case "testDetailsLink":
			_, buildA, errA := ParseTestDetailsLink(record.ValueString(va))
			_, buildB, errB := ParseTestDetailsLink(record.ValueString(vb))
			if errA == nil && errB == nil && buildA == buildB {
				continue
			}
		case "time":
			fa, okA := a.Float(k)
			fb, okB := b.Float(k)
			if okA && okB && math.Abs(fa-fb) <= c.TimeTolerance {
				continue
			}
		}
		if !record.Equal(va, vb) {
			return false, record.MismatchMessage(nameA, k, va, nameB, vb)
		}
	}
	return true, ""
}

// CompareTestRuns compares with DefaultTimeTolerance.
func CompareTestRuns(a record.Record, nameA string, b record.Record, nameB string) (bool, string) {
	return TestRunComparer{TimeTolerance: DefaultTimeTolerance}.Compare(a, nameA, b, nameB)
}
