// Package reconcile compares what was expected against what CDash reported:
// expected builds that are missing or have no test results, and tracked
// tests that do not belong to any expected build.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/dkoosis/cdashreport/pkg/cdash"
	"github.com/dkoosis/cdashreport/pkg/index"
	"github.com/dkoosis/cdashreport/pkg/record"
)

// Missing-build statuses.
const (
	StatusBuildNotFound  = "Build not found on CDash"
	StatusBuildNoResults = "Build exists but no test results"
)

// Composite keys.
var (
	BuildKeys = []string{"group", "site", "buildname"}
	TestKeys  = []string{"site", "buildName", "testname"}
)

// NewBuildCollection indexes builds by (group, site, buildname).
func NewBuildCollection(builds []record.Record, opts ...index.Option) (*index.Collection, error) {
	return index.New(builds, BuildKeys, opts...)
}

// NewTestCollection indexes tests by (site, buildName, testname).
func NewTestCollection(tests []record.Record, opts ...index.Option) (*index.Collection, error) {
	return index.New(tests, TestKeys, opts...)
}

// NewTestToBuildCollection indexes expected builds by (site, buildname) so a
// test's (site, buildName) finds its build. Builds listed in more than one
// group collapse to one entry.
func NewTestToBuildCollection(expected []record.Record) (*index.Collection, error) {
	reduced := make([]record.Record, 0, len(expected))
	for _, b := range expected {
		reduced = append(reduced, b.Pick("site", "buildname"))
	}
	return index.New(reduced, []string{"site", "buildname"},
		index.WithCollapseExactDuplicates(),
		index.WithKeyMap([]string{"site", "buildName"}),
	)
}

// FindMissingExpected lists the expected builds that were not reported, or
// were reported without test results. Each entry is a copy of the expected
// row plus a "status" field, in expected order. actual is not modified.
func FindMissingExpected(actual *index.Collection, expected []record.Record) []record.Record {
	missing := make([]record.Record, 0)
	for _, exp := range expected {
		found, _ := actual.LookupRecord(exp)
		var status string
		switch {
		case found == nil:
			status = StatusBuildNotFound
		case !cdash.BuildHasTestResults(found):
			status = StatusBuildNoResults
		default:
			continue
		}
		m := exp.Clone()
		m["status"] = status
		missing = append(missing, m)
	}
	return missing
}

// ReconciliationError reports tracked tests that match no expected build.
type ReconciliationError struct {
	Unmatched []record.Record
	Msg       string
}

func (e *ReconciliationError) Error() string { return e.Msg }

// ValidateTrackedAgainstExpected checks that every tracked test's (site,
// buildName) names an expected build. On failure msg lists each offender.
func ValidateTrackedAgainstExpected(tracked []record.Record, expected *index.Collection) (bool, string) {
	var sb strings.Builder
	ok := true
	for _, t := range tracked {
		if found, _ := expected.LookupRecord(t); found != nil {
			continue
		}
		if ok {
			sb.WriteString("Error: The following tests with issue trackers did not match 'site' and 'buildName' in one of the expected builds:\n")
			ok = false
		}
		fmt.Fprintf(&sb, "  {'site'='%s', 'buildName'=%s', 'testname'=%s'}\n",
			t.Str("site"), t.Str("buildName"), t.Str("testname"))
	}
	return ok, sb.String()
}

// CheckTracked wraps ValidateTrackedAgainstExpected as an error.
func CheckTracked(tracked []record.Record, expected *index.Collection) error {
	ok, msg := ValidateTrackedAgainstExpected(tracked, expected)
	if ok {
		return nil
	}
	var unmatched []record.Record
	for _, t := range tracked {
		if found, _ := expected.LookupRecord(t); found == nil {
			unmatched = append(unmatched, t)
		}
	}
	return &ReconciliationError{Unmatched: unmatched, Msg: msg}
}
