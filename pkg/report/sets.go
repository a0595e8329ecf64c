package report

import (
	"strconv"

	"github.com/dkoosis/cdashreport/pkg/record"
)

// Set acronyms, in the order sets are reported.
const (
	BuildsMissing           = "bm"
	BuildsConfigureFailures = "cf"
	BuildsBuildFailures     = "bf"
	UntrackedTestsFailed    = "twoif"
	UntrackedTestsNotRun    = "twoinr"
	TrackedTestsPassed      = "twip"
	TrackedTestsMissing     = "twim"
	TrackedTestsFailed      = "twif"
	TrackedTestsNotRun      = "twinr"
)

// SetKind tells build sets from test sets.
type SetKind int

const (
	KindBuilds SetKind = iota
	KindTests
)

// SetSpec describes one reported set.
type SetSpec struct {
	Acronym string
	Title   string
	// Color is the HTML color of the set's summary line; "" is uncolored.
	Color string
	// Limited sets show at most Options.LimitTableRows rows.
	Limited bool
	// Failing sets make the report FAILED when non-empty.
	Failing bool
	Kind    SetKind
	// ConsecField is the streak column shown for a test set.
	ConsecField string
}

// Specs lists every set in report order.
var Specs = []SetSpec{
	{BuildsMissing, "Builds Missing", "red", false, true, KindBuilds, ""},
	{BuildsConfigureFailures, "Builds with Configure Failures", "red", true, true, KindBuilds, ""},
	{BuildsBuildFailures, "Builds with Build Failures", "red", true, true, KindBuilds, ""},
	{UntrackedTestsFailed, "Tests without issue trackers Failed", "red", true, true, KindTests, "consec_nopass_days"},
	{UntrackedTestsNotRun, "Tests without issue trackers Not Run", "orange", true, true, KindTests, "consec_nopass_days"},
	{TrackedTestsPassed, "Tests with issue trackers Passed", "green", false, false, KindTests, "consec_pass_days"},
	{TrackedTestsMissing, "Tests with issue trackers Missing", "", false, false, KindTests, "consec_missing_days"},
	{TrackedTestsFailed, "Tests with issue trackers Failed", "", false, false, KindTests, "consec_nopass_days"},
	{TrackedTestsNotRun, "Tests with issue trackers Not Run", "", false, false, KindTests, "consec_nopass_days"},
}

// Sort orders of build and test tables.
var (
	BuildSortFields = []string{"group", "site", "buildname"}
	TestSortFields  = []string{"testname", "buildName", "site"}
)

// Set is one reported set with its rows.
type Set struct {
	SetSpec
	// Rows holds every member, sorted.
	Rows []record.Record
	// Shown is the prefix of Rows that is displayed. Shown test rows carry
	// their history and issue tracker fields.
	Shown []record.Record
	// Limit is the row limit in effect, or -1.
	Limit int
}

// Count is the number of members.
func (s *Set) Count() int { return len(s.Rows) }

// Line is the "Title: acronym=N" summary line.
func (s *Set) Line() string {
	return s.Title + ": " + s.Acronym + "=" + strconv.Itoa(s.Count())
}

func newSet(spec SetSpec, rows []record.Record, limit int) *Set {
	fields := TestSortFields
	if spec.Kind == KindBuilds {
		fields = BuildSortFields
	}
	if !spec.Limited {
		limit = -1
	}
	sorted := record.SortAndLimit(rows, fields, -1)
	return &Set{
		SetSpec: spec,
		Rows:    sorted,
		Shown:   record.SortAndLimit(sorted, fields, limit),
		Limit:   limit,
	}
}

func specFor(acronym string) SetSpec {
	for _, s := range Specs {
		if s.Acronym == acronym {
			return s
		}
	}
	panic("unknown set " + acronym)
}
