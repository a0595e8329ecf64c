// Package cdash turns CDash API payloads into flat records and holds the
// CDash-specific helpers: URL construction, date handling, cache file names,
// build and test predicates, and the HTTP query client.
package cdash

import (
	"fmt"
	"regexp"

	"github.com/dkoosis/cdashreport/pkg/record"
)

// Test status values reported by CDash, plus Missing for a test with no run
// on the day of interest.
const (
	StatusPassed  = "Passed"
	StatusFailed  = "Failed"
	StatusNotRun  = "Not Run"
	StatusMissing = "Missing"
)

// Derived build fields. Each one is set only when the phase it summarizes is
// present in the raw build.
const (
	FieldHasUpdateErrors  = "hasUpdateErrors"
	FieldHasConfigureErrs = "hasConfigureErrors"
	FieldHasBuildErrors   = "hasBuildErrors"
	FieldHasTestFailures  = "hasTestFailures"
)

// ParseError reports a payload field that does not have the expected shape.
type ParseError struct {
	Field string
	Value string
	Want  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Error, %s='%s' is not of the form %s!", e.Field, e.Value, e.Want)
}

// ExtendBuild returns a copy of a raw index.php build with its group name and
// the derived failure indicators of the phases it carries. A phase that does
// not decode is a *ParseError.
func ExtendBuild(raw record.Record, group string) (record.Record, error) {
	b := raw.Clone()
	b["group"] = group

	p, err := PhasesOf(b)
	if err != nil {
		return nil, err
	}
	if p.Update != nil {
		b[FieldHasUpdateErrors] = p.Update.Errors > 0
	}
	if p.Configure != nil {
		b[FieldHasConfigureErrs] = p.Configure.Error > 0
	}
	if p.Compilation != nil {
		b[FieldHasBuildErrors] = p.Compilation.Error > 0
	}
	if p.Test != nil {
		b[FieldHasTestFailures] = p.Test.Fail+p.Test.NotRun > 0
	}
	return b, nil
}

// FlattenBuilds lists every build of an index.php payload, group by group,
// in payload order.
func FlattenBuilds(payload record.Record) ([]record.Record, error) {
	if !payload.Has("buildgroups") {
		return nil, &ParseError{Field: "buildgroups", Value: "", Want: "a list of build groups"}
	}
	var builds []record.Record
	for _, g := range payload.List("buildgroups") {
		name := g.Str("name")
		for _, raw := range g.List("builds") {
			b, err := ExtendBuild(raw, name)
			if err != nil {
				return nil, err
			}
			builds = append(builds, b)
		}
	}
	if builds == nil {
		builds = []record.Record{}
	}
	return builds, nil
}

// FlattenTests lists the test runs of a queryTests.php payload in payload
// order. Runs with a testDetailsLink also get testId and buildId fields; the
// payload itself is left unchanged.
func FlattenTests(payload record.Record) ([]record.Record, error) {
	if !payload.Has("builds") {
		return nil, &ParseError{Field: "builds", Value: "", Want: "a list of test runs"}
	}
	raw := payload.List("builds")
	tests := make([]record.Record, 0, len(raw))
	for _, t := range raw {
		t = t.Clone()
		if t.Has("testDetailsLink") {
			testID, buildID, err := ParseTestDetailsLink(t.Str("testDetailsLink"))
			if err != nil {
				return nil, err
			}
			t["testId"] = testID
			t["buildId"] = buildID
		}
		tests = append(tests, t)
	}
	return tests, nil
}

var detailsLinkRe = regexp.MustCompile(`^testDetails\.php\?test=([^&]+)&build=([^&]+)$`)

// ParseTestDetailsLink extracts the ids from
// "testDetails.php?test=<testid>&build=<buildid>".
func ParseTestDetailsLink(link string) (testID, buildID string, err error) {
	m := detailsLinkRe.FindStringSubmatch(link)
	if m == nil {
		return "", "", &ParseError{
			Field: "testDetailsLink",
			Value: link,
			Want:  "'testDetails.php?test=<testid>&build=<buildid>'",
		}
	}
	return m[1], m[2], nil
}
