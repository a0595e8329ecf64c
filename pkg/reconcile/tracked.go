package reconcile

import (
	"fmt"

	"github.com/dkoosis/cdashreport/pkg/index"
	"github.com/dkoosis/cdashreport/pkg/record"
)

// Matcher returns a predicate that is true for records whose key fields
// match a record of c.
func Matcher(c *index.Collection) record.Predicate {
	return func(r record.Record) bool {
		found, _ := c.LookupRecord(r)
		return found != nil
	}
}

// IssueTrackerAnnotator copies issue_tracker_url and issue_tracker from the
// tracked test matching a test record.
type IssueTrackerAnnotator struct {
	tracked *index.Collection
	// Strict makes an untracked test an error instead of getting empty
	// issue tracker fields.
	Strict bool
}

// NewIssueTrackerAnnotator annotates from tracked, keyed by TestKeys.
func NewIssueTrackerAnnotator(tracked *index.Collection, strict bool) *IssueTrackerAnnotator {
	return &IssueTrackerAnnotator{tracked: tracked, Strict: strict}
}

// Annotate sets the issue tracker fields on t in place. It has the signature
// of record.Transform.
func (a *IssueTrackerAnnotator) Annotate(t record.Record) (record.Record, error) {
	found, _ := a.tracked.LookupRecord(t)
	if found == nil {
		if a.Strict {
			return nil, fmt.Errorf("Error, testDict_inout=%s does not have an assigned issue tracker!", t)
		}
		t["issue_tracker_url"] = ""
		t["issue_tracker"] = ""
		return t, nil
	}
	t["issue_tracker_url"] = found.Str("issue_tracker_url")
	t["issue_tracker"] = found.Str("issue_tracker")
	return t, nil
}
