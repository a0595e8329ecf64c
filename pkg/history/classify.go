// Package history classifies a test's run history over a trailing window of
// days and annotates test records with the result.
package history

import (
	"sort"

	"github.com/dkoosis/cdashreport/pkg/cdash"
	"github.com/dkoosis/cdashreport/pkg/record"
)

// NoDate is the PreviousNopassDate of a test with no earlier non-passing run.
const NoDate = "None"

// Stats summarizes a window of days ending on the day of interest.
type Stats struct {
	PassLastXDays      int
	NopassLastXDays    int
	MissingLastXDays   int
	ConsecPassDays     int
	ConsecNopassDays   int
	ConsecMissingDays  int
	PreviousNopassDate string
}

type dayKind int

const (
	dayPass dayKind = iota
	dayNopass
	dayMissing
)

// Classify sorts points newest first and computes the window statistics
// for the days days ending on date, along with the status on date. A date
// with no run is Missing. points itself is not reordered.
func Classify(points []record.Record, date string, days int) ([]record.Record, Stats, string, error) {
	sorted := make([]record.Record, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Str("buildstarttime") > sorted[j].Str("buildstarttime")
	})

	// Most recent status per day.
	statusOn := make(map[string]string, len(sorted))
	dates := make([]string, len(sorted))
	for i, p := range sorted {
		d, err := cdash.DateFromBuildStartTime(p.Str("buildstarttime"))
		if err != nil {
			return nil, Stats{}, "", err
		}
		dates[i] = d
		if _, seen := statusOn[d]; !seen {
			statusOn[d] = p.Str("status")
		}
	}

	stats := Stats{PreviousNopassDate: NoDate}
	var first dayKind
	streak := true
	for i := 0; i < days; i++ {
		day, err := cdash.ShiftDate(date, -i)
		if err != nil {
			return nil, Stats{}, "", err
		}
		kind := dayMissing
		if s, ok := statusOn[day]; ok {
			kind = dayNopass
			if s == cdash.StatusPassed {
				kind = dayPass
			}
		}
		switch kind {
		case dayPass:
			stats.PassLastXDays++
		case dayNopass:
			stats.NopassLastXDays++
		default:
			stats.MissingLastXDays++
		}

		if i == 0 {
			first = kind
		}
		if streak && kind == first {
			switch kind {
			case dayPass:
				stats.ConsecPassDays++
			case dayNopass:
				stats.ConsecNopassDays++
			default:
				stats.ConsecMissingDays++
			}
		} else {
			streak = false
		}
	}

	for i, p := range sorted {
		if dates[i] < date && p.Str("status") != cdash.StatusPassed {
			stats.PreviousNopassDate = dates[i]
			break
		}
	}

	status := cdash.StatusMissing
	if s, ok := statusOn[date]; ok && len(sorted) > 0 {
		status = s
	}
	return sorted, stats, status, nil
}

// StatField is one statistic as written onto a test record.
type StatField struct {
	Key   string
	Value any
	Color string
}

// Fields lists the statistics under their record field names.
func (s Stats) Fields() []StatField {
	return []StatField{
		{"pass_last_x_days", s.PassLastXDays, "green"},
		{"nopass_last_x_days", s.NopassLastXDays, "red"},
		{"missing_last_x_days", s.MissingLastXDays, "gray"},
		{"consec_pass_days", s.ConsecPassDays, "green"},
		{"consec_nopass_days", s.ConsecNopassDays, "red"},
		{"consec_missing_days", s.ConsecMissingDays, "gray"},
	}
}
