// Package mapper converts an analysis result into visualization patterns.
package mapper

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/dkoosis/cdashreport/pkg/cdash"
	"github.com/dkoosis/cdashreport/pkg/pattern"
	"github.com/dkoosis/cdashreport/pkg/report"
)

const (
	kindInfo    = "info"
	leaderboard = 5
)

// FromResult lays a result out as: header, verdict, one table per non-empty
// set, then the streak leaderboard and the daily pass trend of the shown
// tests. A crashed result maps to its header and an Error.
func FromResult(res *report.Result) []pattern.Pattern {
	if res.Crashed() {
		return []pattern.Pattern{
			&pattern.Summary{Label: res.Title(), Kind: pattern.SummaryKindHeader},
			&pattern.Error{Label: res.SummaryLine(), Message: res.Err.Error(), Stack: res.Stack},
		}
	}

	patterns := []pattern.Pattern{header(res), verdict(res)}
	for _, s := range res.Sets {
		if s.Count() > 0 {
			patterns = append(patterns, table(s, res.Options.HistoryDays))
		}
	}
	if lb := streaks(res); lb != nil {
		patterns = append(patterns, lb)
	}
	if sp := passTrend(res); sp != nil {
		patterns = append(patterns, sp)
	}
	return patterns
}

func header(res *report.Result) *pattern.Summary {
	return &pattern.Summary{
		Label: res.Title(),
		Kind:  pattern.SummaryKindHeader,
		Metrics: []pattern.SummaryItem{
			{
				Label: "Builds on CDash",
				Value: fmt.Sprintf("num/expected=%d/%d", res.NumBuilds, res.NumExpectedBuilds),
				Kind:  kindInfo,
				URL:   res.BuildsURL,
			},
			{
				Label: "Non-passing Tests on CDash",
				Value: fmt.Sprintf("num=%d", res.NumNonpassingTests),
				Kind:  kindInfo,
				URL:   res.NonpassingTestsURL,
			},
		},
	}
}

func verdict(res *report.Result) *pattern.Summary {
	items := make([]pattern.SummaryItem, 0, len(res.Sets))
	for _, s := range res.Sets {
		if s.Count() == 0 {
			continue
		}
		items = append(items, pattern.SummaryItem{
			Label: s.Title,
			Value: s.Acronym + "=" + strconv.Itoa(s.Count()),
			Kind:  pattern.KindForColor(s.Color),
			Color: s.Color,
		})
	}
	return &pattern.Summary{Label: res.SummaryLine(), Kind: pattern.SummaryKindVerdict, Metrics: items}
}

func table(s *report.Set, days int) *pattern.DataTable {
	t := &pattern.DataTable{
		Title:   s.Title,
		Acronym: s.Acronym,
		Total:   s.Count(),
		Limit:   s.Limit,
		Rows:    s.Shown,
	}
	if s.Kind == report.KindBuilds {
		t.Columns = BuildColumns(s.Acronym == report.BuildsMissing)
		return t
	}
	t.Color = s.Color
	t.Columns = TestColumns(s.ConsecField, days)
	return t
}

// BuildColumns lays out a build table. Missing builds add their status.
func BuildColumns(withStatus bool) []pattern.Column {
	cols := []pattern.Column{
		{Header: "Group", Key: "group", Align: pattern.AlignLeft},
		{Header: "Site", Key: "site", Align: pattern.AlignLeft},
		{Header: "Build Name", Key: "buildname", Align: pattern.AlignLeft},
	}
	if withStatus {
		cols = append(cols, pattern.Column{Header: "Missing Status", Key: "status", Align: pattern.AlignLeft})
	}
	return cols
}

var consecHeaders = map[string]string{
	"consec_pass_days":    "Consec&shy;utive Pass Days",
	"consec_nopass_days":  "Consec&shy;utive Non-pass Days",
	"consec_missing_days": "Consec&shy;utive Missing Days",
}

// TestColumns lays out a test table whose streak column is consecField.
func TestColumns(consecField string, days int) []pattern.Column {
	n := strconv.Itoa(days)
	return []pattern.Column{
		{Header: "Site", Key: "site", Align: pattern.AlignLeft},
		{Header: "Build Name", Key: "buildName", Align: pattern.AlignLeft},
		{Header: "Test Name", Key: "testname", Align: pattern.AlignLeft},
		{Header: "Status", Key: "status", Align: pattern.AlignLeft},
		{Header: "Details", Key: "details", Align: pattern.AlignLeft},
		{Header: consecHeaders[consecField], Key: consecField, Align: pattern.AlignRight},
		{Header: "Non-pass Last " + n + " Days", Key: "nopass_last_x_days", Align: pattern.AlignRight},
		{Header: "Pass Last " + n + " Days", Key: "pass_last_x_days", Align: pattern.AlignRight},
		{Header: "Issue Tracker", Key: "issue_tracker", Align: pattern.AlignRight},
	}
}

var nonpassingSets = []string{
	report.UntrackedTestsFailed,
	report.UntrackedTestsNotRun,
	report.TrackedTestsFailed,
	report.TrackedTestsNotRun,
}

// streaks ranks the shown non-passing tests by consecutive non-pass days.
func streaks(res *report.Result) *pattern.Leaderboard {
	var items []pattern.LeaderboardItem
	for _, acr := range nonpassingSets {
		s := res.Set(acr)
		if s == nil {
			continue
		}
		for _, t := range s.Shown {
			n, ok := t.Float("consec_nopass_days")
			if !ok || n <= 0 {
				continue
			}
			items = append(items, pattern.LeaderboardItem{
				Name:    t.Str("testname"),
				Metric:  fmt.Sprintf("%d days", int(n)),
				Value:   n,
				Context: t.Str("buildName") + " on " + t.Str("site"),
			})
		}
	}
	if len(items) == 0 {
		return nil
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Value > items[j].Value })
	total := len(items)
	if len(items) > leaderboard {
		items = items[:leaderboard]
	}
	for i := range items {
		items[i].Rank = i + 1
	}
	return &pattern.Leaderboard{
		Label:      "Longest non-pass streaks",
		MetricName: "Consecutive non-pass days",
		Items:      items,
		Direction:  "highest",
		TotalCount: total,
		ShowRank:   true,
	}
}

// passTrend counts, for each day of the history window, how many shown tests
// passed that day.
func passTrend(res *report.Result) *pattern.Sparkline {
	days := res.Options.HistoryDays
	dates := make([]string, days)
	pos := make(map[string]int, days)
	for i := 0; i < days; i++ {
		d, err := cdash.ShiftDate(res.Options.Date, i-(days-1))
		if err != nil {
			return nil
		}
		dates[i] = d
		pos[d] = i
	}

	values := make([]float64, days)
	tests := 0
	for _, s := range res.Sets {
		if s.Kind != report.KindTests {
			continue
		}
		for _, t := range s.Shown {
			hist := t.List("test_history_list")
			if hist == nil {
				continue
			}
			tests++
			seen := map[string]bool{}
			for _, p := range hist {
				d, err := cdash.DateFromBuildStartTime(p.Str("buildstarttime"))
				if err != nil || seen[d] {
					continue
				}
				seen[d] = true
				if i, ok := pos[d]; ok && cdash.IsTestPassed(p) {
					values[i]++
				}
			}
		}
	}
	if tests == 0 {
		return nil
	}
	return &pattern.Sparkline{
		Label:  fmt.Sprintf("Shown tests passing per day (%s to %s)", dates[0], dates[days-1]),
		Values: values,
		Max:    float64(tests),
		Unit:   "/" + strconv.Itoa(tests),
	}
}
