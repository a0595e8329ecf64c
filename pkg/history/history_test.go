package history

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/cdashreport/pkg/cdash"
	"github.com/dkoosis/cdashreport/pkg/record"
)

const (
	targetDate = "2001-01-01"
	siteURL    = "site.com"
)

// Day statuses, newest first, starting at targetDate. "" means no run.
const (
	P   = cdash.StatusPassed
	F   = cdash.StatusFailed
	NR  = cdash.StatusNotRun
	DEL = ""
)

var windowDates = []string{"2001-01-01", "2000-12-31", "2000-12-30", "2000-12-29", "2000-12-28"}

func failedTest() record.Record {
	return record.Record{
		"buildName":         "build_name",
		"buildstarttime":    "2001-01-01T05:54:03 UTC",
		"details":           "Completed (Failed)\n",
		"nprocs":            4,
		"prettyProcTime":    "40s 400ms",
		"prettyTime":        "10s 100ms",
		"procTime":          40.4,
		"site":              "site_name",
		"siteLink":          "buildSummary.php?buildid=<buildid>",
		"status":            F,
		"statusclass":       "error",
		"testDetailsLink":   "testDetails.php?test=<testid>&build=<buildid>",
		"testname":          "test_name",
		"time":              10.1,
		"buildSummaryLink":  "buildSummary.php?buildid=<buildid>",
		"issue_tracker":     "#1234",
		"issue_tracker_url": "some.com/site/issue/1234",
	}
}

func point(date, status string) record.Record {
	p := failedTest()
	delete(p, "issue_tracker")
	delete(p, "issue_tracker_url")
	p["buildstarttime"] = date + "T05:54:03 UTC"
	p["status"] = status
	if status == P {
		p["details"] = "Completed\n"
		p["statusclass"] = "normal"
	}
	return p
}

// historyOf builds points for the given day statuses in a scrambled order.
func historyOf(days ...string) []record.Record {
	var pts []record.Record
	for _, i := range []int{1, 0, 4, 3, 2} {
		if i < len(days) && days[i] != DEL {
			pts = append(pts, point(windowDates[i], days[i]))
		}
	}
	return pts
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		days   []string
		want   Stats
		status string
	}{
		{"all passed", []string{P, P, P, P, P},
			Stats{PassLastXDays: 5, ConsecPassDays: 5, PreviousNopassDate: NoDate}, P},
		{"passed then failed", []string{P, P, P, F, F},
			Stats{PassLastXDays: 3, NopassLastXDays: 2, ConsecPassDays: 3, PreviousNopassDate: "2000-12-29"}, P},
		{"interleaved", []string{P, P, F, P, F},
			Stats{PassLastXDays: 3, NopassLastXDays: 2, ConsecPassDays: 2, PreviousNopassDate: "2000-12-30"}, P},
		{"passed with gap", []string{P, DEL, F, P, F},
			Stats{PassLastXDays: 2, NopassLastXDays: 2, MissingLastXDays: 1, ConsecPassDays: 1, PreviousNopassDate: "2000-12-30"}, P},
		{"all failed", []string{F, F, F, F, F},
			Stats{NopassLastXDays: 5, ConsecNopassDays: 5, PreviousNopassDate: "2000-12-31"}, F},
		{"failed and not run", []string{F, NR, P, P, F},
			Stats{PassLastXDays: 2, NopassLastXDays: 3, ConsecNopassDays: 2, PreviousNopassDate: "2000-12-31"}, F},
		{"failed with gaps", []string{F, DEL, P, DEL, F},
			Stats{PassLastXDays: 1, NopassLastXDays: 2, MissingLastXDays: 2, ConsecNopassDays: 1, PreviousNopassDate: "2000-12-28"}, F},
		{"all not run", []string{NR, NR, NR, NR, NR},
			Stats{NopassLastXDays: 5, ConsecNopassDays: 5, PreviousNopassDate: "2000-12-31"}, NR},
		{"not run with gaps", []string{NR, DEL, P, F, DEL},
			Stats{PassLastXDays: 1, NopassLastXDays: 2, MissingLastXDays: 2, ConsecNopassDays: 1, PreviousNopassDate: "2000-12-29"}, NR},
		{"no history", nil,
			Stats{MissingLastXDays: 5, ConsecMissingDays: 5, PreviousNopassDate: NoDate}, cdash.StatusMissing},
		{"missing today", []string{DEL, F, F, F, F},
			Stats{NopassLastXDays: 4, MissingLastXDays: 1, ConsecMissingDays: 1, PreviousNopassDate: "2000-12-31"}, cdash.StatusMissing},
		{"missing two days", []string{DEL, DEL, F, DEL, P},
			Stats{PassLastXDays: 1, NopassLastXDays: 1, MissingLastXDays: 3, ConsecMissingDays: 2, PreviousNopassDate: "2000-12-30"}, cdash.StatusMissing},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pts := historyOf(tc.days...)
			sorted, stats, status, err := Classify(pts, targetDate, 5)
			require.NoError(t, err)
			assert.Equal(t, tc.want, stats)
			assert.Equal(t, tc.status, status)
			require.Len(t, sorted, len(pts))
			for i := 1; i < len(sorted); i++ {
				assert.Greater(t, sorted[i-1].Str("buildstarttime"), sorted[i].Str("buildstarttime"))
			}
		})
	}
}

func TestClassify_DoesNotReorderInput(t *testing.T) {
	pts := historyOf(P, F, P, F, P)
	first := pts[0]
	_, _, _, err := Classify(pts, targetDate, 5)
	require.NoError(t, err)
	assert.Equal(t, first, pts[0])
}

func TestClassify_BadBuildStartTime(t *testing.T) {
	pts := []record.Record{{"buildstarttime": "01/01/2001", "status": P}}
	_, _, _, err := Classify(pts, targetDate, 5)
	var pe *cdash.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "buildstarttime", pe.Field)
}

func TestClassify_FirstRunOfTheDayWins(t *testing.T) {
	late := point(targetDate, P)
	late["buildstarttime"] = targetDate + "T20:00:00 UTC"
	pts := []record.Record{point(targetDate, F), late}
	sorted, stats, status, err := Classify(pts, targetDate, 1)
	require.NoError(t, err)
	assert.Equal(t, P, status)
	assert.Equal(t, 1, stats.ConsecPassDays)
	assert.Equal(t, late, sorted[0])
}

// randomHistory draws a status, or no run, for each of span days ending on
// targetDate. Some days get a second, later run.
func randomHistory(t *testing.T, rng *rand.Rand, span int) ([]string, []record.Record) {
	t.Helper()
	choices := []string{P, F, NR, DEL}
	days := make([]string, span)
	var pts []record.Record
	for i := range days {
		days[i] = choices[rng.Intn(len(choices))]
		if days[i] == DEL {
			continue
		}
		date, err := cdash.ShiftDate(targetDate, -i)
		require.NoError(t, err)
		pts = append(pts, point(date, days[i]))
		if rng.Intn(4) == 0 {
			early := point(date, choices[rng.Intn(3)])
			early["buildstarttime"] = date + "T01:00:00 UTC"
			pts = append(pts, early)
		}
	}
	return days, pts
}

func TestClassify_RandomHistories(t *testing.T) {
	rng := rand.New(rand.NewSource(20181028))
	for n := 0; n < 500; n++ {
		window := 1 + rng.Intn(20)
		days, pts := randomHistory(t, rng, window+rng.Intn(5))
		name := fmt.Sprintf("case %d: window=%d days=%q", n, window, days)

		sorted, stats, status, err := Classify(pts, targetDate, window)
		require.NoError(t, err, name)

		var pass, nopass, missing int
		for _, d := range days[:window] {
			switch d {
			case P:
				pass++
			case DEL:
				missing++
			default:
				nopass++
			}
		}
		assert.Equal(t, pass, stats.PassLastXDays, name)
		assert.Equal(t, nopass, stats.NopassLastXDays, name)
		assert.Equal(t, missing, stats.MissingLastXDays, name)
		assert.Equal(t, window, stats.PassLastXDays+stats.NopassLastXDays+stats.MissingLastXDays, name)

		nonzero := 0
		for _, c := range []int{stats.ConsecPassDays, stats.ConsecNopassDays, stats.ConsecMissingDays} {
			if c > 0 {
				nonzero++
			}
		}
		assert.Equal(t, 1, nonzero, name)
		assert.LessOrEqual(t, stats.ConsecPassDays, stats.PassLastXDays, name)
		assert.LessOrEqual(t, stats.ConsecNopassDays, stats.NopassLastXDays, name)
		assert.LessOrEqual(t, stats.ConsecMissingDays, stats.MissingLastXDays, name)

		if days[0] == DEL {
			assert.Equal(t, cdash.StatusMissing, status, name)
		} else {
			assert.Equal(t, days[0], status, name)
		}

		for shuffle := 0; shuffle < 4; shuffle++ {
			again := append([]record.Record(nil), pts...)
			rng.Shuffle(len(again), func(i, j int) { again[i], again[j] = again[j], again[i] })
			sorted2, stats2, status2, err := Classify(again, targetDate, window)
			require.NoError(t, err, name)
			assert.Equal(t, stats, stats2, name)
			assert.Equal(t, status, status2, name)
			assert.Equal(t, sorted, sorted2, name)
		}
	}
}

type fakeLoader struct {
	payload   record.Record
	fromCache bool
	err       error

	gotURL, gotFile string
}

func (f *fakeLoader) Load(_ context.Context, url, cacheFile string) (record.Record, bool, error) {
	f.gotURL, f.gotFile = url, cacheFile
	return f.payload, f.fromCache, f.err
}

func payloadOf(pts []record.Record) record.Record {
	return record.Record{"builds": pts}
}

func urlsFor(t *testing.T, test record.Record) cdash.TestHistoryURLs {
	t.Helper()
	u, err := cdash.HistoryURLs(siteURL, "project_name", test.Str("site"), test.Str("buildName"), test.Str("testname"), targetDate, 5)
	require.NoError(t, err)
	return u
}

func newAnnotator(l Loader, cacheDir string) *Annotator {
	return &Annotator{
		SiteURL:  siteURL,
		Project:  "project_name",
		Date:     targetDate,
		Days:     5,
		CacheDir: cacheDir,
		Loader:   l,
	}
}

func TestAnnotate_NonpassingTest(t *testing.T) {
	test := failedTest()
	loader := &fakeLoader{payload: payloadOf(historyOf(F, P, F, F, P))}
	var loads []bool
	a := newAnnotator(loader, "cache/test_history")
	a.OnLoad = func(_ record.Record, _ string, fromCache bool) { loads = append(loads, fromCache) }

	require.NoError(t, a.Annotate(context.Background(), test))

	urls := urlsFor(t, test)
	assert.Equal(t, urls.Query, loader.gotURL)
	assert.Equal(t, filepath.Join("cache/test_history",
		cdash.HistoryCacheFileName(targetDate, "site_name", "build_name", "test_name", 5)), loader.gotFile)
	assert.Equal(t, []bool{false}, loads)

	assert.Equal(t, F, test.Str("status"))
	assert.Equal(t, "red", test["status_color"])
	assert.Equal(t, urls.Build, test["buildName_url"])
	assert.Equal(t, "site.com/testDetails.php?test=<testid>&build=<buildid>", test["testname_url"])
	assert.Equal(t, test["testname_url"], test["status_url"])
	assert.Equal(t, 5, test["test_history_num_days"])
	assert.Equal(t, urls.Query, test["test_history_query_url"])
	assert.Equal(t, urls.Browser, test["test_history_browser_url"])
	assert.Equal(t, 2, test["pass_last_x_days"])
	assert.Equal(t, 3, test["nopass_last_x_days"])
	assert.Equal(t, 0, test["missing_last_x_days"])
	assert.Equal(t, 1, test["consec_nopass_days"])
	assert.Equal(t, 0, test["consec_pass_days"])
	assert.Equal(t, "green", test["pass_last_x_days_color"])
	assert.Equal(t, "red", test["consec_nopass_days_color"])
	assert.Equal(t, "gray", test["missing_last_x_days_color"])
	assert.Equal(t, urls.Browser, test["consec_missing_days_url"])
	assert.Equal(t, "2000-12-30", test["previous_nopass_date"])
	assert.Equal(t, "#1234", test["issue_tracker"])

	list, ok := test["test_history_list"].([]record.Record)
	require.True(t, ok)
	require.Len(t, list, 5)
	assert.Equal(t, "2001-01-01T05:54:03 UTC", list[0].Str("buildstarttime"))
	assert.Equal(t, "2000-12-28T05:54:03 UTC", list[4].Str("buildstarttime"))
}

func TestAnnotate_PassingTestFromCache(t *testing.T) {
	test := record.Record{"site": "site_name", "buildName": "build_name", "testname": "test_name"}
	loader := &fakeLoader{payload: payloadOf(historyOf(P, P, P, P, P)), fromCache: true}
	var loads []bool
	a := newAnnotator(loader, "cache")
	a.OnLoad = func(_ record.Record, _ string, fromCache bool) { loads = append(loads, fromCache) }

	require.NoError(t, a.Annotate(context.Background(), test))
	assert.Equal(t, []bool{true}, loads)
	assert.Equal(t, P, test["status"])
	assert.Equal(t, "Completed\n", test["details"])
	assert.Equal(t, "green", test["status_color"])
	assert.Equal(t, "site.com/testDetails.php?test=<testid>&build=<buildid>", test["testname_url"])
	assert.Equal(t, 5, test["consec_pass_days"])
	assert.Equal(t, NoDate, test["previous_nopass_date"])
}

func TestAnnotate_MissingTest(t *testing.T) {
	test := record.Record{"site": "site_name", "buildName": "build_name", "testname": "test_name"}
	a := newAnnotator(&fakeLoader{payload: payloadOf(historyOf(DEL, F, F, F, F))}, "cache")

	require.NoError(t, a.Annotate(context.Background(), test))
	assert.Equal(t, cdash.StatusMissing, test["status"])
	assert.Equal(t, cdash.StatusMissing, test["details"])
	assert.Equal(t, "gray", test["status_color"])
	assert.False(t, test.Has("testname_url"))
	assert.False(t, test.Has("status_url"))
	assert.Equal(t, 1, test["consec_missing_days"])
	assert.Equal(t, 4, test["nopass_last_x_days"])
	assert.Equal(t, "2000-12-31", test["previous_nopass_date"])
}

func TestAnnotate_MissingTestNoHistory(t *testing.T) {
	test := record.Record{"site": "site_name", "buildName": "build_name", "testname": "test_name"}
	a := newAnnotator(&fakeLoader{payload: payloadOf(nil)}, "cache")

	require.NoError(t, a.Annotate(context.Background(), test))
	assert.Equal(t, cdash.StatusMissing, test["status"])
	assert.Equal(t, 5, test["consec_missing_days"])
	assert.Equal(t, 5, test["missing_last_x_days"])
	assert.Equal(t, NoDate, test["previous_nopass_date"])
	assert.Empty(t, test["test_history_list"])
}

func TestAnnotate_StatusMismatch(t *testing.T) {
	test := record.Record{"site": "site_name", "buildName": "build_name", "testname": "test_name"}
	pts := historyOf(F, P, P, P, P)
	a := newAnnotator(&fakeLoader{payload: payloadOf(pts)}, "cache")

	err := a.Annotate(context.Background(), test)
	require.Error(t, err)
	top := pts[1]
	require.Equal(t, targetDate+"T05:54:03 UTC", top.Str("buildstarttime"))
	assert.Equal(t, fmt.Sprintf("Error, test testDict['status'] = 'None' != top test history testStatus = 'Failed' where:\n\n"+
		"   testDict = %s\n\n   top test history dict = %s\n\n", test, top), err.Error())
}

func TestAnnotate_BuildStartTimeMismatch(t *testing.T) {
	test := failedTest()
	top := point(targetDate, F)
	top["buildstarttime"] = "2001-01-01T08:00:00 UTC"
	pts := []record.Record{point("2000-12-31", F), top}
	a := newAnnotator(&fakeLoader{payload: payloadOf(pts)}, "cache")

	err := a.Annotate(context.Background(), test)
	require.Error(t, err)
	assert.Equal(t, fmt.Sprintf("Error, testDict['buildstarttime'] = '2001-01-01T05:54:03 UTC' != "+
		"top test history 'buildstarttime' = '2001-01-01T08:00:00 UTC' where:\n\n"+
		"   testDict = %s\n\n   top test history dict = %s\n\n", test, top), err.Error())
}

func TestAnnotate_LoadError(t *testing.T) {
	test := failedTest()
	a := newAnnotator(&fakeLoader{err: errors.New("connection refused")}, "cache")
	err := a.Annotate(context.Background(), test)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, test.Has("status_color"))
}
