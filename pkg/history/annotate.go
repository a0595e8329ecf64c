package history

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dkoosis/cdashreport/pkg/cdash"
	"github.com/dkoosis/cdashreport/pkg/record"
)

// Loader returns the queryTests.php payload for url, reading or writing
// cacheFile as its caching policy dictates. fromCache reports whether the
// payload came from the file.
type Loader interface {
	Load(ctx context.Context, url, cacheFile string) (payload record.Record, fromCache bool, err error)
}

// StatusColor maps a test status to the color used to show it.
func StatusColor(status string) string {
	switch status {
	case cdash.StatusPassed:
		return "green"
	case cdash.StatusFailed:
		return "red"
	case cdash.StatusNotRun:
		return "orange"
	case cdash.StatusMissing:
		return "gray"
	}
	return ""
}

// Annotator fetches and classifies the history of test records and writes
// the result onto them.
type Annotator struct {
	SiteURL  string
	Project  string
	Date     string
	Days     int
	CacheDir string
	Loader   Loader
	// OnLoad, when set, is called once per test after its history is loaded.
	OnLoad func(test record.Record, cacheFile string, fromCache bool)
}

// Annotate loads the history of test and sets its history fields in place.
func (a *Annotator) Annotate(ctx context.Context, test record.Record) error {
	site, build, name := test.Str("site"), test.Str("buildName"), test.Str("testname")

	urls, err := cdash.HistoryURLs(a.SiteURL, a.Project, site, build, name, a.Date, a.Days)
	if err != nil {
		return err
	}
	cacheFile := filepath.Join(a.CacheDir, cdash.HistoryCacheFileName(a.Date, site, build, name, a.Days))
	payload, fromCache, err := a.Loader.Load(ctx, urls.Query, cacheFile)
	if err != nil {
		return fmt.Errorf("loading history of %s in %s on %s: %w", name, build, site, err)
	}
	if a.OnLoad != nil {
		a.OnLoad(test, cacheFile, fromCache)
	}
	points, err := cdash.FlattenTests(payload)
	if err != nil {
		return err
	}
	return Apply(test, points, a.Date, a.Days, a.SiteURL, urls)
}

// Apply classifies points and writes the history fields onto test. A test
// without a status takes it from its run on date; that run must have passed,
// since a non-passing run would already have been reported with a status.
func Apply(test record.Record, points []record.Record, date string, days int, siteURL string, urls cdash.TestHistoryURLs) error {
	sorted, stats, status, err := Classify(points, date, days)
	if err != nil {
		return err
	}

	if !test.Has("status") {
		switch status {
		case cdash.StatusPassed:
			for k, v := range sorted[0] {
				if !test.Has(k) {
					test[k] = v
				}
			}
		case cdash.StatusMissing:
			test["status"] = cdash.StatusMissing
			test["details"] = cdash.StatusMissing
		default:
			return fmt.Errorf("Error, test testDict['status'] = 'None' != top test history testStatus = '%s' where:\n\n"+
				"   testDict = %s\n\n   top test history dict = %s\n\n", status, test, sorted[0])
		}
	} else if len(sorted) > 0 && test.Has("buildstarttime") &&
		test.Str("buildstarttime") != sorted[0].Str("buildstarttime") {
		return fmt.Errorf("Error, testDict['buildstarttime'] = '%s' != top test history 'buildstarttime' = '%s' where:\n\n"+
			"   testDict = %s\n\n   top test history dict = %s\n\n",
			test.Str("buildstarttime"), sorted[0].Str("buildstarttime"), test, sorted[0])
	}

	test["buildName_url"] = urls.Build
	if test.Has("testDetailsLink") {
		link := siteURL + "/" + test.Str("testDetailsLink")
		test["testname_url"] = link
		test["status_url"] = link
	}
	test["status_color"] = StatusColor(test.Str("status"))
	test["test_history_num_days"] = days
	test["test_history_query_url"] = urls.Query
	test["test_history_browser_url"] = urls.Browser
	test["test_history_list"] = sorted
	for _, f := range stats.Fields() {
		test[f.Key] = f.Value
		test[f.Key+"_url"] = urls.Browser
		test[f.Key+"_color"] = f.Color
	}
	test["previous_nopass_date"] = stats.PreviousNopassDate
	return nil
}
