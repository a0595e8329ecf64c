// Package report analyzes the CDash results of one build set on one testing
// day. It sorts builds and tests into the reported sets, fetches history for
// the tests that are shown, and decides whether the day PASSED or FAILED.
package report

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dkoosis/cdashreport/internal/cache"
	"github.com/dkoosis/cdashreport/internal/errors"
	"github.com/dkoosis/cdashreport/pkg/cdash"
	"github.com/dkoosis/cdashreport/pkg/csvio"
	"github.com/dkoosis/cdashreport/pkg/history"
	"github.com/dkoosis/cdashreport/pkg/index"
	"github.com/dkoosis/cdashreport/pkg/reconcile"
	"github.com/dkoosis/cdashreport/pkg/record"
)

const (
	DefaultHistoryDays    = 30
	DefaultLimitTableRows = 10
	// HistoryCacheSubdir holds the per-test history cache files.
	HistoryCacheSubdir = "test_history"
)

// Options configures one analysis.
type Options struct {
	Date                   string
	ProjectName            string
	BuildSetName           string
	SiteURL                string
	BuildsFilters          string
	NonpassingTestsFilters string

	UseCachedData bool
	CacheDir      string

	// ExpectedBuildsFile and TrackedTestsFile are CSV files; "" means none.
	ExpectedBuildsFile string
	TrackedTestsFile   string

	// HistoryDays <= 0 means DefaultHistoryDays.
	HistoryDays int
	// LimitTableRows caps the rows shown for limited sets. Zero shows none
	// of their rows, only the counts; negative is no cap.
	LimitTableRows int
	// TimeTolerance is the largest run-time difference, in seconds, between
	// two reports of one test run that still count as the same run. Zero
	// compares times exactly; negative means cdash.DefaultTimeTolerance.
	TimeTolerance float64

	// TwoifFile, when set, receives every untracked failing test as CSV.
	TwoifFile string
}

func (o Options) withDefaults() Options {
	if o.HistoryDays <= 0 {
		o.HistoryDays = DefaultHistoryDays
	}
	if o.TimeTolerance < 0 {
		o.TimeTolerance = cdash.DefaultTimeTolerance
	}
	return o
}

// Result is the outcome of an analysis. After a crash it holds whatever was
// computed before the failure.
type Result struct {
	Options Options

	NumExpectedBuilds  int
	NumBuilds          int
	NumNonpassingTests int

	BuildsURL          string
	NonpassingTestsURL string

	// Sets holds the computed sets in report order.
	Sets []*Set

	Err   error
	Stack string
}

// Set returns the set with the given acronym, or nil if it was not computed.
func (r *Result) Set(acronym string) *Set {
	for _, s := range r.Sets {
		if s.Acronym == acronym {
			return s
		}
	}
	return nil
}

// Crashed reports whether the analysis stopped on an error.
func (r *Result) Crashed() bool { return r.Err != nil }

// Failed reports whether the analysis crashed or a failing set is non-empty.
func (r *Result) Failed() bool {
	if r.Crashed() {
		return true
	}
	for _, s := range r.Sets {
		if s.Failing && s.Count() > 0 {
			return true
		}
	}
	return false
}

// ExitCode is 1 for a failed result and 0 otherwise.
func (r *Result) ExitCode() int {
	if r.Failed() {
		return 1
	}
	return 0
}

// Title heads the report.
func (r *Result) Title() string {
	return "Build and Test results for " + r.Options.BuildSetName + " on " + r.Options.Date
}

// SummaryLine is the one-line verdict, e.g.
// "FAILED (bm=1, twoif=3): Nightly on 2018-10-28".
func (r *Result) SummaryLine() string {
	tail := r.Options.BuildSetName + " on " + r.Options.Date
	if r.Crashed() {
		return "FAILED (SCRIPT CRASHED): " + tail
	}
	var counts []string
	for _, s := range r.Sets {
		if s.Count() > 0 {
			counts = append(counts, s.Acronym+"="+strconv.Itoa(s.Count()))
		}
	}
	verdict := "PASSED"
	if r.Failed() {
		verdict = "FAILED"
	}
	if len(counts) > 0 {
		verdict += " (" + strings.Join(counts, ", ") + ")"
	}
	return verdict + ": " + tail
}

// Analyzer runs the analysis against a CDash fetcher.
type Analyzer struct {
	opts    Options
	fetcher cdash.Fetcher
	log     *logrus.Logger
}

// New returns an Analyzer. Progress is narrated on log.
func New(opts Options, f cdash.Fetcher, log *logrus.Logger) *Analyzer {
	return &Analyzer{opts: opts.withDefaults(), fetcher: f, log: log}
}

// Run performs the analysis. Errors and panics do not escape: they are
// recorded on the result, which then reports a crash.
func (a *Analyzer) Run(ctx context.Context) *Result {
	res := &Result{Options: a.opts}
	func() {
		defer errors.Recover(func(cause error) { a.crash(res, cause) })
		if err := a.run(ctx, res); err != nil {
			a.crash(res, errors.WithStackTrace(err))
		}
	}()
	a.log.Info("")
	a.log.Info(res.SummaryLine())
	return res
}

func (a *Analyzer) crash(res *Result, err error) {
	res.Err = err
	res.Stack = errors.ErrorWithStackTrace(err)
	a.log.Error(res.Stack)
}

func (a *Analyzer) run(ctx context.Context, res *Result) error {
	o := &res.Options
	date, err := cdash.ValidateDate(o.Date)
	if err != nil {
		return err
	}
	o.Date = date

	a.log.Info("***")
	a.log.Infof("*** Query and analyze CDash results for %s for testing day %s", o.BuildSetName, o.Date)
	a.log.Info("***")
	a.log.Info("")

	expected, err := readOptional(o.ExpectedBuildsFile, csvio.ReadExpectedBuilds)
	if err != nil {
		return err
	}
	res.NumExpectedBuilds = len(expected)
	a.log.Infof("Num expected builds = %d", len(expected))

	tracked, err := readOptional(o.TrackedTestsFile, csvio.ReadTrackedTests)
	if err != nil {
		return err
	}
	a.log.Infof("Num tests with issue trackers = %d", len(tracked))

	expectedByTest, err := reconcile.NewTestToBuildCollection(expected)
	if err != nil {
		return err
	}
	if err := reconcile.CheckTracked(tracked, expectedByTest); err != nil {
		return err
	}
	trackedColl, err := reconcile.NewTestCollection(tracked)
	if err != nil {
		return err
	}

	res.BuildsURL = cdash.IndexBrowserURL(o.SiteURL, o.ProjectName, o.Date, o.BuildsFilters)
	res.NonpassingTestsURL = cdash.QueryTestsBrowserURL(o.SiteURL, o.ProjectName, o.Date, o.NonpassingTestsFilters)

	store, err := cache.New(a.fetcher, cache.Options{UseCached: o.UseCachedData})
	if err != nil {
		return err
	}

	// Builds.
	builds, err := a.query(ctx, store, "builds",
		cdash.IndexQueryURL(o.SiteURL, o.ProjectName, o.Date, o.BuildsFilters),
		filepath.Join(o.CacheDir, cdash.BuildsCacheFileName(o.BuildSetName)),
		cdash.FlattenBuilds)
	if err != nil {
		return err
	}
	res.NumBuilds = len(builds)
	a.log.Infof("Num builds = %d", len(builds))
	buildsColl, err := reconcile.NewBuildCollection(builds)
	if err != nil {
		return err
	}

	// Non-passing tests, one entry per (site, buildName, testname).
	rawTests, err := a.query(ctx, store, "nonpassing tests",
		cdash.QueryTestsQueryURL(o.SiteURL, o.ProjectName, o.Date, o.NonpassingTestsFilters),
		filepath.Join(o.CacheDir, cdash.NonpassingTestsCacheFileName(o.BuildSetName)),
		cdash.FlattenTests)
	if err != nil {
		return err
	}
	a.log.Infof("Num nonpassing tests direct from CDash query = %d", len(rawTests))
	testsColl, err := reconcile.NewTestCollection(rawTests,
		index.WithCollapseExactDuplicates(),
		index.WithEquality(cdash.TestRunComparer{TimeTolerance: o.TimeTolerance}.Compare))
	if err != nil {
		return err
	}
	tests := testsColl.Records()
	res.NumNonpassingTests = len(tests)
	a.log.Infof("Num nonpassing tests after removing duplicate tests = %d", len(tests))

	withIT, withoutIT := record.Split(tests, reconcile.Matcher(trackedColl))
	a.log.Infof("Num nonpassing tests without issue trackers = %d", len(withoutIT))
	a.log.Infof("Num nonpassing tests with issue trackers = %d", len(withIT))

	twoif := record.Filter(withoutIT, cdash.IsTestFailed)
	twoinr := record.Filter(withoutIT, cdash.IsTestNotRun)
	twif := record.Filter(withIT, cdash.IsTestFailed)
	twinr := record.Filter(withIT, cdash.IsTestNotRun)
	a.log.Infof("Num nonpassing tests without issue trackers Failed = %d", len(twoif))
	a.log.Infof("Num nonpassing tests without issue trackers Not Run = %d", len(twoinr))
	a.log.Infof("Num nonpassing tests with issue trackers Failed = %d", len(twif))
	a.log.Infof("Num nonpassing tests with issue trackers Not Run = %d", len(twinr))

	twipmGross := record.Filter(tracked, record.Not(reconcile.Matcher(testsColl)))
	a.log.Infof("Num tests with issue trackers gross passing or missing = %d", len(twipmGross))

	// Build sets.
	missing := reconcile.FindMissingExpected(buildsColl, expected)
	limit := o.LimitTableRows
	for _, s := range []*Set{
		newSet(specFor(BuildsMissing), missing, limit),
		newSet(specFor(BuildsConfigureFailures), record.Filter(builds, cdash.BuildHasConfigureFailures), limit),
		newSet(specFor(BuildsBuildFailures), record.Filter(builds, cdash.BuildHasBuildFailures), limit),
	} {
		res.Sets = append(res.Sets, s)
		a.log.Info(s.Line())
	}

	historyStore, err := cache.New(a.fetcher, cache.Options{
		UseCached:                  o.UseCachedData,
		AlwaysUseCacheFileIfExists: true,
	})
	if err != nil {
		return err
	}
	annotator := &history.Annotator{
		SiteURL:  o.SiteURL,
		Project:  o.ProjectName,
		Date:     o.Date,
		Days:     o.HistoryDays,
		CacheDir: filepath.Join(o.CacheDir, HistoryCacheSubdir),
		Loader:   historyStore,
		OnLoad:   a.logHistoryLoad,
	}

	twip, twim, err := a.splitPassingOrMissing(ctx, annotator, twipmGross, missing)
	if err != nil {
		return err
	}
	a.log.Infof("Num tests with issue trackers Passed = %d", len(twip))
	a.log.Infof("Num tests with issue trackers Missing = %d", len(twim))

	// Test sets. twip and twim already carry their history.
	issueTrackers := reconcile.NewIssueTrackerAnnotator(trackedColl, false)
	for _, ts := range []struct {
		acronym string
		rows    []record.Record
	}{
		{UntrackedTestsFailed, twoif},
		{UntrackedTestsNotRun, twoinr},
		{TrackedTestsPassed, twip},
		{TrackedTestsMissing, twim},
		{TrackedTestsFailed, twif},
		{TrackedTestsNotRun, twinr},
	} {
		s := newSet(specFor(ts.acronym), ts.rows, limit)
		res.Sets = append(res.Sets, s)
		a.log.Info(s.Line())
		for _, t := range s.Shown {
			if ts.acronym != TrackedTestsPassed && ts.acronym != TrackedTestsMissing {
				if err := annotator.Annotate(ctx, t); err != nil {
					return err
				}
			}
			if _, err := issueTrackers.Annotate(t); err != nil {
				return err
			}
		}
	}

	if o.TwoifFile != "" {
		a.log.Debugf("Writing list of 'twoif' to file %s ...", o.TwoifFile)
		if err := csvio.WriteFile(o.TwoifFile, csvio.TestsToFile(res.Set(UntrackedTestsFailed).Rows)); err != nil {
			return err
		}
	}
	return nil
}

// splitPassingOrMissing drops the tracked tests that belong to a missing
// expected build, then fetches the history of the rest to tell the ones
// that passed from the ones that did not run at all.
func (a *Analyzer) splitPassingOrMissing(ctx context.Context, annotator *history.Annotator,
	gross, missingBuilds []record.Record,
) (passed, missing []record.Record, err error) {
	if len(gross) == 0 {
		return nil, nil, nil
	}
	missingByTest, err := reconcile.NewTestToBuildCollection(missingBuilds)
	if err != nil {
		return nil, nil, err
	}
	onMissingBuild, twipm := record.Split(gross, reconcile.Matcher(missingByTest))
	a.log.Infof("Num tests with issue trackers passing or missing matching posted builds = %d", len(twipm))
	if len(onMissingBuild) > 0 {
		a.log.Info("")
		a.log.Infof("Tests with issue trackers missing that match missing expected builds: num=%d", len(onMissingBuild))
		for _, t := range onMissingBuild {
			a.log.Info("  " + t.String())
		}
		a.log.Info("NOTE: The above tests will NOT be listed in the set 'twim'!")
	}

	a.log.Info("")
	a.log.Infof("Getting test history for tests with issue trackers passing or missing: num=%d", len(twipm))
	for _, tracked := range twipm {
		t := tracked.Clone()
		if err := annotator.Annotate(ctx, t); err != nil {
			return nil, nil, err
		}
		if cdash.IsTestPassed(t) {
			passed = append(passed, t)
		} else {
			missing = append(missing, t)
		}
	}
	return passed, missing, nil
}

func (a *Analyzer) query(ctx context.Context, store *cache.Store, what, url, file string,
	flatten func(record.Record) ([]record.Record, error),
) ([]record.Record, error) {
	payload, fromCache, err := store.Get(ctx, url, file)
	if err != nil {
		return nil, errors.Errorf("getting %s: %w", what, err)
	}
	if fromCache {
		a.log.Debugf("Getting %s from cache file %s", what, file)
	} else {
		a.log.Debugf("Getting %s from CDash query %s", what, url)
	}
	return flatten(payload)
}

func (a *Analyzer) logHistoryLoad(test record.Record, cacheFile string, fromCache bool) {
	src := "from CDash"
	if fromCache {
		src = "from cache file"
	}
	a.log.Infof("Getting %d days of history for %s in the build %s on %s %s",
		a.opts.HistoryDays, test.Str("testname"), test.Str("buildName"), test.Str("site"), src)
	if !a.log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	abs, err := filepath.Abs(cacheFile)
	if err != nil {
		abs = cacheFile
	}
	if fromCache {
		a.log.Debug("  Since the file exists, using cached data from file:")
	} else {
		a.log.Debug("  Wrote downloaded data to cache file:")
	}
	a.log.Debug("    " + abs)
}

func readOptional(path string, read func(string) ([]record.Record, error)) ([]record.Record, error) {
	if path == "" {
		return nil, nil
	}
	return read(path)
}
