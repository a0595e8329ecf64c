package cdash

import "fmt"

func pageURL(site, page, project, date, filters string) string {
	u := site + "/" + page + "?project=" + project
	if date != "" {
		u += "&date=" + date
	}
	if filters != "" {
		u += "&" + filters
	}
	return u
}

// IndexQueryURL is the index.php API URL for the builds on date.
func IndexQueryURL(site, project, date, filters string) string {
	return pageURL(site, "api/v1/index.php", project, date, filters)
}

// IndexBrowserURL is the index.php page a person would open.
func IndexBrowserURL(site, project, date, filters string) string {
	return pageURL(site, "index.php", project, date, filters)
}

// QueryTestsQueryURL is the queryTests.php API URL.
func QueryTestsQueryURL(site, project, date, filters string) string {
	return pageURL(site, "api/v1/queryTests.php", project, date, filters)
}

// QueryTestsBrowserURL is the queryTests.php page a person would open.
func QueryTestsBrowserURL(site, project, date, filters string) string {
	return pageURL(site, "queryTests.php", project, date, filters)
}

// historyBounds returns the exclusive upper and lower buildstarttime bounds
// of a window of days ending on date.
func historyBounds(date string, days int) (upper, lower string, err error) {
	upper, err = ShiftDate(date, 1)
	if err != nil {
		return "", "", err
	}
	lower, err = ShiftDate(date, -(days - 1))
	if err != nil {
		return "", "", err
	}
	return upper + "T00:00:00", lower + "T00:00:00", nil
}

// TestHistoryFilters selects the runs of one test in one build over the days
// ending on date.
func TestHistoryFilters(site, buildName, testName, date string, days int) (string, error) {
	upper, lower, err := historyBounds(date, days)
	if err != nil {
		return "", err
	}
	return "filtercombine=and&filtercombine=&filtercount=5&showfilters=1&filtercombine=and" +
		"&field1=buildname&compare1=61&value1=" + buildName +
		"&field2=testname&compare2=61&value2=" + testName +
		"&field3=site&compare3=61&value3=" + site +
		"&field4=buildstarttime&compare4=84&value4=" + upper +
		"&field5=buildstarttime&compare5=83&value5=" + lower, nil
}

// BuildHistoryFilters selects the builds of one build name on one site over
// the days ending on date.
func BuildHistoryFilters(site, buildName, date string, days int) (string, error) {
	upper, lower, err := historyBounds(date, days)
	if err != nil {
		return "", err
	}
	return "filtercombine=and&filtercombine=&filtercount=4&showfilters=1&filtercombine=and" +
		"&field1=buildname&compare1=61&value1=" + buildName +
		"&field2=site&compare2=61&value2=" + site +
		"&field3=buildstarttime&compare3=84&value3=" + upper +
		"&field4=buildstarttime&compare4=83&value4=" + lower, nil
}

// TestHistoryURLs bundles the query and browser URLs of one test's history.
type TestHistoryURLs struct {
	Query   string
	Browser string
	Build   string
}

// HistoryURLs builds the test history and build history URLs for a test.
func HistoryURLs(site, project, testSite, buildName, testName, date string, days int) (TestHistoryURLs, error) {
	tf, err := TestHistoryFilters(testSite, buildName, testName, date, days)
	if err != nil {
		return TestHistoryURLs{}, fmt.Errorf("test history filters: %w", err)
	}
	bf, err := BuildHistoryFilters(testSite, buildName, date, days)
	if err != nil {
		return TestHistoryURLs{}, fmt.Errorf("build history filters: %w", err)
	}
	return TestHistoryURLs{
		Query:   QueryTestsQueryURL(site, project, "", tf),
		Browser: QueryTestsBrowserURL(site, project, "", tf),
		Build:   IndexBrowserURL(site, project, "", bf),
	}, nil
}
