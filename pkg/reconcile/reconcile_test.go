package reconcile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/cdashreport/pkg/record"
)

func gsb(group, site, name string) record.Record {
	return record.Record{"group": group, "site": site, "buildname": name}
}

func gsbd(group, site, name, data string) record.Record {
	r := gsb(group, site, name)
	r["data"] = data
	return r
}

func sbt(site, build, test string) record.Record {
	return record.Record{"site": site, "buildName": build, "testname": test}
}

func sbtit(site, build, test, url, it string) record.Record {
	r := sbt(site, build, test)
	r["issue_tracker_url"] = url
	r["issue_tracker"] = it
	return r
}

func actualBuilds() []record.Record {
	return []record.Record{
		gsbd("group1", "site1", "build1", "val1"),
		gsbd("group1", "site1", "build2", "val2"),
		gsbd("group1", "site2", "build3", "val3"),
		gsbd("group2", "site1", "build1", "val4"),
		gsbd("group2", "site3", "build4", "val5"),
	}
}

func TestFindMissingExpected(t *testing.T) {
	actual, err := NewBuildCollection(actualBuilds())
	require.NoError(t, err)
	b, _, err := actual.Lookup("group2", "site3", "build4")
	require.NoError(t, err)
	b["test"] = record.Record{"pass": 1}

	expected := []record.Record{
		gsb("group1", "site2", "build3"),
		gsb("group2", "site3", "build4"),
		gsb("group2", "site3", "build8"),
	}
	missing := FindMissingExpected(actual, expected)
	require.Len(t, missing, 2)
	assert.Equal(t, record.Record{
		"group": "group1", "site": "site2", "buildname": "build3",
		"status": StatusBuildNoResults,
	}, missing[0])
	assert.Equal(t, record.Record{
		"group": "group2", "site": "site3", "buildname": "build8",
		"status": StatusBuildNotFound,
	}, missing[1])

	again := FindMissingExpected(actual, expected)
	assert.Equal(t, missing, again)
	assert.False(t, expected[0].Has("status"), "expected rows must not be modified")
}

func TestFindMissingExpected_NothingMissing(t *testing.T) {
	builds := actualBuilds()
	for _, b := range builds {
		b["test"] = record.Record{"pass": 3}
	}
	actual, err := NewBuildCollection(builds)
	require.NoError(t, err)
	assert.Empty(t, FindMissingExpected(actual, []record.Record{gsb("group1", "site1", "build1")}))
}

var expectedForTracked = []record.Record{
	gsb("group1", "site1", "build1"),
	gsb("group1", "site1", "build2"),
	gsb("group2", "site2", "build2"),
	gsb("group2", "site1", "build3"),
}

func trackedTests() []record.Record {
	return []record.Record{
		sbtit("site1", "build3", "test1", "url1", "#1111"),
		sbtit("site1", "build1", "test2", "url2", "#1112"),
		sbtit("site2", "build2", "test1", "url3", "#1113"),
		sbtit("site2", "build2", "test5", "url5", "#1114"),
	}
}

func TestValidateTrackedAgainstExpected(t *testing.T) {
	expected, err := NewTestToBuildCollection(expectedForTracked)
	require.NoError(t, err)

	ok, msg := ValidateTrackedAgainstExpected(trackedTests(), expected)
	assert.True(t, ok)
	assert.Empty(t, msg)

	tracked := trackedTests()
	tracked[1]["buildName"] = "build8"
	ok, msg = ValidateTrackedAgainstExpected(tracked, expected)
	assert.False(t, ok)
	assert.Equal(t,
		"Error: The following tests with issue trackers did not match 'site' and 'buildName' in one of the expected builds:\n"+
			"  {'site'='site1', 'buildName'=build8', 'testname'=test2'}\n", msg)

	tracked[3]["site"] = "site3"
	ok, msg = ValidateTrackedAgainstExpected(tracked, expected)
	assert.False(t, ok)
	assert.Equal(t,
		"Error: The following tests with issue trackers did not match 'site' and 'buildName' in one of the expected builds:\n"+
			"  {'site'='site1', 'buildName'=build8', 'testname'=test2'}\n"+
			"  {'site'='site3', 'buildName'=build2', 'testname'=test5'}\n", msg)

	err = CheckTracked(tracked, expected)
	var re *ReconciliationError
	require.True(t, errors.As(err, &re))
	assert.Len(t, re.Unmatched, 2)
	assert.Equal(t, msg, re.Error())
}

func TestNewTestToBuildCollection_SameBuildInTwoGroups(t *testing.T) {
	c, err := NewTestToBuildCollection([]record.Record{
		gsb("group1", "site1", "build1"),
		gsb("group2", "site1", "build1"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

var trackedForMatch = []record.Record{
	sbtit("site1", "build1", "test1", "url1", "#1111"),
	sbtit("site1", "build1", "test2", "url2", "#1112"),
	sbtit("site2", "build2", "test1", "url3", "#1113"),
	sbtit("site2", "build1", "test5", "url5", "#1114"),
}

func TestMatcher(t *testing.T) {
	c, err := NewTestCollection(trackedForMatch)
	require.NoError(t, err)
	match := Matcher(c)
	assert.True(t, match(sbt("site1", "build1", "test1")))
	assert.True(t, match(sbt("site2", "build2", "test1")))
	assert.False(t, match(sbt("site2", "build2", "test7")))
	assert.False(t, match(sbt("site1", "build2", "test3")))
	assert.True(t, match(sbt("site2", "build1", "test5")))
}

func TestIssueTrackerAnnotator(t *testing.T) {
	c, err := NewTestCollection(trackedForMatch)
	require.NoError(t, err)
	a := NewIssueTrackerAnnotator(c, false)

	test := record.Record{"site": "site1", "buildName": "build1", "testname": "test1", "other_data": "great"}
	_, err = a.Annotate(test)
	require.NoError(t, err)
	assert.Equal(t, record.Record{
		"site": "site1", "buildName": "build1", "testname": "test1", "other_data": "great",
		"issue_tracker_url": "url1", "issue_tracker": "#1111",
	}, test)

	got, err := a.Annotate(sbt("site2", "build2", "test1"))
	require.NoError(t, err)
	assert.Equal(t, "#1113", got.Str("issue_tracker"))

	got, err = a.Annotate(sbt("site2", "build2", "test9"))
	require.NoError(t, err)
	assert.Equal(t, "", got.Str("issue_tracker_url"))
	assert.Equal(t, "", got.Str("issue_tracker"))

	strict := NewIssueTrackerAnnotator(c, true)
	_, err = strict.Annotate(sbt("site2", "build2", "test9"))
	require.Error(t, err)
	assert.Equal(t,
		"Error, testDict_inout={'buildName': 'build2', 'site': 'site2', 'testname': 'test9'} does not have an assigned issue tracker!",
		err.Error())
}
