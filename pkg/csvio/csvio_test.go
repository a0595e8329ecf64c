package csvio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/cdashreport/pkg/record"
)

const threeByTwo = "col_0, col_1, col_2\n" +
	"val_00, val_01, val_02\n" +
	"val_10, val_11, val_12\n\n\n"

var threeByTwoRecords = []record.Record{
	{"col_0": "val_00", "col_1": "val_01", "col_2": "val_02"},
	{"col_0": "val_10", "col_1": "val_11", "col_2": "val_12"},
}

func TestRead(t *testing.T) {
	got, err := Read(strings.NewReader(threeByTwo), []string{"col_0", "col_1", "col_2"})
	require.NoError(t, err)
	assert.Equal(t, threeByTwoRecords, got)

	got, err = Read(strings.NewReader(threeByTwo), nil)
	require.NoError(t, err)
	assert.Equal(t, threeByTwoRecords, got)
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected []string
	}{
		{"too few expected headers", "wrong col, col_1, col_2\nval_00, val_01, val_02\n", []string{"col_0", "col_1"}},
		{"too many expected headers", "wrong col, col_1, col_2\nval_00, val_01, val_02\n", []string{"col_0", "col_1", "col_2", "col3"}},
		{"wrong col 0", "wrong col, col_1, col_2\nval_00, val_01, val_02\n", []string{"col_0", "col_1", "col_2"}},
		{"wrong col 1", "col_0, wrong col, col_2\nval_00, val_01, val_02\n", []string{"col_0", "col_1", "col_2"}},
		{"bad row length", "col_0, col_1, col_2\nval_00, val_01, val_02\nval_10, val_11, val_12, extra\n", nil},
		{"empty", "", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tc.data), tc.expected)
			assert.Error(t, err)
		})
	}
}

func TestReadExpectedBuilds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expectedBuilds.csv")
	require.NoError(t, os.WriteFile(path, []byte("group, site, buildname\n"+
		"group1, site1, buildname1\n"+
		"group1, site1, buildname2\n"+
		"group2, site2, buildname2\n\n\n\n"), 0o644))

	got, err := ReadExpectedBuilds(path)
	require.NoError(t, err)
	assert.Equal(t, []record.Record{
		{"group": "group1", "site": "site1", "buildname": "buildname1"},
		{"group": "group1", "site": "site1", "buildname": "buildname2"},
		{"group": "group2", "site": "site2", "buildname": "buildname2"},
	}, got)

	_, err = ReadTrackedTests(path)
	assert.Error(t, err)

	_, err = ReadExpectedBuilds(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	headers := []string{"field1", "field2", "field3", "field4"}
	assert.Equal(t, "field1, field2, field3, field4\n", File{Headers: headers}.String())
	assert.Equal(t, "field1, field2, field3, field4\n"+
		"dat11, dat12, , \n"+
		", dat22, , dat24\n"+
		"dat31, , , dat44\n",
		File{Headers: headers, Rows: [][]string{
			{"dat11", "dat12", "", ""},
			{"", "dat22", "", "dat24"},
			{"dat31", "", "", "dat44"},
		}}.String())
}

func TestTestsToFile(t *testing.T) {
	f := TestsToFile(nil)
	assert.Equal(t, TrackedTestsHeaders, f.Headers)
	assert.Empty(t, f.Rows)

	f = TestsToFile([]record.Record{
		{"site": "site1", "buildName": "build1", "testname": "test1"},
		{"site": "site3", "buildName": "build3", "testname": "test3", "status": "Failed"},
		{"site": "site2", "buildName": "build2", "testname": "test2", "issue_tracker": "#1"},
	})
	assert.Equal(t, [][]string{
		{"site1", "build1", "test1", "", ""},
		{"site3", "build3", "test3", "", ""},
		{"site2", "build2", "test2", "", "#1"},
	}, f.Rows)
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twoif.csv")
	tests := []record.Record{
		{"site": "site1", "buildName": "build1", "testname": "test1", "issue_tracker_url": "", "issue_tracker": ""},
	}
	require.NoError(t, WriteFile(path, TestsToFile(tests)))
	got, err := ReadTrackedTests(path)
	require.NoError(t, err)
	assert.Equal(t, tests, got)
}
