// Package csvio reads and writes the comma-space separated files that list
// expected builds and tests with issue trackers.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dkoosis/cdashreport/pkg/record"
)

// Column headers of the two input files.
var (
	ExpectedBuildsHeaders = []string{"group", "site", "buildname"}
	TrackedTestsHeaders   = []string{"site", "buildName", "testname", "issue_tracker_url", "issue_tracker"}
)

// File is a header row plus data rows.
type File struct {
	Headers []string
	Rows    [][]string
}

// Read parses r into one record per data row, keyed by the header row.
// Blank lines are skipped. When expectedHeaders is non-nil the header row
// must match it exactly.
func Read(r io.Reader, expectedHeaders []string) ([]record.Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("Error, CSV data is empty, expected a header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	trimAll(header)
	if expectedHeaders != nil {
		if err := checkHeaders(header, expectedHeaders); err != nil {
			return nil, err
		}
	}

	var out []record.Record
	for row := 0; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row %d: %w", row, err)
		}
		trimAll(fields)
		if len(fields) != len(header) {
			return nil, fmt.Errorf("Error, data row %d %v has %d entries which does not match the number of column headers %d!",
				row, fields, len(fields), len(header))
		}
		rec := make(record.Record, len(header))
		for i, h := range header {
			rec[h] = fields[i]
		}
		out = append(out, rec)
	}
	return out, nil
}

func checkHeaders(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("Error, for CSV file the number of column headers %d does not match the expected number %d!\n\n"+
			"  column headers = %v\n  expected headers = %v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("Error, column header %d is '%s' which does not match the expected header '%s'!",
				i, got[i], want[i])
		}
	}
	return nil
}

func trimAll(fields []string) {
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
}

// ReadFile opens path and reads it with Read.
func ReadFile(path string, expectedHeaders []string) ([]record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck
	recs, err := Read(f, expectedHeaders)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// ReadExpectedBuilds reads a group, site, buildname file.
func ReadExpectedBuilds(path string) ([]record.Record, error) {
	return ReadFile(path, ExpectedBuildsHeaders)
}

// ReadTrackedTests reads a tests-with-issue-trackers file.
func ReadTrackedTests(path string) ([]record.Record, error) {
	return ReadFile(path, TrackedTestsHeaders)
}

// Write emits f as "a, b, c" lines. Fields are written as given.
func Write(w io.Writer, f File) error {
	if _, err := io.WriteString(w, strings.Join(f.Headers, ", ")+"\n"); err != nil {
		return err
	}
	for _, row := range f.Rows {
		if _, err := io.WriteString(w, strings.Join(row, ", ")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// String renders f the way Write does.
func (f File) String() string {
	var sb strings.Builder
	_ = Write(&sb, f)
	return sb.String()
}

// TestsToFile lays out tests under TrackedTestsHeaders. Missing issue
// tracker fields are written empty.
func TestsToFile(tests []record.Record) File {
	f := File{Headers: TrackedTestsHeaders, Rows: make([][]string, 0, len(tests))}
	for _, t := range tests {
		row := make([]string, len(TrackedTestsHeaders))
		for i, h := range TrackedTestsHeaders {
			row[i] = t.Str(h)
		}
		f.Rows = append(f.Rows, row)
	}
	return f
}

// WriteFile writes f to path.
func WriteFile(path string, f File) error {
	return os.WriteFile(path, []byte(f.String()), 0o644)
}
