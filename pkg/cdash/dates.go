package cdash

import (
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ValidateDate parses a YYYY-MM-DD date, accepting single-digit month and
// day, and returns it in canonical form.
func ValidateDate(s string) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return t.Format(dateLayout), nil
}

// ParseDate parses a YYYY-MM-DD date; see ValidateDate.
func ParseDate(s string) (time.Time, error) {
	bad := &ParseError{Field: "date", Value: s, Want: "YYYY-MM-DD"}
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 4 {
		return time.Time{}, bad
	}
	nums := make([]int, 3)
	for i, p := range parts {
		if p == "" || len(p) > 4 {
			return time.Time{}, bad
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, bad
		}
		nums[i] = n
	}
	t := time.Date(nums[0], time.Month(nums[1]), nums[2], 0, 0, 0, 0, time.UTC)
	if t.Year() != nums[0] || int(t.Month()) != nums[1] || t.Day() != nums[2] {
		return time.Time{}, bad
	}
	return t, nil
}

// ShiftDate moves a YYYY-MM-DD date by days.
func ShiftDate(date string, days int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, days).Format(dateLayout), nil
}

// DateFromBuildStartTime returns the date part of a buildstarttime such as
// "2001-01-01T05:54:03 UTC".
func DateFromBuildStartTime(bst string) (string, error) {
	if len(bst) < 10 {
		return "", &ParseError{Field: "buildstarttime", Value: bst, Want: "YYYY-MM-DDThh:mm:ss UTC"}
	}
	d := bst[:10]
	if _, err := ParseDate(d); err != nil {
		return "", &ParseError{Field: "buildstarttime", Value: bst, Want: "YYYY-MM-DDThh:mm:ss UTC"}
	}
	return d, nil
}
