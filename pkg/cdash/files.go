package cdash

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
	"unicode"
)

// MaxFileNameLen is the longest cache file name written as is.
const MaxFileNameLen = 255

// FileNameFromText replaces every character that is not a letter or digit
// with '_'.
func FileNameFromText(s string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return '_'
	}, s)
}

// CompressedFileName returns name unchanged when it fits, otherwise prefix +
// sha1(name) + "." + ext (ext is skipped when empty).
func CompressedFileName(name, prefix, ext string) string {
	if len(name) <= MaxFileNameLen {
		return name
	}
	sum := sha1.Sum([]byte(name))
	out := prefix + hex.EncodeToString(sum[:])
	if ext != "" {
		out += "." + ext
	}
	return out
}

// HistoryCacheFileName names the cache file of one test's history.
func HistoryCacheFileName(date, site, buildName, testName string, days int) string {
	name := date + "-" + site + "-" + buildName + "-" +
		strings.ReplaceAll(testName, "/", "_") + "-HIST-" + strconv.Itoa(days) + ".json"
	return CompressedFileName(name, date+"-", "json")
}

// BuildsCacheFileName names the cache file of the index.php builds query.
func BuildsCacheFileName(buildSetName string) string {
	return FileNameFromText(buildSetName) + "_fullCDashIndexBuilds.json"
}

// NonpassingTestsCacheFileName names the cache file of the nonpassing tests
// query.
func NonpassingTestsCacheFileName(buildSetName string) string {
	return FileNameFromText(buildSetName) + "_fullCDashNonpassingTests.json"
}
