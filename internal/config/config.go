package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dkoosis/cdashreport/pkg/cdash"
	"github.com/dkoosis/cdashreport/pkg/report"
)

// FileName is the config file looked up in the working directory and the
// user config directory.
const FileName = ".cdashreport.yaml"

// Defaults.
const (
	DefaultCacheDir = "."
	DefaultFormat   = "auto"
	DefaultTheme    = "default"
)

// Formats accepted for the report output.
var Formats = []string{"auto", "terminal", "llm", "json", "html"}

// Config holds everything needed to analyze one testing day.
type Config struct {
	SiteURL                string  `yaml:"cdash_site_url"`
	ProjectName            string  `yaml:"cdash_project_name"`
	BuildSetName           string  `yaml:"build_set_name"`
	BuildsFilters          string  `yaml:"cdash_builds_filters"`
	NonpassingTestsFilters string  `yaml:"cdash_nonpassed_tests_filters"`
	CacheDir               string  `yaml:"cdash_queries_cache_dir"`
	ExpectedBuildsFile     string  `yaml:"expected_builds_file"`
	TrackedTestsFile       string  `yaml:"tests_with_issue_trackers_file"`
	HistoryDays            int     `yaml:"limit_test_history_days"`
	LimitTableRows         int     `yaml:"limit_table_rows"`
	TimeTolerance          float64 `yaml:"time_tolerance"`
	Format                 string  `yaml:"format"`
	Theme                  string  `yaml:"theme"`

	// Source is the config file that was read, or "".
	Source string `yaml:"-"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		CacheDir:       DefaultCacheDir,
		HistoryDays:    report.DefaultHistoryDays,
		LimitTableRows: report.DefaultLimitTableRows,
		TimeTolerance:  cdash.DefaultTimeTolerance,
		Format:         DefaultFormat,
		Theme:          DefaultTheme,
	}
}

// Load reads the defaults, the config file and the environment, in that
// order. dir is the working directory searched for the config and .env files.
func Load(dir string) (*Config, error) {
	cfg := Defaults()
	if path := findConfigFile(dir); path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := loadDotEnv(filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile checks dir first, then the user config directory.
func findConfigFile(dir string) string {
	local := filepath.Join(dir, FileName)
	if _, err := os.Stat(local); err == nil {
		return local
	}
	home, err := os.UserConfigDir()
	if err != nil || home == "" || home == "/" {
		return ""
	}
	xdg := filepath.Join(home, "cdashreport", FileName)
	if _, err := os.Stat(xdg); err == nil {
		return xdg
	}
	return ""
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	c.Source = path
	return nil
}

// loadDotEnv loads a .env file if present. Variables already set in the
// environment win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"CDASH_SITE_URL":                       &c.SiteURL,
		"CDASH_PROJECT_NAME":                   &c.ProjectName,
		"CDASH_BUILD_SET_NAME":                 &c.BuildSetName,
		"CDASH_BUILDS_FILTERS":                 &c.BuildsFilters,
		"CDASH_NONPASSED_TESTS_FILTERS":        &c.NonpassingTestsFilters,
		"CDASH_QUERIES_CACHE_DIR":              &c.CacheDir,
		"CDASH_EXPECTED_BUILDS_FILE":           &c.ExpectedBuildsFile,
		"CDASH_TESTS_WITH_ISSUE_TRACKERS_FILE": &c.TrackedTestsFile,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	var result *multierror.Error
	ints := map[string]*int{
		"CDASH_LIMIT_TEST_HISTORY_DAYS": &c.HistoryDays,
		"CDASH_LIMIT_TABLE_ROWS":        &c.LimitTableRows,
	}
	for name, dst := range ints {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s=%q is not an integer", name, v))
			continue
		}
		*dst = n
	}
	if v, ok := os.LookupEnv("CDASH_TIME_TOLERANCE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("CDASH_TIME_TOLERANCE=%q is not a number", v))
		} else {
			c.TimeTolerance = f
		}
	}
	return result.ErrorOrNil()
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	required := []struct{ flag, value string }{
		{"--cdash-site-url", c.SiteURL},
		{"--cdash-project-name", c.ProjectName},
		{"--build-set-name", c.BuildSetName},
		{"--expected-builds-file", c.ExpectedBuildsFile},
	}
	for _, r := range required {
		if r.value == "" {
			result = multierror.Append(result, fmt.Errorf("%s is required", r.flag))
		}
	}
	if c.HistoryDays <= 0 {
		result = multierror.Append(result, fmt.Errorf("limit_test_history_days must be positive, got %d", c.HistoryDays))
	}
	if c.TimeTolerance < 0 {
		result = multierror.Append(result, fmt.Errorf("time_tolerance must not be negative, got %g", c.TimeTolerance))
	}
	if !validFormat(c.Format) {
		result = multierror.Append(result, fmt.Errorf("unknown format %q (expected auto, terminal, llm, json, html)", c.Format))
	}
	return result.ErrorOrNil()
}

func validFormat(f string) bool {
	for _, v := range Formats {
		if v == f {
			return true
		}
	}
	return false
}

// ReportOptions converts the configuration for an analysis of date.
func (c *Config) ReportOptions(date string) report.Options {
	return report.Options{
		Date:                   date,
		ProjectName:            c.ProjectName,
		BuildSetName:           c.BuildSetName,
		SiteURL:                c.SiteURL,
		BuildsFilters:          c.BuildsFilters,
		NonpassingTestsFilters: c.NonpassingTestsFilters,
		CacheDir:               c.CacheDir,
		ExpectedBuildsFile:     c.ExpectedBuildsFile,
		TrackedTestsFile:       c.TrackedTestsFile,
		HistoryDays:            c.HistoryDays,
		LimitTableRows:         c.LimitTableRows,
		TimeTolerance:          c.TimeTolerance,
	}
}
