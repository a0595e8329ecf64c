package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the user config directory at an empty temp dir and
// returns a fresh working directory.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return t.TempDir()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 30, cfg.HistoryDays)
	assert.Equal(t, 10, cfg.LimitTableRows)
	assert.InDelta(t, 0.45, cfg.TimeTolerance, 1e-9)
	assert.Equal(t, ".", cfg.CacheDir)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, "default", cfg.Theme)
}

func TestLoad_NoFile(t *testing.T) {
	dir := isolate(t)
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_LocalFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, FileName), `
cdash_site_url: https://testing.sandia.gov/cdash
cdash_project_name: Trilinos
build_set_name: Trilinos Nightly Builds
limit_table_rows: 20
time_tolerance: 1.5
`)
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://testing.sandia.gov/cdash", cfg.SiteURL)
	assert.Equal(t, "Trilinos", cfg.ProjectName)
	assert.Equal(t, "Trilinos Nightly Builds", cfg.BuildSetName)
	assert.Equal(t, 20, cfg.LimitTableRows)
	assert.InDelta(t, 1.5, cfg.TimeTolerance, 1e-9)
	assert.Equal(t, 30, cfg.HistoryDays, "unset keys keep their default")
	assert.Equal(t, filepath.Join(dir, FileName), cfg.Source)
}

func TestLoad_UserConfigDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeFile(t, filepath.Join(xdg, "cdashreport", FileName), "cdash_project_name: FromXDG\n")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "FromXDG", cfg.ProjectName)
}

func TestLoad_LocalFileWinsOverUserConfigDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeFile(t, filepath.Join(xdg, "cdashreport", FileName), "cdash_project_name: FromXDG\n")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), "cdash_project_name: Local\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "Local", cfg.ProjectName)
}

func TestLoad_UnknownKey(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, FileName), "cdash_project: Typo\n")
	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, FileName), "")
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.HistoryDays)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, FileName), "cdash_project_name: File\nlimit_test_history_days: 5\n")
	t.Setenv("CDASH_PROJECT_NAME", "Env")
	t.Setenv("CDASH_LIMIT_TEST_HISTORY_DAYS", "7")
	t.Setenv("CDASH_TIME_TOLERANCE", "2")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "Env", cfg.ProjectName)
	assert.Equal(t, 7, cfg.HistoryDays)
	assert.InDelta(t, 2.0, cfg.TimeTolerance, 1e-9)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	t.Cleanup(func() { _ = os.Unsetenv("CDASH_TESTS_WITH_ISSUE_TRACKERS_FILE") })
	writeFile(t, filepath.Join(dir, ".env"), "CDASH_TESTS_WITH_ISSUE_TRACKERS_FILE=twif.csv\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "twif.csv", cfg.TrackedTestsFile)
}

func TestLoad_BadEnvNumbers(t *testing.T) {
	dir := isolate(t)
	t.Setenv("CDASH_LIMIT_TABLE_ROWS", "ten")
	t.Setenv("CDASH_TIME_TOLERANCE", "soon")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `CDASH_LIMIT_TABLE_ROWS="ten" is not an integer`)
	assert.Contains(t, err.Error(), `CDASH_TIME_TOLERANCE="soon" is not a number`)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.HistoryDays = 0
	cfg.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"--cdash-site-url is required",
		"--cdash-project-name is required",
		"--build-set-name is required",
		"--expected-builds-file is required",
		"limit_test_history_days must be positive",
		`unknown format "xml"`,
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := Defaults()
	cfg.SiteURL = "https://site.com/cdash"
	cfg.ProjectName = "P"
	cfg.BuildSetName = "P Nightly"
	cfg.ExpectedBuildsFile = "expected.csv"
	assert.NoError(t, cfg.Validate())
}

func TestReportOptions(t *testing.T) {
	cfg := Defaults()
	cfg.ProjectName = "P"
	cfg.TrackedTestsFile = "twif.csv"
	opts := cfg.ReportOptions("2018-10-28")
	assert.Equal(t, "2018-10-28", opts.Date)
	assert.Equal(t, "P", opts.ProjectName)
	assert.Equal(t, "twif.csv", opts.TrackedTestsFile)
	assert.Equal(t, 10, opts.LimitTableRows)
	assert.Equal(t, 30, opts.HistoryDays)
}

func TestReportOptions_ZeroTimeToleranceKept(t *testing.T) {
	cfg := Defaults()
	cfg.SiteURL = "https://site.com/cdash"
	cfg.ProjectName = "P"
	cfg.BuildSetName = "P Nightly"
	cfg.ExpectedBuildsFile = "expected.csv"
	cfg.TimeTolerance = 0
	require.NoError(t, cfg.Validate())
	assert.Zero(t, cfg.ReportOptions("2018-10-28").TimeTolerance)
}
