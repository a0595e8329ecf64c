// Package config loads cdashreport settings.
//
// # Precedence
//
// Values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (overlaid by the command after Load)
//  2. Environment variables (CDASH_SITE_URL, CDASH_PROJECT_NAME, ...), with
//     a .env file in the working directory loaded first
//  3. YAML config file (.cdashreport.yaml in the working directory or
//     $XDG_CONFIG_HOME/cdashreport/.cdashreport.yaml)
//  4. Hardcoded defaults
//
// # Environment Variables
//
//   - CDASH_SITE_URL: CDash site, e.g. https://testing.sandia.gov/cdash
//   - CDASH_PROJECT_NAME: CDash project name
//   - CDASH_BUILD_SET_NAME: name of the build set in report titles
//   - CDASH_BUILDS_FILTERS, CDASH_NONPASSED_TESTS_FILTERS: query filters
//   - CDASH_QUERIES_CACHE_DIR: directory for cached query results
//   - CDASH_EXPECTED_BUILDS_FILE, CDASH_TESTS_WITH_ISSUE_TRACKERS_FILE
//   - CDASH_LIMIT_TEST_HISTORY_DAYS, CDASH_LIMIT_TABLE_ROWS
//   - CDASH_TIME_TOLERANCE
package config
