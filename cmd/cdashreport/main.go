// cdashreport queries a CDash site for one testing day, reconciles the
// results against the expected builds and the tests with issue trackers, and
// reports a PASSED or FAILED verdict with drill-down tables.
//
// Usage:
//
//	cdashreport analyze --date=2018-10-28 --cdash-site-url=https://site/cdash \
//	    --cdash-project-name=Trilinos --build-set-name="Trilinos Nightly Builds" \
//	    --expected-builds-file=expected.csv --write-email-to-file=email.html
//	cdashreport browse [analyze flags]
//	cdashreport normalize <cached-payload.json>
//	cdashreport version
//
// Output modes for analyze (auto-detected):
//
//	terminal  styled Unicode tables (default when TTY)
//	llm       terse plain text (default when piped)
//	json      structured JSON for automation
//	html      the e-mail body
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/dkoosis/cdashreport/internal/browse"
	"github.com/dkoosis/cdashreport/internal/config"
	"github.com/dkoosis/cdashreport/internal/detect"
	"github.com/dkoosis/cdashreport/internal/errors"
	"github.com/dkoosis/cdashreport/internal/logging"
	"github.com/dkoosis/cdashreport/internal/version"
	"github.com/dkoosis/cdashreport/pkg/cdash"
	"github.com/dkoosis/cdashreport/pkg/mapper"
	"github.com/dkoosis/cdashreport/pkg/record"
	"github.com/dkoosis/cdashreport/pkg/render"
	"github.com/dkoosis/cdashreport/pkg/report"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// app carries the process streams and the exit code set by an action.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	code   int
	// fetcher queries CDash; tests replace it.
	fetcher cdash.Fetcher
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return runWith(args, stdin, stdout, stderr, cdash.NewClient())
}

func runWith(args []string, stdin io.Reader, stdout, stderr io.Writer, f cdash.Fetcher) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, fetcher: f}
	if err := a.command().Run(ctx, append([]string{"cdashreport"}, args...)); err != nil {
		fmt.Fprintf(stderr, "cdashreport: %v\n", err)
		var ec *errors.ExitCodeError
		if errors.As(err, &ec) {
			return ec.ExitCode
		}
		return 2
	}
	return a.code
}

func usageError(format string, args ...any) error {
	return &errors.ExitCodeError{Err: fmt.Errorf(format, args...), ExitCode: 2}
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:           "cdashreport",
		Usage:          "Analyze CDash build and test results for one testing day",
		Reader:         a.stdin,
		Writer:         a.stdout,
		ErrWriter:      a.stderr,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Commands: []*cli.Command{
			{
				Name:   "analyze",
				Usage:  "Query CDash, print the narration and the report, set the exit code",
				Flags:  analyzeFlags(),
				Action: a.analyze,
			},
			{
				Name:   "browse",
				Usage:  "Run analyze and browse the report tables interactively",
				Flags:  analyzeFlags(),
				Action: a.browse,
			},
			{
				Name:      "normalize",
				Usage:     "Print the flattened records of a cached CDash payload as JSON",
				ArgsUsage: "<file>",
				Action:    a.normalize,
			},
			{
				Name:  "version",
				Usage: "Print build information",
				Action: func(context.Context, *cli.Command) error {
					fmt.Fprint(a.stdout, version.String())
					return nil
				},
			},
		},
	}
}

func analyzeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "date", Usage: "Testing day YYYY-MM-DD", Required: true},
		&cli.StringFlag{Name: "cdash-site-url", Usage: "CDash site, e.g. https://testing.sandia.gov/cdash"},
		&cli.StringFlag{Name: "cdash-project-name", Usage: "CDash project name"},
		&cli.StringFlag{Name: "build-set-name", Usage: "Name of the set of builds in the report title"},
		&cli.StringFlag{Name: "cdash-builds-filters", Usage: "Filter fields of the index.php builds query"},
		&cli.StringFlag{Name: "cdash-nonpassed-tests-filters", Usage: "Filter fields of the queryTests.php nonpassing tests query"},
		&cli.BoolFlag{Name: "use-cached-cdash-data", Usage: "Read cached query results instead of querying CDash"},
		&cli.StringFlag{Name: "cdash-queries-cache-dir", Usage: "Directory of cached query results (default .)"},
		&cli.StringFlag{Name: "expected-builds-file", Usage: "CSV of expected builds: group, site, buildname"},
		&cli.StringFlag{Name: "tests-with-issue-trackers-file", Usage: "CSV of tests with issue trackers"},
		&cli.IntFlag{Name: "limit-test-history-days", Usage: "Days of test history to query (default 30)"},
		&cli.IntFlag{Name: "limit-table-rows", Usage: "Rows shown per limited table (default 10)"},
		&cli.FloatFlag{Name: "time-tolerance", Usage: "Run time tolerance for duplicate tests, seconds (default 0.45)"},
		&cli.BoolFlag{Name: "print-details", Usage: "Print cache details for each test history query"},
		&cli.StringFlag{Name: "write-failing-tests-without-issue-trackers-to-file", Usage: "Write the twoif tests as CSV"},
		&cli.StringFlag{Name: "write-email-to-file", Usage: "Write the HTML report"},
		&cli.StringFlag{Name: "format", Usage: "Output format: auto, terminal, llm, json, html"},
		&cli.StringFlag{Name: "theme", Usage: "Theme: default, cdash, mono"},
	}
}

// loadConfig layers the flags over config.Load and validates the result.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, &errors.ExitCodeError{Err: err, ExitCode: 2}
	}
	strs := []struct {
		flag string
		dst  *string
	}{
		{"cdash-site-url", &cfg.SiteURL},
		{"cdash-project-name", &cfg.ProjectName},
		{"build-set-name", &cfg.BuildSetName},
		{"cdash-builds-filters", &cfg.BuildsFilters},
		{"cdash-nonpassed-tests-filters", &cfg.NonpassingTestsFilters},
		{"cdash-queries-cache-dir", &cfg.CacheDir},
		{"expected-builds-file", &cfg.ExpectedBuildsFile},
		{"tests-with-issue-trackers-file", &cfg.TrackedTestsFile},
		{"format", &cfg.Format},
		{"theme", &cfg.Theme},
	}
	for _, s := range strs {
		if cmd.IsSet(s.flag) {
			*s.dst = cmd.String(s.flag)
		}
	}
	if cmd.IsSet("limit-test-history-days") {
		cfg.HistoryDays = int(cmd.Int("limit-test-history-days"))
	}
	if cmd.IsSet("limit-table-rows") {
		cfg.LimitTableRows = int(cmd.Int("limit-table-rows"))
	}
	if cmd.IsSet("time-tolerance") {
		cfg.TimeTolerance = cmd.Float("time-tolerance")
	}
	if err := cfg.Validate(); err != nil {
		return nil, &errors.ExitCodeError{Err: err, ExitCode: 2}
	}
	return cfg, nil
}

func (a *app) runReport(ctx context.Context, cmd *cli.Command, cfg *config.Config, log *logrus.Logger) *report.Result {
	opts := cfg.ReportOptions(cmd.String("date"))
	opts.UseCachedData = cmd.Bool("use-cached-cdash-data")
	opts.TwoifFile = cmd.String("write-failing-tests-without-issue-trackers-to-file")
	return report.New(opts, a.fetcher, log).Run(ctx)
}

func (a *app) analyze(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format := resolveFormat(cfg.Format, a.stdout)
	theme := selectTheme(cfg.Theme)
	renderer, ok := render.ByFormat(format, theme, termWidth(a.stdout))
	if !ok {
		return usageError("unknown format %q", cfg.Format)
	}

	// Narration moves to stderr when stdout carries a machine-readable report.
	narration := a.stdout
	if format == "json" || format == "html" {
		narration = a.stderr
	}
	log := logging.New(narration, cmd.Bool("print-details"))

	res := a.runReport(ctx, cmd, cfg, log)
	patterns := mapper.FromResult(res)

	if path := cmd.String("write-email-to-file"); path != "" {
		log.Infof("\nWriting HTML file '%s' ...", path)
		if err := os.WriteFile(path, []byte(render.NewHTML().Render(patterns)), 0o644); err != nil {
			return &errors.ExitCodeError{Err: fmt.Errorf("writing %s: %w", path, err), ExitCode: 1}
		}
	}

	if narration == a.stdout {
		fmt.Fprintln(a.stdout)
	}
	fmt.Fprint(a.stdout, renderer.Render(patterns))
	a.code = res.ExitCode()
	return nil
}

func (a *app) browse(ctx context.Context, cmd *cli.Command) error {
	if !isTTYWriter(a.stdout) {
		return usageError("browse needs a terminal; use analyze --format=llm when piping")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	res := a.runReport(ctx, cmd, cfg, logging.Discard())
	sections := browse.Sections(mapper.FromResult(res))
	if err := browse.Run(ctx, sections, selectTheme(cfg.Theme), a.stdin, a.stdout); err != nil {
		return &errors.ExitCodeError{Err: err, ExitCode: 1}
	}
	fmt.Fprintln(a.stdout, res.SummaryLine())
	a.code = res.ExitCode()
	return nil
}

func (a *app) normalize(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return usageError("normalize: expected exactly one argument: a cached payload file")
	}
	path := cmd.Args().First()
	data, err := os.ReadFile(path)
	if err != nil {
		return usageError("normalize: %w", err)
	}

	kind := detect.Sniff(data)
	if kind == detect.Unknown {
		return usageError("normalize: %s is not a CDash builds or tests payload", path)
	}
	payload, err := cdash.DecodePayload(data)
	if err != nil {
		return usageError("normalize: %w", err)
	}
	var records []record.Record
	switch kind {
	case detect.Builds:
		records, err = cdash.FlattenBuilds(payload)
	case detect.Tests:
		records, err = cdash.FlattenTests(payload)
	}
	if err != nil {
		return &errors.ExitCodeError{Err: fmt.Errorf("normalize: %w", err), ExitCode: 1}
	}

	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &errors.ExitCodeError{Err: fmt.Errorf("normalize: %w", err), ExitCode: 1}
	}
	fmt.Fprintf(a.stdout, "%s\n", out)
	return nil
}

func selectTheme(name string) render.Theme {
	if os.Getenv("NO_COLOR") != "" {
		return render.MonoTheme()
	}
	return render.ThemeByName(name)
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termWidth returns the terminal width of w, defaulting to 80.
func termWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			return tw
		}
	}
	return 80
}

func resolveFormat(format string, w io.Writer) string {
	if format != "auto" {
		return format
	}
	if isTTYWriter(w) {
		return "terminal"
	}
	return "llm"
}
