package cdash

import (
	"github.com/mitchellh/mapstructure"

	"github.com/dkoosis/cdashreport/pkg/record"
)

// UpdateSummary is the "update" phase of an index.php build.
type UpdateSummary struct {
	Errors int `mapstructure:"errors"`
}

// ConfigureSummary is the "configure" phase of an index.php build.
type ConfigureSummary struct {
	Error   int `mapstructure:"error"`
	Warning int `mapstructure:"warning"`
}

// CompilationSummary is the "compilation" phase of an index.php build.
type CompilationSummary struct {
	Error   int `mapstructure:"error"`
	Warning int `mapstructure:"warning"`
}

// TestSummary is the "test" phase of an index.php build.
type TestSummary struct {
	Fail   int `mapstructure:"fail"`
	NotRun int `mapstructure:"notrun"`
	Pass   int `mapstructure:"pass"`
}

// Phases is a typed view of a build's optional phase summaries. A nil
// field means the build did not report that phase, which is not the same as
// reporting it without failures.
type Phases struct {
	Update      *UpdateSummary      `mapstructure:"update"`
	Configure   *ConfigureSummary   `mapstructure:"configure"`
	Compilation *CompilationSummary `mapstructure:"compilation"`
	Test        *TestSummary        `mapstructure:"test"`
}

// PhasesOf decodes the phase summaries of a build record. Unknown fields are
// ignored. A phase that is present but does not decode is a *ParseError.
func PhasesOf(b record.Record) (Phases, error) {
	var (
		p   Phases
		err error
	)
	if p.Update, err = decodePhase[UpdateSummary](b, "update"); err != nil {
		return Phases{}, err
	}
	if p.Configure, err = decodePhase[ConfigureSummary](b, "configure"); err != nil {
		return Phases{}, err
	}
	if p.Compilation, err = decodePhase[CompilationSummary](b, "compilation"); err != nil {
		return Phases{}, err
	}
	if p.Test, err = decodePhase[TestSummary](b, "test"); err != nil {
		return Phases{}, err
	}
	return p, nil
}

func decodePhase[T any](b record.Record, phase string) (*T, error) {
	v, ok := b[phase]
	if !ok || v == nil {
		return nil, nil
	}
	bad := &ParseError{Field: phase, Value: record.Repr(v), Want: "a " + phase + " summary"}
	sub := b.Sub(phase)
	if sub == nil {
		return nil, bad
	}
	out := new(T)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(map[string]any(sub)); err != nil {
		return nil, bad
	}
	return out, nil
}

// BuildHasConfigureFailures reports configure errors. A build without a
// configure phase has none. Builds are expected to have passed through
// ExtendBuild, which rejects phases that do not decode.
func BuildHasConfigureFailures(b record.Record) bool {
	c, err := decodePhase[ConfigureSummary](b, "configure")
	return err == nil && c != nil && c.Error > 0
}

// BuildHasBuildFailures reports compilation errors. A build without a
// compilation phase has none.
func BuildHasBuildFailures(b record.Record) bool {
	c, err := decodePhase[CompilationSummary](b, "compilation")
	return err == nil && c != nil && c.Error > 0
}

// BuildHasTestResults reports whether the build carries a test phase.
func BuildHasTestResults(b record.Record) bool {
	return b.Sub("test") != nil
}

func IsTestPassed(t record.Record) bool { return t.Str("status") == StatusPassed }
func IsTestFailed(t record.Record) bool { return t.Str("status") == StatusFailed }
func IsTestNotRun(t record.Record) bool { return t.Str("status") == StatusNotRun }
