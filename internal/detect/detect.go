// Package detect sniffs a CDash JSON payload to determine its kind.
package detect

import (
	"encoding/json"
)

// Format represents a recognized payload kind.
type Format int

const (
	Unknown Format = iota
	Builds         // index.php payload: {"buildgroups": [{"builds": [...]}]}
	Tests          // queryTests.php payload: {"builds": [{"testname": ...}]}
)

func (f Format) String() string {
	switch f {
	case Builds:
		return "builds"
	case Tests:
		return "tests"
	default:
		return "unknown"
	}
}

// Sniff examines a payload and returns its kind.
func Sniff(data []byte) Format {
	for len(data) > 0 && (data[0] == ' ' || data[0] == '\t' || data[0] == '\n' || data[0] == '\r') {
		data = data[1:]
	}
	if len(data) == 0 || data[0] != '{' {
		return Unknown
	}

	var probe struct {
		BuildGroups []json.RawMessage `json:"buildgroups"`
		Builds      []json.RawMessage `json:"builds"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Unknown
	}
	if probe.BuildGroups != nil {
		return Builds
	}
	if probe.Builds != nil {
		return Tests
	}
	return Unknown
}
