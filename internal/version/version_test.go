package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "cdashreport version dev\nCommit: unknown\nBuilt: unknown\n", String())
}
