package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFprint(t *testing.T) {
	Version, GitCommit, BuildOS, BuildArch = "", "", "", ""

	var buf bytes.Buffer
	Fprint(&buf)
	assert.Equal(t, "Trellis version dev\n", buf.String())

	Version = "v1.2.0"
	GitCommit = "0123456789abcdef"
	BuildOS, BuildArch = "linux", "amd64"
	t.Cleanup(func() { Version, GitCommit, BuildOS, BuildArch = "", "", "", "" })

	buf.Reset()
	Fprint(&buf)
	assert.Contains(t, buf.String(), "Trellis version v1.2.0")
	assert.Contains(t, buf.String(), "Git commit: 0123456")
	assert.Contains(t, buf.String(), "Built for: linux/amd64")
}
