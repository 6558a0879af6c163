package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{Task: "Importing posts", Out: &buf}
	r.Start(2)
	r.Update(1, "a.txt")
	r.Update(2, "b.txt")
	r.Finish()

	assert.Equal(t, "Importing posts: starting, 2 items\n[1/2] a.txt\n[2/2] b.txt\nImporting posts: complete\n", buf.String())
}

func TestCIReporterUnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{Task: "Syncing", Out: &buf}
	r.Start(-1)
	r.Update(3, "page 1")
	assert.Equal(t, "Syncing: starting\n[3] page 1\n", buf.String())
}

func TestNewReporterInCI(t *testing.T) {
	t.Setenv("CI", "true")
	_, ok := NewReporter("x").(*CIReporter)
	assert.True(t, ok)
}
