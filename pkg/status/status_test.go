package status

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestReporterIndentsByDepth(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	r.Resourcef(ctx, 0, "moved %s", "@drawable/ic_star")
	r.Resourcef(ctx, 2, "nested")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.False(t, strings.HasPrefix(lines[0], " "))
	assert.True(t, strings.HasPrefix(lines[1], "    "), "depth 2 indents four spaces, got %q", lines[1])
	assert.Contains(t, lines[0], "@drawable/ic_star")
}

func TestReporterWritesToConsole(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	r.Headerf(ctx, 0, "moving resources")
	r.Roundf(ctx, 1, "round %d: %d moved", 1, 3)
	r.Warningf(ctx, 1, "round limit hit")
	r.Summaryf(ctx, 0, "moved %d resources", 3)

	out := buf.String()
	assert.Contains(t, out, "moving resources")
	assert.Contains(t, out, "round 1: 3 moved")
	assert.Contains(t, out, "round limit hit")
	assert.Contains(t, out, "moved 3 resources")
}
