package operation

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resmv/resmv/pkg/restype"
	"github.com/resmv/resmv/pkg/status"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func testReporter() *status.Reporter {
	return status.New(io.Discard)
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func fileExists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	require.True(t, os.IsNotExist(err))
	return false
}

func TestNewMoveConfigErrors(t *testing.T) {
	tests := []struct {
		name          string
		opts          MoveOptions
		expectedError string
	}{
		{
			name:          "no_source",
			opts:          MoveOptions{Destinations: []string{"a"}, Reporter: testReporter()},
			expectedError: "source directory is required",
		},
		{
			name:          "no_destinations",
			opts:          MoveOptions{Source: "s", Reporter: testReporter()},
			expectedError: "at least one destination is required",
		},
		{
			name:          "no_reporter",
			opts:          MoveOptions{Source: "s", Destinations: []string{"a"}},
			expectedError: "reporter is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMove(tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

func TestMoveRelocatesDrawableWantedByOneDestination(t *testing.T) {
	base := t.TempDir()
	source := filepath.Join(base, "source")
	destA := filepath.Join(base, "a")

	writeFile(t, source, "src/main/res/drawable/ic_star.xml", "<vector/>")
	writeFile(t, destA, "src/main/res/layout/screen.xml",
		"<ImageView android:src=\"@drawable/ic_star\"/>\n")

	filter, err := restype.FromInclude([]string{"drawable"})
	require.NoError(t, err)

	op, err := NewMove(MoveOptions{
		Source:       source,
		Destinations: []string{destA},
		Filter:       filter,
		MaxRounds:    10,
		Reporter:     testReporter(),
	})
	require.NoError(t, err)

	moved, err := op.Run(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	// Conservation: exactly one location afterwards.
	assert.False(t, fileExists(t, filepath.Join(source, "src/main/res/drawable/ic_star.xml")))
	assert.True(t, fileExists(t, filepath.Join(destA, "src/main/res/drawable/ic_star.xml")))
}

func TestMoveConflictExclusion(t *testing.T) {
	base := t.TempDir()
	source := filepath.Join(base, "source")
	destA := filepath.Join(base, "a")
	destB := filepath.Join(base, "b")

	writeFile(t, source, "src/main/res/drawable/ic_star.xml", "<vector/>")
	writeFile(t, destA, "src/main/res/layout/a.xml", "<View android:bg=\"@drawable/ic_star\"/>\n")
	writeFile(t, destB, "src/main/res/layout/b.xml", "<View android:bg=\"@drawable/ic_star\"/>\n")

	op, err := NewMove(MoveOptions{
		Source:       source,
		Destinations: []string{destA, destB},
		Reporter:     testReporter(),
	})
	require.NoError(t, err)

	moved, err := op.Run(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, 0, moved, "a resource wanted by two destinations moves to none of them")
	assert.True(t, fileExists(t, filepath.Join(source, "src/main/res/drawable/ic_star.xml")))
}

func TestMoveProtectionInvariant(t *testing.T) {
	base := t.TempDir()
	source := filepath.Join(base, "source")
	destA := filepath.Join(base, "a")
	guard := filepath.Join(base, "legacy")

	writeFile(t, source, "src/main/res/drawable/ic_star.xml", "<vector/>")
	writeFile(t, destA, "src/main/res/layout/a.xml", "<View android:bg=\"@drawable/ic_star\"/>\n")
	writeFile(t, guard, "src/main/java/Legacy.kt", "val d = R.drawable.ic_star\n")

	op, err := NewMove(MoveOptions{
		Source:       source,
		Destinations: []string{destA},
		Protected:    []string{guard},
		Reporter:     testReporter(),
	})
	require.NoError(t, err)

	moved, err := op.Run(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, 0, moved, "a resource referenced by a protected module is never moved")
	assert.True(t, fileExists(t, filepath.Join(source, "src/main/res/drawable/ic_star.xml")))
}

func TestMoveSourceSelfReferenceBlocks(t *testing.T) {
	base := t.TempDir()
	source := filepath.Join(base, "source")
	destA := filepath.Join(base, "a")

	writeFile(t, source, "src/main/res/drawable/ic_star.xml", "<vector/>")
	writeFile(t, source, "src/main/java/Own.kt", "R.drawable.ic_star\n")
	writeFile(t, destA, "src/main/res/layout/a.xml", "<View android:bg=\"@drawable/ic_star\"/>\n")

	op, err := NewMove(MoveOptions{
		Source:       source,
		Destinations: []string{destA},
		Reporter:     testReporter(),
	})
	require.NoError(t, err)

	moved, err := op.Run(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, 0, moved)
}

func TestMoveStyleByParentReference(t *testing.T) {
	base := t.TempDir()
	source := filepath.Join(base, "source")
	destA := filepath.Join(base, "a")
	destB := filepath.Join(base, "b")

	writeFile(t, source, "src/main/res/values/styles.xml",
		"<resources>\n    <style name=\"Widget.Button\">\n        <item name=\"android:textSize\">12sp</item>\n    </style>\n</resources>\n")
	writeFile(t, destA, "src/main/res/values/styles.xml",
		"<resources>\n    <style name=\"A.Button\" parent=\"Widget.Button\"/>\n</resources>\n")
	writeFile(t, destB, "src/main/java/B.kt", "// no style references\n")

	op, err := NewMove(MoveOptions{
		Source:       source,
		Destinations: []string{destA, destB},
		Reporter:     testReporter(),
	})
	require.NoError(t, err)

	moved, err := op.Run(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	// Emptied source container is gone; A holds the style now.
	assert.False(t, fileExists(t, filepath.Join(source, "src/main/res/values/styles.xml")))
	data, err := os.ReadFile(filepath.Join(destA, "src/main/res/values/styles.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `<style name="Widget.Button">`)
	assert.Contains(t, string(data), `<style name="A.Button" parent="Widget.Button"/>`)
}

func TestMoveCascadesToFixpoint(t *testing.T) {
	base := t.TempDir()
	source := filepath.Join(base, "source")
	destA := filepath.Join(base, "a")

	// Moving the layout exposes the drawable it names: only a fresh scan of
	// the mutated tree sees that A now references ic_inner.
	writeFile(t, source, "src/main/res/layout/detail.xml",
		"<ImageView android:src=\"@drawable/ic_inner\"/>\n")
	writeFile(t, source, "src/main/res/drawable/ic_inner.xml", "<vector/>")
	writeFile(t, destA, "src/main/java/Screen.kt", "setContentView(R.layout.detail)\n")

	op, err := NewMove(MoveOptions{
		Source:       source,
		Destinations: []string{destA},
		Reporter:     testReporter(),
	})
	require.NoError(t, err)

	moved, err := op.Run(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	assert.True(t, fileExists(t, filepath.Join(destA, "src/main/res/layout/detail.xml")))
	assert.True(t, fileExists(t, filepath.Join(destA, "src/main/res/drawable/ic_inner.xml")))
	assert.False(t, fileExists(t, filepath.Join(source, "src/main/res/drawable/ic_inner.xml")))
}

func TestMoveHonorsTypeFilter(t *testing.T) {
	base := t.TempDir()
	source := filepath.Join(base, "source")
	destA := filepath.Join(base, "a")

	writeFile(t, source, "src/main/res/drawable/ic_star.xml", "<vector/>")
	writeFile(t, destA, "src/main/res/layout/a.xml", "<View android:bg=\"@drawable/ic_star\"/>\n")

	filter, err := restype.FromInclude([]string{"layout"})
	require.NoError(t, err)

	op, err := NewMove(MoveOptions{
		Source:       source,
		Destinations: []string{destA},
		Filter:       filter,
		Reporter:     testReporter(),
	})
	require.NoError(t, err)

	moved, err := op.Run(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, 0, moved, "drawable is outside the layout-only filter")
}

func TestMoveQualifierVariantsTravelTogether(t *testing.T) {
	base := t.TempDir()
	source := filepath.Join(base, "source")
	destA := filepath.Join(base, "a")

	writeFile(t, source, "src/main/res/drawable/ic_star.xml", "<vector/>")
	writeFile(t, source, "src/main/res/drawable-hdpi/ic_star.9.png", "png")
	writeFile(t, destA, "src/main/res/layout/a.xml", "<View android:bg=\"@drawable/ic_star\"/>\n")

	op, err := NewMove(MoveOptions{
		Source:       source,
		Destinations: []string{destA},
		Reporter:     testReporter(),
	})
	require.NoError(t, err)

	moved, err := op.Run(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, 2, moved)
	assert.True(t, fileExists(t, filepath.Join(destA, "src/main/res/drawable/ic_star.xml")))
	assert.True(t, fileExists(t, filepath.Join(destA, "src/main/res/drawable-hdpi/ic_star.9.png")))
}
