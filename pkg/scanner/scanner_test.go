package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resmv/resmv/pkg/dependency"
	"github.com/resmv/resmv/pkg/restype"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestScanExtractionRules(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		expected []dependency.Dependency
	}{
		{
			name:    "code_usage",
			file:    "src/main/java/app/Main.kt",
			content: "val title = getString(R.string.app_name)\nsetImage(R.drawable.ic_star)\n",
			expected: []dependency.Dependency{
				dependency.New(restype.TypeString, "app_name"),
				dependency.New(restype.TypeDrawable, "ic_star"),
			},
		},
		{
			name:    "code_usage_unknown_type_dropped",
			file:    "src/main/java/app/Main.kt",
			content: "import java.util.List\nval x = widget.thing\n",
		},
		{
			name:    "markup_usage",
			file:    "src/main/res/layout/screen.xml",
			content: "<ImageView android:src=\"@drawable/ic_star\" style=\"@style/My.Widget\"/>\n",
			expected: []dependency.Dependency{
				dependency.New(restype.TypeDrawable, "ic_star"),
				dependency.New(restype.TypeStyle, "My_Widget"),
			},
		},
		{
			name:    "markup_dots_normalized",
			file:    "src/main/res/layout/screen.xml",
			content: "<View style=\"@style/Widget.Button\"/>\n",
			expected: []dependency.Dependency{
				dependency.New(restype.TypeStyle, "Widget_Button"),
			},
		},
		{
			name:    "style_parent",
			file:    "src/main/res/values/styles.xml",
			content: "<style name=\"Mine\" parent=\"Widget.Button\"/>\n",
			expected: []dependency.Dependency{
				dependency.New(restype.TypeStyle, "Widget_Button"),
			},
		},
		{
			name:    "databinding_import",
			file:    "src/main/java/app/MainActivity.kt",
			content: "import com.example.app.databinding.MainActivityBinding\n",
			expected: []dependency.Dependency{
				dependency.New(restype.TypeLayout, "main_activity"),
			},
		},
		{
			name:    "ineligible_extension_skipped",
			file:    "src/main/assets/notes.txt",
			content: "@drawable/ic_star\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, root, tt.file, tt.content)

			deps, err := Scan(testContext(t), root)
			require.NoError(t, err)

			assert.Equal(t, len(tt.expected), deps.Len(), "got %v", deps)
			for _, want := range tt.expected {
				assert.True(t, deps.Contains(want), "missing %s in %v", want, deps)
			}
		})
	}
}

func TestScanMissingSrcIsEmpty(t *testing.T) {
	deps, err := Scan(testContext(t), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, deps.Len())
}

func TestScanUnionsAcrossFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/main/java/A.kt", "R.drawable.ic_a\n")
	writeFile(t, root, "src/main/res/layout/b.xml", "<View android:background=\"@drawable/ic_b\"/>\n")

	deps, err := Scan(testContext(t), root)
	require.NoError(t, err)
	assert.Equal(t, 2, deps.Len())
	assert.True(t, deps.Contains(dependency.New(restype.TypeDrawable, "ic_a")))
	assert.True(t, deps.Contains(dependency.New(restype.TypeDrawable, "ic_b")))
}

func TestPascalToSnake(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{name: "two_words", in: "MainActivity", expected: "main_activity"},
		{name: "single_word", in: "Screen", expected: "screen"},
		{name: "three_words", in: "ItemDetailRow", expected: "item_detail_row"},
		{name: "digits_kept", in: "Screen2Detail", expected: "screen2_detail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, pascalToSnake(tt.in))
		})
	}
}
