package dependency

import (
	"testing"

	"github.com/resmv/resmv/pkg/restype"
	"github.com/stretchr/testify/assert"
)

func TestNewNormalizesDots(t *testing.T) {
	d := New(restype.TypeStyle, "Widget.Button")
	assert.Equal(t, "Widget_Button", d.Name)

	// Markup and code spellings of the same asset compare equal.
	other := New(restype.TypeStyle, "Widget_Button")
	assert.Equal(t, d, other)
}

func TestSetUniqueness(t *testing.T) {
	s := NewSet(
		New(restype.TypeDrawable, "ic_star"),
		New(restype.TypeDrawable, "ic_star"),
		New(restype.TypeString, "ic_star"),
	)
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains(New(restype.TypeDrawable, "ic_star")))
	assert.True(t, s.Contains(New(restype.TypeString, "ic_star")))
}

func TestSetIgnoresNoneType(t *testing.T) {
	s := NewSet()
	s.Add(Dependency{Type: restype.TypeNone, Name: "anything"})
	assert.Equal(t, 0, s.Len())
}

func TestSetOperations(t *testing.T) {
	a := NewSet(
		New(restype.TypeDrawable, "ic_a"),
		New(restype.TypeDrawable, "ic_b"),
	)
	b := NewSet(
		New(restype.TypeDrawable, "ic_b"),
		New(restype.TypeLayout, "screen"),
	)

	union := a.Union(b)
	assert.Equal(t, 3, union.Len())

	diff := a.Diff(b)
	assert.Equal(t, 1, diff.Len())
	assert.True(t, diff.Contains(New(restype.TypeDrawable, "ic_a")))

	// Inputs are untouched.
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 2, b.Len())

	a.Merge(b)
	assert.Equal(t, 3, a.Len())
}
