package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLines(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"one", []string{"one"}},
		{"one\ntwo\n", []string{"one", "two"}},
		{"one\r\ntwo\rthree", []string{"one", "two", "three"}},
		{"a\n\nb", []string{"a", "", "b"}},
		{"a\u2028b", []string{"a", "b"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitLines(tt.in), "input %q", tt.in)
	}
}

func TestIndentKeepsBlankLinesEmpty(t *testing.T) {
	t.Parallel()
	got, err := Collect(IndentBy(2, Of("a", "", "b")))
	require.NoError(t, err)
	assert.Equal(t, []string{"      a", "", "      b"}, got)
}

func TestConcatStopsAtFirstError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	reached := false
	seq := Concat(Of("a"), Indent(Fail(boom)), Lazy(func() Lines {
		reached = true
		return Of("b")
	}))
	got, err := Collect(seq)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a"}, got)
	assert.False(t, reached)
}

func TestSpaced(t *testing.T) {
	t.Parallel()
	got, err := Collect(Spaced(Of("a", "b")))
	require.NoError(t, err)
	assert.Equal(t, []string{"", "a", "b", ""}, got)

	got, err = Collect(Spaced(Of()))
	require.NoError(t, err)
	assert.Empty(t, got)

	boom := errors.New("boom")
	got, err = Collect(Spaced(Fail(boom)))
	require.ErrorIs(t, err, boom)
	assert.Empty(t, got)
}

func TestJoin(t *testing.T) {
	t.Parallel()
	out, err := Join(Of("a", "", "b"))
	require.NoError(t, err)
	assert.Equal(t, "a\n\nb\n", out)

	out, err = Join(Of())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestText(t *testing.T) {
	t.Parallel()
	got, err := Collect(Text("\n  first\nsecond  \n\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, got)
}
