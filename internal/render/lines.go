package render

import (
	"iter"
	"strings"
	"unicode/utf8"
)

// Lines is a lazy, single-pass sequence of output lines. A non-nil error
// ends the sequence; consumers must stop at the first error.
type Lines = iter.Seq2[string, error]

// indentUnit is one level of nesting in the generated document.
const indentUnit = "   "

// Of yields the given lines.
func Of(lines ...string) Lines {
	return func(yield func(string, error) bool) {
		for _, line := range lines {
			if !yield(line, nil) {
				return
			}
		}
	}
}

// Text yields s split into lines. Surrounding whitespace is trimmed first,
// so blank text yields nothing.
func Text(s string) Lines {
	return Of(splitLines(strings.TrimSpace(s))...)
}

// Fail yields err and ends.
func Fail(err error) Lines {
	return func(yield func(string, error) bool) {
		yield("", err)
	}
}

// Concat yields every sequence in turn, stopping at the first error.
func Concat(seqs ...Lines) Lines {
	return func(yield func(string, error) bool) {
		for _, seq := range seqs {
			for line, err := range seq {
				if !yield(line, err) || err != nil {
					return
				}
			}
		}
	}
}

// Spaced surrounds seq with blank lines when it yields at least one line.
// A seq that fails before producing a line gets none.
func Spaced(seq Lines) Lines {
	return func(yield func(string, error) bool) {
		produced := false
		for line, err := range seq {
			if !produced && err == nil {
				if !yield("", nil) {
					return
				}
				produced = true
			}
			if !yield(line, err) || err != nil {
				return
			}
		}
		if produced {
			yield("", nil)
		}
	}
}

// Indent prefixes every non-empty line of seq with one nesting level.
func Indent(seq Lines) Lines {
	return IndentBy(1, seq)
}

// IndentBy prefixes every non-empty line of seq with levels nesting levels.
func IndentBy(levels int, seq Lines) Lines {
	prefix := strings.Repeat(indentUnit, levels)
	return func(yield func(string, error) bool) {
		for line, err := range seq {
			if err == nil && line != "" {
				line = prefix + line
			}
			if !yield(line, err) || err != nil {
				return
			}
		}
	}
}

// Lazy defers building a sequence until it is iterated.
func Lazy(build func() Lines) Lines {
	return func(yield func(string, error) bool) {
		build()(yield)
	}
}

// Collect drains seq into a slice.
func Collect(seq Lines) ([]string, error) {
	var out []string
	for line, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, line)
	}
	return out, nil
}

// Join drains seq and joins the lines with "\n", adding a trailing newline
// when any line was produced.
func Join(seq Lines) (string, error) {
	var b strings.Builder
	for line, err := range seq {
		if err != nil {
			return "", err
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// splitLines splits s at line boundaries without keeping them. A trailing
// line break does not produce an empty last line.
func splitLines(s string) []string {
	var out []string
	start, skipLF := 0, false
	for i, r := range s {
		if skipLF {
			skipLF = false
			if r == '\n' {
				start = i + 1
				continue
			}
		}
		if !isLineBreak(r) {
			continue
		}
		out = append(out, s[start:i])
		start = i + utf8.RuneLen(r)
		skipLF = r == '\r'
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}
