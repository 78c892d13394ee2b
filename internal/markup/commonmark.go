package markup

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var commonmark = goldmark.New()

// headingUnderlines are the section adornments used per heading level.
var headingUnderlines = []string{"=", "-", "~", "^", "\"", "'"}

// CommonMark converts CommonMark text to reStructuredText.
func CommonMark(src string) string {
	source := []byte(src)
	doc := commonmark.Parser().Parse(text.NewReader(source))
	w := rstWriter{source: source}
	return w.blocks(doc)
}

type rstWriter struct {
	source []byte
}

func (w rstWriter) blocks(parent ast.Node) string {
	var parts []string
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if s := w.block(n); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (w rstWriter) block(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return w.inlines(n)
	case *ast.Heading:
		title := w.inlines(n)
		level := min(max(n.Level, 1), len(headingUnderlines))
		return title + "\n" + strings.Repeat(headingUnderlines[level-1], utf8.RuneCountInString(title))
	case *ast.ThematicBreak:
		return "----"
	case *ast.FencedCodeBlock:
		header := "::"
		if lang := n.Language(w.source); len(lang) > 0 {
			header = ".. code-block:: " + string(lang)
		}
		return header + "\n\n" + indent(w.lines(n), "   ")
	case *ast.CodeBlock:
		return "::\n\n" + indent(w.lines(n), "   ")
	case *ast.HTMLBlock:
		return ".. raw:: html\n\n" + indent(w.lines(n), "   ")
	case *ast.Blockquote:
		return indent(w.blocks(n), "   ")
	case *ast.List:
		return w.list(n)
	}
	return w.blocks(n)
}

func (w rstWriter) list(l *ast.List) string {
	var items []string
	i := 0
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "* "
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d. ", l.Start+i)
		}
		body := indent(w.blocks(item), strings.Repeat(" ", len(marker)))
		items = append(items, marker+strings.TrimLeft(body, " "))
		i++
	}
	sep := "\n\n"
	if l.IsTight {
		sep = "\n"
	}
	return strings.Join(items, sep)
}

func (w rstWriter) lines(n ast.Node) string {
	var b bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(w.source))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (w rstWriter) inlines(parent ast.Node) string {
	var b strings.Builder
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Text:
			b.Write(n.Segment.Value(w.source))
			if n.SoftLineBreak() || n.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(n.Value)
		case *ast.CodeSpan:
			b.WriteString("``" + w.inlines(n) + "``")
		case *ast.Emphasis:
			mark := "*"
			if n.Level >= 2 {
				mark = "**"
			}
			b.WriteString(mark + w.inlines(n) + mark)
		case *ast.Link:
			label, dest := w.inlines(n), string(n.Destination)
			if label == "" || label == dest {
				b.WriteString(dest)
			} else {
				fmt.Fprintf(&b, "`%s <%s>`_", label, dest)
			}
		case *ast.AutoLink:
			b.Write(n.URL(w.source))
		case *ast.Image:
			b.WriteString(w.inlines(n))
		case *ast.RawHTML:
			for i := 0; i < n.Segments.Len(); i++ {
				seg := n.Segments.At(i)
				b.Write(seg.Value(w.source))
			}
		default:
			b.WriteString(w.inlines(n))
		}
	}
	return b.String()
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
