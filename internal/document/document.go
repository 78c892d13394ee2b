// Package document assembles the rendered document: it normalizes the
// input, selects paths, optionally groups operations by tag and renders them.
package document

import (
	"context"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/mark3labs/oas2rst/internal/render"
	"github.com/mark3labs/oas2rst/internal/spec"
)

// DefaultGroup is the heading of operations without tags.
const DefaultGroup = "default"

// Options selects and arranges the operations to render.
type Options struct {
	// Paths lists endpoints to render, in output order.
	Paths []string
	// Include keeps endpoints matching any pattern at their start.
	Include []string
	// Exclude drops endpoints matching any pattern at their start. It is
	// applied after Paths and Include.
	Exclude []string
	// Group buckets operations under headings named by their first tag.
	Group bool
	// Renderer renders operations; nil means render.New with defaults.
	Renderer *render.Renderer
}

type entry struct {
	endpoint string
	method   string
	op       *spec.Operation
}

// Build normalizes doc, applies the path selection and returns the lines of
// the whole document. Selection and configuration errors are returned
// immediately; rendering errors surface through the sequence.
func Build(ctx context.Context, doc *spec.Document, opts Options) (render.Lines, error) {
	doc, err := spec.Normalize(doc)
	if err != nil {
		return nil, err
	}
	endpoints, err := selectPaths(doc.Paths, opts)
	if err != nil {
		return nil, err
	}
	r := opts.Renderer
	if r == nil {
		r = render.New(render.Options{})
	}

	entries := collect(doc, endpoints)
	if !opts.Group {
		return r.RenderPaths(ctx, subset(doc, entries)), nil
	}

	groups := lo.GroupBy(entries, func(e entry) string {
		if len(e.op.Tags) == 0 {
			return ""
		}
		return e.op.Tags[0]
	})
	keys := lo.Keys(groups)
	slices.Sort(keys)

	seqs := make([]render.Lines, 0, 2*len(keys))
	for _, key := range keys {
		title := key
		if title == "" {
			title = DefaultGroup
		}
		seqs = append(seqs, heading(title), r.RenderPaths(ctx, subset(doc, groups[key])))
	}
	return render.Concat(seqs...), nil
}

func collect(doc *spec.Document, endpoints []string) []entry {
	var out []entry
	for _, endpoint := range endpoints {
		item, _ := doc.Paths.Get(endpoint)
		if item == nil {
			continue
		}
		for method, op := range item.Operations.All() {
			if op != nil {
				out = append(out, entry{endpoint: endpoint, method: method, op: op})
			}
		}
	}
	return out
}

// subset returns a document holding only the given operations, with paths
// in the order they first appear in entries.
func subset(doc *spec.Document, entries []entry) *spec.Document {
	paths := spec.NewMap[*spec.PathItem]()
	for _, e := range entries {
		item, ok := paths.Get(e.endpoint)
		if !ok {
			item = &spec.PathItem{Operations: spec.NewMap[*spec.Operation]()}
			paths.Set(e.endpoint, item)
		}
		item.Operations.Set(e.method, e.op)
	}
	return &spec.Document{OpenAPI: doc.OpenAPI, Info: doc.Info, Paths: paths}
}

func heading(title string) render.Lines {
	return render.Of(title, strings.Repeat("=", utf8.RuneCountInString(title)), "")
}
