// Package render turns normalized OpenAPI entities into reStructuredText
// lines using the sphinxcontrib-httpdomain directive vocabulary.
package render

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/mark3labs/oas2rst/internal/example"
	"github.com/mark3labs/oas2rst/internal/markup"
	"github.com/mark3labs/oas2rst/internal/spec"
)

// Options configures a Renderer.
type Options struct {
	// Markup converts descriptions; nil means markup.CommonMark.
	Markup markup.Converter
	// Examples enables response examples.
	Examples bool
	// Request enables request body examples.
	Request bool
	// Selector picks examples. Its Request flag is overridden per use.
	Selector *example.Selector
	Logger   *slog.Logger
}

// Renderer produces lines for operations and their parts. It holds no
// per-document state and may be reused.
type Renderer struct {
	convert  markup.Converter
	examples bool
	request  bool
	selector example.Selector
	logger   *slog.Logger
}

// New returns a Renderer for opts, defaulting to CommonMark and slog.Default.
func New(opts Options) *Renderer {
	r := &Renderer{
		convert:  opts.Markup,
		examples: opts.Examples,
		request:  opts.Request,
		logger:   opts.Logger,
	}
	if r.convert == nil {
		r.convert = markup.CommonMark
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if opts.Selector != nil {
		r.selector = *opts.Selector
	}
	if r.selector.Logger == nil {
		r.selector.Logger = r.logger
	}
	return r
}

// parameterKinds maps a parameter location to its httpdomain field name.
var parameterKinds = map[string]string{
	"path":   "param",
	"query":  "queryparam",
	"header": "reqheader",
}

// parameterOrder ranks locations for RenderParameters.
var parameterOrder = []string{"header", "path", "query", "cookie"}

// RenderPaths renders every operation of doc in path then method order, each
// followed by a blank line.
func (r *Renderer) RenderPaths(ctx context.Context, doc *spec.Document) Lines {
	return r.renderPathItems(ctx, doc.Paths)
}

func (r *Renderer) renderPathItems(ctx context.Context, paths *spec.Map[*spec.PathItem]) Lines {
	return func(yield func(string, error) bool) {
		for endpoint, item := range paths.All() {
			if item == nil {
				continue
			}
			for method, op := range item.Operations.All() {
				seq := Concat(r.RenderOperation(ctx, endpoint, method, op), Of(""))
				for line, err := range seq {
					if !yield(line, err) || err != nil {
						return
					}
				}
			}
		}
	}
}

// RenderOperation renders the http directive for one operation with its
// parameters, responses and callbacks nested one level below it.
func (r *Renderer) RenderOperation(ctx context.Context, endpoint, method string, op *spec.Operation) Lines {
	return Lazy(func() Lines {
		header := []string{fmt.Sprintf(".. http:%s:: %s", strings.ToLower(method), endpoint)}
		if op.Deprecated {
			header = append(header, indentUnit+":deprecated:")
		}
		header = append(header, "")
		if op.Summary != "" {
			header = append(header, indentUnit+"**"+op.Summary+"**", "")
		}

		parts := []Lines{Of(header...)}
		if desc := r.convert(op.Description); strings.TrimSpace(desc) != "" {
			parts = append(parts, Indent(Text(desc)), Of(""))
		}
		if r.request && op.RequestBody != nil {
			parts = append(parts, Indent(r.RenderRequestBody(ctx, endpoint, method, op.RequestBody)))
		}
		parts = append(parts,
			Indent(r.RenderParameters(op.Parameters)),
			Indent(r.RenderResponses(ctx, op.Responses)),
			Indent(r.RenderCallbacks(ctx, op.Callbacks)),
		)
		return Concat(parts...)
	})
}

// RenderParameters renders params ordered by location (header, path, query,
// cookie, then anything else), keeping declaration order within a location.
func (r *Renderer) RenderParameters(params []*spec.Parameter) Lines {
	return Lazy(func() Lines {
		sorted := slices.Clone(params)
		slices.SortStableFunc(sorted, func(a, b *spec.Parameter) int {
			return cmp.Compare(locationRank(a), locationRank(b))
		})
		seqs := make([]Lines, 0, len(sorted))
		for _, p := range sorted {
			if p != nil {
				seqs = append(seqs, r.RenderParameter(p))
			}
		}
		return Concat(seqs...)
	})
}

func locationRank(p *spec.Parameter) int {
	if p == nil {
		return len(parameterOrder)
	}
	if i := slices.Index(parameterOrder, strings.ToLower(p.In)); i >= 0 {
		return i
	}
	return len(parameterOrder)
}

// RenderParameter renders one parameter as a field with its description and
// a type field listing type, required and deprecated markers. Parameters in
// cookies or unknown locations are skipped with a warning.
func (r *Renderer) RenderParameter(p *spec.Parameter) Lines {
	return Lazy(func() Lines {
		kind, ok := parameterKinds[strings.ToLower(p.In)]
		if !ok {
			r.logger.Warn("parameter cannot be rendered", "name", p.Name, "in", p.In)
			return Of()
		}

		var markers []string
		if p.Schema != nil && p.Schema.Type != "" {
			typ := p.Schema.Type
			if p.Schema.Format != "" {
				typ += ":" + p.Schema.Format
			}
			markers = append(markers, typ)
		}
		if p.Required {
			markers = append(markers, "required")
		}
		if p.Deprecated {
			markers = append(markers, "deprecated")
		}

		parts := []Lines{
			Of(fmt.Sprintf(":%s %s:", kind, p.Name)),
			Indent(Text(r.convert(p.Description))),
		}
		if len(markers) > 0 {
			parts = append(parts, Of(fmt.Sprintf(":%stype %s: %s", kind, p.Name, strings.Join(markers, ", "))))
		}
		return Concat(parts...)
	})
}

// RenderResponses renders every response in declaration order.
func (r *Renderer) RenderResponses(ctx context.Context, responses *spec.Map[*spec.Response]) Lines {
	return func(yield func(string, error) bool) {
		for status, resp := range responses.All() {
			if resp == nil {
				continue
			}
			for line, err := range r.RenderResponse(ctx, status, resp) {
				if !yield(line, err) || err != nil {
					return
				}
			}
		}
	}
}

// RenderResponse renders a status code field with its description, the
// first selected example when examples are enabled, and response headers.
func (r *Renderer) RenderResponse(ctx context.Context, status string, resp *spec.Response) Lines {
	return Lazy(func() Lines {
		parts := []Lines{
			Of(":statuscode " + status + ":"),
			Indent(Text(r.convert(resp.Description))),
		}
		if r.examples && resp.Content.Len() > 0 {
			parts = append(parts, Indent(Spaced(r.RenderContent(ctx, resp.Content))))
		}
		for name, h := range resp.Headers.All() {
			parts = append(parts, Of(":resheader "+name+":"))
			if h != nil {
				parts = append(parts, Indent(Text(r.convert(h.Description))))
			}
		}
		return Concat(parts...)
	})
}

// RenderContent renders the first selected example of content as a literal
// block labelled with its content type. It renders nothing when no example
// is found.
func (r *Renderer) RenderContent(ctx context.Context, content *spec.Map[*spec.MediaType]) Lines {
	return r.renderContent(ctx, &r.selector, content)
}

func (r *Renderer) renderContent(ctx context.Context, sel *example.Selector, content *spec.Map[*spec.MediaType]) Lines {
	return Lazy(func() Lines {
		c, found, err := sel.First(ctx, content)
		if err != nil {
			return Fail(err)
		}
		if !found {
			return Of()
		}
		return Concat(
			Of(".. sourcecode:: http", "", indentUnit+"Content-Type: "+c.ContentType, ""),
			Indent(Of(splitLines(c.Text)...)),
		)
	})
}

// RenderRequestBody renders an example HTTP request for body. Examples are
// selected in request context, so readOnly fields are left out.
func (r *Renderer) RenderRequestBody(ctx context.Context, endpoint, method string, body *spec.RequestBody) Lines {
	return Lazy(func() Lines {
		sel := r.selector
		sel.Request = true
		c, found, err := sel.First(ctx, body.Content)
		if err != nil {
			return Fail(err)
		}
		if !found {
			return Of()
		}
		return Concat(
			Of(
				"**Example request:**",
				"",
				".. sourcecode:: http",
				"",
				fmt.Sprintf("%s%s %s HTTP/1.1", indentUnit, strings.ToUpper(method), endpoint),
				indentUnit+"Host: example.com",
				indentUnit+"Content-Type: "+c.ContentType,
				"",
			),
			Indent(Of(splitLines(c.Text)...)),
			Of(""),
		)
	})
}

// RenderCallbacks renders each callback as an admonition holding its
// operations, nested one level deeper.
func (r *Renderer) RenderCallbacks(ctx context.Context, callbacks *spec.Map[*spec.Callback]) Lines {
	return func(yield func(string, error) bool) {
		for name, cb := range callbacks.All() {
			seq := Of("", ".. admonition:: Callback: "+name, "")
			if cb != nil {
				seq = Concat(seq, Indent(r.renderPathItems(ctx, cb.Paths)))
			}
			for line, err := range seq {
				if !yield(line, err) || err != nil {
					return
				}
			}
		}
	}
}
