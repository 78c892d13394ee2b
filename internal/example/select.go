package example

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"

	"github.com/mark3labs/oas2rst/internal/spec"
)

// Candidate is one displayable example.
type Candidate struct {
	ContentType string
	// Name is the key in the media type's examples map; empty when the
	// example came from `example`, `schema.example` or synthesis.
	Name    string
	Summary string
	// Text is the display form of the payload, see Format.
	Text string
}

// Selector picks the example to show for a content map.
type Selector struct {
	// Preference lists content types to visit first, in order.
	Preference []string
	// FromSchemas enables synthesizing examples from schemas.
	FromSchemas bool
	// Request selects request context, which omits readOnly fields.
	Request     bool
	Fetcher     Fetcher
	Synthesizer Synthesizer
	Logger      *slog.Logger
}

// Examples yields at most one candidate per content type, visiting content
// types in preference order. Per content type the first resolvable entry of
// `examples` wins, then `example`, then `schema.example`, then a synthesized
// value. External values are fetched only when the sequence reaches them.
//
// Synthesis errors are yielded and end the sequence.
func (s *Selector) Examples(ctx context.Context, content *spec.Map[*spec.MediaType]) iter.Seq2[Candidate, error] {
	return func(yield func(Candidate, error) bool) {
		for _, contentType := range s.order(content) {
			mt, _ := content.Get(contentType)
			if mt == nil {
				continue
			}
			c, ok, err := s.resolve(ctx, contentType, mt)
			if err != nil {
				yield(Candidate{}, err)
				return
			}
			if !ok {
				continue
			}
			if !yield(c, nil) {
				return
			}
		}
	}
}

// First returns the first candidate of Examples.
func (s *Selector) First(ctx context.Context, content *spec.Map[*spec.MediaType]) (Candidate, bool, error) {
	for c, err := range s.Examples(ctx, content) {
		if err != nil {
			return Candidate{}, false, err
		}
		return c, true, nil
	}
	return Candidate{}, false, nil
}

// order returns content types stable-sorted by preference index; types not
// listed keep their document order after the listed ones.
func (s *Selector) order(content *spec.Map[*spec.MediaType]) []string {
	keys := content.Keys()
	if len(s.Preference) == 0 {
		return keys
	}
	rank := make(map[string]int, len(s.Preference))
	for i, ct := range s.Preference {
		if _, dup := rank[ct]; !dup {
			rank[ct] = i
		}
	}
	indexOf := func(ct string) int {
		if i, ok := rank[ct]; ok {
			return i
		}
		return len(s.Preference)
	}
	slices.SortStableFunc(keys, func(a, b string) int { return cmp.Compare(indexOf(a), indexOf(b)) })
	return keys
}

func (s *Selector) resolve(ctx context.Context, contentType string, mt *spec.MediaType) (Candidate, bool, error) {
	if mt.Examples.Len() > 0 {
		return s.fromExamples(ctx, contentType, mt.Examples)
	}
	if mt.Example != nil {
		return s.candidate(contentType, "", "", mt.Example)
	}
	if mt.Schema != nil && mt.Schema.Example != nil {
		return s.candidate(contentType, "", "", mt.Schema.Example)
	}
	if s.FromSchemas && mt.Schema != nil {
		sample, err := s.Synthesizer.Synthesize(mt.Schema, s.Request)
		if err != nil {
			return Candidate{}, false, fmt.Errorf("synthesize %s example: %w", contentType, err)
		}
		v, ok := sample.Get()
		if !ok {
			return Candidate{}, false, nil
		}
		return s.candidate(contentType, "", "", v)
	}
	return Candidate{}, false, nil
}

// fromExamples returns the first entry that resolves. Entries whose external
// value cannot be retrieved are skipped with a warning.
func (s *Selector) fromExamples(ctx context.Context, contentType string, examples *spec.Map[*spec.Example]) (Candidate, bool, error) {
	logger := s.logger()
	for name, ex := range examples.All() {
		if ex == nil {
			continue
		}
		if ex.ExternalValue != "" {
			if err := checkScheme(ex.ExternalValue); err != nil {
				logger.Warn("unsupported protocol in externalValue", "content_type", contentType, "example", name, "url", ex.ExternalValue)
				continue
			}
			if s.Fetcher == nil {
				logger.Warn("cannot retrieve example: no fetcher configured", "content_type", contentType, "example", name, "url", ex.ExternalValue)
				continue
			}
			text, err := s.Fetcher.Fetch(ctx, ex.ExternalValue)
			if err != nil {
				logger.Warn("cannot retrieve example", "content_type", contentType, "example", name, "url", ex.ExternalValue, "error", err)
				continue
			}
			return Candidate{ContentType: contentType, Name: name, Summary: ex.Summary, Text: text}, true, nil
		}
		if ex.Value == nil {
			logger.Warn("example has neither value nor externalValue", "content_type", contentType, "example", name)
			continue
		}
		return s.candidate(contentType, name, ex.Summary, ex.Value)
	}
	return Candidate{}, false, nil
}

func (s *Selector) candidate(contentType, name, summary string, value any) (Candidate, bool, error) {
	text, err := Format(value)
	if err != nil {
		return Candidate{}, false, fmt.Errorf("format %s example: %w", contentType, err)
	}
	return Candidate{ContentType: contentType, Name: name, Summary: summary, Text: text}, true, nil
}

func (s *Selector) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
