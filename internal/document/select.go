package document

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/mark3labs/oas2rst/internal/spec"
)

var (
	// ErrUndefinedPaths is returned when explicitly requested paths are not
	// in the document.
	ErrUndefinedPaths = errors.New("paths are not defined in the document")
	// ErrInvalidPattern is returned for include or exclude patterns that do
	// not compile.
	ErrInvalidPattern = errors.New("invalid path pattern")
	// ErrConflictingSelection is returned when both explicit paths and
	// include patterns are given.
	ErrConflictingSelection = errors.New("paths and include are mutually exclusive")
)

// stage narrows an ordered list of endpoints.
type stage func(endpoints []string) ([]string, error)

// selectPaths runs the selection pipeline over the document's paths: explicit
// paths or include patterns first, exclude patterns last.
func selectPaths(paths *spec.Map[*spec.PathItem], opts Options) ([]string, error) {
	stages, err := pipeline(paths, opts)
	if err != nil {
		return nil, err
	}
	endpoints := paths.Keys()
	for _, s := range stages {
		if endpoints, err = s(endpoints); err != nil {
			return nil, err
		}
	}
	return endpoints, nil
}

func pipeline(paths *spec.Map[*spec.PathItem], opts Options) ([]stage, error) {
	if len(opts.Paths) > 0 && len(opts.Include) > 0 {
		return nil, ErrConflictingSelection
	}
	var stages []stage
	switch {
	case len(opts.Paths) > 0:
		stages = append(stages, explicit(paths, opts.Paths))
	case len(opts.Include) > 0:
		patterns, err := compile(opts.Include)
		if err != nil {
			return nil, err
		}
		stages = append(stages, keep(patterns))
	}
	if len(opts.Exclude) > 0 {
		patterns, err := compile(opts.Exclude)
		if err != nil {
			return nil, err
		}
		stages = append(stages, drop(patterns))
	}
	return stages, nil
}

// explicit replaces the selection with the requested paths in the order
// given. Every requested path must exist.
func explicit(paths *spec.Map[*spec.PathItem], requested []string) stage {
	return func([]string) ([]string, error) {
		requested := lo.Uniq(requested)
		missing := lo.Filter(requested, func(p string, _ int) bool { return !paths.Has(p) })
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrUndefinedPaths, strings.Join(missing, ", "))
		}
		return requested, nil
	}
}

func keep(patterns []*regexp.Regexp) stage {
	return func(endpoints []string) ([]string, error) {
		return lo.Filter(endpoints, func(p string, _ int) bool { return matchAny(patterns, p) }), nil
	}
}

func drop(patterns []*regexp.Regexp) stage {
	return func(endpoints []string) ([]string, error) {
		return lo.Reject(endpoints, func(p string, _ int) bool { return matchAny(patterns, p) }), nil
	}
}

// compile anchors every pattern at the start of the path.
func compile(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(`^(?:` + p + `)`)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	return slices.ContainsFunc(patterns, func(re *regexp.Regexp) bool { return re.MatchString(s) })
}
