// Package markup converts description text into reStructuredText.
package markup

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownMarkup is returned by Lookup for unregistered markup names.
var ErrUnknownMarkup = errors.New("unknown markup")

// Converter turns description text into reStructuredText. Line breaks in
// the input are preserved.
type Converter func(text string) string

var converters = map[string]Converter{
	"commonmark":       CommonMark,
	"restructuredtext": ReStructuredText,
}

// Lookup returns the converter registered under name.
func Lookup(name string) (Converter, error) {
	c, ok := converters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w %q (valid: %s)", ErrUnknownMarkup, name, strings.Join(Names(), ", "))
	}
	return c, nil
}

// Names lists registered markup names in sorted order.
func Names() []string {
	names := make([]string, 0, len(converters))
	for name := range converters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ReStructuredText returns text unchanged.
func ReStructuredText(text string) string { return text }
