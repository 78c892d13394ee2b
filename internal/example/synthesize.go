package example

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/oas2rst/internal/spec"
)

var (
	// ErrMissingItems is returned when an array schema does not declare items.
	ErrMissingItems = errors.New("array schema has no items")
	// ErrUnknownType is returned when no sample value exists for a schema type.
	ErrUnknownType = errors.New("no sample value for schema type")
)

// Sample is the outcome of synthesizing a schema: either a value or nothing,
// the latter for readOnly fields in request context.
type Sample struct {
	value   any
	present bool
}

// Value wraps v as a present sample.
func Value(v any) Sample { return Sample{value: v, present: true} }

// Omitted is the sample of a field that must be left out.
var Omitted = Sample{}

// Get returns the value and whether the sample is present.
func (s Sample) Get() (any, bool) { return s.value, s.present }

// IsOmitted reports whether the field must be left out.
func (s Sample) IsOmitted() bool { return !s.present }

type typeFormat struct{ typ, format string }

// samples maps (type, format) to a sample value. An empty format is the
// fallback for formats that are not listed.
var samples = map[typeFormat]func(now time.Time) any{
	{"integer", "int32"}:    func(time.Time) any { return 1 },
	{"integer", "int64"}:    func(time.Time) any { return 1 },
	{"integer", ""}:         func(time.Time) any { return 1 },
	{"number", "float"}:     func(time.Time) any { return json.Number("1.0") },
	{"number", "double"}:    func(time.Time) any { return json.Number("1.0") },
	{"number", ""}:          func(time.Time) any { return json.Number("1.0") },
	{"boolean", ""}:         func(time.Time) any { return true },
	{"string", ""}:          func(time.Time) any { return "string" },
	{"string", "byte"}:      func(time.Time) any { return "c3RyaW5n" }, // base64("string")
	{"string", "binary"}:    func(time.Time) any { return "01010101" },
	{"string", "date"}:      func(now time.Time) any { return now.Format(time.DateOnly) },
	{"string", "date-time"}: func(now time.Time) any { return now.Format(time.RFC3339) },
	{"string", "password"}:  func(time.Time) any { return "********" },
	{"string", "email"}:     func(time.Time) any { return "name@example.com" },
	{"string", "zip-code"}:  func(time.Time) any { return "90210" },
	{"string", "uri"}:       func(time.Time) any { return "https://example.com" },
}

// Synthesizer builds representative values from schemas.
type Synthesizer struct {
	// Now supplies the clock for date and date-time samples; nil means time.Now.
	Now func() time.Time
}

// Synthesize builds a sample for schema using the current time.
func Synthesize(schema *spec.Schema, isRequest bool) (Sample, error) {
	return Synthesizer{}.Synthesize(schema, isRequest)
}

// Synthesize builds a sample for schema. In request context readOnly schemas
// are omitted.
//
// Resolution order is allOf (merged left to right), then the first oneOf
// branch, then the first enum value, then the schema type. A missing type
// means object.
func (s Synthesizer) Synthesize(schema *spec.Schema, isRequest bool) (Sample, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	b := builder{now: now(), isRequest: isRequest}
	return b.build(schema, "#")
}

type builder struct {
	now       time.Time
	isRequest bool
}

func (b builder) build(schema *spec.Schema, loc string) (Sample, error) {
	if schema == nil {
		schema = &spec.Schema{}
	}
	if b.isRequest && schema.IsReadOnly() {
		return Omitted, nil
	}

	switch {
	case len(schema.AllOf) > 0:
		return b.build(spec.MergeAllOf(schema), loc)
	case len(schema.OneOf) > 0:
		return b.build(schema.OneOf[0], loc+"/oneOf/0")
	case len(schema.Enum) > 0:
		return Value(schema.Enum[0]), nil
	}

	typ := schema.Type
	if typ == "" {
		typ = "object"
	}
	switch typ {
	case "array":
		return b.array(schema, loc)
	case "object":
		return b.object(schema, loc)
	}

	gen, ok := samples[typeFormat{typ, schema.Format}]
	if !ok {
		gen, ok = samples[typeFormat{typ, ""}]
	}
	if !ok {
		return Omitted, fmt.Errorf("%s: %w %q", loc, ErrUnknownType, typ)
	}
	return Value(gen(b.now)), nil
}

func (b builder) array(schema *spec.Schema, loc string) (Sample, error) {
	if schema.Items == nil {
		return Omitted, fmt.Errorf("%s: %w", loc, ErrMissingItems)
	}
	branches := []*spec.Schema{schema.Items}
	branchLoc := func(int) string { return loc + "/items" }
	// One element per oneOf branch so that every shape is shown.
	if len(schema.Items.OneOf) > 0 {
		branches = schema.Items.OneOf
		branchLoc = func(i int) string { return fmt.Sprintf("%s/items/oneOf/%d", loc, i) }
	}

	out := make([]any, 0, len(branches))
	for i, item := range branches {
		sample, err := b.build(item, branchLoc(i))
		if err != nil {
			return Omitted, err
		}
		if v, ok := sample.Get(); ok {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return Omitted, nil
	}
	return Value(out), nil
}

func (b builder) object(schema *spec.Schema, loc string) (Sample, error) {
	// An object declaring no properties has nothing readOnly and is kept.
	if b.isRequest && schema.Properties.Len() > 0 && allReadOnly(schema.Properties) {
		return Omitted, nil
	}
	out := spec.NewMap[any]()
	for name, prop := range schema.Properties.All() {
		sample, err := b.build(prop, loc+"/properties/"+name)
		if err != nil {
			return Omitted, err
		}
		if v, ok := sample.Get(); ok {
			out.Set(name, v)
		}
	}
	return Value(out), nil
}

func allReadOnly(props *spec.Map[*spec.Schema]) bool {
	for _, prop := range props.All() {
		if !prop.IsReadOnly() {
			return false
		}
	}
	return true
}
