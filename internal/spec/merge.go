package spec

// MergeSchemas deep-merges overlay onto base and returns a new schema.
// Keys set in overlay win; properties merge per name and items merge
// recursively; lists (enum, required, allOf, oneOf, anyOf) are replaced.
// Object-valued examples merge key-wise. Neither input is modified.
func MergeSchemas(base, overlay *Schema) *Schema {
	switch {
	case base == nil && overlay == nil:
		return nil
	case base == nil:
		return cloneSchema(overlay)
	case overlay == nil:
		return cloneSchema(base)
	}

	out := cloneSchema(base)
	if overlay.Type != "" {
		out.Type = overlay.Type
	}
	if overlay.Format != "" {
		out.Format = overlay.Format
	}
	if overlay.Description != "" {
		out.Description = overlay.Description
	}
	if overlay.Properties != nil {
		merged := out.Properties.Clone()
		if merged == nil {
			merged = NewMap[*Schema]()
		}
		for name, prop := range overlay.Properties.All() {
			existing, _ := merged.Get(name)
			merged.Set(name, MergeSchemas(existing, prop))
		}
		out.Properties = merged
	}
	if overlay.Items != nil {
		out.Items = MergeSchemas(out.Items, overlay.Items)
	}
	if overlay.Required != nil {
		out.Required = append([]string(nil), overlay.Required...)
	}
	if overlay.Enum != nil {
		out.Enum = append([]any(nil), overlay.Enum...)
	}
	if overlay.AllOf != nil {
		out.AllOf = append([]*Schema(nil), overlay.AllOf...)
	}
	if overlay.OneOf != nil {
		out.OneOf = append([]*Schema(nil), overlay.OneOf...)
	}
	if overlay.AnyOf != nil {
		out.AnyOf = append([]*Schema(nil), overlay.AnyOf...)
	}
	if overlay.ReadOnly != nil {
		v := *overlay.ReadOnly
		out.ReadOnly = &v
	}
	if overlay.WriteOnly != nil {
		v := *overlay.WriteOnly
		out.WriteOnly = &v
	}
	if overlay.Example != nil {
		out.Example = mergeValues(out.Example, overlay.Example)
	}
	return out
}

// MergeAllOf folds the allOf branches of s left to right. Keys declared
// next to allOf are not part of the result. A schema without allOf is
// returned unchanged.
func MergeAllOf(s *Schema) *Schema {
	if s == nil || len(s.AllOf) == 0 {
		return s
	}
	var merged *Schema
	for _, sub := range s.AllOf {
		merged = MergeSchemas(merged, sub)
	}
	if merged == nil {
		return &Schema{}
	}
	return merged
}

// Flatten resolves allOf at every level of s, including properties and
// items, so that the result carries its type information directly.
func Flatten(s *Schema) *Schema {
	if s == nil {
		return nil
	}
	for len(s.AllOf) > 0 {
		s = MergeAllOf(s)
	}
	if s.Properties == nil && s.Items == nil {
		return s
	}
	out := cloneSchema(s)
	if s.Properties != nil {
		props := NewMap[*Schema]()
		for name, prop := range s.Properties.All() {
			props.Set(name, Flatten(prop))
		}
		out.Properties = props
	}
	out.Items = Flatten(s.Items)
	return out
}

func cloneSchema(s *Schema) *Schema {
	out := *s
	out.Properties = s.Properties.Clone()
	return &out
}

func mergeValues(base, overlay any) any {
	b, ok1 := base.(*Object)
	o, ok2 := overlay.(*Object)
	if !ok1 || !ok2 {
		return overlay
	}
	out := b.Clone()
	for k, v := range o.All() {
		existing, _ := out.Get(k)
		out.Set(k, mergeValues(existing, v))
	}
	return out
}
