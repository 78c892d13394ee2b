package spec

import (
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// preprocessV2ForCompatibility rewrites Swagger 2.0 operations that
// kin-openapi refuses to convert:
//   - several body parameters are merged into one body parameter whose schema
//     is an object with a property per original parameter;
//   - body parameters mixed with formData parameters become formData
//     parameters and the operation consumes multipart/form-data.
//
// The document is edited as a yaml.Node tree so key order survives. On error
// the original bytes are returned with modified=false.
func preprocessV2ForCompatibility(data []byte) ([]byte, bool, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return data, false, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return data, false, nil
	}
	paths := lookup(doc.Content[0], "paths")
	if paths == nil || paths.Kind != yaml.MappingNode {
		return data, false, nil
	}

	modified := false
	for _, item := range pairs(paths) {
		for method, op := range pairs(unalias(item)) {
			if !IsHttpMethod(strings.ToLower(method)) || op.Kind != yaml.MappingNode {
				continue
			}
			if rewriteV2Operation(op) {
				modified = true
			}
		}
	}
	if !modified {
		return data, false, nil
	}
	out, err := yaml.Marshal(&doc)
	if err != nil {
		return data, false, err
	}
	return out, true, nil
}

func rewriteV2Operation(op *yaml.Node) bool {
	params := lookup(op, "parameters")
	if params == nil || params.Kind != yaml.SequenceNode {
		return false
	}
	bodyCount, hasFormData := 0, false
	for _, p := range params.Content {
		switch strings.ToLower(scalarAt(p, "in")) {
		case "body":
			bodyCount++
		case "formdata":
			hasFormData = true
		}
	}
	switch {
	case bodyCount == 0:
		return false
	case hasFormData:
		for i, p := range params.Content {
			if strings.EqualFold(scalarAt(p, "in"), "body") {
				params.Content[i] = formDataFromBodyParam(p)
			}
		}
		consumes := lookup(op, "consumes")
		if consumes == nil {
			consumes = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			setKey(op, "consumes", consumes)
		}
		if consumes.Kind == yaml.SequenceNode && !slices.ContainsFunc(consumes.Content, func(n *yaml.Node) bool { return n.Value == "multipart/form-data" }) {
			consumes.Content = append(consumes.Content, scalarNode("multipart/form-data"))
		}
		return true
	case bodyCount > 1:
		props := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		required := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		rest := make([]*yaml.Node, 0, len(params.Content))
		for _, p := range params.Content {
			if !strings.EqualFold(scalarAt(p, "in"), "body") {
				rest = append(rest, p)
				continue
			}
			name := scalarAt(p, "name")
			if name == "" {
				name = "field"
			}
			schema := schemaFromParam(p)
			if schema == nil {
				schema = mappingNode("type", scalarNode("string"))
			}
			setKey(props, name, schema)
			if scalarAt(p, "required") == "true" {
				required.Content = append(required.Content, scalarNode(name))
			}
		}
		bodySchema := mappingNode("type", scalarNode("object"), "properties", props)
		if len(required.Content) > 0 {
			setKey(bodySchema, "required", required)
		}
		merged := mappingNode("in", scalarNode("body"), "name", scalarNode("body"), "schema", bodySchema)
		params.Content = append([]*yaml.Node{merged}, rest...)
		return true
	}
	return false
}

func schemaFromParam(p *yaml.Node) *yaml.Node {
	if sch := lookup(p, "schema"); sch != nil && sch.Kind == yaml.MappingNode {
		return sch
	}
	t := scalarAt(p, "type")
	if t == "" {
		return nil
	}
	out := mappingNode("type", scalarNode(t))
	if items := lookup(p, "items"); items != nil {
		setKey(out, "items", items)
	}
	if f := scalarAt(p, "format"); f != "" {
		setKey(out, "format", scalarNode(f))
	}
	return out
}

func formDataFromBodyParam(p *yaml.Node) *yaml.Node {
	name := scalarAt(p, "name")
	if name == "" {
		name = "field"
	}
	out := mappingNode("in", scalarNode("formData"), "name", scalarNode(name))
	if desc := scalarAt(p, "description"); desc != "" {
		setKey(out, "description", scalarNode(desc))
	}
	if req := lookup(p, "required"); req != nil {
		setKey(out, "required", req)
	}

	// formData cannot carry a referenced object; such bodies degrade to string.
	src := p
	if sch := lookup(p, "schema"); sch != nil && sch.Kind == yaml.MappingNode {
		src = sch
	}
	typ := scalarAt(src, "type")
	if typ == "" {
		typ = "string"
	}
	setKey(out, "type", scalarNode(typ))
	if items := lookup(src, "items"); items != nil {
		setKey(out, "items", items)
	}
	if f := scalarAt(src, "format"); f != "" {
		setKey(out, "format", scalarNode(f))
	}
	return out
}

// alignV2Order reorders mappings of a converted OpenAPI 3 tree to follow the
// Swagger 2.0 source. Conversion goes through Go maps, which loses the
// declaration order of paths, methods, responses and schema properties.
func alignV2Order(converted, source *yaml.Node) {
	converted, source = unalias(converted), unalias(source)
	alignMapping(lookup(converted, "paths"), lookup(source, "paths"))
	if components := lookup(converted, "components"); components != nil {
		alignMapping(lookup(components, "schemas"), lookup(source, "definitions"))
	}
}

// alignMapping stable-sorts the keys of dst by their position in src and
// recurses into entries present in both. Keys unknown to src go last.
func alignMapping(dst, src *yaml.Node) {
	dst, src = unalias(dst), unalias(src)
	if dst == nil || src == nil || dst.Kind != yaml.MappingNode || src.Kind != yaml.MappingNode {
		return
	}
	index := make(map[string]int)
	for key := range pairs(src) {
		if _, ok := index[key]; !ok {
			index[key] = len(index)
		}
	}
	type entry struct{ key, value *yaml.Node }
	entries := make([]entry, 0, len(dst.Content)/2)
	for i := 0; i+1 < len(dst.Content); i += 2 {
		entries = append(entries, entry{dst.Content[i], dst.Content[i+1]})
	}
	rank := func(e entry) int {
		if i, ok := index[e.key.Value]; ok {
			return i
		}
		return len(index)
	}
	slices.SortStableFunc(entries, func(a, b entry) int { return rank(a) - rank(b) })
	dst.Content = dst.Content[:0]
	for _, e := range entries {
		dst.Content = append(dst.Content, e.key, e.value)
		if peer := lookup(src, e.key.Value); peer != nil {
			alignMapping(e.value, peer)
		}
	}
}

func lookup(node *yaml.Node, key string) *yaml.Node {
	for k, v := range pairs(unalias(node)) {
		if k == key {
			return unalias(v)
		}
	}
	return nil
}

func scalarAt(node *yaml.Node, key string) string {
	if v := lookup(node, key); v != nil && v.Kind == yaml.ScalarNode {
		return v.Value
	}
	return ""
}

func setKey(node *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			node.Content[i+1] = value
			return
		}
	}
	node.Content = append(node.Content, scalarNode(key), value)
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// mappingNode builds a mapping from alternating key/value arguments.
func mappingNode(kv ...any) *yaml.Node {
	out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for i := 0; i+1 < len(kv); i += 2 {
		out.Content = append(out.Content, scalarNode(kv[i].(string)), kv[i+1].(*yaml.Node))
	}
	return out
}
