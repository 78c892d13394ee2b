package spec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument matches every DocumentError via errors.Is.
var ErrInvalidDocument = errors.New("invalid document")

// DocumentError reports a malformed or unresolvable part of a document.
type DocumentError struct {
	Pointer string // JSON Pointer of the offending node, e.g. "#/paths/~1pets/get"
	Message string
}

func (e *DocumentError) Error() string {
	if e.Pointer == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Pointer, e.Message)
}

func (e *DocumentError) Is(target error) bool { return target == ErrInvalidDocument }

// errRefCycle is returned by resolve when a $ref is already being expanded.
var errRefCycle = errors.New("$ref cycle")

// Decode parses an OpenAPI 3.x document from YAML or JSON bytes, keeping
// declaration order and inlining local "#/..." references.
func Decode(data []byte) (*Document, error) {
	root, err := parseNode(data)
	if err != nil {
		return nil, err
	}
	d := newDecoder(root)
	return d.document(root)
}

// DecodeSchema parses a standalone schema object.
func DecodeSchema(data []byte) (*Schema, error) {
	return decodeFragment(data, func(d *decoder, n *yaml.Node) (*Schema, error) { return d.schema(n, "#") })
}

// DecodeContent parses a content-type → media type mapping.
func DecodeContent(data []byte) (*Map[*MediaType], error) {
	return decodeFragment(data, func(d *decoder, n *yaml.Node) (*Map[*MediaType], error) { return d.content(n, "#") })
}

// DecodeParameter parses a standalone parameter object.
func DecodeParameter(data []byte) (*Parameter, error) {
	return decodeFragment(data, func(d *decoder, n *yaml.Node) (*Parameter, error) { return d.parameter(n, "#") })
}

// DecodeResponse parses a standalone response object.
func DecodeResponse(data []byte) (*Response, error) {
	return decodeFragment(data, func(d *decoder, n *yaml.Node) (*Response, error) { return d.response(n, "#") })
}

// DecodeOperation parses a standalone operation object.
func DecodeOperation(data []byte) (*Operation, error) {
	return decodeFragment(data, func(d *decoder, n *yaml.Node) (*Operation, error) { return d.operation(n, "#") })
}

func decodeFragment[T any](data []byte, fn func(*decoder, *yaml.Node) (T, error)) (T, error) {
	var zero T
	root, err := parseNode(data)
	if err != nil {
		return zero, err
	}
	return fn(newDecoder(root), root)
}

// parseNode returns the root content node. JSON input is tokenized directly
// so that tab-indented JSON, which YAML rejects, still decodes.
func parseNode(data []byte) (*yaml.Node, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &DocumentError{Message: "empty document"}
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		// YAML flow mappings look like JSON too; fall back to YAML on failure.
		if node, err := jsonToNode(trimmed); err == nil {
			return node, nil
		}
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, &DocumentError{Message: fmt.Sprintf("parse yaml: %v", err)}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &DocumentError{Message: "empty document"}
	}
	return doc.Content[0], nil
}

func jsonToNode(data []byte) (*yaml.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	node, err := jsonValueNode(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after top-level value")
	}
	return node, nil
}

func jsonValueNode(dec *json.Decoder) (*yaml.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				value, err := jsonValueNode(dec)
				if err != nil {
					return nil, err
				}
				node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return node, nil
		case '[':
			node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			for dec.More() {
				value, err := jsonValueNode(dec)
				if err != nil {
					return nil, err
				}
				node.Content = append(node.Content, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return node, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", v)
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}, nil
	case json.Number:
		tag := "!!int"
		if strings.ContainsAny(v.String(), ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.String()}, nil
	case bool:
		if v {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"}, nil
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "false"}, nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

type decoder struct {
	root   *yaml.Node
	active map[string]int
}

func newDecoder(root *yaml.Node) *decoder {
	return &decoder{root: root, active: make(map[string]int)}
}

// resolve follows a chain of "$ref" nodes. The returned release func must be
// called once the caller is done descending into the resolved node.
func (d *decoder) resolve(node *yaml.Node, ptr string) (*yaml.Node, string, func(), error) {
	node = unalias(node)
	ref, ok := refOf(node)
	if !ok {
		return node, ptr, func() {}, nil
	}
	if !strings.HasPrefix(ref, "#") {
		return nil, ptr, nil, &DocumentError{Pointer: ptr, Message: fmt.Sprintf("external $ref %q is not supported", ref)}
	}
	if d.active[ref] > 0 {
		return nil, ptr, nil, errRefCycle
	}
	target, ok := resolvePointer(d.root, ref)
	if !ok {
		return nil, ptr, nil, &DocumentError{Pointer: ptr, Message: fmt.Sprintf("unresolved $ref %q", ref)}
	}
	d.active[ref]++
	release := func() {
		d.active[ref]--
		if d.active[ref] <= 0 {
			delete(d.active, ref)
		}
	}
	resolved, rptr, inner, err := d.resolve(target, ref)
	if err != nil {
		release()
		return nil, ptr, nil, err
	}
	return resolved, rptr, func() { inner(); release() }, nil
}

// enter resolves node and requires it to be a mapping.
func (d *decoder) enter(node *yaml.Node, ptr string) (*yaml.Node, string, func(), error) {
	resolved, rptr, release, err := d.resolve(node, ptr)
	if err != nil {
		if errors.Is(err, errRefCycle) {
			return nil, ptr, nil, &DocumentError{Pointer: ptr, Message: "circular $ref"}
		}
		return nil, ptr, nil, err
	}
	if resolved.Kind != yaml.MappingNode {
		release()
		return nil, ptr, nil, &DocumentError{Pointer: rptr, Message: fmt.Sprintf("expected object, got %s", kindName(resolved))}
	}
	return resolved, rptr, release, nil
}

func (d *decoder) document(node *yaml.Node) (*Document, error) {
	node, ptr, release, err := d.enter(node, "#")
	if err != nil {
		return nil, err
	}
	defer release()

	doc := &Document{Paths: NewMap[*PathItem]()}
	for key, value := range pairs(node) {
		p := child(ptr, key)
		switch key {
		case "openapi":
			if doc.OpenAPI, err = str(value, p); err != nil {
				return nil, err
			}
		case "info":
			if doc.Info, err = d.info(value, p); err != nil {
				return nil, err
			}
		case "paths":
			if doc.Paths, err = d.paths(value, p); err != nil {
				return nil, err
			}
		}
	}
	return doc, nil
}

func (d *decoder) info(node *yaml.Node, ptr string) (Info, error) {
	var info Info
	node, ptr, release, err := d.enter(node, ptr)
	if err != nil {
		return info, err
	}
	defer release()
	for key, value := range pairs(node) {
		p := child(ptr, key)
		switch key {
		case "title":
			info.Title, err = str(value, p)
		case "version":
			info.Version, err = str(value, p)
		case "description":
			info.Description, err = str(value, p)
		}
		if err != nil {
			return info, err
		}
	}
	return info, nil
}

func (d *decoder) paths(node *yaml.Node, ptr string) (*Map[*PathItem], error) {
	node, ptr, release, err := d.enter(node, ptr)
	if err != nil {
		return nil, err
	}
	defer release()
	out := NewMap[*PathItem]()
	for key, value := range pairs(node) {
		if strings.HasPrefix(key, "x-") {
			continue
		}
		item, err := d.pathItem(value, child(ptr, key))
		if err != nil {
			return nil, err
		}
		out.Set(key, item)
	}
	return out, nil
}

func (d *decoder) pathItem(node *yaml.Node, ptr string) (*PathItem, error) {
	node, ptr, release, err := d.enter(node, ptr)
	if err != nil {
		return nil, err
	}
	defer release()
	item := &PathItem{Operations: NewMap[*Operation]()}
	for key, value := range pairs(node) {
		p := child(ptr, key)
		switch {
		case key == "summary":
			item.Summary, err = str(value, p)
		case key == "description":
			item.Description, err = str(value, p)
		case key == "parameters":
			item.Parameters, err = d.parameters(value, p)
		case IsHttpMethod(strings.ToLower(key)):
			var op *Operation
			if op, err = d.operation(value, p); err == nil {
				item.Operations.Set(strings.ToLower(key), op)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return item, nil
}

func (d *decoder) operation(node *yaml.Node, ptr string) (*Operation, error) {
	node, ptr, release, err := d.enter(node, ptr)
	if err != nil {
		return nil, err
	}
	defer release()
	op := &Operation{Responses: NewMap[*Response]()}
	for key, value := range pairs(node) {
		p := child(ptr, key)
		switch key {
		case "operationId":
			op.OperationID, err = str(value, p)
		case "summary":
			op.Summary, err = str(value, p)
		case "description":
			op.Description, err = str(value, p)
		case "deprecated":
			op.Deprecated, err = boolean(value, p)
		case "tags":
			op.Tags, err = strs(value, p)
		case "parameters":
			op.Parameters, err = d.parameters(value, p)
		case "requestBody":
			op.RequestBody, err = d.requestBody(value, p)
		case "responses":
			op.Responses, err = d.responses(value, p)
		case "callbacks":
			op.Callbacks, err = d.callbacks(value, p)
		}
		if err != nil {
			return nil, err
		}
	}
	return op, nil
}

func (d *decoder) parameters(node *yaml.Node, ptr string) ([]*Parameter, error) {
	node = unalias(node)
	if node.Kind != yaml.SequenceNode {
		return nil, &DocumentError{Pointer: ptr, Message: fmt.Sprintf("expected array, got %s", kindName(node))}
	}
	out := make([]*Parameter, 0, len(node.Content))
	for i, item := range node.Content {
		p, err := d.parameter(item, fmt.Sprintf("%s/%d", ptr, i))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (d *decoder) parameter(node *yaml.Node, ptr string) (*Parameter, error) {
	node, ptr, release, err := d.enter(node, ptr)
	if err != nil {
		return nil, err
	}
	defer release()
	param := &Parameter{}
	for key, value := range pairs(node) {
		p := child(ptr, key)
		switch key {
		case "name":
			param.Name, err = str(value, p)
		case "in":
			param.In, err = str(value, p)
		case "description":
			param.Description, err = str(value, p)
		case "required":
			param.Required, err = boolean(value, p)
		case "deprecated":
			param.Deprecated, err = boolean(value, p)
		case "schema":
			param.Schema, err = d.schema(value, p)
		case "content":
			// A parameter may describe its type through a single media type.
			if param.Schema == nil {
				var content *Map[*MediaType]
				if content, err = d.content(value, p); err == nil {
					if _, mt, ok := content.First(); ok {
						param.Schema = mt.Schema
					}
				}
			}
		}
		if err != nil {
			return nil, err
		}
	}
	if param.Name == "" {
		return nil, &DocumentError{Pointer: ptr, Message: "parameter is missing 'name'"}
	}
	if param.In == "" {
		return nil, &DocumentError{Pointer: ptr, Message: "parameter is missing 'in'"}
	}
	return param, nil
}

func (d *decoder) requestBody(node *yaml.Node, ptr string) (*RequestBody, error) {
	node, ptr, release, err := d.enter(node, ptr)
	if err != nil {
		return nil, err
	}
	defer release()
	body := &RequestBody{}
	for key, value := range pairs(node) {
		p := child(ptr, key)
		switch key {
		case "description":
			body.Description, err = str(value, p)
		case "required":
			body.Required, err = boolean(value, p)
		case "content":
			body.Content, err = d.content(value, p)
		}
		if err != nil {
			return nil, err
		}
	}
	return body, nil
}

func (d *decoder) responses(node *yaml.Node, ptr string) (*Map[*Response], error) {
	node, ptr, release, err := d.enter(node, ptr)
	if err != nil {
		return nil, err
	}
	defer release()
	out := NewMap[*Response]()
	for key, value := range pairs(node) {
		if strings.HasPrefix(key, "x-") {
			continue
		}
		resp, err := d.response(value, child(ptr, key))
		if err != nil {
			return nil, err
		}
		out.Set(key, resp)
	}
	return out, nil
}

func (d *decoder) response(node *yaml.Node, ptr string) (*Response, error) {
	node, ptr, release, err := d.enter(node, ptr)
	if err != nil {
		return nil, err
	}
	defer release()
	resp := &Response{}
	for key, value := range pairs(node) {
		p := child(ptr, key)
		switch key {
		case "description":
			resp.Description, err = str(value, p)
		case "content":
			resp.Content, err = d.content(value, p)
		case "headers":
			resp.Headers, err = d.headers(value, p)
		}
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (d *decoder) headers(node *yaml.Node, ptr string) (*Map[*Header], error) {
	node, ptr, release, err := d.enter(node, ptr)
	if err != nil {
		return nil, err
	}
	defer release()
	out := NewMap[*Header]()
	for name, value := range pairs(node) {
		h, err := d.header(value, child(ptr, name))
		if err != nil {
			return nil, err
		}
		out.Set(name, h)
	}
	return out, nil
}

func (d *decoder) header(node *yaml.Node, ptr string) (*Header, error) {
	node, ptr, release, err := d.enter(node, ptr)
	if err != nil {
		return nil, err
	}
	defer release()
	h := &Header{}
	for key, value := range pairs(node) {
		p := child(ptr, key)
		switch key {
		case "description":
			h.Description, err = str(value, p)
		case "schema":
			h.Schema, err = d.schema(value, p)
		}
		if err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (d *decoder) callbacks(node *yaml.Node, ptr string) (*Map[*Callback], error) {
	node, ptr, release, err := d.enter(node, ptr)
	if err != nil {
		return nil, err
	}
	defer release()
	out := NewMap[*Callback]()
	for name, value := range pairs(node) {
		paths, err := d.paths(value, child(ptr, name))
		if err != nil {
			return nil, err
		}
		out.Set(name, &Callback{Paths: paths})
	}
	return out, nil
}

func (d *decoder) content(node *yaml.Node, ptr string) (*Map[*MediaType], error) {
	node, ptr, release, err := d.enter(node, ptr)
	if err != nil {
		return nil, err
	}
	defer release()
	out := NewMap[*MediaType]()
	for contentType, value := range pairs(node) {
		mt, err := d.mediaType(value, child(ptr, contentType))
		if err != nil {
			return nil, err
		}
		out.Set(contentType, mt)
	}
	return out, nil
}

func (d *decoder) mediaType(node *yaml.Node, ptr string) (*MediaType, error) {
	node, ptr, release, err := d.enter(node, ptr)
	if err != nil {
		return nil, err
	}
	defer release()
	mt := &MediaType{}
	for key, value := range pairs(node) {
		p := child(ptr, key)
		switch key {
		case "schema":
			mt.Schema, err = d.schema(value, p)
		case "example":
			mt.Example, err = rawValue(value, p)
		case "examples":
			mt.Examples, err = d.examples(value, p)
		}
		if err != nil {
			return nil, err
		}
	}
	return mt, nil
}

func (d *decoder) examples(node *yaml.Node, ptr string) (*Map[*Example], error) {
	node, ptr, release, err := d.enter(node, ptr)
	if err != nil {
		return nil, err
	}
	defer release()
	out := NewMap[*Example]()
	for name, value := range pairs(node) {
		ex, err := d.example(value, child(ptr, name))
		if err != nil {
			return nil, err
		}
		out.Set(name, ex)
	}
	return out, nil
}

func (d *decoder) example(node *yaml.Node, ptr string) (*Example, error) {
	node, ptr, release, err := d.enter(node, ptr)
	if err != nil {
		return nil, err
	}
	defer release()
	ex := &Example{}
	for key, value := range pairs(node) {
		p := child(ptr, key)
		switch key {
		case "summary":
			ex.Summary, err = str(value, p)
		case "description":
			ex.Description, err = str(value, p)
		case "value":
			ex.Value, err = rawValue(value, p)
		case "externalValue":
			ex.ExternalValue, err = str(value, p)
		}
		if err != nil {
			return nil, err
		}
	}
	return ex, nil
}

// schema decodes a schema object. A schema that refers back to one of its
// ancestors decodes as an empty schema, which stops recursive structures.
func (d *decoder) schema(node *yaml.Node, ptr string) (*Schema, error) {
	resolved, rptr, release, err := d.resolve(node, ptr)
	if errors.Is(err, errRefCycle) {
		return &Schema{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer release()
	if resolved.Kind != yaml.MappingNode {
		return nil, &DocumentError{Pointer: rptr, Message: fmt.Sprintf("expected schema object, got %s", kindName(resolved))}
	}

	s := &Schema{}
	var examples []any
	for key, value := range pairs(resolved) {
		p := child(rptr, key)
		switch key {
		case "type":
			s.Type, err = schemaType(value, p)
		case "format":
			s.Format, err = str(value, p)
		case "description":
			s.Description, err = str(value, p)
		case "properties":
			s.Properties, err = d.properties(value, p)
		case "items":
			s.Items, err = d.schema(value, p)
		case "required":
			s.Required, err = strs(value, p)
		case "enum":
			s.Enum, err = rawList(value, p)
		case "allOf":
			s.AllOf, err = d.schemaList(value, p)
		case "oneOf":
			s.OneOf, err = d.schemaList(value, p)
		case "anyOf":
			s.AnyOf, err = d.schemaList(value, p)
		case "readOnly":
			var b bool
			if b, err = boolean(value, p); err == nil {
				s.ReadOnly = &b
			}
		case "writeOnly":
			var b bool
			if b, err = boolean(value, p); err == nil {
				s.WriteOnly = &b
			}
		case "example":
			s.Example, err = rawValue(value, p)
		case "examples":
			// JSON Schema style examples array; the first one stands in for
			// `example` when the latter is absent.
			if unalias(value).Kind == yaml.SequenceNode {
				examples, err = rawList(value, p)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	if s.Example == nil && len(examples) > 0 {
		s.Example = examples[0]
	}
	return s, nil
}

func (d *decoder) properties(node *yaml.Node, ptr string) (*Map[*Schema], error) {
	node, ptr, release, err := d.enter(node, ptr)
	if err != nil {
		return nil, err
	}
	defer release()
	out := NewMap[*Schema]()
	for name, value := range pairs(node) {
		s, err := d.schema(value, child(ptr, name))
		if err != nil {
			return nil, err
		}
		out.Set(name, s)
	}
	return out, nil
}

func (d *decoder) schemaList(node *yaml.Node, ptr string) ([]*Schema, error) {
	node = unalias(node)
	if node.Kind != yaml.SequenceNode {
		return nil, &DocumentError{Pointer: ptr, Message: fmt.Sprintf("expected array, got %s", kindName(node))}
	}
	out := make([]*Schema, 0, len(node.Content))
	for i, item := range node.Content {
		s, err := d.schema(item, fmt.Sprintf("%s/%d", ptr, i))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// schemaType accepts both `type: string` and the 3.1 form `type: [string, "null"]`.
func schemaType(node *yaml.Node, ptr string) (string, error) {
	node = unalias(node)
	if node.Kind == yaml.SequenceNode {
		list, err := strs(node, ptr)
		if err != nil {
			return "", err
		}
		for _, t := range list {
			if t != "null" {
				return t, nil
			}
		}
		if len(list) > 0 {
			return list[0], nil
		}
		return "", nil
	}
	return str(node, ptr)
}

// jsonNumberRe matches literals that are valid JSON numbers, which are kept
// verbatim so that 1.0 stays 1.0 when re-encoded.
var jsonNumberRe = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// rawValue converts a YAML node into plain Go values: nil, bool, int,
// json.Number/float64, string, []any and *Object for mappings.
func rawValue(node *yaml.Node, ptr string) (any, error) {
	node = unalias(node)
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!null":
			return nil, nil
		case "!!str":
			return node.Value, nil
		case "!!float":
			if jsonNumberRe.MatchString(node.Value) {
				return json.Number(node.Value), nil
			}
		}
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, &DocumentError{Pointer: ptr, Message: err.Error()}
		}
		return v, nil
	case yaml.SequenceNode:
		return rawList(node, ptr)
	case yaml.MappingNode:
		obj := NewMap[any]()
		for key, value := range pairs(node) {
			v, err := rawValue(value, child(ptr, key))
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		return obj, nil
	}
	return nil, &DocumentError{Pointer: ptr, Message: fmt.Sprintf("unsupported value of kind %s", kindName(node))}
}

func rawList(node *yaml.Node, ptr string) ([]any, error) {
	node = unalias(node)
	if node.Kind != yaml.SequenceNode {
		return nil, &DocumentError{Pointer: ptr, Message: fmt.Sprintf("expected array, got %s", kindName(node))}
	}
	out := make([]any, 0, len(node.Content))
	for i, item := range node.Content {
		v, err := rawValue(item, fmt.Sprintf("%s/%d", ptr, i))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func str(node *yaml.Node, ptr string) (string, error) {
	node = unalias(node)
	if node.Kind != yaml.ScalarNode {
		return "", &DocumentError{Pointer: ptr, Message: fmt.Sprintf("expected string, got %s", kindName(node))}
	}
	if node.ShortTag() == "!!null" {
		return "", nil
	}
	return node.Value, nil
}

func strs(node *yaml.Node, ptr string) ([]string, error) {
	node = unalias(node)
	if node.Kind != yaml.SequenceNode {
		return nil, &DocumentError{Pointer: ptr, Message: fmt.Sprintf("expected array, got %s", kindName(node))}
	}
	out := make([]string, 0, len(node.Content))
	for i, item := range node.Content {
		s, err := str(item, fmt.Sprintf("%s/%d", ptr, i))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func boolean(node *yaml.Node, ptr string) (bool, error) {
	node = unalias(node)
	if node.Kind != yaml.ScalarNode || node.ShortTag() != "!!bool" {
		return false, &DocumentError{Pointer: ptr, Message: fmt.Sprintf("expected boolean, got %q", node.Value)}
	}
	var b bool
	if err := node.Decode(&b); err != nil {
		return false, &DocumentError{Pointer: ptr, Message: err.Error()}
	}
	return b, nil
}

// pairs iterates the key/value pairs of a mapping node in source order.
func pairs(node *yaml.Node) func(yield func(string, *yaml.Node) bool) {
	return func(yield func(string, *yaml.Node) bool) {
		if node == nil || node.Kind != yaml.MappingNode {
			return
		}
		for i := 0; i+1 < len(node.Content); i += 2 {
			if !yield(node.Content[i].Value, node.Content[i+1]) {
				return
			}
		}
	}
}

func unalias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func refOf(node *yaml.Node) (string, bool) {
	if node == nil || node.Kind != yaml.MappingNode {
		return "", false
	}
	for key, value := range pairs(node) {
		if key == "$ref" {
			value = unalias(value)
			if value.Kind == yaml.ScalarNode {
				return strings.TrimSpace(value.Value), true
			}
		}
	}
	return "", false
}

func kindName(node *yaml.Node) string {
	if node == nil {
		return "nothing"
	}
	switch node.Kind {
	case yaml.MappingNode:
		return "object"
	case yaml.SequenceNode:
		return "array"
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			return "null"
		}
		return "scalar " + node.ShortTag()
	}
	return "unknown"
}
