package spec

import "fmt"

// Normalize returns a copy of doc prepared for rendering:
//
//   - path-level parameters are merged into every operation of the path item;
//     an operation parameter with the same (name, in) overrides the inherited
//     one, inherited parameters follow the operation's own;
//   - allOf is flattened in parameter and response header schemas;
//   - callbacks are normalized the same way.
//
// The input document is not modified.
func Normalize(doc *Document) (*Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	out := &Document{OpenAPI: doc.OpenAPI, Info: doc.Info}
	out.Paths = normalizePaths(doc.Paths)
	return out, nil
}

func normalizePaths(paths *Map[*PathItem]) *Map[*PathItem] {
	out := NewMap[*PathItem]()
	for endpoint, item := range paths.All() {
		if item == nil {
			continue
		}
		out.Set(endpoint, normalizePathItem(item))
	}
	return out
}

func normalizePathItem(item *PathItem) *PathItem {
	out := &PathItem{
		Summary:     item.Summary,
		Description: item.Description,
		Operations:  NewMap[*Operation](),
	}
	for method, op := range item.Operations.All() {
		if op == nil {
			continue
		}
		out.Operations.Set(method, normalizeOperation(op, item.Parameters))
	}
	return out
}

func normalizeOperation(op *Operation, inherited []*Parameter) *Operation {
	out := *op
	out.Parameters = MergeParameters(op.Parameters, inherited)
	if op.Responses != nil {
		responses := NewMap[*Response]()
		for status, resp := range op.Responses.All() {
			responses.Set(status, normalizeResponse(resp))
		}
		out.Responses = responses
	}
	if op.Callbacks != nil {
		callbacks := NewMap[*Callback]()
		for name, cb := range op.Callbacks.All() {
			if cb == nil {
				continue
			}
			callbacks.Set(name, &Callback{Paths: normalizePaths(cb.Paths)})
		}
		out.Callbacks = callbacks
	}
	return &out
}

// MergeParameters returns own followed by every inherited parameter whose
// (name, in) is not already declared in own.
func MergeParameters(own, inherited []*Parameter) []*Parameter {
	seen := make(map[string]struct{}, len(own))
	out := make([]*Parameter, 0, len(own)+len(inherited))
	for _, p := range own {
		if p == nil {
			continue
		}
		seen[p.Key()] = struct{}{}
		out = append(out, flattenParameter(p))
	}
	for _, p := range inherited {
		if p == nil {
			continue
		}
		if _, overridden := seen[p.Key()]; overridden {
			continue
		}
		seen[p.Key()] = struct{}{}
		out = append(out, flattenParameter(p))
	}
	return out
}

func flattenParameter(p *Parameter) *Parameter {
	if p.Schema == nil || len(p.Schema.AllOf) == 0 {
		return p
	}
	cp := *p
	cp.Schema = Flatten(p.Schema)
	return &cp
}

func normalizeResponse(resp *Response) *Response {
	if resp == nil || resp.Headers == nil {
		return resp
	}
	out := *resp
	headers := NewMap[*Header]()
	for name, h := range resp.Headers.All() {
		if h != nil && h.Schema != nil && len(h.Schema.AllOf) > 0 {
			cp := *h
			cp.Schema = Flatten(h.Schema)
			h = &cp
		}
		headers.Set(name, h)
	}
	out.Headers = headers
	return &out
}
