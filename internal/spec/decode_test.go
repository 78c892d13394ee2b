package spec

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

const orderedDoc = `openapi: 3.0.0
info:
  title: Ordered
  version: "1"
paths:
  /zoo:
    put:
      responses:
        "404": { description: missing }
        "200": { description: ok }
    get:
      parameters:
        - $ref: '#/components/parameters/Limit'
      responses:
        default:
          description: fallback
          headers:
            X-Rate: { description: rate, schema: { type: integer } }
          content:
            text/plain: { example: hi }
            application/json:
              schema: { $ref: '#/components/schemas/Node' }
  /alpha/{id}:
    x-internal: true
    get:
      responses:
        200: { description: numeric status key }
components:
  parameters:
    Limit:
      name: limit
      in: query
      schema: { type: integer, format: int32 }
  schemas:
    Node:
      type: object
      properties:
        value: { type: string }
        child: { $ref: '#/components/schemas/Node' }
`

func TestDecode_PreservesDeclarationOrder(t *testing.T) {
	t.Parallel()
	doc, err := Decode([]byte(orderedDoc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := strings.Join(doc.Paths.Keys(), ","); got != "/zoo,/alpha/{id}" {
		t.Fatalf("paths order: %s", got)
	}
	zoo, _ := doc.Paths.Get("/zoo")
	if got := strings.Join(zoo.Operations.Keys(), ","); got != "put,get" {
		t.Fatalf("methods order: %s", got)
	}
	put, _ := zoo.Operations.Get("put")
	if got := strings.Join(put.Responses.Keys(), ","); got != "404,200" {
		t.Fatalf("responses order: %s", got)
	}
	get, _ := zoo.Operations.Get("get")
	def, _ := get.Responses.Get("default")
	if got := strings.Join(def.Content.Keys(), ","); got != "text/plain,application/json" {
		t.Fatalf("content order: %s", got)
	}
	if h, ok := def.Headers.Get("X-Rate"); !ok || h.Schema.Type != "integer" {
		t.Fatalf("expected X-Rate header, got %+v", h)
	}
	alpha, _ := doc.Paths.Get("/alpha/{id}")
	op, _ := alpha.Operations.Get("get")
	if !op.Responses.Has("200") {
		t.Fatalf("expected numeric status key to decode as \"200\"")
	}
}

func TestDecode_InlinesLocalRefs(t *testing.T) {
	t.Parallel()
	doc, err := Decode([]byte(orderedDoc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	zoo, _ := doc.Paths.Get("/zoo")
	get, _ := zoo.Operations.Get("get")
	if len(get.Parameters) != 1 {
		t.Fatalf("expected 1 parameter, got %d", len(get.Parameters))
	}
	p := get.Parameters[0]
	if p.Name != "limit" || p.In != "query" || p.Schema.Format != "int32" {
		t.Fatalf("unexpected parameter %+v", p)
	}
}

func TestDecode_RecursiveSchemaStopsAtCycle(t *testing.T) {
	t.Parallel()
	doc, err := Decode([]byte(orderedDoc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	zoo, _ := doc.Paths.Get("/zoo")
	get, _ := zoo.Operations.Get("get")
	def, _ := get.Responses.Get("default")
	mt, _ := def.Content.Get("application/json")
	child, ok := mt.Schema.Properties.Get("child")
	if !ok {
		t.Fatalf("expected child property")
	}
	if child.Type != "" || child.Properties.Len() != 0 {
		t.Fatalf("expected cycle to decode as empty schema, got %+v", child)
	}
}

func TestDecode_UnresolvedRef(t *testing.T) {
	t.Parallel()
	_, err := DecodeSchema([]byte(`{"$ref": "#/components/schemas/Missing"}`))
	if !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
	var de *DocumentError
	if !errors.As(err, &de) || de.Pointer != "#" {
		t.Fatalf("expected pointer #, got %+v", de)
	}
	if !strings.Contains(err.Error(), "unresolved $ref") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestDecode_ExternalRefRejected(t *testing.T) {
	t.Parallel()
	_, err := DecodeSchema([]byte(`$ref: other.yaml#/Pet`))
	if !errors.Is(err, ErrInvalidDocument) || !strings.Contains(err.Error(), "external") {
		t.Fatalf("expected external ref error, got %v", err)
	}
}

func TestDecode_WrongShapeReportsPointer(t *testing.T) {
	t.Parallel()
	_, err := Decode([]byte(`openapi: 3.0.0
paths:
  /a~b/c:
    get:
      deprecated: "yes"
`))
	var de *DocumentError
	if !errors.As(err, &de) {
		t.Fatalf("expected DocumentError, got %v", err)
	}
	if de.Pointer != "#/paths/~1a~0b~1c/get/deprecated" {
		t.Fatalf("unexpected pointer %q", de.Pointer)
	}
}

func TestDecode_RefWithEscapedPointer(t *testing.T) {
	t.Parallel()
	doc, err := Decode([]byte(`openapi: 3.0.0
paths:
  /pets/{id}:
    get:
      summary: original
  /alias:
    $ref: '#/paths/~1pets~1%7Bid%7D'
`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	alias, _ := doc.Paths.Get("/alias")
	get, ok := alias.Operations.Get("get")
	if !ok || get.Summary != "original" {
		t.Fatalf("expected referenced path item, got %+v", alias)
	}
}

func TestDecode_RawValuesKeepOrderAndLiterals(t *testing.T) {
	t.Parallel()
	content, err := DecodeContent([]byte(`application/json:
  example:
    zeta: 1
    alpha: 1.0
    nested: { b: true, a: null }
    list: [x, 2]
`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	mt, _ := content.Get("application/json")
	out, err := json.Marshal(mt.Example)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"zeta":1,"alpha":1.0,"nested":{"b":true,"a":null},"list":["x",2]}`
	if string(out) != want {
		t.Fatalf("got %s, want %s", out, want)
	}
}

func TestDecode_JSONInput(t *testing.T) {
	t.Parallel()
	s, err := DecodeSchema([]byte("{\n\t\"type\": \"object\",\n\t\"properties\": {\"b\": {\"type\": \"number\", \"example\": 2.50}, \"a\": {\"type\": \"string\"}}\n}"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := strings.Join(s.Properties.Keys(), ","); got != "b,a" {
		t.Fatalf("property order: %s", got)
	}
	b, _ := s.Properties.Get("b")
	if n, ok := b.Example.(json.Number); !ok || n.String() != "2.50" {
		t.Fatalf("expected json.Number 2.50, got %#v", b.Example)
	}
}

func TestDecodeSchema_TypeListAndExamples(t *testing.T) {
	t.Parallel()
	s, err := DecodeSchema([]byte(`
type: ["null", string]
examples: [first, second]
readOnly: false
`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Type != "string" {
		t.Fatalf("expected string type, got %q", s.Type)
	}
	if s.Example != "first" {
		t.Fatalf("expected first example, got %#v", s.Example)
	}
	if s.ReadOnly == nil || *s.ReadOnly || s.IsReadOnly() {
		t.Fatalf("expected explicit readOnly=false")
	}
}

func TestDecodeParameter_RequiresNameAndIn(t *testing.T) {
	t.Parallel()
	if _, err := DecodeParameter([]byte(`in: query`)); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected missing name error, got %v", err)
	}
	p, err := DecodeParameter([]byte(`
name: filter
in: query
content:
  application/json:
    schema: { type: object }
`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Schema == nil || p.Schema.Type != "object" {
		t.Fatalf("expected schema from content, got %+v", p.Schema)
	}
}

func TestDecode_EmptyInput(t *testing.T) {
	t.Parallel()
	if _, err := Decode([]byte("  \n")); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
}
