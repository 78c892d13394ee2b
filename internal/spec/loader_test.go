package spec

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func writeSpec(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoad_BlocksFileURL(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "file:///etc/hosts")
	if err == nil {
		t.Fatalf("expected error for file:// URL")
	}
	var se *SpecError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpecError, got %T", err)
	}
	if se.Code != InputError {
		t.Fatalf("expected InputError, got %v", se.Code)
	}
}

func TestLoad_UnsupportedScheme(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "ftp://example.com/spec.yaml")
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("expected InputError, got %v (%T)", err, err)
	}
}

func TestLoad_EmptyInput(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "  ")
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("expected InputError, got %v", err)
	}
}

func TestLoad_NetworkError(t *testing.T) {
	t.Parallel()
	// Unused port to provoke a quick network failure.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Load(ctx, "http://127.0.0.1:1/spec.yaml", WithHTTPTimeout(200*time.Millisecond), WithMaxRetries(2), WithBackoffBase(10*time.Millisecond))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != NetworkError {
		t.Fatalf("expected NetworkError, got %v (%T)", err, err)
	}
}

func TestLoad_FromURL_RetriesTransientErrors(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"openapi":"3.0.0","info":{"title":"Remote","version":"1"},"paths":{"/b":{"get":{"responses":{"200":{"description":"ok"}}}},"/a":{"get":{"responses":{"200":{"description":"ok"}}}}}}`))
	}))
	defer srv.Close()

	doc, err := Load(context.Background(), srv.URL+"/openapi.json", WithBackoffBase(time.Millisecond))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("expected 2 requests, got %d", n)
	}
	if got := strings.Join(doc.Paths.Keys(), ","); got != "/b,/a" {
		t.Fatalf("expected declaration order, got %s", got)
	}
}

func TestLoad_FromURL_ClientErrorIsNotRetried(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := Load(context.Background(), srv.URL+"/missing.yaml", WithBackoffBase(time.Millisecond))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != NetworkError {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected a single request, got %d", n)
	}
}

func TestLoad_V3_InvalidSpec(t *testing.T) {
	t.Parallel()
	path := writeSpec(t, "bad.yaml", `openapi: 3.0.0
info:
  title: Bad
  version: "1.0.0"
paths:
  "/pet":
    get:
      responses: {}
`)
	_, err := Load(context.Background(), path)
	if err == nil {
		t.Fatalf("expected validation error for incomplete responses")
	}
	var se *SpecError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpecError, got %T", err)
	}
	if se.Code != ValidationError && se.Code != ParseError { // parser version differences
		t.Fatalf("expected ValidationError/ParseError, got %v", se.Code)
	}
	if se.Location == "" {
		t.Fatalf("expected location to be set")
	}
}

func TestLoad_V3_PreservesOrderAndInlinesRefs(t *testing.T) {
	t.Parallel()
	path := writeSpec(t, "pets.yaml", `openapi: 3.0.0
info:
  title: Pets
  version: "1.0.0"
paths:
  /pets:
    post:
      responses:
        "201":
          description: created
    get:
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Pet'
components:
  schemas:
    Pet:
      type: object
      properties:
        name: { type: string }
        id: { type: integer }
`)
	doc, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	item, _ := doc.Paths.Get("/pets")
	if got := strings.Join(item.Operations.Keys(), ","); got != "post,get" {
		t.Fatalf("unexpected method order %s", got)
	}
	get, _ := item.Operations.Get("get")
	resp, _ := get.Responses.Get("200")
	mt, _ := resp.Content.Get("application/json")
	if got := strings.Join(mt.Schema.Properties.Keys(), ","); got != "name,id" {
		t.Fatalf("unexpected property order %s", got)
	}
}

func TestLoad_V2_Conversion_Success(t *testing.T) {
	t.Parallel()
	path := writeSpec(t, "swagger.yaml", `swagger: "2.0"
info:
  title: Sample
  version: "1.0.0"
paths:
  "/zeta":
    get:
      responses:
        "200":
          description: ok
  "/alpha":
    get:
      produces: [application/json]
      responses:
        "200":
          description: ok
          schema:
            $ref: '#/definitions/Item'
definitions:
  Item:
    type: object
    properties:
      zname: { type: string }
      aid: { type: integer }
`)
	doc, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !strings.HasPrefix(doc.OpenAPI, "3.") {
		t.Fatalf("expected OpenAPI v3, got %q", doc.OpenAPI)
	}
	if got := strings.Join(doc.Paths.Keys(), ","); got != "/zeta,/alpha" {
		t.Fatalf("expected source path order, got %s", got)
	}
	item, _ := doc.Paths.Get("/alpha")
	get, _ := item.Operations.Get("get")
	resp, _ := get.Responses.Get("200")
	mt, ok := resp.Content.Get("application/json")
	if !ok || mt.Schema == nil {
		t.Fatalf("expected converted json schema, got %+v", resp.Content.Keys())
	}
	if got := strings.Join(mt.Schema.Properties.Keys(), ","); got != "zname,aid" {
		t.Fatalf("expected definition property order, got %s", got)
	}
}

func TestLoad_V2_Conversion_Failure(t *testing.T) {
	t.Parallel()
	path := writeSpec(t, "swagger-bad.yaml", `swagger: "2.0"
paths: {}
`)
	_, err := Load(context.Background(), path)
	if err == nil {
		t.Fatalf("expected conversion error")
	}
	var se *SpecError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpecError, got %T", err)
	}
	if se.Code != ConversionError && se.Code != ValidationError && se.Code != ParseError {
		t.Fatalf("expected ConversionError/ValidationError/ParseError, got %v", se.Code)
	}
}

func TestLoad_UnknownVersion(t *testing.T) {
	t.Parallel()
	path := writeSpec(t, "unknown.yaml", `asyncapi: 2.0.0
info: { title: x, version: "1" }
`)
	_, err := Load(context.Background(), path)
	var se *SpecError
	if !errors.As(err, &se) || se.Code != ParseError {
		t.Fatalf("expected ParseError, got %v", err)
	}
}
