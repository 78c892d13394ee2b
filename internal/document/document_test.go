package document

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/oas2rst/internal/render"
	"github.com/mark3labs/oas2rst/internal/spec"
)

const petstore = `
openapi: 3.0.3
info: { title: Pets, version: "1" }
paths:
  /pets:
    parameters:
      - { name: X-Request-Id, in: header }
    get:
      tags: [pets]
      responses: { "200": { description: Listed. } }
    post:
      tags: [pets, admin]
      responses: { "201": { description: Created. } }
  /pets/{id}:
    get:
      tags: [pets]
      parameters:
        - { name: id, in: path, required: true, schema: { type: string } }
      responses: { "200": { description: Found. } }
  /health:
    get:
      responses: { "200": { description: Healthy. } }
  /admin/stats:
    get:
      tags: [admin]
      responses: { "200": { description: Stats. } }
`

func load(t *testing.T) *spec.Document {
	t.Helper()
	doc, err := spec.Decode([]byte(petstore))
	require.NoError(t, err)
	return doc
}

func build(t *testing.T, opts Options) string {
	t.Helper()
	if opts.Renderer == nil {
		opts.Renderer = render.New(render.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	}
	seq, err := Build(context.Background(), load(t), opts)
	require.NoError(t, err)
	out, err := render.Join(seq)
	require.NoError(t, err)
	return out
}

func directives(out string) []string {
	var got []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, ".. http:") {
			got = append(got, line)
		}
	}
	return got
}

func TestBuild_DocumentOrder(t *testing.T) {
	t.Parallel()
	out := build(t, Options{})
	assert.Equal(t, []string{
		".. http:get:: /pets",
		".. http:post:: /pets",
		".. http:get:: /pets/{id}",
		".. http:get:: /health",
		".. http:get:: /admin/stats",
	}, directives(out))
	assert.Contains(t, out, ".. http:post:: /pets\n\n   :reqheader X-Request-Id:\n   :statuscode 201:\n      Created.\n\n")
}

func TestBuild_UngroupedMatchesRenderPaths(t *testing.T) {
	t.Parallel()
	r := render.New(render.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	normalized, err := spec.Normalize(load(t))
	require.NoError(t, err)
	want, err := render.Join(r.RenderPaths(context.Background(), normalized))
	require.NoError(t, err)

	assert.Equal(t, want, build(t, Options{Renderer: r}))
}

func TestSubset_KeepsEntryOrder(t *testing.T) {
	t.Parallel()
	doc := load(t)
	get := func(path, method string) entry {
		item, _ := doc.Paths.Get(path)
		op, _ := item.Operations.Get(method)
		return entry{endpoint: path, method: method, op: op}
	}
	sub := subset(doc, []entry{get("/health", "get"), get("/pets", "post"), get("/pets", "get")})

	assert.Equal(t, []string{"/health", "/pets"}, sub.Paths.Keys())
	pets, _ := sub.Paths.Get("/pets")
	assert.Equal(t, []string{"post", "get"}, pets.Operations.Keys())
	assert.Equal(t, "Pets", sub.Info.Title)
}

func TestBuild_ExplicitPathsKeepGivenOrder(t *testing.T) {
	t.Parallel()
	out := build(t, Options{Paths: []string{"/health", "/pets/{id}"}})
	assert.Equal(t, []string{".. http:get:: /health", ".. http:get:: /pets/{id}"}, directives(out))
}

func TestBuild_UndefinedPaths(t *testing.T) {
	t.Parallel()
	_, err := Build(context.Background(), load(t), Options{Paths: []string{"/pets", "/nope", "/gone"}})
	require.ErrorIs(t, err, ErrUndefinedPaths)
	assert.Contains(t, err.Error(), ": /nope, /gone")
}

func TestBuild_IncludeMatchesAtStart(t *testing.T) {
	t.Parallel()
	out := build(t, Options{Include: []string{"/pets"}})
	assert.Equal(t, []string{
		".. http:get:: /pets",
		".. http:post:: /pets",
		".. http:get:: /pets/{id}",
	}, directives(out))

	out = build(t, Options{Include: []string{"stats"}})
	assert.Empty(t, directives(out))
}

func TestBuild_ExcludeAppliedLast(t *testing.T) {
	t.Parallel()
	out := build(t, Options{Include: []string{"/pets", "/health"}, Exclude: []string{`/pets/\{id\}`, "/health$"}})
	assert.Equal(t, []string{".. http:get:: /pets", ".. http:post:: /pets"}, directives(out))

	out = build(t, Options{Paths: []string{"/admin/stats", "/pets"}, Exclude: []string{"/admin"}})
	assert.Equal(t, []string{".. http:get:: /pets", ".. http:post:: /pets"}, directives(out))
}

func TestBuild_ConfigurationErrors(t *testing.T) {
	t.Parallel()
	_, err := Build(context.Background(), load(t), Options{Paths: []string{"/pets"}, Include: []string{"/pets"}})
	require.ErrorIs(t, err, ErrConflictingSelection)

	_, err = Build(context.Background(), load(t), Options{Include: []string{"("}})
	require.ErrorIs(t, err, ErrInvalidPattern)

	_, err = Build(context.Background(), load(t), Options{Exclude: []string{"[a-"}})
	require.ErrorIs(t, err, ErrInvalidPattern)
}

func TestBuild_GroupByFirstTag(t *testing.T) {
	t.Parallel()
	out := build(t, Options{Group: true})

	var headings []string
	lines := strings.Split(out, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" && strings.Trim(lines[i], "=") == "" {
			headings = append(headings, lines[i-1])
			assert.Len(t, lines[i], len(lines[i-1]))
		}
	}
	assert.Equal(t, []string{"default", "admin", "pets"}, headings)
	assert.Equal(t, []string{
		".. http:get:: /health",
		".. http:get:: /admin/stats",
		".. http:get:: /pets",
		".. http:post:: /pets",
		".. http:get:: /pets/{id}",
	}, directives(out))
	assert.True(t, strings.HasPrefix(out, "default\n=======\n\n.. http:get:: /health\n"))
}

func TestBuild_HeadingUsesRuneLength(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"Früchte", "=======", ""}, mustCollect(t, heading("Früchte")))
}

func TestBuild_DoesNotMutateDocument(t *testing.T) {
	t.Parallel()
	doc := load(t)
	_, err := Build(context.Background(), doc, Options{})
	require.NoError(t, err)
	item, _ := doc.Paths.Get("/pets")
	assert.Len(t, item.Parameters, 1)
	op, _ := item.Operations.Get("get")
	assert.Empty(t, op.Parameters)
}

func TestBuild_Idempotent(t *testing.T) {
	t.Parallel()
	assert.Equal(t, build(t, Options{Group: true}), build(t, Options{Group: true}))
}

func mustCollect(t *testing.T, seq render.Lines) []string {
	t.Helper()
	lines, err := render.Collect(seq)
	require.NoError(t, err)
	return lines
}
