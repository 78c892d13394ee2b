package rstemitter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/oas2rst/internal/render"
)

func TestEmit_Stdout(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	res, err := Emit(context.Background(), render.Of("Title", "=====", ""), Options{Stdout: &buf})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if got, want := buf.String(), "Title\n=====\n\n"; got != want {
		t.Fatalf("stdout mismatch: got %q want %q", got, want)
	}
	if !res.Written || res.Planned.Path != "-" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestEmit_DryRun_Plan(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	target := filepath.Join(dir, "api.rst")
	res, err := Emit(context.Background(), render.Of("a", "b"), Options{Out: target, DryRun: true})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if res.Written || res.Planned.Path != target || res.Planned.Size != 4 {
		t.Fatalf("unexpected plan: %+v", res)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("expected no files written on dry-run")
	}
}

func TestEmit_WriteAndContents(t *testing.T) {
	t.Parallel()
	target := filepath.Join(t.TempDir(), "nested", "docs", "api.rst")
	if _, err := Emit(context.Background(), render.Of(".. http:get:: /pets", ""), Options{Out: target}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != ".. http:get:: /pets\n\n" {
		t.Fatalf("unexpected contents: %q", data)
	}
	entries, _ := os.ReadDir(filepath.Dir(target))
	if len(entries) != 1 {
		t.Fatalf("expected only the output file, got %d entries", len(entries))
	}
}

func TestEmit_DirectoryTargetUsesTitle(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	res, err := Emit(context.Background(), render.Of("x"), Options{Out: dir, Title: "Swagger Petstore: v2.0"})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	want := filepath.Join(dir, "swagger-petstore-v2-0.rst")
	if res.Planned.Path != want {
		t.Fatalf("path: want %s got %s", want, res.Planned.Path)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected file: %v", err)
	}
}

func TestEmit_NoForce_ExistingFile(t *testing.T) {
	t.Parallel()
	target := filepath.Join(t.TempDir(), "api.rst")
	if err := os.WriteFile(target, []byte("old"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}
	_, err := Emit(context.Background(), render.Of("new"), Options{Out: target})
	if !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if _, err := Emit(context.Background(), render.Of("new"), Options{Out: target, Force: true}); err != nil {
		t.Fatalf("emit with force: %v", err)
	}
	if data, _ := os.ReadFile(target); string(data) != "new\n" {
		t.Fatalf("expected overwritten file, got %q", data)
	}
}

func TestEmit_RenderErrorWritesNothing(t *testing.T) {
	t.Parallel()
	target := filepath.Join(t.TempDir(), "api.rst")
	boom := errors.New("boom")
	_, err := Emit(context.Background(), render.Concat(render.Of("partial"), render.Fail(boom)), Options{Out: target})
	if !errors.Is(err, boom) {
		t.Fatalf("expected render error, got %v", err)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatalf("expected no output file, stat err=%v", err)
	}
}
