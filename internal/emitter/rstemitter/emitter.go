package rstemitter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/oas2rst/internal/render"
)

// ErrExists is returned when the target file exists and Force is not set.
var ErrExists = errors.New("output file already exists")

// Options controls where the rendered document is written.
type Options struct {
	Out    string // target file or directory; empty or "-" writes to Stdout
	Title  string // document title; names the file when Out is a directory
	Force  bool   // overwrite an existing file
	DryRun bool   // don't write, only plan
	Stdout io.Writer
}

// PlannedFile describes the file the emitter intends to write.
type PlannedFile struct {
	Path string // absolute path, or "-" for stdout
	Size int
	Mode os.FileMode
}

// Result reports the planned file and whether it was written.
type Result struct {
	Planned PlannedFile
	Written bool
}

// Emit renders lines into a document and writes it to the configured target.
// Rendering errors abort before anything is written.
func Emit(ctx context.Context, lines render.Lines, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, err := render.Join(lines)
	if err != nil {
		return nil, err
	}
	content := []byte(text)

	out := strings.TrimSpace(opts.Out)
	if out == "" || out == "-" {
		res := &Result{Planned: PlannedFile{Path: "-", Size: len(content)}}
		if opts.DryRun {
			return res, nil
		}
		w := opts.Stdout
		if w == nil {
			w = os.Stdout
		}
		if _, err := w.Write(content); err != nil {
			return nil, fmt.Errorf("write stdout: %w", err)
		}
		res.Written = true
		return res, nil
	}

	path, err := resolveTarget(out, opts.Title)
	if err != nil {
		return nil, err
	}
	res := &Result{Planned: PlannedFile{Path: path, Size: len(content), Mode: 0o644}}
	if st, err := os.Stat(path); err == nil && !opts.Force {
		if st.Mode().IsRegular() {
			return nil, fmt.Errorf("%w: %s (use --force to overwrite)", ErrExists, path)
		}
	}
	if opts.DryRun {
		return res, nil
	}
	if err := writeFile(path, content); err != nil {
		return nil, err
	}
	res.Written = true
	return res, nil
}

// resolveTarget returns the absolute file path for out. An existing
// directory, or a path ending in a separator, receives a file named after
// the document title.
func resolveTarget(out, title string) (string, error) {
	abs, err := filepath.Abs(out)
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}
	isDir := strings.HasSuffix(out, "/") || strings.HasSuffix(out, string(filepath.Separator))
	if st, err := os.Stat(abs); err == nil && st.IsDir() {
		isDir = true
	}
	if !isDir {
		return abs, nil
	}
	name := deriveFileName(title)
	if name == "" {
		name = "api"
	}
	return filepath.Join(abs, name+".rst"), nil
}

// writeFile writes content atomically via a temp file in the target
// directory followed by a rename.
func writeFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp %s: %w", filepath.Base(path), err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

func deriveFileName(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	repl := strings.NewReplacer("/", " ", "_", " ", ".", " ", ",", " ", ":", " ")
	var b strings.Builder
	for _, r := range repl.Replace(t) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), "-")
}
