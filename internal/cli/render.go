package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/oas2rst/internal/document"
	"github.com/mark3labs/oas2rst/internal/emitter/rstemitter"
	"github.com/mark3labs/oas2rst/internal/example"
	"github.com/mark3labs/oas2rst/internal/logging"
	"github.com/mark3labs/oas2rst/internal/markup"
	"github.com/mark3labs/oas2rst/internal/render"
	"github.com/mark3labs/oas2rst/internal/spec"
)

// RenderConfig captures all inputs that influence the render command after
// merging defaults, config file values, and CLI overrides.
type RenderConfig struct {
	Input                     string
	Out                       string
	Paths                     []string
	Include                   []string
	Exclude                   []string
	Group                     bool
	Request                   bool
	Examples                  bool
	ResponseExamplePreference []string
	ExamplesFromSchemas       bool
	Markup                    string
	FetchTimeout              time.Duration
	ConfigPath                string
	DryRun                    bool
	Force                     bool
	Verbose                   bool
	LogFile                   string
	LogLevel                  string

	stdout io.Writer
	stderr io.Writer
}

const defaultFetchTimeout = 10 * time.Second

func defaultRenderConfig() RenderConfig {
	return RenderConfig{Markup: "commonmark", FetchTimeout: defaultFetchTimeout}
}

var renderRunner = runRender

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render an OpenAPI/Swagger document as reStructuredText",
		Long: "Render an OpenAPI/Swagger document as reStructuredText using the " +
			"sphinxcontrib-httpdomain directives. Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  oas2rst render --input openapi.yaml --out docs/api.rst --examples
  oas2rst render --input https://example.com/openapi.json --include /pets --group
  oas2rst --config oas2rst.yaml render --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveRenderConfig(cmd)
			if err != nil {
				return err
			}
			cfg.stdout = cmd.OutOrStdout()
			cfg.stderr = cmd.ErrOrStderr()
			return renderRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
	flags.String("out", "", "Output file or directory; stdout when omitted or -")
	flags.StringSlice("paths", nil, "Render only these paths, in this order")
	flags.StringArray("include", nil, "Render paths matching this regular expression (repeatable)")
	flags.StringArray("exclude", nil, "Skip paths matching this regular expression (repeatable)")
	flags.Bool("group", false, "Group operations under headings named by their first tag")
	flags.Bool("request", false, "Render example requests")
	flags.Bool("examples", false, "Render example responses")
	flags.StringSlice("response-example-preference", nil, "Content types to prefer when picking examples")
	flags.Bool("examples-from-schemas", false, "Synthesize examples from schemas when none are given")
	flags.String("markup", "", "Markup of descriptions ("+strings.Join(markup.Names(), "|")+"); defaults to commonmark")
	flags.Duration("fetch-timeout", defaultFetchTimeout, "Timeout for fetching external example values")
	flags.Bool("dry-run", false, "Preview the planned output without writing files")
	flags.Bool("force", false, "Overwrite an existing output file")
	flags.String("log-file", "", "Also write JSON logs to this file")
	flags.String("log-level", "", "Console log level (debug|info|warn|error)")

	return cmd
}

func resolveRenderConfig(cmd *cobra.Command) (*RenderConfig, error) {
	cfg := defaultRenderConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyRenderConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyRenderFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyRenderFlagOverrides(flags *pflag.FlagSet, cfg *RenderConfig) error {
	strs := map[string]*string{
		"input":     &cfg.Input,
		"out":       &cfg.Out,
		"markup":    &cfg.Markup,
		"log-file":  &cfg.LogFile,
		"log-level": &cfg.LogLevel,
	}
	for name, dst := range strs {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}

	lists := map[string]*[]string{
		"paths":                       &cfg.Paths,
		"response-example-preference": &cfg.ResponseExamplePreference,
	}
	for name, dst := range lists {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = sanitizeList(value)
	}

	patterns := map[string]*[]string{
		"include": &cfg.Include,
		"exclude": &cfg.Exclude,
	}
	for name, dst := range patterns {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetStringArray(name)
		if err != nil {
			return err
		}
		*dst = sanitizeList(value)
	}

	bools := map[string]*bool{
		"group":                 &cfg.Group,
		"request":               &cfg.Request,
		"examples":              &cfg.Examples,
		"examples-from-schemas": &cfg.ExamplesFromSchemas,
		"dry-run":               &cfg.DryRun,
		"force":                 &cfg.Force,
		"verbose":               &cfg.Verbose,
	}
	for name, dst := range bools {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	if flags.Changed("fetch-timeout") {
		value, err := flags.GetDuration("fetch-timeout")
		if err != nil {
			return err
		}
		cfg.FetchTimeout = value
	}

	return nil
}

func (c *RenderConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.Markup = strings.ToLower(strings.TrimSpace(c.Markup))
	if c.Markup == "" {
		c.Markup = "commonmark"
	}
	c.LogFile = strings.TrimSpace(c.LogFile)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Paths = sanitizeList(c.Paths)
	c.Include = sanitizeList(c.Include)
	c.Exclude = sanitizeList(c.Exclude)
	c.ResponseExamplePreference = sanitizeList(c.ResponseExamplePreference)
}

func (c *RenderConfig) validate() error {
	if c.Input == "" {
		return newUsageError("render: --input is required (set via flag or config file)")
	}
	if _, err := markup.Lookup(c.Markup); err != nil {
		return newUsageError(fmt.Sprintf("render: %v", err))
	}
	if len(c.Paths) > 0 && len(c.Include) > 0 {
		return newUsageError("render: --paths and --include are mutually exclusive")
	}
	if c.FetchTimeout < 0 {
		return newUsageError(fmt.Sprintf("render: --fetch-timeout must not be negative (got %s)", c.FetchTimeout))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return newUsageError(fmt.Sprintf("render: %v", err))
	}
	return nil
}

func runRender(ctx context.Context, cfg *RenderConfig) error {
	stdout, stderr := cfg.stdout, cfg.stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return newUsageError(fmt.Sprintf("render: %v", err))
	}
	logger, closeLog, err := logging.New(logging.Config{
		Level:   level,
		Verbose: cfg.Verbose,
		LogFile: cfg.LogFile,
		Stderr:  stderr,
	})
	if err != nil {
		return newUsageError(fmt.Sprintf("render: %v", err))
	}
	defer closeLog()

	// 1) Load the document (file or http/https URL) with validation and conversion
	doc, err := spec.Load(ctx, cfg.Input, spec.WithLogger(logger))
	if err != nil {
		var se *spec.SpecError
		if errors.As(err, &se) {
			msg := fmt.Sprintf("spec: %s", se.Message)
			if se.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			if se.JSONPointer != "" {
				msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
			}
			return usageError{msg: msg, cause: se}
		}
		return err
	}
	logger.Debug("document loaded", "input", cfg.Input, "title", doc.Info.Title, "paths", doc.Paths.Len())

	// 2) Wire the renderer
	convert, err := markup.Lookup(cfg.Markup)
	if err != nil {
		return newUsageError(fmt.Sprintf("render: %v", err))
	}
	selector := &example.Selector{
		Preference:  cfg.ResponseExamplePreference,
		FromSchemas: cfg.ExamplesFromSchemas,
		Fetcher:     example.NewCachingFetcher(example.NewHTTPFetcher(cfg.FetchTimeout)),
		Logger:      logger,
	}
	r := render.New(render.Options{
		Markup:   convert,
		Examples: cfg.Examples,
		Request:  cfg.Request,
		Selector: selector,
		Logger:   logger,
	})

	// 3) Select paths and build the document
	lines, err := document.Build(ctx, doc, document.Options{
		Paths:    cfg.Paths,
		Include:  cfg.Include,
		Exclude:  cfg.Exclude,
		Group:    cfg.Group,
		Renderer: r,
	})
	if err != nil {
		if errors.Is(err, document.ErrUndefinedPaths) || errors.Is(err, document.ErrInvalidPattern) || errors.Is(err, document.ErrConflictingSelection) {
			return newUsageErrorf("render: %w", err)
		}
		return fmt.Errorf("build document: %w", err)
	}

	// 4) Emit
	res, err := rstemitter.Emit(ctx, lines, rstemitter.Options{
		Out:    cfg.Out,
		Title:  doc.Info.Title,
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
		Stdout: stdout,
	})
	if err != nil {
		return wrapOutputError(err, cfg.Out)
	}
	if cfg.DryRun {
		printPlan(stdout, res.Planned)
	} else if res.Planned.Path != "-" {
		logger.Info("wrote document", "path", res.Planned.Path, "bytes", res.Planned.Size)
	}
	return nil
}

func printPlan(w io.Writer, p rstemitter.PlannedFile) {
	target := p.Path
	if target == "-" {
		target = "stdout"
	}
	fmt.Fprintf(w, "Planned write to %s (%d bytes)\n", target, p.Size)
}

func wrapOutputError(err error, out string) error {
	if errors.Is(err, rstemitter.ErrExists) {
		return newUsageErrorf("output error: %w\nHint: choose a different --out or use --force.", err)
	}
	var pe *os.PathError
	if errors.As(err, &pe) {
		return newUsageError(fmt.Sprintf("output error for %s: %v\nHint: choose a different --out or check directory permissions.", out, err))
	}
	return err
}

func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func applyRenderConfigFromFile(cfg *RenderConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		if err := applyConfigField(cfg, normalizeKey(key), value); err != nil {
			if errors.Is(err, errUnknownField) {
				return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
			}
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
	}

	return nil
}

var errUnknownField = errors.New("unknown field")

func applyConfigField(cfg *RenderConfig, key string, value any) error {
	var err error
	switch key {
	case "input":
		cfg.Input, err = valueAsString(value)
	case "out":
		cfg.Out, err = valueAsString(value)
	case "markup":
		cfg.Markup, err = valueAsString(value)
	case "logfile":
		cfg.LogFile, err = valueAsString(value)
	case "loglevel":
		cfg.LogLevel, err = valueAsString(value)
	case "paths":
		cfg.Paths, err = valueAsStringSlice(value, true)
	case "responseexamplepreference":
		cfg.ResponseExamplePreference, err = valueAsStringSlice(value, true)
	case "include":
		cfg.Include, err = valueAsStringSlice(value, false)
	case "exclude":
		cfg.Exclude, err = valueAsStringSlice(value, false)
	case "group":
		cfg.Group, err = valueAsBool(value)
	case "request":
		cfg.Request, err = valueAsBool(value)
	case "examples":
		cfg.Examples, err = valueAsBool(value)
	case "examplesfromschemas":
		cfg.ExamplesFromSchemas, err = valueAsBool(value)
	case "dryrun":
		cfg.DryRun, err = valueAsBool(value)
	case "force":
		cfg.Force, err = valueAsBool(value)
	case "verbose":
		cfg.Verbose, err = valueAsBool(value)
	case "fetchtimeout":
		cfg.FetchTimeout, err = valueAsDuration(value)
	default:
		return errUnknownField
	}
	return err
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

// valueAsStringSlice accepts a list or a single string. A single string is
// split on commas when csv is set; regular expressions are never split.
func valueAsStringSlice(v any, csv bool) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		if !csv {
			return []string{strings.TrimSpace(val)}, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

// valueAsDuration accepts Go duration strings ("5s") or a number of seconds.
func valueAsDuration(v any) (time.Duration, error) {
	switch val := v.(type) {
	case nil:
		return defaultFetchTimeout, nil
	case int:
		return time.Duration(val) * time.Second, nil
	case float64:
		return time.Duration(val * float64(time.Second)), nil
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return defaultFetchTimeout, nil
		}
		if secs, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return time.Duration(secs * float64(time.Second)), nil
		}
		d, err := time.ParseDuration(trimmed)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", val)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("expected duration, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
