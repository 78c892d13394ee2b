package spec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	NetworkError    ErrorCode = "NetworkError"
	ParseError      ErrorCode = "ParseError"
	ValidationError ErrorCode = "ValidationError"
	ConversionError ErrorCode = "ConversionError"
)

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path or URL
	JSONPointer string // e.g. "#/paths/~1pets/get"
	Cause       error
}

func (e *SpecError) Error() string {
	if e.JSONPointer != "" && !strings.Contains(e.Message, e.JSONPointer) {
		return fmt.Sprintf("%s (at %s)", e.Message, e.JSONPointer)
	}
	return e.Message
}

func (e *SpecError) Unwrap() error { return e.Cause }

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
	Logger      *slog.Logger
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option            { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }
func WithLogger(logger *slog.Logger) Option  { return func(s *Settings) { s.Logger = logger } }

// Load reads, validates and decodes an API description. Swagger 2.0 input is
// converted to OpenAPI 3 with kin-openapi first.
//
// input may be a filesystem path or an http/https URL; file:// URLs are
// rejected.
func Load(ctx context.Context, input string, opts ...Option) (*Document, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}

	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.Logger == nil {
		settings.Logger = slog.Default()
	}

	raw, location, rootIsFile, err := readInput(ctx, input, settings)
	if err != nil {
		return nil, err
	}
	settings.Logger.Debug("spec loaded", "location", location, "bytes", len(raw))

	version, derr := detectSpecVersion(raw)
	if derr != nil {
		return nil, &SpecError{Code: ParseError, Message: derr.Error(), Location: location, Cause: derr}
	}

	switch version {
	case 3:
		loader := newLoader(settings, rootIsFile)
		var kdoc *openapi3.T
		if rootIsFile {
			kdoc, err = loader.LoadFromFile(location)
		} else {
			u, _ := url.Parse(location)
			kdoc, err = loader.LoadFromDataWithPath(raw, u)
		}
		if err != nil {
			return nil, mapValidateOrParseErr(err, location)
		}
		if err := validate(ctx, kdoc, location, settings.Logger); err != nil {
			return nil, err
		}
		root, err := parseNode(raw)
		if err != nil {
			return nil, documentErr(err, location)
		}
		return decodeRoot(root, location)
	case 2:
		if fixed, changed, perr := preprocessV2ForCompatibility(raw); perr != nil {
			settings.Logger.Warn("swagger 2.0 preprocessing skipped", "location", location, "error", perr)
		} else if changed {
			settings.Logger.Debug("swagger 2.0 operations rewritten for conversion", "location", location)
			raw = fixed
		}
		v3doc, err := convertV2ToV3(raw)
		if err != nil {
			return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Location: location, Cause: err}
		}
		loader := newLoader(settings, rootIsFile)
		if err := loader.ResolveRefsIn(v3doc, nil); err != nil {
			settings.Logger.Warn("failed to resolve refs after conversion", "location", location, "error", err)
		}
		if err := validate(ctx, v3doc, location, settings.Logger); err != nil {
			return nil, err
		}
		converted, err := json.Marshal(v3doc)
		if err != nil {
			return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("encode converted document: %v", err), Location: location, Cause: err}
		}
		root, err := parseNode(converted)
		if err != nil {
			return nil, documentErr(err, location)
		}
		if source, err := parseNode(raw); err == nil {
			alignV2Order(root, source)
		}
		return decodeRoot(root, location)
	default:
		return nil, &SpecError{Code: ParseError, Message: "spec: unknown or unsupported OpenAPI/Swagger version", Location: location}
	}
}

// readInput classifies input and returns its bytes plus the canonical location.
func readInput(ctx context.Context, input string, settings Settings) ([]byte, string, bool, error) {
	u, uerr := url.Parse(input)
	isURL := uerr == nil && u.Scheme != "" && (u.Host != "" || strings.EqualFold(u.Scheme, "file"))

	if isURL {
		scheme := strings.ToLower(u.Scheme)
		if scheme == "file" {
			return nil, input, false, &SpecError{Code: InputError, Message: "spec: file:// URLs are blocked; pass a filesystem path instead", Location: input}
		}
		if scheme != "http" && scheme != "https" {
			return nil, input, false, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		raw, err := fetchWithRetry(ctx, input, settings)
		if err != nil {
			return nil, input, false, &SpecError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
		}
		return raw, input, false, nil
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, input, true, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, abs, true, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
	}
	return raw, abs, true, nil
}

func validate(ctx context.Context, doc *openapi3.T, location string, logger *slog.Logger) error {
	err := doc.Validate(ctx)
	if err == nil {
		return nil
	}
	if !canProceedDespiteValidation(err) {
		return mapValidateOrParseErr(err, location)
	}
	logger.Warn("document has validation problems; continuing", "location", location, "error", err)
	return nil
}

func decodeRoot(root *yaml.Node, location string) (*Document, error) {
	doc, err := newDecoder(root).document(root)
	if err != nil {
		return nil, documentErr(err, location)
	}
	return doc, nil
}

func documentErr(err error, location string) error {
	se := &SpecError{Code: ParseError, Message: err.Error(), Location: location, Cause: err}
	var de *DocumentError
	if errors.As(err, &de) {
		se.JSONPointer = de.Pointer
	}
	return se
}

func newLoader(settings Settings, rootIsFile bool) *openapi3.Loader {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	client := &http.Client{Timeout: settings.HTTPTimeout}
	// Documents fetched over HTTP may not read local files.
	allowFile := rootIsFile
	loader.ReadFromURIFunc = func(l *openapi3.Loader, uri *url.URL) ([]byte, error) {
		switch strings.ToLower(uri.Scheme) {
		case "", "file":
			if !allowFile {
				return nil, fmt.Errorf("blocked file ref: %s", uri.String())
			}
			path := uri.Path
			if path == "" {
				path = uri.Opaque
			}
			return os.ReadFile(path)
		case "http", "https":
			req, err := http.NewRequest(http.MethodGet, uri.String(), nil)
			if err != nil {
				return nil, err
			}
			resp, err := client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 400 {
				return nil, fmt.Errorf("http %d: %s", resp.StatusCode, uri.String())
			}
			return io.ReadAll(resp.Body)
		default:
			return nil, fmt.Errorf("unsupported ref scheme: %s", uri.Scheme)
		}
	}
	return loader
}

// detectSpecVersion returns 3 for OpenAPI v3, 2 for Swagger v2, else error.
func detectSpecVersion(data []byte) (int, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return 0, fmt.Errorf("parse spec: %w", err)
	}
	if v, ok := root["openapi"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "3.") {
			return 3, nil
		}
	}
	if v, ok := root["swagger"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "2.") {
			return 2, nil
		}
	}
	return 0, fmt.Errorf("spec: missing or unknown version (expected 'openapi: 3.x' or 'swagger: 2.0')")
}

func convertV2ToV3(data []byte) (*openapi3.T, error) {
	// kin-openapi v0.116.0 converts from the unmarshalled v2 model.
	var v2 openapi2.T
	if err := yaml.Unmarshal(data, &v2); err != nil {
		return nil, err
	}
	if strings.TrimSpace(v2.Info.Title) == "" {
		return nil, errors.New("swagger 2.0 document is missing info.title")
	}
	return openapi2conv.ToV3(&v2)
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		body, retry, err := fetchOnce(ctx, client, rawURL)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		settings.Logger.Debug("retrying fetch", "url", rawURL, "attempt", i+1, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}

// fetchOnce performs a single GET. retry reports whether the failure is transient.
func fetchOnce(ctx context.Context, client *http.Client, rawURL string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 300 {
		body, err := io.ReadAll(resp.Body)
		return body, false, err
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("transient http error %d", resp.StatusCode)
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return nil, false, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
}

func mapValidateOrParseErr(err error, location string) error {
	pointer := extractJSONPointer(err)
	code := ValidationError
	// Heuristics: some loader errors are parse errors.
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "parse") || strings.Contains(lower, "invalid character") {
		code = ParseError
	}
	return &SpecError{Code: code, Message: err.Error(), Location: location, JSONPointer: pointer, Cause: err}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'\"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	var me openapi3.MultiError
	if errors.As(err, &me) && len(me) > 0 {
		return extractJSONPointer(me[0])
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
		if se.SchemaField != "" {
			return se.SchemaField
		}
	}
	if m := jsonPtrRe.FindString(err.Error()); m != "" {
		return m
	}
	return ""
}

// canProceedDespiteValidation returns true for validation errors that do not
// prevent decoding, e.g. refs kin-openapi left unresolved.
func canProceedDespiteValidation(err error) bool {
	if err == nil {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unresolved ref") || strings.Contains(s, "found unresolved ref")
}
