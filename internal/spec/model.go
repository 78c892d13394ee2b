package spec

// Typed, order-preserving view of an OpenAPI 3.x document. Only the parts the
// renderer consumes are modeled; everything else is ignored by the decoder.

type HttpMethod string

const (
	GET     HttpMethod = "get"
	PUT     HttpMethod = "put"
	POST    HttpMethod = "post"
	DELETE  HttpMethod = "delete"
	OPTIONS HttpMethod = "options"
	HEAD    HttpMethod = "head"
	PATCH   HttpMethod = "patch"
	TRACE   HttpMethod = "trace"
)

// IsHttpMethod reports whether key names an operation inside a path item.
func IsHttpMethod(key string) bool {
	switch HttpMethod(key) {
	case GET, PUT, POST, DELETE, OPTIONS, HEAD, PATCH, TRACE:
		return true
	}
	return false
}

type Document struct {
	OpenAPI string
	Info    Info
	Paths   *Map[*PathItem]
}

type Info struct {
	Title       string
	Version     string
	Description string
}

type PathItem struct {
	Summary     string
	Description string
	Parameters  []*Parameter
	// Operations is keyed by lower-case HTTP method in declaration order.
	Operations *Map[*Operation]
}

type Operation struct {
	OperationID string
	Summary     string
	Description string
	Deprecated  bool
	Tags        []string
	Parameters  []*Parameter
	RequestBody *RequestBody
	Responses   *Map[*Response]
	// Callbacks maps a callback name to its own endpoint → path item map.
	Callbacks *Map[*Callback]
}

type Callback struct {
	Paths *Map[*PathItem]
}

type Parameter struct {
	Name        string
	In          string // path|query|header|cookie
	Description string
	Required    bool
	Deprecated  bool
	Schema      *Schema
}

// Key identifies a parameter for override purposes.
func (p *Parameter) Key() string { return p.In + ":" + p.Name }

type RequestBody struct {
	Description string
	Required    bool
	Content     *Map[*MediaType]
}

type Response struct {
	Description string
	Headers     *Map[*Header]
	Content     *Map[*MediaType]
}

type Header struct {
	Description string
	Schema      *Schema
}

type MediaType struct {
	Schema *Schema
	// Example is the raw `example` value; nil when absent.
	Example  any
	Examples *Map[*Example]
}

type Example struct {
	Summary     string
	Description string
	// Value is the raw payload. Ignored when ExternalValue is set.
	Value         any
	ExternalValue string
}

type Schema struct {
	Type        string
	Format      string
	Description string
	Properties  *Map[*Schema]
	Items       *Schema
	Required    []string
	Enum        []any
	AllOf       []*Schema
	OneOf       []*Schema
	AnyOf       []*Schema
	// ReadOnly and WriteOnly are pointers so that allOf merging can tell an
	// explicit false from an absent keyword.
	ReadOnly  *bool
	WriteOnly *bool
	// Example is the raw `example` value; nil when absent.
	Example any
}

// IsReadOnly reports whether the schema is explicitly marked readOnly.
func (s *Schema) IsReadOnly() bool {
	return s != nil && s.ReadOnly != nil && *s.ReadOnly
}
