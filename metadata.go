package minapi

import (
	"reflect"
	"slices"
)

// Metadata is a documentation-facing fact about an endpoint. The set of
// implementations is closed: Accepts, ProducesResponse and ParameterDescription.
type Metadata interface {
	metadataKind() string
}

// Accepts declares the request body content types an endpoint consumes.
type Accepts struct {
	ContentTypes []string
	BodyType     reflect.Type
	Optional     bool
}

func (Accepts) metadataKind() string { return "accepts" }

// ProducesResponse declares a status code the endpoint may return, with the
// body type and content types written for it. BodyType is nil for
// responses without a body.
type ProducesResponse struct {
	StatusCode   int
	BodyType     reflect.Type
	ContentTypes []string
}

func (ProducesResponse) metadataKind() string { return "produces" }

// ParameterDescription declares a non-body parameter of the endpoint.
type ParameterDescription struct {
	Name     string
	Source   ParameterSource
	Type     reflect.Type
	Required bool
}

func (ParameterDescription) metadataKind() string { return "parameter" }

// ResultMetadataProvider is implemented by result types that describe the
// responses they produce. It is called on the zero value of the declared
// result type, once per endpoint.
type ResultMetadataProvider interface {
	PopulateResultMetadata(b *EndpointBuilder)
}

// ParameterMetadataProvider is implemented by binder types that describe what
// they accept. It is called on a pointer to the zero value, once per endpoint
// parameter.
type ParameterMetadataProvider interface {
	PopulateParameterMetadata(p *Parameter, b *EndpointBuilder)
}

// EndpointBuilder collects metadata for one endpoint while it is described.
type EndpointBuilder struct {
	Method  string
	Pattern string

	metadata []Metadata
	seen     map[reflect.Type]struct{}
}

func newEndpointBuilder(method, pattern string) *EndpointBuilder {
	return &EndpointBuilder{
		Method:  method,
		Pattern: pattern,
		seen:    make(map[reflect.Type]struct{}),
	}
}

// Add appends metadata entries. Entries are never removed or reordered.
func (b *EndpointBuilder) Add(m ...Metadata) {
	b.metadata = append(b.metadata, m...)
}

// Metadata returns the entries collected so far.
func (b *EndpointBuilder) Metadata() []Metadata {
	return slices.Clone(b.metadata)
}

// markResult records t and reports whether it was not yet seen.
func (b *EndpointBuilder) markResult(t reflect.Type) bool {
	if _, ok := b.seen[t]; ok {
		return false
	}
	b.seen[t] = struct{}{}
	return true
}

// DescribeResult adds the metadata declared by result type T. Union results
// call it for each alternative. Types without a ResultMetadataProvider add
// nothing, and a type already described for this endpoint is skipped.
func DescribeResult[T any](b *EndpointBuilder) {
	if !b.markResult(reflect.TypeFor[T]()) {
		return
	}

	var zero T
	if p, ok := any(zero).(ResultMetadataProvider); ok {
		p.PopulateResultMetadata(b)
		return
	}
	if p, ok := any(&zero).(ResultMetadataProvider); ok {
		p.PopulateResultMetadata(b)
	}
}

// describeParameter adds the metadata declared by the binder behind p. Bare
// fields are described from their binding plan.
func describeParameter(p *Parameter, b *EndpointBuilder) {
	ptr := reflect.New(p.Type).Interface()
	if mp, ok := ptr.(ParameterMetadataProvider); ok {
		mp.PopulateParameterMetadata(p, b)
		return
	}
	if _, ok := ptr.(RequestBinder); ok {
		return
	}
	describeDefault(p, p.Type, b)
}

// describeDefault adds the metadata the default binder implies for a value of type t.
func describeDefault(p *Parameter, t reflect.Type, b *EndpointBuilder) {
	if p.resolvedSource(t) == SourceBody {
		b.Add(Accepts{
			ContentTypes: []string{MediaTypeJSON},
			BodyType:     t,
			Optional:     !p.Required,
		})
		return
	}
	b.Add(ParameterDescription{
		Name:     p.Name,
		Source:   p.resolvedSource(t),
		Type:     t,
		Required: p.Required || p.resolvedSource(t) == SourcePath,
	})
}

// ResponseDescription is the documentation shape of a single result variant.
type ResponseDescription struct {
	StatusCode   int
	BodyType     reflect.Type
	ContentTypes []string
}

func (d ResponseDescription) metadata() ProducesResponse {
	return ProducesResponse{StatusCode: d.StatusCode, BodyType: d.BodyType, ContentTypes: d.ContentTypes}
}

// bodyType returns the reflect type of T, or nil for Void.
func bodyType[T any]() reflect.Type {
	t := reflect.TypeFor[T]()
	if t == reflect.TypeFor[Void]() {
		return nil
	}
	return t
}

func jsonContentTypes[T any]() []string {
	if bodyType[T]() == nil {
		return nil
	}
	return []string{MediaTypeJSON}
}
