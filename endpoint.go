package minapi

import (
	"reflect"
	"slices"
	"sync"
)

// Endpoint is a registered route and its binding plan. Its metadata is
// built on first use and cached for the life of the process.
type Endpoint struct {
	Method      string
	Pattern     string
	Name        string
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool

	// InputType and ResultType are the handler's In and Out types; both are
	// nil for raw handlers.
	InputType  reflect.Type
	ResultType reflect.Type

	params   []*Parameter
	describe func(*EndpointBuilder)
	extra    []Metadata

	once     sync.Once
	metadata []Metadata
}

// Parameters returns the binding plan of the handler's input fields.
func (e *Endpoint) Parameters() []*Parameter {
	return slices.Clone(e.params)
}

// Metadata returns what the endpoint accepts and produces: parameter
// metadata in field order, then result metadata, then entries added with
// WithMetadata. It is safe to call concurrently.
func (e *Endpoint) Metadata() []Metadata {
	e.once.Do(e.build)
	return slices.Clone(e.metadata)
}

func (e *Endpoint) build() {
	b := newEndpointBuilder(e.Method, e.Pattern)
	for _, p := range e.params {
		describeParameter(p, b)
	}
	if e.describe != nil {
		e.describe(b)
	}
	b.Add(e.extra...)
	e.metadata = b.metadata
}

// Responses returns the ProducesResponse entries of the endpoint's metadata.
func (e *Endpoint) Responses() []ProducesResponse {
	var out []ProducesResponse
	for _, m := range e.Metadata() {
		if pr, ok := m.(ProducesResponse); ok {
			out = append(out, pr)
		}
	}
	return out
}
