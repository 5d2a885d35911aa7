package minapi

import (
	"cmp"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"slices"

	"gopkg.in/yaml.v3"
)

// Catalog is a machine-readable export of every endpoint's metadata, for
// documentation generators and contract tests.
type Catalog struct {
	Endpoints []CatalogEndpoint `json:"endpoints" yaml:"endpoints"`
}

// CatalogEndpoint is one endpoint in the catalog.
type CatalogEndpoint struct {
	Method      string             `json:"method" yaml:"method"`
	Pattern     string             `json:"pattern" yaml:"pattern"`
	Name        string             `json:"name,omitempty" yaml:"name,omitempty"`
	Summary     string             `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string           `json:"tags,omitempty" yaml:"tags,omitempty"`
	Deprecated  bool               `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Parameters  []CatalogParameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Accepts     []CatalogBody      `json:"accepts,omitempty" yaml:"accepts,omitempty"`
	Responses   []CatalogResponse  `json:"responses,omitempty" yaml:"responses,omitempty"`
}

// CatalogParameter is a non-body parameter.
type CatalogParameter struct {
	Name     string     `json:"name" yaml:"name"`
	In       string     `json:"in" yaml:"in"`
	Required bool       `json:"required,omitempty" yaml:"required,omitempty"`
	Schema   JSONSchema `json:"schema" yaml:"schema"`
}

// CatalogBody is an accepted request body.
type CatalogBody struct {
	ContentTypes []string    `json:"contentTypes" yaml:"contentTypes"`
	Optional     bool        `json:"optional,omitempty" yaml:"optional,omitempty"`
	Schema       *JSONSchema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// CatalogResponse is a possible response.
type CatalogResponse struct {
	Status       int         `json:"status" yaml:"status"`
	ContentTypes []string    `json:"contentTypes,omitempty" yaml:"contentTypes,omitempty"`
	Schema       *JSONSchema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// Catalog builds the catalog of every registered endpoint, ordered by
// pattern then method.
func (r *Router) Catalog() Catalog {
	endpoints := r.Endpoints()
	slices.SortStableFunc(endpoints, func(a, b *Endpoint) int {
		return cmp.Or(cmp.Compare(a.Pattern, b.Pattern), cmp.Compare(a.Method, b.Method))
	})

	c := Catalog{Endpoints: make([]CatalogEndpoint, 0, len(endpoints))}
	for _, e := range endpoints {
		c.Endpoints = append(c.Endpoints, catalogEndpoint(e))
	}
	return c
}

func catalogEndpoint(e *Endpoint) CatalogEndpoint {
	ce := CatalogEndpoint{
		Method:      e.Method,
		Pattern:     e.Pattern,
		Name:        e.Name,
		Summary:     e.Summary,
		Description: e.Description,
		Tags:        e.Tags,
		Deprecated:  e.Deprecated,
	}

	for _, m := range e.Metadata() {
		switch m := m.(type) {
		case ParameterDescription:
			ce.Parameters = append(ce.Parameters, CatalogParameter{
				Name:     m.Name,
				In:       m.Source.String(),
				Required: m.Required,
				Schema:   SchemaFor(m.Type),
			})
		case Accepts:
			ce.Accepts = append(ce.Accepts, CatalogBody{
				ContentTypes: m.ContentTypes,
				Optional:     m.Optional,
				Schema:       schemaPtr(m),
			})
		case ProducesResponse:
			ce.Responses = append(ce.Responses, CatalogResponse{
				Status:       m.StatusCode,
				ContentTypes: m.ContentTypes,
				Schema:       responseSchema(m),
			})
		}
	}
	return ce
}

func schemaPtr(a Accepts) *JSONSchema {
	if a.BodyType == nil {
		return nil
	}
	s := SchemaFor(a.BodyType)
	return &s
}

func responseSchema(p ProducesResponse) *JSONSchema {
	if p.BodyType == nil {
		return nil
	}
	s := SchemaFor(p.BodyType)
	return &s
}

// WriteCatalog writes the catalog as indented JSON to w.
func (r *Router) WriteCatalog(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Catalog())
}

// WriteCatalogYAML writes the catalog as YAML to w.
func (r *Router) WriteCatalogYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r.Catalog()); err != nil {
		return err
	}
	return enc.Close()
}

// ServeCatalog registers a GET endpoint at pattern that serves the catalog as JSON.
func (r *Router) ServeCatalog(pattern string) *Endpoint {
	return Get(r, pattern, func(context.Context, *Void) (JSON[Catalog], error) {
		return JSON[Catalog]{Value: r.Catalog()}, nil
	})
}

// ServeCatalogYAML registers a GET endpoint at pattern that serves the catalog as YAML.
func (r *Router) ServeCatalogYAML(pattern string) *Endpoint {
	return Raw(r, http.MethodGet, pattern, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		if err := r.WriteCatalogYAML(w); err != nil {
			resolveOr(req, r.logger).ErrorContext(req.Context(), "write catalog failed", "error", err)
		}
	}, WithMetadata(ProducesResponse{
		StatusCode:   http.StatusOK,
		ContentTypes: []string{"application/yaml"},
	}))
}
