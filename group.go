package minapi

import "net/http"

// Group registers endpoints under a shared path prefix with shared
// middleware and tags.
type Group struct {
	parent     Registrar
	prefix     string
	middleware []Middleware
	tags       []string
}

// GroupOption configures a Group.
type GroupOption func(*Group)

// WithGroupTags adds default tags to every endpoint in the group.
func WithGroupTags(tags ...string) GroupOption {
	return func(g *Group) {
		g.tags = append(g.tags, tags...)
	}
}

// WithGroupMiddleware adds middleware that runs only for the group's endpoints.
func WithGroupMiddleware(mw ...Middleware) GroupOption {
	return func(g *Group) {
		g.middleware = append(g.middleware, mw...)
	}
}

// Group creates a route group under prefix.
func (r *Router) Group(prefix string, opts ...GroupOption) *Group {
	return newGroup(r, prefix, opts)
}

// Group creates a nested group under g.
func (g *Group) Group(prefix string, opts ...GroupOption) *Group {
	return newGroup(g, prefix, opts)
}

func newGroup(parent Registrar, prefix string, opts []GroupOption) *Group {
	g := &Group{parent: parent, prefix: prefix}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Group) pathPrefix() string { return g.parent.pathPrefix() + g.prefix }

func (g *Group) addEndpoint(e *Endpoint, h http.Handler) {
	e.Tags = append(append([]string(nil), g.tags...), e.Tags...)
	for i := len(g.middleware) - 1; i >= 0; i-- {
		h = g.middleware[i](h)
	}
	g.parent.addEndpoint(e, h)
}
