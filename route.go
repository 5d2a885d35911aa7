package minapi

// RouteOption configures an endpoint at registration time.
type RouteOption func(*Endpoint)

// WithName names the route so CreatedAtRoute, RedirectToRoute and
// Router.URLFor can build URLs to it. Names must be unique per router.
func WithName(name string) RouteOption {
	return func(e *Endpoint) {
		e.Name = name
	}
}

// WithSummary sets the endpoint summary.
func WithSummary(s string) RouteOption {
	return func(e *Endpoint) {
		e.Summary = s
	}
}

// WithDescription sets the endpoint description.
func WithDescription(d string) RouteOption {
	return func(e *Endpoint) {
		e.Description = d
	}
}

// WithTags adds tags to the endpoint.
func WithTags(tags ...string) RouteOption {
	return func(e *Endpoint) {
		e.Tags = append(e.Tags, tags...)
	}
}

// WithDeprecated marks the endpoint as deprecated.
func WithDeprecated() RouteOption {
	return func(e *Endpoint) {
		e.Deprecated = true
	}
}

// WithMetadata appends metadata entries after the ones the endpoint's
// binders and results declare, e.g. for responses a RawHandler produces.
func WithMetadata(m ...Metadata) RouteOption {
	return func(e *Endpoint) {
		e.extra = append(e.extra, m...)
	}
}
