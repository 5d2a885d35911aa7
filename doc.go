// Package minapi adds typed request binders and typed results to net/http.
//
// A handler declares its input as a struct of binders and its output as a
// Result, usually a union of every response it can produce:
//
//	type createIn struct {
//	    Org  string                   `path:"org"`
//	    Note minapi.Body[string]      `maxLength:"4096"`
//	    User minapi.Validated[User]
//	}
//
//	type createOut = minapi.Results3[minapi.Created[User], minapi.ValidationProblem, minapi.Conflict]
//
//	func create(ctx context.Context, in *createIn) (createOut, error) { ... }
//
//	r := minapi.New(minapi.WithLogger(logger))
//	minapi.Post(r, "/orgs/{org}/users", create, minapi.WithName("createUser"))
//
// Binders (Body, Form, JSONBody, Validated, Bind, SuppressBinding,
// SuppressDefaultResponse, ModelBinder, RawRequest) read their value from
// the request; plain fields fall back to the default binder, which reads
// the route, then the query string, then a JSON body. Bind[T] consults the
// BinderRegistry first, so a custom ParameterBinder can take over any type.
//
// Every binder and result also declares metadata (Accepts,
// ProducesResponse, ParameterDescription). An endpoint's metadata is built
// once from its static types and is exported by Router.Catalog.
//
// Binding failures and handler errors are written as
// application/problem+json documents carrying the request id.
package minapi
