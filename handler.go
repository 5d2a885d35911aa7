package minapi

import (
	"context"
	"net/http"
)

// Void is the input type of handlers that bind nothing, and the value type
// of results without a body (Ok[Void] writes a bare 200).
type Void struct{}

// Handler is the typed handler signature. In is a struct whose fields are
// binders (Body[T], Form[T], Bind[T], ...) or plain values bound by the
// default binder; Out is the result, usually a union of every result the
// handler can produce. Handlers never see the response writer.
type Handler[In any, Out Result] func(ctx context.Context, in *In) (Out, error)

// RawHandler is an escape hatch for handlers that need the raw http primitives.
type RawHandler func(w http.ResponseWriter, r *http.Request)
