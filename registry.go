package minapi

import (
	"net/http"
	"reflect"
	"sync"
)

// ParameterBinder binds a value of type T from a request. Registered
// binders take precedence over the default binder for Bind[T] parameters.
type ParameterBinder[T any] interface {
	Bind(r *http.Request, p *Parameter) (T, error)
}

// BinderFunc adapts a function to ParameterBinder.
type BinderFunc[T any] func(r *http.Request, p *Parameter) (T, error)

// Bind calls f.
func (f BinderFunc[T]) Bind(r *http.Request, p *Parameter) (T, error) {
	return f(r, p)
}

// BinderRegistry maps value types to custom binders. It is populated at
// startup and read concurrently by every request.
type BinderRegistry struct {
	mu      sync.RWMutex
	binders map[reflect.Type]any
}

// NewBinderRegistry returns an empty registry.
func NewBinderRegistry() *BinderRegistry {
	return &BinderRegistry{binders: make(map[reflect.Type]any)}
}

// RegisterBinder registers the binder for T. A later registration for the
// same type replaces the earlier one.
func RegisterBinder[T any](reg *BinderRegistry, b ParameterBinder[T]) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.binders[reflect.TypeFor[T]()] = b
}

// LookupBinder returns the binder registered for T.
func LookupBinder[T any](reg *BinderRegistry) (ParameterBinder[T], bool) {
	if reg == nil {
		return nil, false
	}

	reg.mu.RLock()
	b, ok := reg.binders[reflect.TypeFor[T]()]
	reg.mu.RUnlock()

	if !ok {
		return nil, false
	}
	pb, ok := b.(ParameterBinder[T])
	return pb, ok
}

// Len reports the number of registered binders.
func (reg *BinderRegistry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.binders)
}
