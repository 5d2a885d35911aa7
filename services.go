package minapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sync"
)

// ErrServiceNotRegistered is returned by Resolve when no service of the
// requested type has been provided.
var ErrServiceNotRegistered = errors.New("service not registered")

// Services is a minimal typed service locator. The router attaches one to
// every request so binders and results can fetch the registry, encoder,
// validator, logger and link generator they depend on.
type Services struct {
	mu sync.RWMutex
	m  map[reflect.Type]any
}

// NewServices returns an empty service locator.
func NewServices() *Services {
	return &Services{m: make(map[reflect.Type]any)}
}

// Provide registers v as the service for type T, replacing any earlier one.
func Provide[T any](s *Services, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[reflect.TypeFor[T]()] = v
}

// Resolve returns the service registered for type T.
func Resolve[T any](s *Services) (T, error) {
	var zero T
	if s == nil {
		return zero, fmt.Errorf("%w: %s", ErrServiceNotRegistered, reflect.TypeFor[T]())
	}

	s.mu.RLock()
	v, ok := s.m[reflect.TypeFor[T]()]
	s.mu.RUnlock()

	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrServiceNotRegistered, reflect.TypeFor[T]())
	}
	return v.(T), nil //nolint:forcetypeassert // keyed by T
}

// MustResolve is like Resolve but panics when the service is missing.
func MustResolve[T any](s *Services) T {
	v, err := Resolve[T](s)
	if err != nil {
		panic(err)
	}
	return v
}

type servicesKey struct{}

// WithServices returns a copy of ctx carrying s.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom returns the service locator attached to ctx, or nil.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// resolveOr fetches T from the request's services, falling back to def.
func resolveOr[T any](r *http.Request, def T) T {
	if r == nil {
		return def
	}
	v, err := Resolve[T](ServicesFrom(r.Context()))
	if err != nil {
		return def
	}
	return v
}
