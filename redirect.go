package minapi

import (
	"fmt"
	"net/http"
	"strings"
)

// Redirect sends the client to URL. The status follows from Permanent and
// PreserveMethod: 302, 301, 307 or 308.
type Redirect struct {
	URL            string
	Permanent      bool
	PreserveMethod bool
}

func (rd Redirect) WriteResult(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Location", rd.URL)
	w.WriteHeader(redirectStatus(rd.Permanent, rd.PreserveMethod))
	return nil
}

func (rd Redirect) Describe() ResponseDescription {
	return ResponseDescription{StatusCode: redirectStatus(rd.Permanent, rd.PreserveMethod)}
}

func (rd Redirect) PopulateResultMetadata(b *EndpointBuilder) { b.Add(rd.Describe().metadata()) }

// RedirectToRoute redirects to the URL of a named route. Writing fails with
// ErrMissingRouteMatch when no route has that name or a parameter is missing.
type RedirectToRoute struct {
	RouteName      string
	Params         map[string]string
	Permanent      bool
	PreserveMethod bool
}

func (rd RedirectToRoute) WriteResult(w http.ResponseWriter, r *http.Request) error {
	url, err := urlFor(r, rd.RouteName, rd.Params)
	if err != nil {
		return err
	}
	return Redirect{URL: url, Permanent: rd.Permanent, PreserveMethod: rd.PreserveMethod}.WriteResult(w, r)
}

func (rd RedirectToRoute) Describe() ResponseDescription {
	return ResponseDescription{StatusCode: redirectStatus(rd.Permanent, rd.PreserveMethod)}
}

func (rd RedirectToRoute) PopulateResultMetadata(b *EndpointBuilder) { b.Add(rd.Describe().metadata()) }

func redirectStatus(permanent, preserveMethod bool) int {
	switch {
	case permanent && preserveMethod:
		return http.StatusPermanentRedirect
	case permanent:
		return http.StatusMovedPermanently
	case preserveMethod:
		return http.StatusTemporaryRedirect
	default:
		return http.StatusFound
	}
}

// LinkGenerator builds URLs for named routes.
type LinkGenerator interface {
	URLFor(name string, params map[string]string) (string, error)
}

func urlFor(r *http.Request, name string, params map[string]string) (string, error) {
	lg := resolveOr[LinkGenerator](r, nil)
	if lg == nil {
		return "", fmt.Errorf("%w: %q (no link generator)", ErrMissingRouteMatch, name)
	}
	return lg.URLFor(name, params)
}

// HTTPSRedirect returns middleware that permanently redirects plain HTTP
// requests to HTTPS.
func HTTPSRedirect() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil && r.Header.Get("X-Forwarded-Proto") != "https" {
				//nolint:errcheck,gosec // header-only write
				Redirect{URL: "https://" + r.Host + r.URL.RequestURI(), Permanent: true, PreserveMethod: true}.WriteResult(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TrailingSlash returns middleware that strips trailing slashes with a
// permanent redirect.
func TrailingSlash() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/" && strings.HasSuffix(r.URL.Path, "/") {
				target := strings.TrimRight(r.URL.Path, "/")
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				//nolint:errcheck,gosec // header-only write
				Redirect{URL: target, Permanent: true}.WriteResult(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
