package minapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/minapi"
)

type listIn struct {
	Org     string        `path:"org"`
	Limit   int           `query:"limit" default:"20"`
	Tags    []string      `query:"tag"`
	Since   time.Duration `query:"since"`
	Trace   string        `header:"X-Trace"`
	Session string        `cookie:"session"`
	Page    *int          `query:"page"`
}

func TestDefaultBinder_sources(t *testing.T) {
	t.Parallel()

	var got listIn
	r := minapi.New()
	minapi.Get(r, "/orgs/{org}/items", func(_ context.Context, in *listIn) (minapi.NoContent, error) {
		got = *in
		return minapi.NoContent{}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/orgs/acme/items?tag=a&tag=b&since=1m30s&page=3", nil)
	req.Header.Set("X-Trace", "t-1")
	req.AddCookie(&http.Cookie{Name: "session", Value: "s-1"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	require.NotNil(t, got.Page)
	assert.Equal(t, "acme", got.Org)
	assert.Equal(t, 20, got.Limit)
	assert.Equal(t, []string{"a", "b"}, got.Tags)
	assert.Equal(t, 90*time.Second, got.Since)
	assert.Equal(t, "t-1", got.Trace)
	assert.Equal(t, "s-1", got.Session)
	assert.Equal(t, 3, *got.Page)
}

func TestDefaultBinder_untagged_fields(t *testing.T) {
	t.Parallel()

	type In struct {
		ID   int
		Sort string
		User user
	}

	var got In
	r := minapi.New()
	minapi.Post(r, "/users/{id}", func(_ context.Context, in *In) (minapi.NoContent, error) {
		got = *in
		return minapi.NoContent{}, nil
	})

	req := httptest.NewRequest(http.MethodPost, "/users/42?sort=name", strings.NewReader(`{"id":"u1","name":"Ann"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, In{ID: 42, Sort: "name", User: user{ID: "u1", Name: "Ann"}}, got)
}

func TestDefaultBinder_failures(t *testing.T) {
	t.Parallel()

	type In struct {
		ID    int    `path:"id"`
		Limit int    `query:"limit"`
		Key   string `header:"X-Key" required:"true"`
	}

	r := minapi.New(minapi.WithLogger(discardLogger()))
	minapi.Get(r, "/items/{id}", func(context.Context, *In) (minapi.NoContent, error) {
		return minapi.NoContent{}, nil
	})

	tests := map[string]struct {
		target string
		key    string
		status int
		detail string
	}{
		"bad path value":   {target: "/items/abc", key: "k", status: 400, detail: `invalid value for path parameter "id"`},
		"bad query value":  {target: "/items/1?limit=lots", key: "k", status: 400, detail: `invalid value for query parameter "limit"`},
		"missing required": {target: "/items/1", status: 400, detail: `missing required header parameter "X-Key"`},
		"all good":         {target: "/items/1?limit=5", key: "k", status: 204},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.key != "" {
				req.Header.Set("X-Key", tc.key)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			require.Equal(t, tc.status, rec.Code)
			if tc.detail == "" {
				return
			}
			var doc map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
			assert.Equal(t, tc.detail, doc["detail"])
			assert.Equal(t, "Bad Request", doc["title"])
		})
	}
}

func TestDefaultBinder_json_body_errors(t *testing.T) {
	t.Parallel()

	type In struct {
		User user `required:"true"`
	}

	r := minapi.New(minapi.WithLogger(discardLogger()))
	minapi.Post(r, "/users", func(context.Context, *In) (minapi.NoContent, error) {
		return minapi.NoContent{}, nil
	})

	tests := map[string]struct {
		body        string
		contentType string
		status      int
	}{
		"missing body":      {status: 400},
		"malformed json":    {body: `{"id":`, contentType: "application/json", status: 400},
		"wrong media type":  {body: `id=1`, contentType: "application/x-www-form-urlencoded", status: 415},
		"json suffix types": {body: `{"id":"1"}`, contentType: "application/merge-patch+json", status: 204},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(tc.body))
			if tc.contentType != "" {
				req.Header.Set("Content-Type", tc.contentType)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}

func TestDefaultBinderFunc_replaces_host_binding(t *testing.T) {
	t.Parallel()

	calls := 0
	db := minapi.DefaultBinderFunc(func(_ *http.Request, p *minapi.Parameter, target any) (int, error) {
		calls++
		if s, ok := target.(*string); ok {
			*s = "from-" + p.Name
		}
		return http.StatusOK, nil
	})

	type In struct {
		Name string `query:"name"`
	}

	var got string
	r := minapi.New(minapi.WithDefaultBinder(db))
	minapi.Get(r, "/hello", func(_ context.Context, in *In) (minapi.Text, error) {
		got = in.Name
		return minapi.Text{Body: in.Name}, nil
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hello?name=ignored", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "from-name", got)
}

type tenant struct {
	ID string
}

func tenantBinder(prefix string) minapi.BinderFunc[tenant] {
	return func(r *http.Request, _ *minapi.Parameter) (tenant, error) {
		id := r.Header.Get("X-Tenant")
		switch id {
		case "":
			return tenant{}, minapi.Error(http.StatusUnauthorized, "tenant required")
		case "bad":
			return tenant{}, errors.New("lookup failed")
		}
		return tenant{ID: prefix + id}, nil
	}
}

func TestBind_custom_binder(t *testing.T) {
	t.Parallel()

	type In struct {
		Tenant minapi.Bind[tenant]
		Limit  minapi.Bind[int] `query:"limit" default:"10"`
	}

	r := minapi.New(minapi.WithLogger(discardLogger()), minapi.WithBinder[tenant](tenantBinder("t-")))
	minapi.Get(r, "/whoami", func(_ context.Context, in *In) (minapi.Text, error) {
		return minapi.Text{Body: fmt.Sprintf("%s/%d", in.Tenant.Value.ID, in.Limit.Value)}, nil
	})

	tests := map[string]struct {
		tenant string
		status int
		body   string
	}{
		"bound":            {tenant: "acme", status: 200, body: "t-acme/10"},
		"binder status":    {status: 401},
		"binder plain err": {tenant: "bad", status: 400},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.tenant != "" {
				req.Header.Set("X-Tenant", tc.tenant)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, rec.Body.String())
			}
			assert.NotContains(t, rec.Body.String(), "lookup failed")
		})
	}
}

func TestBinderRegistry(t *testing.T) {
	t.Parallel()

	reg := minapi.NewBinderRegistry()
	_, ok := minapi.LookupBinder[tenant](reg)
	assert.False(t, ok)

	minapi.RegisterBinder[tenant](reg, tenantBinder("first-"))
	minapi.RegisterBinder[tenant](reg, tenantBinder("second-"))
	assert.Equal(t, 1, reg.Len())

	b, ok := minapi.LookupBinder[tenant](reg)
	require.True(t, ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Tenant", "x")
	v, err := b.Bind(req, &minapi.Parameter{Name: "tenant"})
	require.NoError(t, err)
	assert.Equal(t, "second-x", v.ID)

	_, ok = minapi.LookupBinder[string](reg)
	assert.False(t, ok)

	_, ok = minapi.LookupBinder[tenant](nil)
	assert.False(t, ok)
}

func TestBinderRegistry_concurrent(t *testing.T) {
	t.Parallel()

	reg := minapi.NewBinderRegistry()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			minapi.RegisterBinder[tenant](reg, tenantBinder(fmt.Sprint(i)))
		}()
		go func() {
			defer wg.Done()
			minapi.LookupBinder[tenant](reg)
		}()
	}
	wg.Wait()

	_, ok := minapi.LookupBinder[tenant](reg)
	assert.True(t, ok)
	assert.Equal(t, 1, reg.Len())
}
