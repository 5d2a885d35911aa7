package minapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bjaus/minapi"
)

func catalogRouter() *minapi.Router {
	r := minapi.New()
	minapi.Put(r, "/users/{id}", updateUser, minapi.WithName("updateUser"), minapi.WithTags("users"), minapi.WithSummary("Update a user"))
	minapi.Get(r, "/users/{id}", func(context.Context, *struct {
		ID string `path:"id"`
	}) (getUserResult, error) {
		return getUserResult{}.From2(minapi.NotFound{}), nil
	})
	minapi.Post(r, "/avatars", func(context.Context, *struct {
		Upload minapi.Form[struct {
			Caption string `json:"caption" maxLength:"80"`
		}]
	}) (minapi.NoContent, error) {
		return minapi.NoContent{}, nil
	})
	return r
}

func TestRouter_Catalog(t *testing.T) {
	t.Parallel()

	c := catalogRouter().Catalog()
	require.Len(t, c.Endpoints, 3)

	var order []string
	for _, e := range c.Endpoints {
		order = append(order, e.Method+" "+e.Pattern)
	}
	assert.Equal(t, []string{"POST /avatars", "GET /users/{id}", "PUT /users/{id}"}, order)

	put := c.Endpoints[2]
	assert.Equal(t, "updateUser", put.Name)
	assert.Equal(t, "Update a user", put.Summary)
	assert.Equal(t, []string{"users"}, put.Tags)
	require.Len(t, put.Parameters, 3)
	assert.Equal(t, minapi.CatalogParameter{Name: "id", In: "path", Required: true, Schema: minapi.JSONSchema{Type: "string"}}, put.Parameters[0])
	require.Len(t, put.Accepts, 1)
	assert.Equal(t, []string{minapi.MediaTypeJSON}, put.Accepts[0].ContentTypes)
	require.NotNil(t, put.Accepts[0].Schema)
	assert.Equal(t, "object", put.Accepts[0].Schema.Type)
	assert.Len(t, put.Accepts[0].Schema.Properties, 3)
	assert.False(t, put.Accepts[0].Optional)

	var statuses []int
	for _, resp := range put.Responses {
		statuses = append(statuses, resp.Status)
	}
	assert.Equal(t, []int{200, 404, 400}, statuses)
	assert.Nil(t, put.Responses[1].Schema)

	avatars := c.Endpoints[0]
	require.Len(t, avatars.Accepts, 1)
	assert.Equal(t, []string{minapi.MediaTypeMultipart, minapi.MediaTypeURLEncoded}, avatars.Accepts[0].ContentTypes)
	caption := avatars.Accepts[0].Schema.Properties["caption"]
	require.NotNil(t, caption.MaxLength)
	assert.Equal(t, 80, *caption.MaxLength)
}

func TestRouter_WriteCatalog(t *testing.T) {
	t.Parallel()

	r := catalogRouter()

	var js bytes.Buffer
	require.NoError(t, r.WriteCatalog(&js))
	var fromJSON minapi.Catalog
	require.NoError(t, json.Unmarshal(js.Bytes(), &fromJSON))

	var ys bytes.Buffer
	require.NoError(t, r.WriteCatalogYAML(&ys))
	var fromYAML minapi.Catalog
	require.NoError(t, yaml.Unmarshal(ys.Bytes(), &fromYAML))

	assert.Equal(t, r.Catalog(), fromJSON)
	assert.Equal(t, fromJSON, fromYAML)
}

func TestRouter_ServeCatalog(t *testing.T) {
	t.Parallel()

	r := catalogRouter()
	r.ServeCatalog("/catalog.json")
	r.ServeCatalogYAML("/catalog.yaml")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var c minapi.Catalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Len(t, c.Endpoints, 5)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog.yaml", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	var y minapi.Catalog
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &y))
	assert.Len(t, y.Endpoints, 5)

	for _, e := range y.Endpoints {
		if e.Pattern == "/catalog.yaml" {
			require.Len(t, e.Responses, 1)
			assert.Equal(t, []string{"application/yaml"}, e.Responses[0].ContentTypes)
		}
	}
}
