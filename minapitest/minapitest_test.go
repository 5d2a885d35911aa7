package minapitest_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/minapi"
	"github.com/bjaus/minapi/minapitest"
)

type note struct {
	ID   string `json:"id"`
	Text string `json:"text" validate:"required"`
}

type noteResult = minapi.Results2[minapi.Created[note], minapi.ValidationProblem]

func noteRouter() *minapi.Router {
	r := minapi.New()
	minapi.Post(r, "/notes", func(_ context.Context, in *struct {
		Note minapi.Validated[note]
	}) (noteResult, error) {
		if !in.Note.IsValid() {
			return noteResult{}.From2(minapi.ValidationProblem{Errors: in.Note.Errors}), nil
		}
		n := in.Note.Value
		n.ID = "n-1"
		return noteResult{}.From1(minapi.Created[note]{Location: "/notes/n-1", Value: n}), nil
	})
	minapi.Post(r, "/tags", func(_ context.Context, in *struct {
		Tag minapi.Form[struct {
			Name string `json:"name"`
		}]
	}) (minapi.Text, error) {
		return minapi.Text{Body: in.Tag.Value.Name}, nil
	})
	minapi.Get(r, "/notes/{id}", func(_ context.Context, in *struct {
		ID string `path:"id"`
	}) (minapi.Ok[note], error) {
		if in.ID != "n-1" {
			return minapi.Ok[note]{}, minapi.Error(http.StatusNotFound, "no note "+in.ID)
		}
		return minapi.Ok[note]{Value: note{ID: "n-1", Text: "hello"}}, nil
	})
	minapi.Delete(r, "/notes/{id}", func(context.Context, *minapi.Void) (minapi.NoContent, error) {
		return minapi.NoContent{}, nil
	})
	return r
}

func TestClient(t *testing.T) {
	t.Parallel()

	c := minapitest.NewClient(t, noteRouter())

	created := minapitest.PostJSON[note, note](t, c, "/notes", note{Text: "hello"})
	require.Equal(t, http.StatusCreated, created.Status)
	require.NotNil(t, created.Body)
	assert.Equal(t, "n-1", created.Body.ID)
	assert.Equal(t, "/notes/n-1", created.Headers.Get("Location"))

	invalid := minapitest.PostJSON[note, note](t, c, "/notes", note{})
	require.Equal(t, http.StatusBadRequest, invalid.Status)
	assert.Contains(t, invalid.Problem(t), "errors")

	got := minapitest.Get[note](t, c, "/notes/n-1")
	require.Equal(t, http.StatusOK, got.Status)
	assert.Equal(t, "hello", got.Body.Text)

	missing := minapitest.Get[note](t, c, "/notes/n-2")
	require.Equal(t, http.StatusNotFound, missing.Status)
	assert.Equal(t, "no note n-2", missing.Problem(t)["detail"])

	tag := minapitest.PostForm[string](t, c, "/tags", url.Values{"name": {"go"}})
	require.Equal(t, http.StatusOK, tag.Status)
	assert.Nil(t, tag.Body)
	assert.Equal(t, "go", string(tag.Raw))

	deleted := minapitest.Delete[struct{}](t, c, "/notes/n-1")
	assert.Equal(t, http.StatusNoContent, deleted.Status)
}

func TestClient_default_headers(t *testing.T) {
	t.Parallel()

	r := minapi.New()
	minapi.Get(r, "/whoami", func(_ context.Context, in *struct {
		User string `header:"X-User"`
	}) (minapi.Text, error) {
		return minapi.Text{Body: in.User}, nil
	})

	c := minapitest.NewClient(t, r)
	c.Header.Set("X-User", "ann")

	resp := minapitest.Get[string](t, c, "/whoami")
	assert.Equal(t, "ann", string(resp.Raw))
	assert.NotEmpty(t, resp.Headers.Get(minapi.DefaultRequestIDHeader))
}
