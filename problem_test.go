package minapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/minapi"
)

func serveProblem(t *testing.T, p minapi.Result, header http.Header) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	r := minapi.New(minapi.WithLogger(discardLogger()))
	minapi.Get(r, "/problem", func(context.Context, *minapi.Void) (minapi.Result, error) {
		return p, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/problem", nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc), rec.Body.String())
	return rec, doc
}

func TestProblem_defaults(t *testing.T) {
	t.Parallel()

	rec, doc := serveProblem(t, minapi.Problem{}, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.InDelta(t, 500, doc["status"], 0)
	assert.Equal(t, "An error occurred while processing your request.", doc["title"])
	assert.Equal(t, "https://tools.ietf.org/html/rfc7231#section-6.6.1", doc["type"])

	id := rec.Header().Get(minapi.DefaultRequestIDHeader)
	require.NotEmpty(t, id)
	assert.Equal(t, id, doc["requestId"])
	assert.Equal(t, 1, strings.Count(rec.Body.String(), `"requestId"`))
}

func TestProblem_keeps_existing_request_id(t *testing.T) {
	t.Parallel()

	ext := map[string]any{"requestId": "mine", "tenant": "acme"}
	rec, doc := serveProblem(t, minapi.Problem{Status: http.StatusConflict, Extensions: ext}, nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "mine", doc["requestId"])
	assert.Equal(t, "acme", doc["tenant"])
	assert.Equal(t, "Conflict", doc["title"])
	assert.Equal(t, 1, strings.Count(rec.Body.String(), `"requestId"`))
	assert.Equal(t, map[string]any{"requestId": "mine", "tenant": "acme"}, ext)
}

func TestProblem_does_not_mutate_extensions(t *testing.T) {
	t.Parallel()

	ext := map[string]any{"tenant": "acme"}
	p := minapi.Problem{Status: http.StatusBadRequest, Extensions: ext}

	_, first := serveProblem(t, p, http.Header{"X-Request-Id": {"one"}})
	_, second := serveProblem(t, p, http.Header{"X-Request-Id": {"two"}})

	assert.Equal(t, "one", first["requestId"])
	assert.Equal(t, "two", second["requestId"])
	assert.Equal(t, map[string]any{"tenant": "acme"}, ext)
}

func TestProblem_extensions_never_replace_members(t *testing.T) {
	t.Parallel()

	p := minapi.Problem{
		Status:     http.StatusNotFound,
		Detail:     "no such user",
		Extensions: map[string]any{"status": 200, "title": "hijacked", "retry": true},
	}
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":404,"detail":"no such user","retry":true}`, string(b))
}

func TestProblem_error(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err    error
		msg    string
		status int
	}{
		"detail":     {err: minapi.Problem{Status: 409, Detail: "taken"}, msg: "taken", status: 409},
		"title":      {err: minapi.Problem{Title: "Oops"}, msg: "Oops", status: 500},
		"bare":       {err: minapi.Problem{Status: 404}, msg: "Not Found", status: 404},
		"validation": {err: minapi.ValidationProblem{}, msg: minapi.ValidationProblemTitle, status: 400},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.EqualError(t, tc.err, tc.msg)
			assert.Equal(t, tc.status, minapi.ErrorStatus(tc.err))
		})
	}
}

func TestValidationProblem_write(t *testing.T) {
	t.Parallel()

	rec, doc := serveProblem(t, minapi.ValidationProblem{
		Errors: map[string][]string{"email": {"is required"}},
	}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, minapi.ValidationProblemTitle, doc["title"])
	assert.Equal(t, "https://tools.ietf.org/html/rfc7231#section-6.5.1", doc["type"])
	assert.Equal(t, map[string]any{"email": []any{"is required"}}, doc["errors"])
	assert.NotEmpty(t, doc["requestId"])
}

func TestProblemTitle_unknown_status(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Not Found", minapi.ProblemTitle(http.StatusNotFound))
	assert.Empty(t, minapi.ProblemTitle(http.StatusTooManyRequests))
	assert.Empty(t, minapi.ProblemType(799))
}

func TestProblemFromError(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err    error
		expect minapi.Result
	}{
		"problem as is": {
			err:    minapi.Problem{Status: 409, Detail: "taken"},
			expect: minapi.Problem{Status: 409, Detail: "taken"},
		},
		"wrapped validation problem": {
			err:    errors.Join(errors.New("ctx"), minapi.ValidationProblem{Errors: map[string][]string{"a": {"b"}}}),
			expect: minapi.ValidationProblem{Errors: map[string][]string{"a": {"b"}}},
		},
		"binding error": {
			err:    &minapi.BindingError{Status: 415, Parameter: "body", Detail: "expected JSON", Err: errors.New("secret")},
			expect: minapi.Problem{Status: 415, Detail: "expected JSON"},
		},
		"http error": {
			err:    minapi.Error(http.StatusForbidden, "not yours"),
			expect: minapi.Problem{Status: 403, Detail: "not yours"},
		},
		"plain error hides internals": {
			err:    errors.New("pq: connection refused"),
			expect: minapi.Problem{Status: 500},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expect, minapi.ProblemFromError(tc.err))
		})
	}
}
