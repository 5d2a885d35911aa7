package minapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/minapi"
)

type signupForm struct {
	Email   string `json:"email"`
	Age     int    `json:"age"`
	Terms   bool   `json:"terms"`
	Address struct {
		City string `json:"city"`
	} `json:"address"`
}

type signupIn struct {
	Signup minapi.Form[signupForm]
}

func signupRouter(t *testing.T, got *minapi.Form[signupForm]) *minapi.Router {
	t.Helper()
	r := minapi.New(minapi.WithLogger(discardLogger()))
	minapi.Post(r, "/signup", func(_ context.Context, in *signupIn) (minapi.NoContent, error) {
		*got = in.Signup
		return minapi.NoContent{}, nil
	})
	return r
}

func TestForm_urlencoded(t *testing.T) {
	t.Parallel()

	var got minapi.Form[signupForm]
	r := signupRouter(t, &got)

	form := url.Values{
		"email":        {"a@example.com"},
		"age":          {"42"},
		"terms":        {"true"},
		"Address.City": {"Oslo"},
	}
	req := httptest.NewRequest(http.MethodPost, "/signup?email=query@example.com", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", minapi.MediaTypeURLEncoded)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, "a@example.com", got.Value.Email)
	assert.Equal(t, 42, got.Value.Age)
	assert.True(t, got.Value.Terms)
	assert.Equal(t, "Oslo", got.Value.Address.City)
	assert.Empty(t, got.Files)
}

func TestForm_multipart_with_file(t *testing.T) {
	t.Parallel()

	var got minapi.Form[signupForm]
	r := signupRouter(t, &got)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("email", "b@example.com"))
	require.NoError(t, w.WriteField("address.city", "Bergen"))
	fw, err := w.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/signup", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, "b@example.com", got.Value.Email)
	assert.Equal(t, "Bergen", got.Value.Address.City)

	upload, err := got.File("avatar")
	require.NoError(t, err)
	assert.Equal(t, "me.png", upload.Filename)
	assert.Equal(t, int64(len("png-bytes")), upload.Size)

	f, err := upload.Open()
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	assert.Len(t, got.Uploads()["avatar"], 1)

	_, err = got.File("missing")
	require.ErrorIs(t, err, minapi.ErrNoFile)
}

func TestForm_failures(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		body        string
		contentType string
		status      int
		detail      string
	}{
		"json is not a form": {
			body:        `{"email":"a@example.com"}`,
			contentType: minapi.MediaTypeJSON,
			status:      http.StatusUnsupportedMediaType,
			detail:      "expected multipart/form-data or application/x-www-form-urlencoded request body",
		},
		"no content type": {
			body:   "email=a",
			status: http.StatusUnsupportedMediaType,
		},
		"value and object conflict": {
			body:        "address=x&address.city=Oslo",
			contentType: minapi.MediaTypeURLEncoded,
			status:      http.StatusBadRequest,
			detail:      "form fields conflict",
		},
		"shape mismatch": {
			body:        "age=old",
			contentType: minapi.MediaTypeURLEncoded,
			status:      http.StatusBadRequest,
			detail:      "form fields do not match the expected shape",
		},
		"numeric text into string field": {
			body:        "email=123",
			contentType: minapi.MediaTypeURLEncoded,
			status:      http.StatusBadRequest,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var got minapi.Form[signupForm]
			r := signupRouter(t, &got)

			req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(tc.body))
			if tc.contentType != "" {
				req.Header.Set("Content-Type", tc.contentType)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			if tc.detail != "" {
				var doc map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
				assert.Equal(t, tc.detail, doc["detail"])
			}
		})
	}
}

func TestForm_body_limit(t *testing.T) {
	t.Parallel()

	var got minapi.Form[signupForm]
	r := signupRouter(t, &got)
	r.Use(minapi.BodyLimit(16))

	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader("email="+strings.Repeat("a", 64)))
	req.Header.Set("Content-Type", minapi.MediaTypeURLEncoded)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForm_required(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		body   string
		status int
	}{
		"present": {body: "email=a@example.com", status: http.StatusNoContent},
		"empty":   {body: "", status: http.StatusBadRequest},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			called := false
			r := minapi.New(minapi.WithLogger(discardLogger()))
			minapi.Post(r, "/signup", func(context.Context, *struct {
				Form minapi.Form[signupForm] `required:"true"`
			}) (minapi.NoContent, error) {
				called = true
				return minapi.NoContent{}, nil
			})

			req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", minapi.MediaTypeURLEncoded)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.status == http.StatusNoContent, called)
			if tc.status == http.StatusBadRequest {
				var doc map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
				assert.Equal(t, "request body is required", doc["detail"])
			}
		})
	}
}
