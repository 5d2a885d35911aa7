// Package minapitest provides typed test helpers for minapi routers.
package minapitest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/bjaus/minapi"
)

// Client wraps an httptest.Server for convenient endpoint testing.
type Client struct {
	Server *httptest.Server
	// Header is sent with every request.
	Header http.Header
}

// NewClient starts a test server for r and closes it when the test ends.
func NewClient(t testing.TB, r *minapi.Router) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &Client{Server: srv, Header: http.Header{}}
}

// Response holds a response and its body, decoded as T when it is JSON.
type Response[T any] struct {
	Status  int
	Headers http.Header
	Body    *T
	Raw     []byte
}

// Problem decodes the body as a problem document.
func (r *Response[T]) Problem(t testing.TB) map[string]any {
	t.Helper()
	var doc map[string]any
	if err := json.Unmarshal(r.Raw, &doc); err != nil {
		t.Fatalf("minapitest: decode problem: %v (body %q)", err, r.Raw)
	}
	return doc
}

// Get sends a GET request.
func Get[Resp any](t testing.TB, c *Client, path string) *Response[Resp] {
	t.Helper()
	return Do[Resp](t, c, http.MethodGet, path, "", nil)
}

// Delete sends a DELETE request.
func Delete[Resp any](t testing.TB, c *Client, path string) *Response[Resp] {
	t.Helper()
	return Do[Resp](t, c, http.MethodDelete, path, "", nil)
}

// PostJSON sends body as a JSON POST.
func PostJSON[Req, Resp any](t testing.TB, c *Client, path string, body Req) *Response[Resp] {
	t.Helper()
	return sendJSON[Resp](t, c, http.MethodPost, path, body)
}

// PutJSON sends body as a JSON PUT.
func PutJSON[Req, Resp any](t testing.TB, c *Client, path string, body Req) *Response[Resp] {
	t.Helper()
	return sendJSON[Resp](t, c, http.MethodPut, path, body)
}

// PostForm sends form as application/x-www-form-urlencoded.
func PostForm[Resp any](t testing.TB, c *Client, path string, form url.Values) *Response[Resp] {
	t.Helper()
	return Do[Resp](t, c, http.MethodPost, path, minapi.MediaTypeURLEncoded, strings.NewReader(form.Encode()))
}

// PostText sends body with the given content type.
func PostText[Resp any](t testing.TB, c *Client, path, contentType, body string) *Response[Resp] {
	t.Helper()
	return Do[Resp](t, c, http.MethodPost, path, contentType, strings.NewReader(body))
}

func sendJSON[Resp any](t testing.TB, c *Client, method, path string, body any) *Response[Resp] {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("minapitest: marshal request body: %v", err)
	}
	return Do[Resp](t, c, method, path, minapi.MediaTypeJSON, bytes.NewReader(b))
}

// Do sends a request and reads the whole response.
func Do[Resp any](t testing.TB, c *Client, method, path, contentType string, body io.Reader) *Response[Resp] {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, c.Server.URL+path, body)
	if err != nil {
		t.Fatalf("minapitest: create request: %v", err)
	}
	for k, vs := range c.Header {
		req.Header[k] = vs
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	client := *c.Server.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("minapitest: execute request: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.Errorf("minapitest: close body: %v", closeErr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("minapitest: read body: %v", err)
	}

	result := &Response[Resp]{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Raw:     raw,
	}

	ct := minapi.ParseMediaType(resp.Header.Get("Content-Type")).MediaType
	if len(raw) > 0 && (ct == minapi.MediaTypeJSON || strings.HasSuffix(ct, "+json")) {
		var decoded Resp
		if err := json.Unmarshal(raw, &decoded); err == nil {
			result.Body = &decoded
		}
	}
	return result
}
