package handler_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/markket/storefront-api/internal/controllers/cms"
	"github.com/markket/storefront-api/internal/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upstreamRequest struct {
	Method        string
	Path          string
	EscapedPath   string
	RawQuery      string
	Body          string
	Authorization []string
	ContentType   string
}

func newUpstream(t *testing.T, status int, body string) (*httptest.Server, func() []upstreamRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []upstreamRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		seen = append(seen, upstreamRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			EscapedPath:   r.URL.EscapedPath(),
			RawQuery:      r.URL.RawQuery,
			Body:          string(b),
			Authorization: r.Header.Values("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
		})
		mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []upstreamRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]upstreamRequest(nil), seen...)
	}
}

func TestProxy_PreservesRequest(t *testing.T) {
	testCases := []struct {
		Name          string
		Method        string
		Target        string
		Body          string
		Authorization string
		ExpectBody    string
	}{
		{
			Name:   "get_with_query",
			Method: http.MethodGet,
			Target: "/api/markket/stores?filters[slug][$eq]=shop&populate=*",
		},
		{
			Name:          "get_with_authorization",
			Method:        http.MethodGet,
			Target:        "/api/markket/users/me",
			Authorization: "Bearer caller-token",
		},
		{
			Name:       "post_body",
			Method:     http.MethodPost,
			Target:     "/api/markket/orders",
			Body:       `{"data": {"amount": 12.50, "items": [1, 2, 3], "note": "<gift>"}}`,
			ExpectBody: `{"data":{"amount":12.50,"items":[1,2,3],"note":"<gift>"}}`,
		},
		{
			Name:          "put_body",
			Method:        http.MethodPut,
			Target:        "/api/markket/stores/7?locale=en",
			Body:          `{"data":{"title":"New"}}`,
			ExpectBody:    `{"data":{"title":"New"}}`,
			Authorization: "Bearer owner",
		},
		{
			Name:       "patch_body",
			Method:     http.MethodPatch,
			Target:     "/api/markket/articles/3",
			Body:       `{"data":{"big":12345678901234567890}}`,
			ExpectBody: `{"data":{"big":12345678901234567890}}`,
		},
		{
			Name:   "encoded_slash_stays_in_segment",
			Method: http.MethodGet,
			Target: "/api/markket/pages/a%2Fb?locale=en",
		},
		{
			Name:   "encoded_space",
			Method: http.MethodGet,
			Target: "/api/markket/stores/my%20store",
		},
		{
			Name:   "delete_without_body",
			Method: http.MethodDelete,
			Target: "/api/markket/articles/3",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			upstream, seen := newUpstream(t, http.StatusOK, `{"data":{"id":1}}`)
			ctl, err := cms.NewController(upstream.URL)
			require.NoError(t, err)
			d := newDeps()
			h := d.handler(t, handler.WithForwarder(ctl))

			var body io.Reader
			if tc.Body != "" {
				body = strings.NewReader(tc.Body)
			}
			req := httptest.NewRequest(tc.Method, tc.Target, body)
			req.Header.Set("Cookie", "session=secret")
			req.Header.Set("X-Custom", "dropped")
			if tc.Authorization != "" {
				req.Header.Set("Authorization", tc.Authorization)
			}
			rec := httptest.NewRecorder()
			h.Proxy(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"data":{"id":1}}`, rec.Body.String())

			calls := seen()
			require.Len(t, calls, 1)
			call := calls[0]
			assert.Equal(t, tc.Method, call.Method)
			assert.Equal(t, "/api/"+strings.TrimPrefix(req.URL.Path, handler.ProxyPrefix), call.Path)
			assert.Equal(t, "/api/"+strings.TrimPrefix(req.URL.EscapedPath(), handler.ProxyPrefix), call.EscapedPath)
			assert.Equal(t, req.URL.RawQuery, call.RawQuery)
			assert.Equal(t, tc.ExpectBody, call.Body)
			assert.Equal(t, "application/json", call.ContentType)
			if tc.Authorization == "" {
				assert.Empty(t, call.Authorization)
			} else {
				assert.Equal(t, []string{tc.Authorization}, call.Authorization)
			}
		})
	}
}

func TestProxy_RelaysUpstream(t *testing.T) {
	testCases := []struct {
		Name         string
		Status       int
		Body         string
		ExpectStatus int
		ExpectBody   string
	}{
		{Name: "not_found", Status: http.StatusNotFound, Body: `{"error":{"status":404}}`, ExpectStatus: http.StatusNotFound, ExpectBody: `{"error":{"status":404}}`},
		{Name: "created", Status: http.StatusCreated, Body: `{"data":{"id":9}}`, ExpectStatus: http.StatusCreated, ExpectBody: `{"data":{"id":9}}`},
		{Name: "empty_body", Status: http.StatusNoContent, Body: ``, ExpectStatus: http.StatusNoContent, ExpectBody: ``},
		{Name: "non_json_body", Status: http.StatusBadGateway, Body: `<html>bad gateway</html>`, ExpectStatus: http.StatusInternalServerError, ExpectBody: `{"error":"Failed to fetch data"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			d := newDeps()
			d.forwarder.resp = &cms.ForwardResponse{StatusCode: tc.Status, Body: []byte(tc.Body)}
			h := d.handler(t)

			rec := httptest.NewRecorder()
			h.Proxy(rec, httptest.NewRequest(http.MethodGet, "/api/markket/pages", nil))

			assert.Equal(t, tc.ExpectStatus, rec.Code)
			assert.Equal(t, tc.ExpectBody, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestProxy_Failures(t *testing.T) {
	testCases := []struct {
		Name          string
		Method        string
		Body          string
		ForwardErr    error
		ExpectForward bool
	}{
		{Name: "transport_error", Method: http.MethodGet, ForwardErr: errors.New("dial tcp: connection refused"), ExpectForward: true},
		{Name: "invalid_json_body", Method: http.MethodPost, Body: `{"data":`},
		{Name: "trailing_data", Method: http.MethodPost, Body: `{"a":1} {"b":2}`},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			d := newDeps()
			d.forwarder.err = tc.ForwardErr
			h := d.handler(t)

			rec := httptest.NewRecorder()
			h.Proxy(rec, httptest.NewRequest(tc.Method, "/api/markket/orders", strings.NewReader(tc.Body)))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"Failed to fetch data"}`, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "connection refused")
			assert.Equal(t, tc.ExpectForward, len(d.forwarder.requests) == 1)
		})
	}
}

func TestProxy_EmptyBodyIsNotForwarded(t *testing.T) {
	d := newDeps()
	h := d.handler(t)

	rec := httptest.NewRecorder()
	h.Proxy(rec, httptest.NewRequest(http.MethodPost, "/api/markket/orders", strings.NewReader("  ")))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, d.forwarder.requests, 1)
	assert.Nil(t, d.forwarder.requests[0].Body)
	assert.Equal(t, "orders", d.forwarder.requests[0].Path)
}
