// Package cms provides a Controller for the upstream headless CMS API.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/markket/storefront-api/internal/helpers"
	"github.com/markket/storefront-api/internal/models"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// ErrMissingAdminToken is returned when a privileged write is attempted without an admin token source.
var ErrMissingAdminToken = errors.New("missing CMS admin token")

// UpstreamStatusError is returned when the CMS answers with a non-2xx status.
type UpstreamStatusError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("cms responded with status %d: %s", e.StatusCode, helpers.Truncate(e.Body, 256))
}

// UnauthorizedError is returned when the CMS rejects the caller's credentials.
type UnauthorizedError struct {
	StatusCode int
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("cms rejected credentials with status %d", e.StatusCode)
}

// ForwardRequest describes a request relayed verbatim to the CMS API.
type ForwardRequest struct {
	Method string
	// Path is relative to the API prefix and already escaped.
	Path          string
	RawQuery      string
	Authorization string
	Body          []byte
}

// ForwardResponse is the unmodified upstream answer to a ForwardRequest.
type ForwardResponse struct {
	StatusCode int
	Body       []byte
}

// Controller talks to the CMS REST API.
type Controller struct {
	logger      *slog.Logger
	baseURL     *url.URL
	apiPrefix   string
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
}

// Option is a functional option used to configure a Controller instance.
type Option func(*Controller)

// NewController initializes a new Controller for the CMS located at baseURL.
func NewController(baseURL string, opts ...Option) (*Controller, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid CMS base URL")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid CMS base URL %q: scheme and host are required", baseURL)
	}
	_inst := &Controller{baseURL: u, apiPrefix: "/api/"}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	if _inst.httpClient == nil {
		_inst.httpClient = &http.Client{}
	}
	return _inst, nil
}

// URL builds the absolute upstream URL for an escaped API path relative to the configured prefix. Escaped
// separators such as %2F stay inside their segment.
func (c *Controller) URL(escapedPath, rawQuery string) string {
	prefix := "/" + strings.Trim(c.apiPrefix, "/") + "/"
	if prefix == "//" {
		prefix = "/"
	}
	target := *c.baseURL
	rawPath := c.baseURL.EscapedPath() + prefix + strings.TrimLeft(escapedPath, "/")
	if path, err := url.PathUnescape(rawPath); err == nil {
		target.Path = path
		target.RawPath = rawPath
	} else {
		target.Path = rawPath
		target.RawPath = ""
	}
	target.RawQuery = rawQuery
	return target.String()
}

// Forward relays req to the CMS and returns the raw upstream answer. Only transport failures are errors; any
// upstream status is returned as-is.
func (c *Controller) Forward(ctx context.Context, req ForwardRequest) (*ForwardResponse, error) {
	var body io.Reader
	if len(req.Body) > 0 && req.Method != http.MethodGet && req.Method != http.MethodHead {
		body = bytes.NewReader(req.Body)
	}
	target := c.URL(req.Path, req.RawQuery)
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build upstream request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.Authorization != "" {
		httpReq.Header.Set("Authorization", req.Authorization)
	}

	c.logger.Debug("forwarding request...", slog.String("method", req.Method), slog.String("target", target))
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "upstream request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read upstream response")
	}
	return &ForwardResponse{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// UpdateStore applies fields to the store record identified by storeID using the admin token.
func (c *Controller) UpdateStore(ctx context.Context, storeID string, fields map[string]any) error {
	if c.tokenSource == nil {
		return ErrMissingAdminToken
	}
	payload, err := json.Marshal(models.StoreUpdate{Data: fields})
	if err != nil {
		return errors.Wrap(err, "failed to encode store update")
	}
	target := c.URL("stores/"+url.PathEscape(storeID), "")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "failed to build store update request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		Transport: &oauth2.Transport{Source: c.tokenSource, Base: c.httpClient.Transport},
		Timeout:   c.httpClient.Timeout,
	}
	c.logger.Debug("updating store...", slog.String("store", storeID))
	resp, err := client.Do(httpReq)
	if err != nil {
		return errors.Wrap(err, "store update request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return &UpstreamStatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return nil
}

// Me resolves the user owning the given Authorization header value.
func (c *Controller) Me(ctx context.Context, authorization string) (*models.User, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL("users/me", ""), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build user request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", authorization)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "user request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read user response")
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &UnauthorizedError{StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &UpstreamStatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var user models.User
	if err = json.Unmarshal(respBody, &user); err != nil {
		return nil, errors.Wrap(err, "failed to decode user")
	}
	return &user, nil
}
