package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/markket/storefront-api/internal/controllers/cms"
	"github.com/markket/storefront-api/internal/helpers"
	"github.com/markket/storefront-api/internal/metrics"
	"github.com/markket/storefront-api/internal/middleware"
	"github.com/pkg/errors"
)

// ProxyPrefix is the route prefix replaced by the CMS API prefix when forwarding.
const ProxyPrefix = "/api/markket/"

// Proxy forwards any request under ProxyPrefix to the CMS and relays the upstream status and JSON body.
func (h *Handler) Proxy(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.EscapedPath(), ProxyPrefix)
	logger := h.logger.With(
		slog.String("requestId", middleware.RequestIDFrom(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", path))

	req := cms.ForwardRequest{
		Method:        r.Method,
		Path:          path,
		RawQuery:      r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		body, err := reencodeJSON(r.Body)
		if err != nil {
			h.proxyFailed(w, logger, err)
			return
		}
		req.Body = body
	}

	resp, err := h.forwarder.Forward(r.Context(), req)
	if err != nil {
		h.proxyFailed(w, logger, err)
		return
	}
	metrics.RecordProxyUpstream(r.Method, resp.StatusCode)

	if len(bytes.TrimSpace(resp.Body)) > 0 && !json.Valid(resp.Body) {
		h.proxyFailed(w, logger, errors.Errorf("upstream responded with status %d and a non-JSON body: %s",
			resp.StatusCode, helpers.Truncate(string(resp.Body), 128)))
		return
	}
	logger.Debug("relaying upstream response", slog.Int("status", resp.StatusCode))
	helpers.RespondRaw(w, resp.StatusCode, resp.Body)
}

func (h *Handler) proxyFailed(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("proxy request failed", slog.Any("error", err))
	metrics.RecordProxyFailure()
	helpers.RespondError(w, http.StatusInternalServerError, MsgFetchFailed)
}

// reencodeJSON parses body as JSON and serializes it again. An empty body yields nil.
func reencodeJSON(body io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read request body")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err = dec.Decode(&v); err != nil {
		return nil, errors.Wrap(err, "request body is not valid JSON")
	}
	if dec.More() {
		return nil, errors.New("request body contains trailing data after the JSON value")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err = enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "failed to encode request body")
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
