package runtime

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// Supported Lambda payload types.
const (
	PayloadTypeAPIGatewayV1 = "api-gateway-v1"
	PayloadTypeAPIGatewayV2 = "api-gateway-v2"
	PayloadTypeLambdaURL    = "lambda-url"
)

// Lambda is the Lambda handler for the runtime. It decodes the configured payload type, serves it through the router
// and encodes the recorded response in the matching response shape.
func (r *Runtime) Lambda(ctx context.Context, payload json.RawMessage) (any, error) {
	switch r.payloadType {
	case PayloadTypeAPIGatewayV1:
		var evt events.APIGatewayProxyRequest
		if err := json.Unmarshal(payload, &evt); err != nil {
			return nil, errors.Wrap(err, "failed to decode api-gateway-v1 payload")
		}
		req, err := fromAPIGatewayV1(ctx, evt)
		if err != nil {
			return nil, err
		}
		return r.serve(req).apiGatewayV1(), nil
	case PayloadTypeAPIGatewayV2:
		var evt events.APIGatewayV2HTTPRequest
		if err := json.Unmarshal(payload, &evt); err != nil {
			return nil, errors.Wrap(err, "failed to decode api-gateway-v2 payload")
		}
		req, err := newRequest(ctx, httpEvent{
			method:     evt.RequestContext.HTTP.Method,
			path:       evt.RawPath,
			rawQuery:   evt.RawQueryString,
			headers:    evt.Headers,
			cookies:    evt.Cookies,
			body:       evt.Body,
			base64:     evt.IsBase64Encoded,
			domainName: evt.RequestContext.DomainName,
			sourceIP:   evt.RequestContext.HTTP.SourceIP,
		})
		if err != nil {
			return nil, err
		}
		return r.serve(req).apiGatewayV2(), nil
	case PayloadTypeLambdaURL:
		var evt events.LambdaFunctionURLRequest
		if err := json.Unmarshal(payload, &evt); err != nil {
			return nil, errors.Wrap(err, "failed to decode lambda-url payload")
		}
		req, err := newRequest(ctx, httpEvent{
			method:     evt.RequestContext.HTTP.Method,
			path:       evt.RawPath,
			rawQuery:   evt.RawQueryString,
			headers:    evt.Headers,
			cookies:    evt.Cookies,
			body:       evt.Body,
			base64:     evt.IsBase64Encoded,
			domainName: evt.RequestContext.DomainName,
			sourceIP:   evt.RequestContext.HTTP.SourceIP,
		})
		if err != nil {
			return nil, err
		}
		return r.serve(req).lambdaURL(), nil
	default:
		return nil, fmt.Errorf("unsupported lambda payload type: %s", r.payloadType)
	}
}

func (r *Runtime) serve(req *http.Request) *responseRecorder {
	r.logger.Debug("received lambda request", slog.String("method", req.Method), slog.String("path", req.URL.Path))
	rec := newResponseRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// httpEvent holds the fields shared by the HTTP API and function URL payloads.
type httpEvent struct {
	method, path, rawQuery string
	headers                map[string]string
	multiHeaders           map[string][]string
	cookies                []string
	body                   string
	base64                 bool
	domainName, sourceIP   string
}

func fromAPIGatewayV1(ctx context.Context, evt events.APIGatewayProxyRequest) (*http.Request, error) {
	query := url.Values{}
	for k, v := range evt.QueryStringParameters {
		query.Set(k, v)
	}
	for k, vs := range evt.MultiValueQueryStringParameters {
		query[k] = vs
	}
	return newRequest(ctx, httpEvent{
		method:       evt.HTTPMethod,
		path:         evt.Path,
		rawQuery:     query.Encode(),
		headers:      evt.Headers,
		multiHeaders: evt.MultiValueHeaders,
		body:         evt.Body,
		base64:       evt.IsBase64Encoded,
		domainName:   evt.RequestContext.DomainName,
		sourceIP:     evt.RequestContext.Identity.SourceIP,
	})
}

func newRequest(ctx context.Context, evt httpEvent) (*http.Request, error) {
	var body io.Reader = http.NoBody
	if evt.body != "" {
		raw := []byte(evt.body)
		if evt.base64 {
			decoded, err := base64.StdEncoding.DecodeString(evt.body)
			if err != nil {
				return nil, errors.Wrap(err, "failed to decode base64 request body")
			}
			raw = decoded
		}
		body = bytes.NewReader(raw)
	}

	path := evt.path
	if path == "" {
		path = "/"
	}
	u := &url.URL{Path: path, RawQuery: evt.rawQuery}
	req, err := http.NewRequestWithContext(ctx, evt.method, u.String(), body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request from lambda payload")
	}

	for k, v := range evt.headers {
		req.Header.Set(k, v)
	}
	for k, vs := range evt.multiHeaders {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if len(evt.cookies) > 0 {
		req.Header.Set("Cookie", strings.Join(evt.cookies, "; "))
	}

	req.Host = req.Header.Get("Host")
	if req.Host == "" {
		req.Host = evt.domainName
	}
	req.RemoteAddr = evt.sourceIP
	req.RequestURI = u.RequestURI()
	return req, nil
}

type responseRecorder struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{header: http.Header{}, status: http.StatusOK}
}

func (r *responseRecorder) Header() http.Header {
	return r.header
}

func (r *responseRecorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.status = status
	r.wroteHeader = true
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.body.Write(b)
}

func (r *responseRecorder) encodedBody() (string, bool) {
	if utf8.Valid(r.body.Bytes()) {
		return r.body.String(), false
	}
	return base64.StdEncoding.EncodeToString(r.body.Bytes()), true
}

func (r *responseRecorder) flatHeaders() map[string]string {
	headers := make(map[string]string, len(r.header))
	for k, vs := range r.header {
		if k == "Set-Cookie" {
			continue
		}
		headers[k] = strings.Join(vs, ",")
	}
	return headers
}

func (r *responseRecorder) apiGatewayV1() events.APIGatewayProxyResponse {
	body, isBase64 := r.encodedBody()
	headers := make(map[string]string, len(r.header))
	for k, vs := range r.header {
		if len(vs) > 0 {
			headers[k] = vs[0]
		}
	}
	return events.APIGatewayProxyResponse{
		StatusCode:        r.status,
		Headers:           headers,
		MultiValueHeaders: r.header.Clone(),
		Body:              body,
		IsBase64Encoded:   isBase64,
	}
}

func (r *responseRecorder) apiGatewayV2() events.APIGatewayV2HTTPResponse {
	body, isBase64 := r.encodedBody()
	return events.APIGatewayV2HTTPResponse{
		StatusCode:      r.status,
		Headers:         r.flatHeaders(),
		Body:            body,
		IsBase64Encoded: isBase64,
		Cookies:         r.header.Values("Set-Cookie"),
	}
}

func (r *responseRecorder) lambdaURL() events.LambdaFunctionURLResponse {
	body, isBase64 := r.encodedBody()
	return events.LambdaFunctionURLResponse{
		StatusCode:      r.status,
		Headers:         r.flatHeaders(),
		Body:            body,
		IsBase64Encoded: isBase64,
		Cookies:         r.header.Values("Set-Cookie"),
	}
}
