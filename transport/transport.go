package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Request describes one logical call against the management service.
// Body, when non-nil, is JSON-encoded.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Response is a decoded-enough view of a successful (2xx) HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// envelope is the server's standard response wrapper.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// Decode unmarshals the response body into v, unwrapping the server's
// {"success": true, "data": ...} envelope when present.
func (r *Response) Decode(v any) error {
	var env envelope
	if err := json.Unmarshal(r.Body, &env); err == nil && env.Success != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, v); err != nil {
			return fmt.Errorf("transport: decode response data: %w", err)
		}
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("transport: decode response: %w", err)
	}
	return nil
}

// Transport executes requests against the remote service. The HTTP
// implementation is one conforming instance; tests and embedders may inject
// their own.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// RequestInfo is passed to observers before each attempt.
// Attempt is zero-based; retries show up as attempts 1..n.
type RequestInfo struct {
	Method  string
	Path    string
	Attempt int
}

// ResponseInfo is passed to observers after a successful attempt.
type ResponseInfo struct {
	Method   string
	Path     string
	Status   int
	Attempt  int
	Duration time.Duration
}

// Observer receives lifecycle callbacks around each attempt. Observers are
// invoked in registration order; the context returned by OnRequest is used
// for the attempt and handed back to OnResponse or OnError, so an observer
// can thread per-attempt state (e.g. a trace span) through the call.
type Observer interface {
	OnRequest(ctx context.Context, info RequestInfo) context.Context
	OnResponse(ctx context.Context, info ResponseInfo)
	OnError(ctx context.Context, info RequestInfo, err error)
}
