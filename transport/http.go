package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/langprompt/langprompt-go/apierr"
)

// maxBodySize limits response body size (8 MB); prompt payloads are text.
const maxBodySize = 8 << 20

// defaultUserAgent is the User-Agent header value for all requests.
const defaultUserAgent = "langprompt-go/0.1.0"

// Transport defaults, matching the client-level configuration defaults.
const (
	defaultTimeout       = 30 * time.Second
	defaultMaxRetries    = 3
	defaultRetryDelay    = time.Second
	defaultMaxRetryDelay = 30 * time.Second
)

// Ensures HTTP implements Transport.
var _ Transport = (*HTTP)(nil)

// HTTP executes requests over HTTPS with retry and failure classification.
// It is stateless across calls apart from the shared connection pool and is
// safe for concurrent use. Retries apply to network faults, 5xx and 429 only;
// all other 4xx surface immediately. Attempts within one call are sequential.
type HTTP struct {
	baseURL       string
	apiKey        string
	httpClient    *http.Client
	timeout       time.Duration
	maxRetries    int
	retryDelay    time.Duration
	maxRetryDelay time.Duration
	observers     []Observer
	jitter        func() float64
	ownsClient    bool
}

// HTTPOption configures HTTP.
type HTTPOption func(*HTTP)

// WithHTTPClient sets the underlying HTTP client, replacing the default and
// its TLS settings. If c is nil, the default is left unchanged.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(t *HTTP) {
		if c != nil {
			t.httpClient = c
			t.ownsClient = false
		}
	}
}

// WithTimeout sets the per-attempt timeout. Each attempt, retries included,
// gets the full timeout independently.
func WithTimeout(d time.Duration) HTTPOption {
	return func(t *HTTP) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithRetry sets the retry budget and the backoff bounds.
func WithRetry(maxRetries int, baseDelay, maxDelay time.Duration) HTTPOption {
	return func(t *HTTP) {
		if maxRetries >= 0 {
			t.maxRetries = maxRetries
		}
		if baseDelay > 0 {
			t.retryDelay = baseDelay
		}
		if maxDelay > 0 {
			t.maxRetryDelay = maxDelay
		}
	}
}

// WithObservers appends lifecycle observers, invoked in registration order.
func WithObservers(obs ...Observer) HTTPOption {
	return func(t *HTTP) {
		t.observers = append(t.observers, obs...)
	}
}

// withJitter overrides the backoff jitter source. Test hook.
func withJitter(f func() float64) HTTPOption {
	return func(t *HTTP) { t.jitter = f }
}

// errInsecureBaseURL rejects plain-http base URLs on the default constructor.
var errInsecureBaseURL = errors.New("transport: base URL must use https (use AllowInsecure to override)")

// NewHTTP creates an HTTP transport for the given base URL. Plain http URLs
// are rejected unless allowInsecure is set via NewHTTPInsecure; the credential
// is carried in the X-API-Key header on every request and never logged.
func NewHTTP(baseURL, apiKey string, opts ...HTTPOption) (*HTTP, error) {
	return newHTTP(baseURL, apiKey, false, opts...)
}

// NewHTTPInsecure is NewHTTP without the https-only check. Intended for local
// development and tests against plain-HTTP servers.
func NewHTTPInsecure(baseURL, apiKey string, opts ...HTTPOption) (*HTTP, error) {
	return newHTTP(baseURL, apiKey, true, opts...)
}

func newHTTP(baseURL, apiKey string, allowInsecure bool, opts ...HTTPOption) (*HTTP, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if baseURL == "" {
		return nil, apierr.New(apierr.KindValidation, "transport: base URL must not be empty")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, apierr.Newf(apierr.KindValidation, "transport: invalid base URL %q", baseURL)
	}
	if parsed.Scheme != "https" && !allowInsecure {
		return nil, &apierr.Error{Kind: apierr.KindValidation, Message: errInsecureBaseURL.Error(), Err: errInsecureBaseURL}
	}
	t := &HTTP{
		baseURL:       baseURL,
		apiKey:        apiKey,
		timeout:       defaultTimeout,
		maxRetries:    defaultMaxRetries,
		retryDelay:    defaultRetryDelay,
		maxRetryDelay: defaultMaxRetryDelay,
		ownsClient:    true,
	}
	t.httpClient = &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			MaxIdleConns:    32,
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Close releases idle connections held by the default client. Clients
// injected via WithHTTPClient are owned by the caller and left alone.
func (t *HTTP) Close() {
	if t.ownsClient {
		t.httpClient.CloseIdleConnections()
	}
}

// Do executes req with retry. Each attempt runs under its own timeout derived
// from ctx; cancelling ctx aborts both the in-flight attempt and any pending
// backoff sleep. On retry exhaustion the last observed failure is returned
// unchanged.
func (t *HTTP) Do(ctx context.Context, req *Request) (*Response, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		info := RequestInfo{Method: req.Method, Path: req.Path, Attempt: attempt}
		actx := ctx
		for _, obs := range t.observers {
			actx = obs.OnRequest(actx, info)
		}
		start := time.Now()
		resp, err := t.doOnce(actx, req)
		if err == nil {
			rinfo := ResponseInfo{
				Method:   req.Method,
				Path:     req.Path,
				Status:   resp.Status,
				Attempt:  attempt,
				Duration: time.Since(start),
			}
			for _, obs := range t.observers {
				obs.OnResponse(actx, rinfo)
			}
			return resp, nil
		}
		for _, obs := range t.observers {
			obs.OnError(actx, info, err)
		}
		lastErr = err
		if !apierr.Retryable(err) || attempt >= t.maxRetries {
			return nil, lastErr
		}
		if ctx.Err() != nil {
			// Caller cancelled; do not start another attempt.
			return nil, lastErr
		}
		delay := backoffDelay(attempt+1, t.retryDelay, t.maxRetryDelay, t.jitter)
		if ra := retryAfterOf(err); ra > delay {
			delay = ra
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, lastErr
		case <-timer.C:
		}
	}
}

// doOnce runs a single attempt under its own timeout.
func (t *HTTP) doOnce(ctx context.Context, req *Request) (*Response, error) {
	actx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	u := t.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, apierr.Newf(apierr.KindValidation, "transport: encode request body: %v", err)
		}
		body = bytes.NewReader(data)
	}
	httpReq, err := http.NewRequestWithContext(actx, req.Method, u, body)
	if err != nil {
		return nil, apierr.Newf(apierr.KindValidation, "transport: build request: %v", err)
	}
	httpReq.Header.Set("User-Agent", defaultUserAgent)
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if t.apiKey != "" {
		httpReq.Header.Set("X-API-Key", t.apiKey)
	}

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyNetworkError(err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil {
		return nil, &apierr.Error{
			Kind:    apierr.KindNetwork,
			Code:    "NETWORK_ERROR",
			Message: fmt.Sprintf("read response body: %v", err),
			Err:     err,
		}
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, decodeError(httpResp, data)
	}
	return &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: data}, nil
}

// classifyNetworkError maps transport-level failures (timeout, DNS,
// connection reset) onto the Network kind so the retry policy applies.
func classifyNetworkError(err error) *apierr.Error {
	code := "NETWORK_ERROR"
	msg := "network error"
	if errors.Is(err, context.DeadlineExceeded) {
		code = "TIMEOUT"
		msg = "request timeout"
	}
	return &apierr.Error{Kind: apierr.KindNetwork, Code: code, Message: fmt.Sprintf("%s: %v", msg, err), Err: err}
}

// errorBody is the server's error envelope on non-2xx responses.
type errorBody struct {
	ErrorCode string         `json:"error_code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details"`
}

// decodeError converts a non-2xx response into an *apierr.Error, attaching
// the server-provided code, message and details when the body is decodable.
func decodeError(resp *http.Response, body []byte) *apierr.Error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || eb.Message == "" {
		eb.Message = strings.TrimSpace(string(body))
		if eb.Message == "" {
			eb.Message = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
	}
	e := apierr.FromStatus(resp.StatusCode, eb.ErrorCode, eb.Message, eb.Details)
	if resp.StatusCode == http.StatusTooManyRequests {
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			e.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	return e
}

// retryAfterOf extracts the server-provided minimum delay, 0 if absent.
func retryAfterOf(err error) time.Duration {
	var e *apierr.Error
	if errors.As(err, &e) {
		return e.RetryAfter
	}
	return 0
}
