package langprompt

import (
	"net/http"
	"time"

	"github.com/langprompt/langprompt-go/cache"
	"github.com/langprompt/langprompt-go/transport"
)

// defaultBatchConcurrency bounds outstanding connections during batch fan-out.
const defaultBatchConcurrency = 8

// Option configures a Client (functional options pattern).
type Option func(*clientOptions)

type clientOptions struct {
	cfg              *Config
	env              string
	transport        transport.Transport
	store            cache.Store
	httpClient       *http.Client
	observers        []Observer
	batchConcurrency int
	allowInsecure    bool
	overrides        []func(*Config)
}

// WithConfig supplies a fully resolved configuration, skipping Load.
func WithConfig(cfg Config) Option {
	return func(o *clientOptions) { o.cfg = &cfg }
}

// WithEnv selects the config-file environment table read by Load.
func WithEnv(env string) Option {
	return func(o *clientOptions) { o.env = env }
}

// WithProjectName scopes the client to the named project.
func WithProjectName(name string) Option {
	return func(o *clientOptions) { o.override(func(c *Config) { c.ProjectName = name }) }
}

// WithProjectID scopes the client to a project id, bypassing name resolution.
func WithProjectID(id string) Option {
	return func(o *clientOptions) { o.override(func(c *Config) { c.ProjectID = id }) }
}

// WithAPIKey sets the credential sent in the X-API-Key header.
func WithAPIKey(key string) Option {
	return func(o *clientOptions) { o.override(func(c *Config) { c.APIKey = key }) }
}

// WithBaseURL sets the API base URL. Plain http URLs additionally require
// WithAllowInsecure.
func WithBaseURL(u string) Option {
	return func(o *clientOptions) { o.override(func(c *Config) { c.BaseURL = u }) }
}

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.override(func(c *Config) { c.Timeout = d }) }
}

// WithMaxRetries bounds retry attempts per call. 0 disables retries.
func WithMaxRetries(n int) Option {
	return func(o *clientOptions) { o.override(func(c *Config) { c.MaxRetries = n }) }
}

// WithRetryDelay sets the backoff base and ceiling.
func WithRetryDelay(base, max time.Duration) Option {
	return func(o *clientOptions) {
		o.override(func(c *Config) {
			c.RetryDelay = base
			c.MaxRetryDelay = max
		})
	}
}

// WithCache enables caching with the given TTL for the mutable tier.
// Immutable version content is cached permanently regardless of ttl.
func WithCache(ttl time.Duration) Option {
	return func(o *clientOptions) {
		o.override(func(c *Config) {
			c.EnableCache = true
			if ttl > 0 {
				c.CacheTTL = ttl
			}
		})
	}
}

// WithCacheStore swaps the cache backend. The in-process store is the
// default; any Store conforming to the two-tier contract works.
func WithCacheStore(s cache.Store) Option {
	return func(o *clientOptions) { o.store = s }
}

// WithTransport swaps the transport, replacing the HTTP implementation and
// its retry engine entirely.
func WithTransport(t transport.Transport) Option {
	return func(o *clientOptions) { o.transport = t }
}

// WithHTTPClient sets the underlying *http.Client used by the default
// transport. Ignored when WithTransport is given.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithObserver appends lifecycle observers invoked around every attempt,
// in registration order.
func WithObserver(obs ...Observer) Option {
	return func(o *clientOptions) { o.observers = append(o.observers, obs...) }
}

// WithBatchConcurrency bounds in-flight requests during batch operations
// and the async driver's default pool size.
func WithBatchConcurrency(n int) Option {
	return func(o *clientOptions) {
		if n > 0 {
			o.batchConcurrency = n
		}
	}
}

// WithAllowInsecure permits plain-http base URLs. Local development only.
func WithAllowInsecure() Option {
	return func(o *clientOptions) { o.allowInsecure = true }
}

// override defers a config mutation until the base config is resolved.
func (o *clientOptions) override(f func(*Config)) {
	o.overrides = append(o.overrides, f)
}
