package langprompt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/langprompt/langprompt-go/cache"
	"github.com/langprompt/langprompt-go/transport"
)

// Client is the facade over the retrieval engine. It owns the configuration,
// the transport, the cache and the resolver, and exposes the resource
// accessors. A Client is safe for concurrent use; the cache and connection
// pool are shared across all accessors and both execution modes.
type Client struct {
	cfg      Config
	tr       transport.Transport
	store    cache.Store
	resolver *resolver
	batch    int

	// Projects, Prompts and Versions are the resource accessors.
	Projects *ProjectService
	Prompts  *PromptService
	Versions *VersionService
}

// New builds a Client. Configuration is resolved via Load (files and
// environment) unless WithConfig is given; explicit options override either.
func New(opts ...Option) (*Client, error) {
	o := &clientOptions{batchConcurrency: defaultBatchConcurrency}
	for _, opt := range opts {
		opt(o)
	}
	var cfg Config
	if o.cfg != nil {
		cfg = *o.cfg
	} else {
		cfg = Load(o.env)
	}
	for _, f := range o.overrides {
		f(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tr := o.transport
	if tr == nil {
		topts := []transport.HTTPOption{
			transport.WithTimeout(cfg.Timeout),
			transport.WithRetry(cfg.MaxRetries, cfg.RetryDelay, cfg.MaxRetryDelay),
		}
		if o.httpClient != nil {
			topts = append(topts, transport.WithHTTPClient(o.httpClient))
		}
		if len(o.observers) > 0 {
			topts = append(topts, transport.WithObservers(o.observers...))
		}
		var err error
		if o.allowInsecure {
			tr, err = transport.NewHTTPInsecure(cfg.BaseURL, cfg.APIKey, topts...)
		} else {
			tr, err = transport.NewHTTP(cfg.BaseURL, cfg.APIKey, topts...)
		}
		if err != nil {
			return nil, err
		}
	}

	store := o.store
	if store == nil {
		store = cache.NewMemory()
	}

	c := &Client{
		cfg:   cfg,
		tr:    tr,
		store: store,
		batch: o.batchConcurrency,
	}
	c.resolver = newResolver(c)
	c.Projects = &ProjectService{c: c}
	c.Prompts = &PromptService{c: c}
	c.Versions = &VersionService{c: c}
	return c, nil
}

// NewFromConfig builds a Client from a fully resolved configuration,
// skipping file and environment loading. Shorthand for New(WithConfig(cfg)).
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	return New(append([]Option{WithConfig(cfg)}, opts...)...)
}

// Config returns a copy of the resolved configuration.
func (c *Client) Config() Config { return c.cfg }

// Cache returns the cache store shared by all accessors.
func (c *Client) Cache() cache.Store { return c.store }

// ClearCache drops both cache tiers.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// Close releases resources held by the default transport. Injected
// transports and cache backends are owned by the caller.
func (c *Client) Close() {
	if t, ok := c.tr.(*transport.HTTP); ok {
		t.Close()
	}
}

// cacheGet reads key into v. Misses, disabled cache and decode failures all
// report false; a corrupt entry is dropped rather than surfaced.
func (c *Client) cacheGet(ctx context.Context, key string, v any) bool {
	if !c.cfg.EnableCache {
		return false
	}
	data, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.store.Delete(ctx, key)
		return false
	}
	return true
}

// cacheSet writes v under key. ttl <= 0 selects the permanent tier.
// Cancelled calls never populate the cache.
func (c *Client) cacheSet(ctx context.Context, key string, v any, ttl time.Duration) {
	if !c.cfg.EnableCache || ctx.Err() != nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.store.Set(ctx, key, data, ttl)
}

// cacheDelete removes one entry regardless of tier.
func (c *Client) cacheDelete(ctx context.Context, key string) {
	_ = c.store.Delete(ctx, key)
}
