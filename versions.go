package langprompt

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/langprompt/langprompt-go/apierr"
	"github.com/langprompt/langprompt-go/cache"
	"github.com/langprompt/langprompt-go/transport"
)

// VersionService reads version content. Exact version numbers address
// immutable content and are cached permanently; label lookups are mutable
// views cached under the TTL tier.
type VersionService struct {
	c *Client
}

// VersionQuery selects one version of a prompt. Exactly one of Label or
// Number must be set; supplying both or neither is a validation failure
// detected before any network call. Refresh bypasses the cache read but
// still writes through on success.
type VersionQuery struct {
	Label   string
	Number  int
	Refresh bool
}

// validate enforces the label-xor-number rule.
func (q VersionQuery) validate() error {
	if (q.Label == "") == (q.Number == 0) {
		return apierr.Validation("exactly one of label or version must be provided",
			map[string]any{"label": q.Label, "version": q.Number})
	}
	if q.Number < 0 {
		return apierr.Validation("version must be positive", map[string]any{"version": q.Number})
	}
	return nil
}

// qualifier is the cache key segment distinguishing this lookup.
func (q VersionQuery) qualifier() string {
	if q.Label != "" {
		return q.Label
	}
	return strconv.Itoa(q.Number)
}

// ttl returns the cache tier for the lookup: TTL for labels (the mapping is
// mutable on the server), permanent for exact numbers (immutable content).
func (q VersionQuery) ttl(cfg *Config) time.Duration {
	if q.Label != "" {
		return cfg.CacheTTL
	}
	return 0
}

// query renders the selector as request parameters.
func (q VersionQuery) query() url.Values {
	v := url.Values{}
	if q.Label != "" {
		v.Set("label", q.Label)
	} else {
		v.Set("version", strconv.Itoa(q.Number))
	}
	return v
}

// Get fetches one version of a prompt selected by label or exact number.
//
// Label lookups may serve a mapping up to one TTL stale after a server-side
// label move; that staleness is the price of caching a mutable view. Use
// Refresh to force a read-through when it matters.
func (s *VersionService) Get(ctx context.Context, prompt Ref, q VersionQuery) (*Version, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	if prompt.IsZero() {
		return nil, apierr.New(apierr.KindValidation, "prompt reference is empty")
	}
	pid, err := s.c.resolver.ProjectID(ctx)
	if err != nil {
		return nil, err
	}
	key := cache.Key(pid.String(), "version", prompt.String(), q.qualifier())
	if !q.Refresh {
		var cached Version
		if s.c.cacheGet(ctx, key, &cached) {
			return &cached, nil
		}
	}

	var out *Version
	err = s.c.resolver.withPrompt(ctx, pid, prompt, func(ent promptEntry) error {
		resp, err := s.c.tr.Do(ctx, &transport.Request{
			Method: "GET",
			Path:   "/projects/" + pid.String() + "/prompts/" + ent.ID.String() + "/versions",
			Query:  q.query(),
		})
		if err != nil {
			return err
		}
		var v Version
		if err := resp.Decode(&v); err != nil {
			return err
		}
		if v.ID == uuid.Nil {
			return apierr.Newf(apierr.KindNotFound, "version not found: %s (%s)", prompt, q.qualifier())
		}
		if v.Type == "" {
			v.Type = ent.Type
		}
		out = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.c.cacheSet(ctx, key, out, q.ttl(&s.c.cfg))
	return out, nil
}

// GetContent returns just the content payload of the selected version.
// With a zero query it reads the "production" label. Pure composition of
// Get plus payload extraction.
func (s *VersionService) GetContent(ctx context.Context, prompt Ref, q VersionQuery) ([]json.RawMessage, error) {
	if q.Label == "" && q.Number == 0 {
		q.Label = "production"
	}
	v, err := s.Get(ctx, prompt, q)
	if err != nil {
		return nil, err
	}
	return v.Content, nil
}

// GetLatest returns the version the server currently labels "latest".
// Pure composition of Get.
func (s *VersionService) GetLatest(ctx context.Context, prompt Ref) (*Version, error) {
	return s.Get(ctx, prompt, VersionQuery{Label: "latest"})
}

// List returns the versions of a prompt, creation time ascending with
// identifier tiebreak. Listings are mutable views and TTL-cached.
func (s *VersionService) List(ctx context.Context, prompt Ref, opts ListOptions) (*Page[Version], error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	if prompt.IsZero() {
		return nil, apierr.New(apierr.KindValidation, "prompt reference is empty")
	}
	pid, err := s.c.resolver.ProjectID(ctx)
	if err != nil {
		return nil, err
	}
	key := cache.Key(pid.String(), "versions", append([]string{prompt.String(), "list"}, opts.cacheKeyParts()...)...)
	var cached Page[Version]
	if s.c.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	var page *Page[Version]
	err = s.c.resolver.withPrompt(ctx, pid, prompt, func(ent promptEntry) error {
		resp, err := s.c.tr.Do(ctx, &transport.Request{
			Method: "GET",
			Path:   "/projects/" + pid.String() + "/prompts/" + ent.ID.String() + "/versions",
			Query:  opts.query(),
		})
		if err != nil {
			return err
		}
		page, err = decodePage[Version](resp, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.c.cacheSet(ctx, key, page, s.c.cfg.CacheTTL)
	return page, nil
}

// BatchGet fetches the same version selector across several prompts,
// best-effort. Each prompt is an independent retry unit; a failing item
// never aborts its siblings.
func (s *VersionService) BatchGet(ctx context.Context, prompts []Ref, q VersionQuery) (*BatchResult[*Version], error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	if _, err := s.c.resolver.ProjectID(ctx); err != nil {
		return nil, err
	}
	return runBatch(ctx, s.c.batch, prompts, func(ctx context.Context, ref Ref) (*Version, error) {
		return s.Get(ctx, ref, q)
	}), nil
}

// Evict removes one cached version entry, regardless of tier. Sibling
// entries for other versions of the same prompt are unaffected.
func (s *VersionService) Evict(ctx context.Context, prompt Ref, q VersionQuery) error {
	if err := q.validate(); err != nil {
		return err
	}
	pid, err := s.c.resolver.ProjectID(ctx)
	if err != nil {
		return err
	}
	s.c.cacheDelete(ctx, cache.Key(pid.String(), "version", prompt.String(), q.qualifier()))
	return nil
}
