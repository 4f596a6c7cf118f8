package langprompt

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	"github.com/langprompt/langprompt-go/apierr"
	"github.com/langprompt/langprompt-go/cache"
	"github.com/langprompt/langprompt-go/transport"
)

// PromptService reads prompt metadata within the configured project.
// Version content lives on VersionService.
type PromptService struct {
	c *Client
}

// Get fetches one prompt by id or name. Name lookups go through the
// name→identifier mapping and share its TTL; the full record is cached
// separately under the prompt resource key.
func (s *PromptService) Get(ctx context.Context, ref Ref) (*Prompt, error) {
	if ref.IsZero() {
		return nil, apierr.New(apierr.KindValidation, "prompt reference is empty")
	}
	pid, err := s.c.resolver.ProjectID(ctx)
	if err != nil {
		return nil, err
	}
	key := cache.Key(pid.String(), "prompt", ref.String())
	var cached Prompt
	if s.c.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	req := &transport.Request{Method: "GET"}
	if ref.byID() {
		req.Path = "/projects/" + pid.String() + "/prompts/" + ref.id.String()
	} else {
		req.Path = "/projects/" + pid.String() + "/prompts"
		req.Query = url.Values{"name": []string{ref.name}}
	}
	resp, err := s.c.tr.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	var p Prompt
	if err := resp.Decode(&p); err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		return nil, apierr.Newf(apierr.KindNotFound, "prompt not found: %s", ref)
	}
	s.c.cacheSet(ctx, key, &p, s.c.cfg.CacheTTL)
	return &p, nil
}

// List returns prompts in the configured project, filterable by name and
// tags. Ordering is stable: creation time ascending, identifier tiebreak.
func (s *PromptService) List(ctx context.Context, opts ListOptions) (*Page[Prompt], error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	pid, err := s.c.resolver.ProjectID(ctx)
	if err != nil {
		return nil, err
	}
	key := cache.Key(pid.String(), "prompts", append([]string{"list"}, opts.cacheKeyParts()...)...)
	var cached Page[Prompt]
	if s.c.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}
	resp, err := s.c.tr.Do(ctx, &transport.Request{
		Method: "GET",
		Path:   "/projects/" + pid.String() + "/prompts",
		Query:  opts.query(),
	})
	if err != nil {
		return nil, err
	}
	page, err := decodePage[Prompt](resp, opts)
	if err != nil {
		return nil, err
	}
	s.c.cacheSet(ctx, key, page, s.c.cfg.CacheTTL)
	return page, nil
}

// BatchGet fetches several prompts best-effort. Each ref is an independent
// retry unit; one item's failure never aborts its siblings. The result maps
// ref strings to records and failures respectively.
func (s *PromptService) BatchGet(ctx context.Context, refs []Ref) (*BatchResult[*Prompt], error) {
	if _, err := s.c.resolver.ProjectID(ctx); err != nil {
		return nil, err
	}
	return runBatch(ctx, s.c.batch, refs, func(ctx context.Context, ref Ref) (*Prompt, error) {
		return s.Get(ctx, ref)
	}), nil
}
