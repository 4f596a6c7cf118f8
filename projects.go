package langprompt

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	"github.com/langprompt/langprompt-go/apierr"
	"github.com/langprompt/langprompt-go/cache"
	"github.com/langprompt/langprompt-go/transport"
)

// ProjectService reads projects. All results are read-only projections of
// server state cached under the TTL tier.
type ProjectService struct {
	c *Client
}

// Get fetches a project. A zero ref falls back to the configured project,
// preferring the configured id over the configured name.
func (s *ProjectService) Get(ctx context.Context, ref Ref) (*Project, error) {
	if ref.IsZero() {
		switch {
		case s.c.cfg.ProjectID != "":
			id, err := uuid.Parse(s.c.cfg.ProjectID)
			if err != nil {
				return nil, apierr.Validation("configured project_id is not a valid identifier",
					map[string]any{"project_id": s.c.cfg.ProjectID})
			}
			ref = ByID(id)
		case s.c.cfg.ProjectName != "":
			ref = ByName(s.c.cfg.ProjectName)
		default:
			return nil, apierr.New(apierr.KindValidation,
				"either project_id or project_name must be provided or configured")
		}
	}
	if !ref.byID() {
		return s.c.resolver.projectByName(ctx, ref.name)
	}

	key := cache.Key(ref.id.String(), "project")
	var cached Project
	if s.c.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}
	q := url.Values{"project_id": []string{ref.id.String()}}
	resp, err := s.c.tr.Do(ctx, &transport.Request{Method: "GET", Path: "/projects", Query: q})
	if err != nil {
		return nil, err
	}
	var p Project
	if err := resp.Decode(&p); err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		return nil, apierr.Newf(apierr.KindNotFound, "project not found: %s", ref.id)
	}
	s.c.cacheSet(ctx, key, &p, s.c.cfg.CacheTTL)
	return &p, nil
}

// BatchGet fetches several projects best-effort. Each ref is an independent
// retry unit; one item's failure never aborts its siblings. The result maps
// ref strings to records and failures respectively.
func (s *ProjectService) BatchGet(ctx context.Context, refs []Ref) (*BatchResult[*Project], error) {
	return runBatch(ctx, s.c.batch, refs, func(ctx context.Context, ref Ref) (*Project, error) {
		return s.Get(ctx, ref)
	}), nil
}

// List returns accessible projects, ordered by creation time with identifier
// tiebreak, so repeated calls with the same page parameters against unchanged
// server state return the same slice.
func (s *ProjectService) List(ctx context.Context, opts ListOptions) (*Page[Project], error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	key := cache.Key("_", "projects", append([]string{"list"}, opts.cacheKeyParts()...)...)
	var cached Page[Project]
	if s.c.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}
	resp, err := s.c.tr.Do(ctx, &transport.Request{Method: "GET", Path: "/projects", Query: opts.query()})
	if err != nil {
		return nil, err
	}
	page, err := decodePage[Project](resp, opts)
	if err != nil {
		return nil, err
	}
	s.c.cacheSet(ctx, key, page, s.c.cfg.CacheTTL)
	return page, nil
}
