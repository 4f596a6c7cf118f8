package langprompt

import (
	"context"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/langprompt/langprompt-go/apierr"
	"github.com/langprompt/langprompt-go/cache"
	"github.com/langprompt/langprompt-go/transport"
)

// resolver maps human-readable names onto stable identifiers. Results live in
// the TTL cache tier; concurrent identical resolutions are collapsed through
// singleflight. Direct id refs never pass through here.
type resolver struct {
	c  *Client
	sf singleflight.Group

	mu        sync.Mutex
	projectID uuid.UUID // configured project, memoized for the client lifetime
}

// promptEntry is a cached name→(id, type) mapping. The type rides along so
// version records missing a type can inherit the parent prompt's.
type promptEntry struct {
	ID   uuid.UUID `json:"id"`
	Type string    `json:"type"`
}

func newResolver(c *Client) *resolver {
	return &resolver{c: c}
}

// ProjectID returns the identifier of the configured project, resolving the
// configured name on first use. A configured id always wins over a name.
func (r *resolver) ProjectID(ctx context.Context) (uuid.UUID, error) {
	r.mu.Lock()
	if r.projectID != uuid.Nil {
		id := r.projectID
		r.mu.Unlock()
		return id, nil
	}
	r.mu.Unlock()

	cfg := r.c.cfg
	if cfg.ProjectID != "" {
		id, err := uuid.Parse(cfg.ProjectID)
		if err != nil {
			return uuid.Nil, apierr.Validation("configured project_id is not a valid identifier",
				map[string]any{"project_id": cfg.ProjectID})
		}
		r.mu.Lock()
		r.projectID = id
		r.mu.Unlock()
		return id, nil
	}
	if cfg.ProjectName == "" {
		return uuid.Nil, apierr.New(apierr.KindValidation,
			"either project_id or project_name must be configured")
	}
	p, err := r.projectByName(ctx, cfg.ProjectName)
	if err != nil {
		return uuid.Nil, err
	}
	r.mu.Lock()
	r.projectID = p.ID
	r.mu.Unlock()
	return p.ID, nil
}

// projectByName fetches a project by name. The name→id mapping is cached
// under the TTL tier in the unscoped namespace (the project id is the thing
// being looked up).
func (r *resolver) projectByName(ctx context.Context, name string) (*Project, error) {
	key := cache.Key("_", "project_name", name)
	var cached Project
	if r.c.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}
	v, err, _ := r.sf.Do(key, func() (any, error) {
		q := url.Values{"name": []string{name}}
		resp, err := r.c.tr.Do(ctx, &transport.Request{Method: "GET", Path: "/projects", Query: q})
		if err != nil {
			return nil, err
		}
		var p Project
		if err := resp.Decode(&p); err != nil {
			return nil, err
		}
		if p.ID == uuid.Nil {
			return nil, apierr.Newf(apierr.KindNotFound, "project not found: %s", name)
		}
		r.c.cacheSet(ctx, key, &p, r.c.cfg.CacheTTL)
		return &p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Project), nil
}

// Prompt resolves a prompt ref to its identifier and type within projectID.
// Id refs short-circuit with an empty type.
func (r *resolver) Prompt(ctx context.Context, projectID uuid.UUID, ref Ref) (promptEntry, error) {
	if ref.byID() {
		return promptEntry{ID: ref.id}, nil
	}
	if ref.name == "" {
		return promptEntry{}, apierr.New(apierr.KindValidation, "prompt reference is empty")
	}
	key := cache.Key(projectID.String(), "name", ref.name)
	var cached promptEntry
	if r.c.cacheGet(ctx, key, &cached) {
		return cached, nil
	}
	v, err, _ := r.sf.Do(key, func() (any, error) {
		q := url.Values{"name": []string{ref.name}}
		resp, err := r.c.tr.Do(ctx, &transport.Request{
			Method: "GET",
			Path:   "/projects/" + projectID.String() + "/prompts",
			Query:  q,
		})
		if err != nil {
			return promptEntry{}, err
		}
		var p Prompt
		if err := resp.Decode(&p); err != nil {
			return promptEntry{}, err
		}
		if p.ID == uuid.Nil {
			return promptEntry{}, apierr.Newf(apierr.KindNotFound, "prompt not found: %s", ref.name)
		}
		ent := promptEntry{ID: p.ID, Type: p.Type}
		r.c.cacheSet(ctx, key, &ent, r.c.cfg.CacheTTL)
		return ent, nil
	})
	if err != nil {
		return promptEntry{}, err
	}
	return v.(promptEntry), nil
}

// InvalidatePrompt drops a cached name mapping.
func (r *resolver) InvalidatePrompt(ctx context.Context, projectID uuid.UUID, name string) {
	r.c.cacheDelete(ctx, cache.Key(projectID.String(), "name", name))
}

// withPrompt resolves ref and runs fn with the mapping. When fn reports
// NotFound for a name ref, the possibly stale mapping is invalidated and
// resolution retried exactly once; the fetch is repeated only if the mapping
// actually changed. This guards against server-side renames without masking
// genuine absence.
func (r *resolver) withPrompt(ctx context.Context, projectID uuid.UUID, ref Ref, fn func(promptEntry) error) error {
	ent, err := r.Prompt(ctx, projectID, ref)
	if err != nil {
		return err
	}
	err = fn(ent)
	if err == nil || !apierr.IsNotFound(err) || ref.byID() {
		return err
	}
	r.InvalidatePrompt(ctx, projectID, ref.name)
	fresh, rerr := r.Prompt(ctx, projectID, ref)
	if rerr != nil {
		return rerr
	}
	if fresh.ID == ent.ID {
		return err
	}
	return fn(fresh)
}
