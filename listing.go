package langprompt

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/langprompt/langprompt-go/apierr"
	"github.com/langprompt/langprompt-go/transport"
)

// Listing bounds shared by all accessors.
const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ListOptions control pagination and, where the endpoint supports it,
// filtering. Limit defaults to 20 and is capped at 100.
type ListOptions struct {
	Limit  int
	Offset int
	// Name filters by exact or prefix name match (prompts only).
	Name string
	// Tags filters by tag membership (prompts only).
	Tags []string
}

// normalize applies defaults and validates bounds before any network call.
func (o *ListOptions) normalize() error {
	if o.Limit == 0 {
		o.Limit = defaultListLimit
	}
	if o.Limit < 1 || o.Limit > maxListLimit {
		return apierr.Validation("limit must be between 1 and 100", map[string]any{"limit": o.Limit})
	}
	if o.Offset < 0 {
		return apierr.Validation("offset must be non-negative", map[string]any{"offset": o.Offset})
	}
	return nil
}

// query renders the options as request parameters.
func (o ListOptions) query() url.Values {
	q := url.Values{
		"limit":  []string{strconv.Itoa(o.Limit)},
		"offset": []string{strconv.Itoa(o.Offset)},
	}
	if o.Name != "" {
		q.Set("name", o.Name)
	}
	if len(o.Tags) > 0 {
		q.Set("tags", strings.Join(o.Tags, ","))
	}
	return q
}

// cacheKeyParts renders the options as cache key segments.
func (o ListOptions) cacheKeyParts() []string {
	parts := []string{strconv.Itoa(o.Limit), strconv.Itoa(o.Offset)}
	if o.Name != "" {
		parts = append(parts, "name="+o.Name)
	}
	if len(o.Tags) > 0 {
		parts = append(parts, "tags="+strings.Join(o.Tags, ","))
	}
	return parts
}

// decodePage decodes a listing response. The server names the collection
// field after the resource ("prompts", "projects", "versions") or uses the
// generic "items"; either shape is accepted.
func decodePage[T any](resp *transport.Response, opts ListOptions) (*Page[T], error) {
	var body struct {
		Items    []T `json:"items"`
		Projects []T `json:"projects"`
		Prompts  []T `json:"prompts"`
		Versions []T `json:"versions"`
		Total    int `json:"total"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, err
	}
	items := body.Items
	switch {
	case items != nil:
	case body.Projects != nil:
		items = body.Projects
	case body.Prompts != nil:
		items = body.Prompts
	case body.Versions != nil:
		items = body.Versions
	}
	return &Page[T]{
		Items:   items,
		Total:   body.Total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasNext: opts.Offset+len(items) < body.Total,
	}, nil
}
