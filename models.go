package langprompt

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Project is a read-only projection of a server-side project: the top-level
// container scoping prompts and access. Everything but ID may change on the
// server between fetches.
type Project struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	UserRole    string         `json:"user_role,omitempty"`
}

// Prompt is a named, versioned unit of content within a project. Names are
// hierarchical ("category/name").
type Prompt struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ProjectID   uuid.UUID `json:"project_id"`
	Type        string    `json:"type"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Version is an immutable snapshot of a prompt's content. Content, Number,
// CommitMessage and CreatedAt never change once observed; Labels and Metadata
// are mutable on the server and therefore only cacheable under a TTL.
// Version numbers per prompt are strictly increasing and never reused.
type Version struct {
	ID            uuid.UUID         `json:"id"`
	PromptID      uuid.UUID         `json:"prompt_id"`
	ProjectID     uuid.UUID         `json:"project_id,omitzero"`
	Number        int               `json:"version"`
	Content       []json.RawMessage `json:"prompt"`
	Type          string            `json:"type,omitempty"`
	Labels        []string          `json:"labels,omitempty"`
	Metadata      map[string]any    `json:"metadata,omitempty"`
	CommitMessage string            `json:"commit_message,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	CreatedBy     uuid.UUID         `json:"created_by,omitzero"`
}

// Page is one slice of a listing. Repeated calls with the same Limit/Offset
// against unchanged server state return the same ordered slice (creation
// time ascending, ties broken by identifier).
type Page[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasNext bool `json:"has_next"`
}

// Ref identifies a project or prompt either by stable identifier or by
// human-readable name. Name refs go through the resolver (and its TTL cache);
// ID refs bypass resolution entirely.
type Ref struct {
	id   uuid.UUID
	name string
}

// ByID builds a Ref from a stable identifier.
func ByID(id uuid.UUID) Ref { return Ref{id: id} }

// ByName builds a Ref from a human-readable name.
func ByName(name string) Ref { return Ref{name: name} }

// IsZero reports whether the Ref carries neither an id nor a name.
func (r Ref) IsZero() bool { return r.id == uuid.Nil && r.name == "" }

// byID reports whether the Ref carries a stable identifier.
func (r Ref) byID() bool { return r.id != uuid.Nil }

// String returns the id or name, for cache keys and diagnostics.
func (r Ref) String() string {
	if r.byID() {
		return r.id.String()
	}
	return r.name
}
