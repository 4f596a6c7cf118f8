package cache

import (
	"context"
	"strings"
	"time"
)

// keyPrefix namespaces all keys so a shared backend can host other tenants.
const keyPrefix = "langprompt"

// Store is the two-tier cache contract. A ttl greater than zero places the
// entry in the TTL tier; ttl <= 0 places it in the permanent tier, where it
// survives until Delete or Clear. Implementations must be safe for concurrent
// use and atomic per key; reads never observe a half-written entry.
//
// Methods take a context so backends backed by external stores can suspend at
// their I/O boundary. The in-process backend never blocks.
type Store interface {
	// Get returns the stored value and true, or false on miss or expiry.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key. ttl <= 0 means the entry never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes one entry. Removing an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Clear removes all entries.
	Clear(ctx context.Context) error
}

// Key builds a hierarchical cache key scoped by project and resource kind:
// langprompt:{projectID}:{resource}:{parts...}. Scoping by project keeps
// instances sharing one backend from colliding.
func Key(projectID, resource string, parts ...string) string {
	elems := append([]string{keyPrefix, projectID, resource}, parts...)
	return strings.Join(elems, ":")
}
