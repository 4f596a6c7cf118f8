// Package cache provides the two-tier key-value store used by the langprompt
// client: a TTL tier for mutable views (name mappings, label lookups,
// listings) and a permanent tier for immutable version content. The Store
// interface is the swap point for external backends; Memory is the in-process
// default.
package cache
