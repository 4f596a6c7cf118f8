// Package langprompt is a client for the langprompt prompt management
// service. It retrieves versioned, immutable prompt content behind a small
// accessor surface, hiding transport retries, name→identifier resolution and
// repeated-fetch cost. Version content addressed by exact number is cached
// permanently; mutable views (labels, name mappings, listings) are cached
// under a TTL. Callers branch on failures with errors.Is against the package
// sentinels.
package langprompt
