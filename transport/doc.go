// Package transport issues HTTP requests against the prompt management
// service, classifies failures into the apierr taxonomy, and applies
// exponential backoff with jitter to retryable conditions (network faults,
// 5xx, 429 honoring Retry-After). The Transport interface is the injection
// seam; HTTP is the default implementation.
package transport
