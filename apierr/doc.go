// Package apierr defines the failure taxonomy shared by all langprompt
// components: a stable Kind per cause, the server's error envelope fields,
// and retryability classification. Check causes with errors.Is against the
// package sentinels or with the Is* helpers.
package apierr
