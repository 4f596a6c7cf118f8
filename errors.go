package langprompt

import "github.com/langprompt/langprompt-go/apierr"

// Re-exported sentinels so callers can branch on failure cause with errors.Is
// without importing apierr. Every surfaced error is an *apierr.Error
// underneath and carries the server's code, message and details.
var (
	ErrAuthentication = apierr.ErrAuthentication
	ErrAuthorization  = apierr.ErrAuthorization
	ErrNotFound       = apierr.ErrNotFound
	ErrValidation     = apierr.ErrValidation
	ErrRateLimited    = apierr.ErrRateLimited
	ErrServerFault    = apierr.ErrServerFault
	ErrNetwork        = apierr.ErrNetwork
)
