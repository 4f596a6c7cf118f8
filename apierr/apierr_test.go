package apierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatus_Mapping(t *testing.T) {
	t.Parallel()
	tests := []struct {
		status int
		want   Kind
	}{
		{401, KindAuthentication},
		{403, KindAuthorization},
		{404, KindNotFound},
		{400, KindValidation},
		{422, KindValidation},
		{429, KindRateLimited},
		{500, KindServerFault},
		{503, KindServerFault},
		{418, KindUnknown},
	}
	for _, tt := range tests {
		e := FromStatus(tt.status, "", "boom", nil)
		assert.Equal(t, tt.want, e.Kind, "status %d", tt.status)
		assert.Equal(t, tt.status, e.Status)
	}
}

func TestError_IsMatchesKindSentinel(t *testing.T) {
	t.Parallel()
	err := FromStatus(404, "PROMPT_NOT_FOUND", "prompt not found", nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrNetwork)

	wrapped := fmt.Errorf("fetch greeting: %w", err)
	assert.ErrorIs(t, wrapped, ErrNotFound)
}

func TestError_Message(t *testing.T) {
	t.Parallel()
	e := FromStatus(429, "RATE_LIMIT", "rate limit exceeded", nil)
	assert.Equal(t, "langprompt: rate limit exceeded (code: RATE_LIMIT) [HTTP 429]", e.Error())

	bare := New(KindValidation, "limit must be positive")
	assert.Equal(t, "langprompt: limit must be positive", bare.Error())
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	t.Parallel()
	cause := errors.New("connection reset")
	e := &Error{Kind: KindNetwork, Message: "network error", Err: cause}
	assert.ErrorIs(t, e, cause)
	assert.ErrorIs(t, e, ErrNetwork)
}

func TestRetryable(t *testing.T) {
	t.Parallel()
	assert.True(t, Retryable(FromStatus(500, "", "", nil)))
	assert.True(t, Retryable(FromStatus(429, "", "", nil)))
	assert.True(t, Retryable(&Error{Kind: KindNetwork}))
	assert.False(t, Retryable(FromStatus(404, "", "", nil)))
	assert.False(t, Retryable(FromStatus(401, "", "", nil)))
	assert.False(t, Retryable(FromStatus(422, "", "", nil)))
	assert.False(t, Retryable(errors.New("plain")))
}

func TestKindOf(t *testing.T) {
	t.Parallel()
	assert.Equal(t, KindNotFound, KindOf(FromStatus(404, "", "", nil)))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestValidation_CarriesDetails(t *testing.T) {
	t.Parallel()
	e := Validation("exactly one of label or version must be provided",
		map[string]any{"label": "production", "version": 3})
	require.True(t, IsValidation(e))
	assert.Equal(t, "production", e.Details["label"])
	assert.Equal(t, 3, e.Details["version"])
}

func TestKind_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "rate_limited", KindRateLimited.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
