package langprompt

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langprompt/langprompt-go/apierr"
	"github.com/langprompt/langprompt-go/transport"
)

func TestResolver_ProjectIDFromConfig(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{}
	c := newTestClient(t, ft, false)
	defer c.Close()

	id, err := c.resolver.ProjectID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testProjectID, id)
	// No network call for a configured id.
	assert.Equal(t, 0, ft.count())
}

func TestResolver_ProjectIDFromNameResolvedOnce(t *testing.T) {
	t.Parallel()
	var resolves atomic.Int32
	ft := &fakeTransport{fn: func(req *transport.Request) (*transport.Response, error) {
		resolves.Add(1)
		return envelope(t, Project{ID: testProjectID, Name: "demo"}), nil
	}}
	cfg := testConfig(false)
	cfg.ProjectID = ""
	cfg.ProjectName = "demo"
	c, err := New(WithConfig(cfg), WithTransport(ft))
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	id1, err := c.resolver.ProjectID(ctx)
	require.NoError(t, err)
	id2, err := c.resolver.ProjectID(ctx)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	// Memoized for the client lifetime after the first resolution.
	assert.Equal(t, int32(1), resolves.Load())
}

func TestResolver_NoProjectConfigured(t *testing.T) {
	t.Parallel()
	cfg := testConfig(false)
	cfg.ProjectID = ""
	cfg.ProjectName = ""
	c, err := New(WithConfig(cfg), WithTransport(&fakeTransport{}))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.resolver.ProjectID(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrValidation)
}

func TestResolver_PromptByIDBypassesResolution(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{}
	c := newTestClient(t, ft, true)
	defer c.Close()

	ent, err := c.resolver.Prompt(context.Background(), testProjectID, ByID(testPromptID))
	require.NoError(t, err)
	assert.Equal(t, testPromptID, ent.ID)
	assert.Equal(t, 0, ft.count())
}

func TestResolver_ConsistentAcrossCalls(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{fn: func(req *transport.Request) (*transport.Response, error) {
		return envelope(t, testPrompt("greeting")), nil
	}}
	c := newTestClient(t, ft, true)
	defer c.Close()

	ctx := context.Background()
	first, err := c.resolver.Prompt(ctx, testProjectID, ByName("greeting"))
	require.NoError(t, err)
	second, err := c.resolver.Prompt(ctx, testProjectID, ByName("greeting"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "chat", second.Type)
	// Second resolve served from the TTL tier.
	assert.Equal(t, 1, ft.count())
}

func TestResolver_InvalidateForcesRefetch(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{fn: func(req *transport.Request) (*transport.Response, error) {
		return envelope(t, testPrompt("greeting")), nil
	}}
	c := newTestClient(t, ft, true)
	defer c.Close()

	ctx := context.Background()
	_, err := c.resolver.Prompt(ctx, testProjectID, ByName("greeting"))
	require.NoError(t, err)
	c.resolver.InvalidatePrompt(ctx, testProjectID, "greeting")
	_, err = c.resolver.Prompt(ctx, testProjectID, ByName("greeting"))
	require.NoError(t, err)
	assert.Equal(t, 2, ft.count())
}

func TestResolver_StaleMappingRetriesResolutionOnce(t *testing.T) {
	t.Parallel()
	oldID := uuid.MustParse("00000000-0000-0000-0000-00000000aaaa")
	newID := uuid.MustParse("00000000-0000-0000-0000-00000000bbbb")

	var resolves atomic.Int32
	ft := &fakeTransport{fn: func(req *transport.Request) (*transport.Response, error) {
		if req.Query.Get("name") == "greeting" {
			p := testPrompt("greeting")
			if resolves.Add(1) == 1 {
				p.ID = oldID
			} else {
				p.ID = newID
			}
			return envelope(t, p), nil
		}
		return nil, notFound(req.Path)
	}}
	c := newTestClient(t, ft, true)
	defer c.Close()

	ctx := context.Background()
	var seen []uuid.UUID
	err := c.resolver.withPrompt(ctx, testProjectID, ByName("greeting"), func(ent promptEntry) error {
		seen = append(seen, ent.ID)
		if ent.ID == oldID {
			return notFound("stale id")
		}
		return nil
	})
	require.NoError(t, err)
	// Stale mapping invalidated, re-resolved exactly once, fetch repeated.
	assert.Equal(t, []uuid.UUID{oldID, newID}, seen)
	assert.Equal(t, int32(2), resolves.Load())
}

func TestResolver_GenuineAbsenceSurfacesNotFound(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{fn: func(req *transport.Request) (*transport.Response, error) {
		if req.Query.Get("name") == "greeting" {
			return envelope(t, testPrompt("greeting")), nil
		}
		return nil, notFound(req.Path)
	}}
	c := newTestClient(t, ft, true)
	defer c.Close()

	var fetches int
	err := c.resolver.withPrompt(context.Background(), testProjectID, ByName("greeting"), func(ent promptEntry) error {
		fetches++
		return notFound("version")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrNotFound)
	// Same mapping came back, so the fetch was not repeated.
	assert.Equal(t, 1, fetches)
}

func TestResolver_StaleRetryNotAppliedToIDRefs(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{}
	c := newTestClient(t, ft, true)
	defer c.Close()

	var fetches int
	err := c.resolver.withPrompt(context.Background(), testProjectID, ByID(testPromptID), func(promptEntry) error {
		fetches++
		return notFound("version")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrNotFound)
	assert.Equal(t, 1, fetches)
	assert.Equal(t, 0, ft.count())
}
