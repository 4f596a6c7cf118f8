package langprompt

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/semaphore"
)

// Task is the handle to one call running on the async driver. Wait blocks
// until the call finishes or ctx is cancelled; cancelling Wait does not
// cancel the underlying call, which still respects its own context.
type Task[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Done is closed when the call has finished.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Wait returns the call's outcome.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case <-t.done:
		return t.val, t.err
	}
}

// Async is the cooperatively-suspending execution mode: the same protocol
// path as the blocking methods, multiplexed over a bounded pool so many
// calls can be in flight at once. Retry, cache and validation semantics are
// identical; only how waiting is expressed changes.
type Async struct {
	c   *Client
	sem *semaphore.Weighted
}

// Async returns a driver admitting at most maxInFlight concurrent calls.
// maxInFlight <= 0 uses the client's batch concurrency.
func (c *Client) Async(maxInFlight int64) *Async {
	if maxInFlight <= 0 {
		maxInFlight = int64(c.batch)
	}
	return &Async{c: c, sem: semaphore.NewWeighted(maxInFlight)}
}

// submit runs fn on the pool and returns its task handle.
func submit[T any](a *Async, ctx context.Context, fn func(ctx context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		if err := a.sem.Acquire(ctx, 1); err != nil {
			t.err = err
			return
		}
		defer a.sem.Release(1)
		t.val, t.err = fn(ctx)
	}()
	return t
}

// GetProject schedules ProjectService.Get.
func (a *Async) GetProject(ctx context.Context, ref Ref) *Task[*Project] {
	return submit(a, ctx, func(ctx context.Context) (*Project, error) {
		return a.c.Projects.Get(ctx, ref)
	})
}

// ListProjects schedules ProjectService.List.
func (a *Async) ListProjects(ctx context.Context, opts ListOptions) *Task[*Page[Project]] {
	return submit(a, ctx, func(ctx context.Context) (*Page[Project], error) {
		return a.c.Projects.List(ctx, opts)
	})
}

// BatchGetProjects schedules ProjectService.BatchGet.
func (a *Async) BatchGetProjects(ctx context.Context, refs []Ref) *Task[*BatchResult[*Project]] {
	return submit(a, ctx, func(ctx context.Context) (*BatchResult[*Project], error) {
		return a.c.Projects.BatchGet(ctx, refs)
	})
}

// ListPrompts schedules PromptService.List.
func (a *Async) ListPrompts(ctx context.Context, opts ListOptions) *Task[*Page[Prompt]] {
	return submit(a, ctx, func(ctx context.Context) (*Page[Prompt], error) {
		return a.c.Prompts.List(ctx, opts)
	})
}

// GetPrompt schedules PromptService.Get.
func (a *Async) GetPrompt(ctx context.Context, ref Ref) *Task[*Prompt] {
	return submit(a, ctx, func(ctx context.Context) (*Prompt, error) {
		return a.c.Prompts.Get(ctx, ref)
	})
}

// BatchGetPrompts schedules PromptService.BatchGet.
func (a *Async) BatchGetPrompts(ctx context.Context, refs []Ref) *Task[*BatchResult[*Prompt]] {
	return submit(a, ctx, func(ctx context.Context) (*BatchResult[*Prompt], error) {
		return a.c.Prompts.BatchGet(ctx, refs)
	})
}

// GetVersion schedules VersionService.Get.
func (a *Async) GetVersion(ctx context.Context, prompt Ref, q VersionQuery) *Task[*Version] {
	return submit(a, ctx, func(ctx context.Context) (*Version, error) {
		return a.c.Versions.Get(ctx, prompt, q)
	})
}

// GetContent schedules VersionService.GetContent.
func (a *Async) GetContent(ctx context.Context, prompt Ref, q VersionQuery) *Task[[]json.RawMessage] {
	return submit(a, ctx, func(ctx context.Context) ([]json.RawMessage, error) {
		return a.c.Versions.GetContent(ctx, prompt, q)
	})
}

// GetLatest schedules VersionService.GetLatest.
func (a *Async) GetLatest(ctx context.Context, prompt Ref) *Task[*Version] {
	return submit(a, ctx, func(ctx context.Context) (*Version, error) {
		return a.c.Versions.GetLatest(ctx, prompt)
	})
}

// ListVersions schedules VersionService.List.
func (a *Async) ListVersions(ctx context.Context, prompt Ref, opts ListOptions) *Task[*Page[Version]] {
	return submit(a, ctx, func(ctx context.Context) (*Page[Version], error) {
		return a.c.Versions.List(ctx, prompt, opts)
	})
}

// BatchGetVersions schedules VersionService.BatchGet.
func (a *Async) BatchGetVersions(ctx context.Context, prompts []Ref, q VersionQuery) *Task[*BatchResult[*Version]] {
	return submit(a, ctx, func(ctx context.Context) (*BatchResult[*Version], error) {
		return a.c.Versions.BatchGet(ctx, prompts, q)
	})
}
