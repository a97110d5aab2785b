package agent

import (
	"context"
	"fmt"

	"github.com/flashcording/agent-service/internal/llm"
)

// ProgressEvent reports one completed stage during pipeline execution.
type ProgressEvent struct {
	Stage       string `json:"stage"`
	CurrentStep string `json:"current_step"`
	Progress    int    `json:"progress"`
}

// ProgressCallback is called after each stage completes.
type ProgressCallback func(event ProgressEvent)

// Runner executes the fixed six-stage pipeline against one run state. Each
// invocation is a fresh computation; there is no checkpointing and a failed
// run cannot be resumed from its last successful stage.
type Runner struct {
	client     llm.Client
	onProgress ProgressCallback
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithProgress sets a callback invoked after every completed stage.
func WithProgress(cb ProgressCallback) RunnerOption {
	return func(r *Runner) {
		r.onProgress = cb
	}
}

// NewRunner creates a pipeline runner backed by the given gateway client.
func NewRunner(client llm.Client, opts ...RunnerOption) *Runner {
	r := &Runner{client: client}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives the stages strictly in order and returns the final state.
// A fault from any stage stops execution and is returned alongside the
// state as it stood before the faulting stage; deciding what to do with
// that partial state is the caller's responsibility.
func (r *Runner) Run(ctx context.Context, s State) (State, error) {
	for _, st := range stages {
		next, err := st.run(ctx, r.client, s)
		if err != nil {
			return s, fmt.Errorf("stage %s failed: %w", st.name, err)
		}
		s = next
		if r.onProgress != nil {
			r.onProgress(ProgressEvent{
				Stage:       st.name,
				CurrentStep: s.CurrentStep,
				Progress:    s.Progress,
			})
		}
	}
	return s, nil
}
