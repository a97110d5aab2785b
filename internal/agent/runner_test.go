package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashcording/agent-service/internal/llm"
)

// fakeClient returns scripted responses in order, or fails on a chosen call.
type fakeClient struct {
	responses []string
	failOn    int // 1-based call index to fail on; 0 means never
	calls     int
}

func (f *fakeClient) Invoke(_ context.Context, model string, _ []llm.Message) (string, error) {
	f.calls++
	if f.failOn != 0 && f.calls == f.failOn {
		return "", &llm.ProviderError{Provider: llm.ProviderOpenAI, Model: model, Err: errors.New("backend unavailable")}
	}
	if len(f.responses) == 0 {
		return "stub response", nil
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func (f *fakeClient) Close() error { return nil }

func sampleState() State {
	return NewState("add input validation to the login form", Context{
		Git: GitContext{
			Branch:        "main",
			ModifiedFiles: []string{"login.js"},
		},
		Files: []FileRef{},
	})
}

func TestRun_SuccessfulPipeline(t *testing.T) {
	client := &fakeClient{responses: []string{"1. Do the thing", "function validate() {}", "Looks good"}}

	var progress []int
	runner := NewRunner(client, WithProgress(func(ev ProgressEvent) {
		progress = append(progress, ev.Progress)
	}))

	final, err := runner.Run(context.Background(), sampleState())
	require.NoError(t, err)

	// Progress follows the fixed schedule exactly, no skips or repeats.
	assert.Equal(t, ProgressSchedule, progress)
	assert.Equal(t, 100, final.Progress)
	assert.Equal(t, StepCompleted, final.CurrentStep)

	// One initial user message plus exactly one appended per stage 1-5;
	// finalize appends nothing.
	require.Len(t, final.Messages, 6)
	assert.Equal(t, llm.RoleUser, final.Messages[0].Role)
	for _, msg := range final.Messages[1:] {
		assert.Equal(t, llm.RoleAssistant, msg.Role)
	}

	assert.Equal(t, "function validate() {}", final.GeneratedCode)
	assert.Equal(t, "1. Do the thing", final.Plan)
	assert.Equal(t, "main", final.Analysis.GitBranch)
	assert.Equal(t, 0, final.Analysis.FilesCount)
	assert.Empty(t, final.Error)

	// Three LLM calls: plan, generate, validate. The context stages do
	// not touch the gateway.
	assert.Equal(t, 3, client.calls)
}

func TestRun_GenerateStageFault(t *testing.T) {
	// Second LLM call belongs to generate_code.
	client := &fakeClient{responses: []string{"the plan"}, failOn: 2}
	runner := NewRunner(client)

	final, err := runner.Run(context.Background(), sampleState())
	require.Error(t, err)

	var provErr *llm.ProviderError
	assert.True(t, errors.As(err, &provErr))
	assert.Contains(t, err.Error(), "stage generate")

	// The fault leaves no partial generated code behind.
	assert.Equal(t, "", final.GeneratedCode)
}

func TestRun_PlanStageFault(t *testing.T) {
	client := &fakeClient{failOn: 1}
	runner := NewRunner(client)

	final, err := runner.Run(context.Background(), sampleState())
	require.Error(t, err)
	assert.Empty(t, final.Plan)
	assert.Equal(t, "", final.GeneratedCode)
	// The returned state is the one before the faulting stage.
	assert.Equal(t, 40, final.Progress)
}

func TestAnalyzeContext_UnknownBranch(t *testing.T) {
	s := NewState("do something", Context{})

	next, err := analyzeContext(context.Background(), nil, s)
	require.NoError(t, err)

	assert.Equal(t, "unknown", next.Analysis.GitBranch)
	assert.Equal(t, 20, next.Progress)
	assert.Equal(t, StepAnalyzing, next.CurrentStep)
	require.Len(t, next.Messages, 2)
	assert.Contains(t, next.Messages[1].Content, "Git Branch: unknown")
}

func TestReadGitContext_Defaults(t *testing.T) {
	s := NewState("do something", Context{})

	next, err := readGitContext(context.Background(), nil, s)
	require.NoError(t, err)

	assert.Equal(t, 40, next.Progress)
	assert.Contains(t, next.Messages[1].Content, "Branch: main")
	assert.Contains(t, next.Messages[1].Content, "Last Commit: N/A")
}

func TestGenerateCode_UsesPlanField(t *testing.T) {
	client := &fakeClient{responses: []string{"code here"}}
	s := sampleState()
	s.Plan = "the explicit plan"

	var captured string
	capturing := &capturingClient{inner: client, onInvoke: func(msgs []llm.Message) {
		captured = msgs[len(msgs)-1].Content
	}}

	next, err := generateCode(context.Background(), capturing, s)
	require.NoError(t, err)
	assert.Equal(t, "code here", next.GeneratedCode)
	assert.Contains(t, captured, "Plan: the explicit plan")
}

func TestRun_IndependentStates(t *testing.T) {
	// Two back-to-back runs must not leak messages into each other.
	runner1 := NewRunner(&fakeClient{responses: []string{"plan a", "code a", "review a"}})
	runner2 := NewRunner(&fakeClient{responses: []string{"plan b", "code b", "review b"}})

	final1, err := runner1.Run(context.Background(), NewState("first request", Context{}))
	require.NoError(t, err)
	final2, err := runner2.Run(context.Background(), NewState("second request", Context{}))
	require.NoError(t, err)

	assert.Len(t, final1.Messages, 6)
	assert.Len(t, final2.Messages, 6)
	for _, msg := range final2.Messages {
		assert.False(t, strings.Contains(msg.Content, "first request"),
			"state from the first run leaked into the second")
	}
	assert.Equal(t, "code a", final1.GeneratedCode)
	assert.Equal(t, "code b", final2.GeneratedCode)
}

// capturingClient records the messages of each Invoke before delegating.
type capturingClient struct {
	inner    llm.Client
	onInvoke func(messages []llm.Message)
}

func (c *capturingClient) Invoke(ctx context.Context, model string, messages []llm.Message) (string, error) {
	c.onInvoke(messages)
	return c.inner.Invoke(ctx, model, messages)
}

func (c *capturingClient) Close() error { return nil }
