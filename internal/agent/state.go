// Package agent implements the staged code-generation pipeline: a fixed
// six-stage workflow that turns one user request into a sequence of LLM
// calls while tracking progress through named stages.
package agent

import (
	"github.com/flashcording/agent-service/internal/llm"
)

// GitContext describes repository state supplied with a request.
type GitContext struct {
	Branch         string   `json:"branch,omitempty"`
	LastCommit     string   `json:"last_commit,omitempty"`
	Changes        []string `json:"changes,omitempty"`
	ModifiedFiles  []string `json:"modified_files,omitempty"`
	UntrackedFiles []string `json:"untracked_files,omitempty"`
}

// FileRef describes one file supplied as context.
type FileRef struct {
	Path     string `json:"path"`
	Language string `json:"language,omitempty"`
	Content  string `json:"content,omitempty"`
}

// Context is the structured input accompanying a request.
type Context struct {
	Git   GitContext `json:"git"`
	Files []FileRef  `json:"files"`
}

// ContextAnalysis is the lightweight summary produced by the analyze stage.
type ContextAnalysis struct {
	GitBranch  string    `json:"git_branch"`
	GitChanges []string  `json:"git_changes"`
	FilesCount int       `json:"files_count"`
	Files      []FileRef `json:"files"`
}

// State is the run state threaded through the pipeline stages. It is owned
// exclusively by one pipeline execution and never persisted mid-flight.
// Stages receive it by value and return the next state; there is no aliasing
// between stages.
type State struct {
	// Prompt is the user's free-text request, immutable for the run.
	Prompt string `json:"prompt"`
	// Context is the structured input copied from the request.
	Context Context `json:"context"`
	// Messages is the ordered, append-only conversation accumulated by
	// the stages; never truncated or reordered mid-run.
	Messages []llm.Message `json:"messages"`
	// CurrentStep is the human-readable label of the stage in progress.
	CurrentStep string `json:"current_step"`
	// Progress is 0-100, monotonically non-decreasing within a run.
	Progress int `json:"progress"`
	// Plan is the implementation plan produced by the plan stage. The
	// generate stage reads this field directly rather than assuming the
	// plan is the most recent message.
	Plan string `json:"plan,omitempty"`
	// GeneratedCode is produced by the generate stage; empty until then.
	GeneratedCode string `json:"generated_code,omitempty"`
	// Analysis is the summary produced by the analyze stage.
	Analysis ContextAnalysis `json:"analysis"`
	// Error is set only on failure, mutually exclusive with completion.
	Error string `json:"error,omitempty"`
}

// NewState creates the initial run state for a request: one user message,
// zero progress.
func NewState(prompt string, context Context) State {
	return State{
		Prompt:      prompt,
		Context:     context,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		CurrentStep: "Starting",
		Progress:    0,
	}
}

// appendMessage returns the state with one more conversation entry.
func (s State) appendMessage(role, content string) State {
	next := make([]llm.Message, len(s.Messages), len(s.Messages)+1)
	copy(next, s.Messages)
	s.Messages = append(next, llm.Message{Role: role, Content: content})
	return s
}
