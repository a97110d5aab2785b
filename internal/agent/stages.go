package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/flashcording/agent-service/internal/llm"
)

// Stage labels, fixed per stage.
const (
	StepAnalyzing  = "Analyzing context"
	StepReadingGit = "Reading Git context"
	StepPlanning   = "Planning solution"
	StepGenerating = "Generating code"
	StepValidating = "Validating code"
	StepCompleted  = "Completed"
)

// ProgressSchedule is the fixed progress value each stage sets, in order.
var ProgressSchedule = []int{20, 40, 60, 80, 95, 100}

// StageFunc is one pipeline transformation. It sets the stage label and
// scheduled progress, performs its work, appends at most one message, and
// returns the next state. A gateway fault is returned, never caught locally.
type StageFunc func(ctx context.Context, client llm.Client, s State) (State, error)

type stage struct {
	name string
	run  StageFunc
}

// stages is the fixed-order pipeline. Only the runner is aware of ordering.
var stages = []stage{
	{"analyze_context", analyzeContext},
	{"read_git", readGitContext},
	{"plan", planSolution},
	{"generate", generateCode},
	{"validate", validateCode},
	{"finalize", finalizeResult},
}

// analyzeContext derives a lightweight summary from the request context.
// No LLM call.
func analyzeContext(_ context.Context, _ llm.Client, s State) (State, error) {
	s.CurrentStep = StepAnalyzing
	s.Progress = 20

	branch := s.Context.Git.Branch
	if branch == "" {
		branch = "unknown"
	}

	s.Analysis = ContextAnalysis{
		GitBranch:  branch,
		GitChanges: s.Context.Git.Changes,
		FilesCount: len(s.Context.Files),
		Files:      s.Context.Files,
	}

	summary := fmt.Sprintf(`Context Analysis:
- Git Branch: %s
- Files: %d files provided
- Changes: %d changes detected`,
		s.Analysis.GitBranch, s.Analysis.FilesCount, len(s.Analysis.GitChanges))

	return s.appendMessage(llm.RoleAssistant, summary), nil
}

// readGitContext restates repository metadata as a human-readable note,
// independent of the analyze stage's output. No LLM call.
func readGitContext(_ context.Context, _ llm.Client, s State) (State, error) {
	s.CurrentStep = StepReadingGit
	s.Progress = 40

	git := s.Context.Git
	branch := git.Branch
	if branch == "" {
		branch = "main"
	}
	lastCommit := git.LastCommit
	if lastCommit == "" {
		lastCommit = "N/A"
	}

	summary := fmt.Sprintf(`Git Repository Context:
- Branch: %s
- Last Commit: %s
- Modified Files: %s
- Untracked Files: %s`,
		branch, lastCommit,
		strings.Join(git.ModifiedFiles, ", "),
		strings.Join(git.UntrackedFiles, ", "))

	return s.appendMessage(llm.RoleAssistant, summary), nil
}

// planSolution asks the default model for a step-by-step implementation plan.
func planSolution(ctx context.Context, client llm.Client, s State) (State, error) {
	s.CurrentStep = StepPlanning
	s.Progress = 60

	contextJSON, err := json.MarshalIndent(s.Context, "", "  ")
	if err != nil {
		return s, fmt.Errorf("failed to marshal context: %w", err)
	}

	planningPrompt := fmt.Sprintf(`You are an expert software engineer. Based on the following request and context, create a detailed plan for implementing the solution.

User Request: %s

Context: %s

Please provide a step-by-step plan for implementing this solution. Be specific and detailed.`,
		s.Prompt, contextJSON)

	plan, err := client.Invoke(ctx, llm.DefaultModel, []llm.Message{
		{Role: llm.RoleSystem, Content: "You are an expert software engineer planning a code implementation."},
		{Role: llm.RoleUser, Content: planningPrompt},
	})
	if err != nil {
		return s, err
	}

	s.Plan = plan
	return s.appendMessage(llm.RoleAssistant, "Plan:\n"+plan), nil
}

// generateCode asks the model for code implementing the plan. The plan is
// read from the Plan field set by the previous stage, not from the tail of
// the message list.
func generateCode(ctx context.Context, client llm.Client, s State) (State, error) {
	s.CurrentStep = StepGenerating
	s.Progress = 80

	contextJSON, err := json.MarshalIndent(s.Context, "", "  ")
	if err != nil {
		return s, fmt.Errorf("failed to marshal context: %w", err)
	}

	plan := s.Plan
	if plan == "" {
		plan = "No plan available"
	}

	codePrompt := fmt.Sprintf(`Based on the plan and context, generate the necessary code to fulfill the user's request.

User Request: %s

Context: %s

Plan: %s

Generate clean, well-documented code. Include comments explaining key sections.
Return only the code without additional explanation.`,
		s.Prompt, contextJSON, plan)

	code, err := client.Invoke(ctx, llm.DefaultModel, []llm.Message{
		{Role: llm.RoleSystem, Content: "You are an expert software engineer. Generate clean, production-ready code."},
		{Role: llm.RoleUser, Content: codePrompt},
	})
	if err != nil {
		return s, err
	}

	s.GeneratedCode = code
	return s.appendMessage(llm.RoleAssistant, "Generated code:\n```\n"+code+"\n```"), nil
}

// validateCode asks the model to review the generated code. The review is
// advisory only; its content never gates pipeline continuation.
func validateCode(ctx context.Context, client llm.Client, s State) (State, error) {
	s.CurrentStep = StepValidating
	s.Progress = 95

	validationPrompt := fmt.Sprintf(`Review the following generated code for:
1. Correctness
2. Best practices
3. Potential bugs or issues
4. Code quality

Code:
`+"```"+`
%s
`+"```"+`

Provide a brief review and any suggestions for improvement.`,
		s.GeneratedCode)

	review, err := client.Invoke(ctx, llm.DefaultModel, []llm.Message{
		{Role: llm.RoleSystem, Content: "You are an expert code reviewer."},
		{Role: llm.RoleUser, Content: validationPrompt},
	})
	if err != nil {
		return s, err
	}

	return s.appendMessage(llm.RoleAssistant, "Code Review:\n"+review), nil
}

// finalizeResult marks the run complete. No message, no LLM call.
func finalizeResult(_ context.Context, _ llm.Client, s State) (State, error) {
	s.CurrentStep = StepCompleted
	s.Progress = 100
	return s, nil
}
