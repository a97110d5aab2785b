// Package analysis provides LLM-backed code complexity and quality analysis.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/flashcording/agent-service/internal/llm"
	"github.com/flashcording/agent-service/internal/schemas"
)

// Issue is one problem the analysis found in the code.
type Issue struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line,omitempty"`
}

// Suggestion is one improvement recommendation.
type Suggestion struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Result holds code complexity and quality metrics.
type Result struct {
	ComplexityScore      float64      `json:"complexity_score"`
	MaintainabilityIndex float64      `json:"maintainability_index"`
	LinesOfCode          int          `json:"lines_of_code"`
	CyclomaticComplexity int          `json:"cyclomatic_complexity"`
	CognitiveComplexity  int          `json:"cognitive_complexity"`
	CodeSmells           int          `json:"code_smells"`
	Issues               []Issue      `json:"issues"`
	Suggestions          []Suggestion `json:"suggestions"`
}

// DefaultResult is the fixed neutral result substituted when the model
// returns unparseable output. Deterministic and total: only the line count
// depends on the input.
func DefaultResult(code string) Result {
	return Result{
		ComplexityScore:      5.0,
		MaintainabilityIndex: 70.0,
		LinesOfCode:          len(strings.Split(code, "\n")),
		CyclomaticComplexity: 5,
		CognitiveComplexity:  5,
		CodeSmells:           0,
		Issues:               []Issue{},
		Suggestions:          []Suggestion{},
	}
}

// resultSchema constrains the model's JSON output. Anything that fails it
// is treated the same as malformed JSON.
const resultSchema = `{
	"type": "object",
	"required": ["complexity_score", "maintainability_index", "lines_of_code"],
	"properties": {
		"complexity_score": {"type": "number", "minimum": 0, "maximum": 10},
		"maintainability_index": {"type": "number", "minimum": 0, "maximum": 100},
		"lines_of_code": {"type": "integer", "minimum": 0},
		"cyclomatic_complexity": {"type": "integer", "minimum": 0},
		"cognitive_complexity": {"type": "integer", "minimum": 0},
		"code_smells": {"type": "integer", "minimum": 0},
		"issues": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["severity", "message"],
				"properties": {
					"severity": {"type": "string", "enum": ["high", "medium", "low"]},
					"message": {"type": "string"},
					"line": {"type": "integer"}
				}
			}
		},
		"suggestions": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["type", "message"],
				"properties": {
					"type": {"type": "string"},
					"message": {"type": "string"}
				}
			}
		}
	}
}`

// Analyzer runs code analysis through the LLM gateway.
type Analyzer struct {
	client llm.Client
}

// NewAnalyzer creates an analyzer backed by the given gateway client.
func NewAnalyzer(client llm.Client) *Analyzer {
	return &Analyzer{client: client}
}

// AnalyzeCode asks the model for complexity metrics as strict JSON. A
// provider fault is returned to the caller; a response that fails to parse
// or validate is not an error — the fixed default result is substituted and
// analysis proceeds as if it succeeded.
func (a *Analyzer) AnalyzeCode(ctx context.Context, code, language string) (Result, error) {
	if language == "" {
		language = "python"
	}

	analysisPrompt := fmt.Sprintf(`Analyze the following %s code for:
1. Cyclomatic complexity
2. Code maintainability
3. Potential code smells
4. Lines of code
5. Suggestions for improvement

Code:
`+"```%s"+`
%s
`+"```"+`

Return your analysis in JSON format with the following structure:
{
    "complexity_score": <float 0-10>,
    "maintainability_index": <float 0-100>,
    "lines_of_code": <int>,
    "cyclomatic_complexity": <int>,
    "cognitive_complexity": <int>,
    "code_smells": <int>,
    "issues": [
        {"severity": "high|medium|low", "message": "description", "line": <int>}
    ],
    "suggestions": [
        {"type": "improvement type", "message": "suggestion"}
    ]
}`, language, language, code)

	response, err := a.client.Invoke(ctx, llm.DefaultModel, []llm.Message{
		{Role: llm.RoleSystem, Content: "You are an expert code analyzer. Return only valid JSON."},
		{Role: llm.RoleUser, Content: analysisPrompt},
	})
	if err != nil {
		return Result{}, err
	}

	return parseResult(response, code), nil
}

// parseResult attempts a strict parse of the model output, falling back to
// the neutral defaults on any failure.
func parseResult(response, code string) Result {
	cleaned := llm.CleanJSONBlock(response)

	if err := schemas.ValidateJSONString(resultSchema, cleaned); err != nil {
		return DefaultResult(code)
	}

	var result Result
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return DefaultResult(code)
	}

	if result.Issues == nil {
		result.Issues = []Issue{}
	}
	if result.Suggestions == nil {
		result.Suggestions = []Suggestion{}
	}
	return result
}
