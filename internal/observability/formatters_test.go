package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flashcording/agent-service/internal/analysis"
)

func TestPrintMetrics(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintMetrics(&analysis.Result{
		ComplexityScore:      3.5,
		MaintainabilityIndex: 72.0,
		LinesOfCode:          40,
		CyclomaticComplexity: 6,
		CognitiveComplexity:  4,
		CodeSmells:           2,
	})

	out := buf.String()
	assert.Contains(t, out, "CODE METRICS")
	assert.Contains(t, out, "Complexity score:       3.5")
	assert.Contains(t, out, "Lines of code:          40")
	assert.Contains(t, out, "Code smells:            2")
}

func TestPrintMetricsNil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintMetrics(nil)
	assert.Empty(t, buf.String())
}

func TestPrintIssues(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintIssues([]analysis.Issue{
		{Severity: "error", Message: "unreachable code", Line: 12},
		{Severity: "warning", Message: "unused variable"},
	})

	out := buf.String()
	assert.Contains(t, out, "ISSUES")
	assert.Contains(t, out, "[ERROR] line 12")
	assert.Contains(t, out, "unreachable code")
	assert.Contains(t, out, "[WARNING]")
}

func TestPrintIssuesTruncatesList(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	issues := make([]analysis.Issue, 8)
	for i := range issues {
		issues[i] = analysis.Issue{Severity: "info", Message: "filler"}
	}
	p.PrintIssues(issues)

	assert.Contains(t, buf.String(), "... and 3 more issues")
}

func TestPrintIssuesEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintIssues(nil)
	assert.Empty(t, buf.String())
}

func TestPrintSuggestions(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSuggestions([]analysis.Suggestion{
		{Type: "refactor", Message: "extract helper function"},
	})

	out := buf.String()
	assert.Contains(t, out, "SUGGESTIONS")
	assert.Contains(t, out, "1. (refactor) extract helper function")
}

func TestPrintResultSections(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintResult(&analysis.Result{
		LinesOfCode: 10,
		Issues:      []analysis.Issue{{Severity: "info", Message: "ok"}},
		Suggestions: []analysis.Suggestion{{Type: "style", Message: "rename"}},
	})

	out := buf.String()
	for _, section := range []string{"CODE METRICS", "ISSUES", "SUGGESTIONS"} {
		assert.Contains(t, out, section)
	}
	// metrics come before issues, issues before suggestions
	assert.Less(t, strings.Index(out, "CODE METRICS"), strings.Index(out, "ISSUES"))
	assert.Less(t, strings.Index(out, "ISSUES"), strings.Index(out, "SUGGESTIONS"))
}

func TestLongLinesTruncatedToBoxWidth(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintIssues([]analysis.Issue{{
		Severity: "error",
		Message:  strings.Repeat("x", 200),
	}})

	for _, line := range strings.Split(buf.String(), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
}
