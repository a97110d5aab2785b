// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/flashcording/agent-service/internal/analysis"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintMetrics outputs the numeric quality metrics of an analysis result.
func (p *Printer) PrintMetrics(result *analysis.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Complexity score:       %.1f\n", result.ComplexityScore))
	sb.WriteString(fmt.Sprintf("Maintainability index:  %.1f\n", result.MaintainabilityIndex))
	sb.WriteString(fmt.Sprintf("Lines of code:          %d\n", result.LinesOfCode))
	sb.WriteString(fmt.Sprintf("Cyclomatic complexity:  %d\n", result.CyclomaticComplexity))
	sb.WriteString(fmt.Sprintf("Cognitive complexity:   %d\n", result.CognitiveComplexity))
	sb.WriteString(fmt.Sprintf("Code smells:            %d", result.CodeSmells))

	p.printBox("CODE METRICS", sb.String())
}

// PrintIssues outputs the detected issues, most severe first as returned
// by the analyzer.
func (p *Printer) PrintIssues(issues []analysis.Issue) {
	if len(issues) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d issues:\n\n", len(issues)))

	count := min(len(issues), maxItemsToShow)
	for i := 0; i < count; i++ {
		issue := issues[i]
		severity := strings.ToUpper(issue.Severity)
		if issue.Line > 0 {
			sb.WriteString(fmt.Sprintf("[%s] line %d\n", severity, issue.Line))
		} else {
			sb.WriteString(fmt.Sprintf("[%s]\n", severity))
		}
		sb.WriteString(fmt.Sprintf("    %s\n", issue.Message))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(issues) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more issues", len(issues)-maxItemsToShow))
	}

	p.printBox("ISSUES", sb.String())
}

// PrintSuggestions outputs improvement recommendations.
func (p *Printer) PrintSuggestions(suggestions []analysis.Suggestion) {
	if len(suggestions) == 0 {
		return
	}

	var sb strings.Builder

	count := min(len(suggestions), maxItemsToShow)
	for i := 0; i < count; i++ {
		s := suggestions[i]
		sb.WriteString(fmt.Sprintf("%d. (%s) %s\n", i+1, s.Type, s.Message))
	}

	if len(suggestions) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(suggestions)-maxItemsToShow))
	}

	p.printBox("SUGGESTIONS", strings.TrimRight(sb.String(), "\n"))
}

// PrintResult outputs the full analysis in sections.
func (p *Printer) PrintResult(result *analysis.Result) {
	if result == nil {
		return
	}
	p.PrintMetrics(result)
	p.PrintIssues(result.Issues)
	p.PrintSuggestions(result.Suggestions)
}
