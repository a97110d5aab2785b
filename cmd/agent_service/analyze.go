package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flashcording/agent-service/internal/analysis"
	"github.com/flashcording/agent-service/internal/llm"
	"github.com/flashcording/agent-service/internal/observability"
)

var (
	analyzeLanguage string
	analyzePretty   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a source file without starting the server",
	Long:  `Run the code analyzer against a local file and print the result as JSON. Useful for checking provider credentials and prompt behavior.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeLanguage, "language", "python", "Language of the source file")
	analyzeCmd.Flags().BoolVar(&analyzePretty, "pretty", false, "Print a formatted summary instead of JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	code, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	ctx := context.Background()
	gateway, err := llm.NewGateway(ctx, &llm.Config{
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		GeminiKey:    os.Getenv("GEMINI_API_KEY"),
	})
	if err != nil {
		return fmt.Errorf("failed to create LLM gateway: %w", err)
	}
	defer gateway.Close() //nolint:errcheck

	analyzer := analysis.NewAnalyzer(gateway)
	result, err := analyzer.AnalyzeCode(ctx, string(code), analyzeLanguage)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzePretty {
		observability.NewPrinter(os.Stdout).PrintResult(&result)
		return nil
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
