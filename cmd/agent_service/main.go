// Package main provides the entry point for the agent service HTTP API
// server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agent_service",
	Short: "AI agent job orchestration server",
	Long:  "Runs the REST API that turns coding prompts into staged LLM code-generation jobs, with chat, code analysis, and experience tracking for the learning platform.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
