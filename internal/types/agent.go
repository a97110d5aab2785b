package types

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// CreateJobRequest represents a request to start a code-generation job.
type CreateJobRequest struct {
	Prompt  string          `json:"prompt" validate:"required,min=1"`
	Context json.RawMessage `json:"context,omitempty"`
	Model   string          `json:"model,omitempty"`
}

// AnalyzeCodeRequest represents a request to analyze a piece of code.
type AnalyzeCodeRequest struct {
	Code     string `json:"code" validate:"required,min=1"`
	Language string `json:"language,omitempty"`
	FilePath string `json:"file_path,omitempty"`
}

// ChatRequest represents one conversational turn.
type ChatRequest struct {
	SessionID string `json:"session_id" validate:"required,min=1"`
	Message   string `json:"message" validate:"required,min=1"`
	Model     string `json:"model,omitempty"`
}

// Validate validates the CreateJobRequest using the validator.
func (r *CreateJobRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the AnalyzeCodeRequest using the validator.
func (r *AnalyzeCodeRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ChatRequest using the validator.
func (r *ChatRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
