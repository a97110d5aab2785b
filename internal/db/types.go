package db

import (
	"time"

	"github.com/google/uuid"
)

// Job status values. A job is created pending, moves to processing when a
// worker picks it up, and ends in exactly one of the terminal states.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// AgentJob is the durable record tracking one code-generation request.
type AgentJob struct {
	ID      uuid.UUID `json:"id"`
	UserID  uuid.UUID `json:"user_id"`
	Prompt  string    `json:"prompt"`
	Context []byte    `json:"context,omitempty"`

	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	CurrentStep string `json:"current_step,omitempty"`
	Message     string `json:"message,omitempty"`

	Result        []byte `json:"result,omitempty"`
	GeneratedCode string `json:"generated_code,omitempty"`
	Diff          string `json:"diff,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`

	ModelUsed      string  `json:"model_used,omitempty"`
	TokensUsed     int     `json:"tokens_used"`
	ProcessingTime float64 `json:"processing_time"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	HeartbeatAt *time.Time `json:"-"`
}

// Terminal reports whether the job has reached a final status.
func (j *AgentJob) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// ConversationEntry is one persisted message in a chat session. Entries are
// append-only: never mutated or deleted.
type ConversationEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Tokens    int       `json:"tokens"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CodeAnalysisRecord stores one code analysis result.
type CodeAnalysisRecord struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	FilePath    string    `json:"file_path"`
	Language    string    `json:"language"`
	CodeContent string    `json:"code_content"`

	ComplexityScore      float64 `json:"complexity_score"`
	LinesOfCode          int     `json:"lines_of_code"`
	MaintainabilityIndex float64 `json:"maintainability_index"`
	Issues               []byte  `json:"issues,omitempty"`
	Suggestions          []byte  `json:"suggestions,omitempty"`
	CyclomaticComplexity int     `json:"cyclomatic_complexity"`
	CognitiveComplexity  int     `json:"cognitive_complexity"`
	CodeSmells           int     `json:"code_smells"`

	CreatedAt time.Time `json:"created_at"`
}

// User is a platform user with gamification progress.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`

	Level    int `json:"level"`
	Exp      int `json:"exp"`
	TotalExp int `json:"total_exp"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Activity is one gamification event log entry.
type Activity struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
	ExpGained   int       `json:"exp_gained"`
	Metadata    []byte    `json:"metadata,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
