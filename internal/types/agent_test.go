package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateJobRequestValidate(t *testing.T) {
	valid := CreateJobRequest{Prompt: "write a sort function"}
	assert.NoError(t, valid.Validate())

	withContext := CreateJobRequest{
		Prompt:  "refactor this",
		Context: json.RawMessage(`{"git":{"branch":"main"}}`),
		Model:   "claude-3-opus",
	}
	assert.NoError(t, withContext.Validate())

	empty := CreateJobRequest{}
	assert.Error(t, empty.Validate())
}

func TestAnalyzeCodeRequestValidate(t *testing.T) {
	valid := AnalyzeCodeRequest{Code: "def f(): pass", Language: "python"}
	assert.NoError(t, valid.Validate())

	// Language and file path are optional.
	minimal := AnalyzeCodeRequest{Code: "x = 1"}
	assert.NoError(t, minimal.Validate())

	empty := AnalyzeCodeRequest{Language: "python"}
	assert.Error(t, empty.Validate())
}

func TestChatRequestValidate(t *testing.T) {
	valid := ChatRequest{SessionID: "abc", Message: "hello"}
	assert.NoError(t, valid.Validate())

	missingSession := ChatRequest{Message: "hello"}
	assert.Error(t, missingSession.Validate())

	missingMessage := ChatRequest{SessionID: "abc"}
	assert.Error(t, missingMessage.Validate())
}

func TestCreateJobRequestJSONRoundTrip(t *testing.T) {
	raw := []byte(`{"prompt":"fix the bug","context":{"files":[{"path":"a.py"}]},"model":"gpt-4"}`)

	var req CreateJobRequest
	require.NoError(t, json.Unmarshal(raw, &req))
	assert.Equal(t, "fix the bug", req.Prompt)
	assert.Equal(t, "gpt-4", req.Model)
	assert.JSONEq(t, `{"files":[{"path":"a.py"}]}`, string(req.Context))
}
