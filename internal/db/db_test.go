package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobStatusConstants(t *testing.T) {
	statuses := []string{
		JobStatusPending,
		JobStatusProcessing,
		JobStatusCompleted,
		JobStatusFailed,
	}

	seen := make(map[string]bool)
	for _, s := range statuses {
		assert.NotEmpty(t, s, "status constant should not be empty")
		assert.False(t, seen[s], "status constants should be distinct")
		seen[s] = true
	}
}

func TestAgentJobTerminal(t *testing.T) {
	cases := []struct {
		status   string
		terminal bool
	}{
		{JobStatusPending, false},
		{JobStatusProcessing, false},
		{JobStatusCompleted, true},
		{JobStatusFailed, true},
	}

	for _, tc := range cases {
		job := AgentJob{Status: tc.status}
		assert.Equal(t, tc.terminal, job.Terminal(), "status %s", tc.status)
	}
}

func TestAgentJobType(t *testing.T) {
	now := time.Now()
	job := AgentJob{
		Prompt:    "add a retry loop",
		Status:    JobStatusPending,
		Progress:  0,
		CreatedAt: now,
	}

	assert.Equal(t, "add a retry loop", job.Prompt)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Nil(t, job.StartedAt)
	assert.Nil(t, job.CompletedAt)
	assert.Nil(t, job.HeartbeatAt)
}
