package gamification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/flashcording/agent-service/internal/db"
)

// Awarder grants experience for platform events and keeps the user's
// leveling state and activity log in sync.
type Awarder struct {
	db *db.DB
}

// NewAwarder creates an Awarder backed by the given database.
func NewAwarder(database *db.DB) *Awarder {
	return &Awarder{db: database}
}

// Award records an activity entry and applies its experience gain to the
// user. metadata is marshaled into the activity record for later display.
func (a *Awarder) Award(ctx context.Context, userID uuid.UUID, eventType, description string, expGained int, metadata map[string]any) (*Progress, error) {
	var metaJSON []byte
	if metadata != nil {
		var err error
		metaJSON, err = json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal activity metadata: %w", err)
		}
	}

	if _, err := a.db.RecordActivity(ctx, userID, eventType, description, expGained, metaJSON); err != nil {
		return nil, err
	}

	user, err := a.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", userID)
	}

	progress := AddExp(user.Level, user.Exp, user.TotalExp, expGained)
	if err := a.db.UpdateUserExperience(ctx, userID, progress.Level, progress.Exp, progress.TotalExp); err != nil {
		return nil, err
	}
	return &progress, nil
}

// AwardCodeGenerated grants the fixed reward for a completed generation job.
func (a *Awarder) AwardCodeGenerated(ctx context.Context, userID, jobID uuid.UUID) (*Progress, error) {
	return a.Award(ctx, userID, EventCodeGenerated, "Generated code using AI agent",
		ExpCodeGenerated, map[string]any{"job_id": jobID.String()})
}

// AwardCodeAnalyzed grants the fixed reward for a code analysis.
func (a *Awarder) AwardCodeAnalyzed(ctx context.Context, userID, analysisID uuid.UUID, filePath string) (*Progress, error) {
	return a.Award(ctx, userID, EventCodeAnalyzed, "Analyzed code: "+filePath,
		ExpCodeAnalyzed, map[string]any{"analysis_id": analysisID.String()})
}
