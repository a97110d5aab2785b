package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const analysisColumns = `id, user_id, COALESCE(file_path, ''), language, code_content,
	complexity_score, lines_of_code, maintainability_index, issues, suggestions,
	cyclomatic_complexity, cognitive_complexity, code_smells, created_at`

// SaveAnalysis persists a code analysis result for a user.
func (db *DB) SaveAnalysis(ctx context.Context, rec *CodeAnalysisRecord) (*CodeAnalysisRecord, error) {
	var saved CodeAnalysisRecord
	err := db.pool.QueryRow(ctx,
		`INSERT INTO code_analyses (user_id, file_path, language, code_content,
		   complexity_score, lines_of_code, maintainability_index, issues, suggestions,
		   cyclomatic_complexity, cognitive_complexity, code_smells)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+analysisColumns,
		rec.UserID, rec.FilePath, rec.Language, rec.CodeContent,
		rec.ComplexityScore, rec.LinesOfCode, rec.MaintainabilityIndex,
		rec.Issues, rec.Suggestions,
		rec.CyclomaticComplexity, rec.CognitiveComplexity, rec.CodeSmells,
	).Scan(&saved.ID, &saved.UserID, &saved.FilePath, &saved.Language, &saved.CodeContent,
		&saved.ComplexityScore, &saved.LinesOfCode, &saved.MaintainabilityIndex,
		&saved.Issues, &saved.Suggestions,
		&saved.CyclomaticComplexity, &saved.CognitiveComplexity, &saved.CodeSmells,
		&saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}
	return &saved, nil
}

// ListAnalyses returns a user's analyses, newest first.
func (db *DB) ListAnalyses(ctx context.Context, userID uuid.UUID, limit int) ([]CodeAnalysisRecord, error) {
	if limit == 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+analysisColumns+` FROM code_analyses
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var recs []CodeAnalysisRecord
	for rows.Next() {
		var rec CodeAnalysisRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.FilePath, &rec.Language, &rec.CodeContent,
			&rec.ComplexityScore, &rec.LinesOfCode, &rec.MaintainabilityIndex,
			&rec.Issues, &rec.Suggestions,
			&rec.CyclomaticComplexity, &rec.CognitiveComplexity, &rec.CodeSmells,
			&rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
