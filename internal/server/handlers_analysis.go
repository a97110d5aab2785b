package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/flashcording/agent-service/internal/db"
	"github.com/flashcording/agent-service/internal/server/middleware"
	"github.com/flashcording/agent-service/internal/types"
)

// handleAnalyzeCode runs the code analyzer synchronously, persists the
// result, and grants the analysis reward.
func (s *Server) handleAnalyzeCode(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.AnalyzeCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	filePath := req.FilePath
	if filePath == "" {
		filePath = "untitled"
	}
	language := req.Language
	if language == "" {
		language = "python"
	}

	result, err := s.analyzer.AnalyzeCode(r.Context(), req.Code, language)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "Analysis failed: "+err.Error())
		return
	}

	issuesJSON, err := json.Marshal(result.Issues)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to serialize analysis")
		return
	}
	suggestionsJSON, err := json.Marshal(result.Suggestions)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to serialize analysis")
		return
	}

	record, err := s.db.SaveAnalysis(r.Context(), &db.CodeAnalysisRecord{
		UserID:               userID,
		FilePath:             filePath,
		Language:             language,
		CodeContent:          req.Code,
		ComplexityScore:      result.ComplexityScore,
		LinesOfCode:          result.LinesOfCode,
		MaintainabilityIndex: result.MaintainabilityIndex,
		Issues:               issuesJSON,
		Suggestions:          suggestionsJSON,
		CyclomaticComplexity: result.CyclomaticComplexity,
		CognitiveComplexity:  result.CognitiveComplexity,
		CodeSmells:           result.CodeSmells,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	progress, err := s.awarder.AwardCodeAnalyzed(r.Context(), userID, record.ID, filePath)
	if err != nil {
		// Analysis succeeded; the lost reward is log-worthy only.
		log.Printf("Failed to award analysis experience for user %s: %v", userID, err)
	}

	response := map[string]any{
		"id":       record.ID,
		"analysis": result,
	}
	if progress != nil {
		response["exp"] = progress
	}
	s.jsonResponse(w, http.StatusOK, response)
}

// handleListAnalyses returns the caller's past analyses, newest first.
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	list, err := s.db.ListAnalyses(r.Context(), userID, 0)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if list == nil {
		list = []db.CodeAnalysisRecord{}
	}
	s.jsonResponse(w, http.StatusOK, list)
}
