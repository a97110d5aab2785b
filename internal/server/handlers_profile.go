package server

import (
	"net/http"

	"github.com/flashcording/agent-service/internal/db"
	"github.com/flashcording/agent-service/internal/gamification"
	"github.com/flashcording/agent-service/internal/server/middleware"
)

// handleGetMe returns the caller's profile with leveling progress.
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := s.userService.GetUser(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"user": user,
		"level_progress": map[string]any{
			"current_exp":         user.Exp,
			"required_exp":        gamification.RequiredForLevel(user.Level),
			"progress_percentage": gamification.LevelProgress(user.Level, user.Exp),
		},
	})
}

// handleListActivities returns the caller's recent experience-earning events.
func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	list, err := s.db.ListActivities(r.Context(), userID, 0)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if list == nil {
		list = []db.Activity{}
	}
	s.jsonResponse(w, http.StatusOK, list)
}

// handleUpdatePassword changes the caller's password.
func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.authHandler.UpdatePasswordWithUserID(w, r, userID)
}
