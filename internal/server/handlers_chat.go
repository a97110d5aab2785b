package server

import (
	"encoding/json"
	"net/http"

	"github.com/flashcording/agent-service/internal/db"
	"github.com/flashcording/agent-service/internal/llm"
	"github.com/flashcording/agent-service/internal/server/middleware"
	"github.com/flashcording/agent-service/internal/types"
)

// handleChat performs one conversational exchange within a session.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	model := req.Model
	if model == "" {
		model = llm.DefaultModel
	}

	reply, err := s.chat.Send(r.Context(), userID, req.SessionID, req.Message, model)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "Chat failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, reply)
}

// handleGetConversation returns the ordered transcript for one session.
func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	sessionID := r.PathValue("session_id")
	if sessionID == "" {
		s.errorResponse(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	history, err := s.chat.History(r.Context(), userID, sessionID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if history == nil {
		history = []db.ConversationEntry{}
	}
	s.jsonResponse(w, http.StatusOK, history)
}

// handleListSessions returns the caller's session IDs, most recently
// active first.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	sessions, err := s.db.ListSessions(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if sessions == nil {
		sessions = []string{}
	}
	s.jsonResponse(w, http.StatusOK, sessions)
}
