package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/flashcording/agent-service/internal/db"
	"github.com/flashcording/agent-service/internal/jobs"
	"github.com/flashcording/agent-service/internal/llm"
	"github.com/flashcording/agent-service/internal/server/middleware"
	"github.com/flashcording/agent-service/internal/types"
)

// handleCreateJob accepts a generation request, persists the job, and
// enqueues it. The pending record is returned immediately; progress is
// observed by polling or the stream endpoint.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.CreateJobRequest
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

	job, err := s.manager.Submit(r.Context(), userID, req.Prompt, req.Context, model)
	if err != nil {
		if errors.Is(err, jobs.ErrQueueFull) {
			// The record exists and is already marked failed.
			s.jsonResponse(w, http.StatusServiceUnavailable, job)
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Failed to create job: "+err.Error())
		return
	}

	log.Printf("Created agent job %s for user %s", job.ID, userID)
	s.jsonResponse(w, http.StatusAccepted, job)
}

// handleListJobs returns the caller's jobs, newest first.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	list, err := s.db.ListJobs(r.Context(), userID, 0)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if list == nil {
		list = []db.AgentJob{}
	}
	s.jsonResponse(w, http.StatusOK, list)
}

// handleGetJob returns one job, with live progress overlaid while it runs.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	job, err := s.db.GetJob(r.Context(), jobID, userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if job == nil {
		notFound := &ErrJobNotFound{JobID: jobID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	// The durable record only sees the lifecycle writes; overlay the
	// broker's view for in-flight progress.
	if !job.Terminal() {
		if live, ok := s.manager.LiveProgress(jobID); ok {
			job.Progress = live.Progress
			job.CurrentStep = live.CurrentStep
		}
	}

	s.jsonResponse(w, http.StatusOK, job)
}

// handleStreamJob streams a job's progress as Server-Sent Events until the
// job reaches a terminal state or the client disconnects.
func (s *Server) handleStreamJob(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	job, err := s.db.GetJob(r.Context(), jobID, userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if job == nil {
		notFound := &ErrJobNotFound{JobID: jobID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	if job.Terminal() {
		sse.WriteComplete(job.ID.String(), job.Status)
		return
	}

	events, cancel := s.manager.Broker().Subscribe(jobID)
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Terminal {
				if event.Error != "" {
					sse.WriteError(event.Error)
				}
				sse.WriteComplete(jobID.String(), event.Status)
				return
			}
			if err := sse.WriteEvent("progress", event); err != nil {
				log.Printf("Error writing SSE event: %v", err)
				return
			}
		}
	}
}
