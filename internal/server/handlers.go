package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/jonathan/interview-prep/internal/config"
	"github.com/jonathan/interview-prep/internal/fetch"
	"github.com/jonathan/interview-prep/internal/ingestion"
	"github.com/jonathan/interview-prep/internal/server/middleware"
	"github.com/jonathan/interview-prep/internal/types"
)

// SubmitResponse represents the response for POST /api/interview-prep
type SubmitResponse struct {
	ID string `json:"id"`
}

// HistoryResponse represents the response for GET /api/history
type HistoryResponse struct {
	Items []types.ArtifactSummary `json:"items"`
}

// ResponsesResponse represents the response for GET /api/responses/{jobId}
type ResponsesResponse struct {
	Responses []types.UserResponse `json:"responses"`
}

// multipartMemory is how much of an upload is kept in memory before spilling to disk.
const multipartMemory = 4 << 20

// handleSubmit accepts a résumé upload and starts a background job
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if s.maxUploadBytes > 0 {
		if r.ContentLength > s.maxUploadBytes {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, "upload exceeds the maximum allowed size")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, "upload exceeds the maximum allowed size")
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	inputs, err := s.readSubmission(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	task, err := s.runner.Submit(inputs, middleware.UserIDString(r))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusAccepted, SubmitResponse{ID: task.ID})
}

// readSubmission validates the form fields and extracts the résumé text.
func (s *Server) readSubmission(r *http.Request) (types.JobInputs, error) {
	jobURL := strings.TrimSpace(r.FormValue("jobUrl"))
	if jobURL == "" {
		return types.JobInputs{}, &ErrValidation{Field: "jobUrl", Message: "is required"}
	}
	if err := fetch.ValidateURL(jobURL); err != nil {
		return types.JobInputs{}, &ErrValidation{Field: "jobUrl", Message: "must be an absolute http(s) URL"}
	}

	linkedInURL := strings.TrimSpace(r.FormValue("linkedinUrl"))
	if linkedInURL != "" {
		if err := fetch.ValidateURL(linkedInURL); err != nil {
			return types.JobInputs{}, &ErrValidation{Field: "linkedinUrl", Message: "must be an absolute http(s) URL"}
		}
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		return types.JobInputs{}, &ErrValidation{Field: "resume", Message: "file is required"}
	}
	defer func() { _ = file.Close() }()

	text, err := ingestion.ExtractResumeText(header.Filename, file)
	if err != nil {
		var unsupported *ingestion.UnsupportedTypeError
		if errors.As(err, &unsupported) || errors.Is(err, ingestion.ErrEmptyResume) {
			return types.JobInputs{}, err
		}
		return types.JobInputs{}, &ErrValidation{Field: "resume", Message: "could not be parsed: " + err.Error()}
	}

	return types.JobInputs{JobURL: jobURL, LinkedInURL: linkedInURL, ResumeText: text}, nil
}

// handleStatus returns the polling view of a job
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job.View())
}

// handleHistory lists the caller's recent preparation guides
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := s.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, config.MaxHistoryLimit)
	}

	s.sweepInBackground()

	items, err := s.store.History(r.Context(), middleware.UserIDString(r), limit)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if items == nil {
		items = []types.ArtifactSummary{}
	}
	s.jsonResponse(w, http.StatusOK, HistoryResponse{Items: items})
}

// sweepInBackground starts an expired-artifact sweep unless one is already running.
func (s *Server) sweepInBackground() {
	s.sweepMu.Lock()
	if s.sweeping {
		s.sweepMu.Unlock()
		return
	}
	s.sweeping = true
	s.sweeps.Add(1)
	s.sweepMu.Unlock()

	go func() {
		defer s.sweeps.Done()
		defer func() {
			s.sweepMu.Lock()
			s.sweeping = false
			s.sweepMu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.sweepTimeout)
		defer cancel()
		if _, err := s.store.SweepExpired(ctx); err != nil {
			s.log.Warnw("Background sweep failed", "error", err)
		}
	}()
}

// handleSaveResponse upserts a practice answer
func (s *Server) handleSaveResponse(w http.ResponseWriter, r *http.Request) {
	var req types.SaveResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	saved, err := s.responses.SaveResponse(r.Context(), req.JobID, req.QuestionID, req.RoundID, req.Fields())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, saved)
}

// handleListResponses returns every saved answer for a job
func (s *Server) handleListResponses(w http.ResponseWriter, r *http.Request) {
	list, err := s.responses.ListResponses(r.Context(), r.PathValue("jobId"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if list == nil {
		list = []types.UserResponse{}
	}
	s.jsonResponse(w, http.StatusOK, ResponsesResponse{Responses: list})
}

// handleGrade grades a practice answer against its question
func (s *Server) handleGrade(w http.ResponseWriter, r *http.Request) {
	var req types.GradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	result, err := s.responses.Grade(r.Context(), req.JobID, req.QuestionID, req.ResponseText)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}
