// A handler file for all job-related API endpoints. Every backend failure
// is converted to a JSON error here; nothing crashes the session.

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nvallur/sketchtran/internal/backend"
	"github.com/nvallur/sketchtran/internal/models"
	"github.com/nvallur/sketchtran/internal/session"
)

const maxUploadSize = 32 << 20 // 32 MB

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	// First hit of a fresh session loads the registry automatically.
	if err := s.session.EnsureLoaded(r.Context()); err != nil {
		s.respondSessionError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": s.session.Snapshot(),
	})
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid upload request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		// Rejected locally; no backend call is made.
		RespondWithError(w, http.StatusBadRequest, "No file selected. Please choose a drawing to upload.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	jobID, err := s.session.Submit(r.Context(), session.Submission{
		Filename:       header.Filename,
		ContentType:    contentType,
		Data:           data,
		TargetLanguage: r.FormValue("target_language"),
	})
	if err != nil {
		s.respondSessionError(w, err)
		return
	}

	s.broadcastSnapshot()
	RespondWithJSON(w, http.StatusCreated, map[string]string{"job_id": jobID})
}

func (s *Server) handleRefreshJobs(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Refresh(r.Context()); err != nil {
		// The previous registry contents are retained on failure.
		s.respondSessionError(w, err)
		return
	}

	s.broadcastSnapshot()
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": s.session.Snapshot(),
	})
}

func (s *Server) handleGetInstructions(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	details, err := s.session.FetchDetails(r.Context(), jobID)
	if err != nil {
		s.respondSessionError(w, err)
		return
	}

	job, _ := s.session.Job(jobID)
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"job_id":               details.JobID,
		"original_drawing_url": details.OriginalDrawingURL,
		"instructions":         details.Instructions,
		"display_text":         details.InstructionsFor(job.TargetLanguage),
	})
}

func (s *Server) handleResolveDownload(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	url, err := s.session.ResolveDownloadLink(r.Context(), jobID)
	if err != nil {
		s.respondSessionError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]string{
		"job_id":       jobID,
		"download_url": url,
	})
}

func (s *Server) handleListLanguages(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"languages": models.Languages,
	})
}

// broadcastSnapshot pushes the current registry to every open tab.
func (s *Server) broadcastSnapshot() {
	s.app.WsHub.Broadcast(map[string]interface{}{
		"type": "jobs",
		"jobs": s.session.Snapshot(),
	})
}

// respondSessionError maps session and backend errors onto HTTP statuses:
// local validation to 400, gating and in-flight duplicates to 409, and
// every remote failure to 502 so the UI can tell its own bugs apart from
// backend trouble.
func (s *Server) respondSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNoFile), errors.Is(err, session.ErrBadLanguage):
		RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrUnknownJob):
		RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrNotReady):
		RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, backend.ErrDecode):
		s.app.Log.Error("backend response could not be decoded", "error", err)
		RespondWithError(w, http.StatusBadGateway, "The translation service returned an unreadable response.")
	default:
		if apiErr, ok := backend.IsAPIError(err); ok {
			s.app.Log.Error("backend call failed", "status", apiErr.StatusCode, "error", err)
			RespondWithError(w, http.StatusBadGateway, err.Error())
			return
		}
		s.app.Log.Error("backend unreachable", "error", err)
		RespondWithError(w, http.StatusBadGateway, "The translation service could not be reached.")
	}
}
