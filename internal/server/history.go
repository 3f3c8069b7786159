package server

import (
	"errors"
	"net/http"

	"github.com/jwtly10/go-reqbench/internal/history"
)

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := s.workbench.History(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list history", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}

	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleSaveHistory(w http.ResponseWriter, r *http.Request) {
	entry, err := s.workbench.SaveRequest(r.Context())
	if err != nil {
		s.logger.Error("failed to save request", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to save request")
		return
	}

	s.writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := parseEntryID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := s.workbench.HistoryEntry(r.Context(), id)
	if err != nil {
		s.writeHistoryError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id, err := parseEntryID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.workbench.DeleteHistoryEntry(r.Context(), id); err != nil {
		s.writeHistoryError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRestoreHistory(w http.ResponseWriter, r *http.Request) {
	id, err := parseEntryID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	restored, err := s.workbench.RestoreRequest(r.Context(), id)
	if err != nil {
		s.writeHistoryError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, restored)
}

func (s *Server) writeHistoryError(w http.ResponseWriter, err error) {
	if errors.Is(err, history.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "history entry not found")
		return
	}
	s.logger.Error("history request failed", "error", err)
	s.writeError(w, http.StatusInternalServerError, "internal server error")
}
