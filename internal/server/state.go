package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jwtly10/go-reqbench/internal/state"
)

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.workbench.Request.Snapshot())
}

func (s *Server) handleGetResponse(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.workbench.Response.Snapshot())
}

func (s *Server) handleSetRequestField(w http.ResponseWriter, r *http.Request) {
	field := chi.URLParam(r, "field")
	value, err := decodeFieldValue(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.workbench.Request.SetField(field, value); err != nil {
		s.writeSetFieldError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, s.workbench.Request.Snapshot())
}

func (s *Server) handleSetResponseField(w http.ResponseWriter, r *http.Request) {
	field := chi.URLParam(r, "field")
	value, err := decodeFieldValue(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.workbench.Response.SetField(field, value); err != nil {
		s.writeSetFieldError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, s.workbench.Response.Snapshot())
}

func (s *Server) writeSetFieldError(w http.ResponseWriter, err error) {
	if errors.Is(err, state.ErrUnknownField) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.logger.Error("failed to set field", "error", err)
	s.writeError(w, http.StatusInternalServerError, "failed to set field")
}
