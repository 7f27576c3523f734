package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"duan/internal/core"
	"duan/internal/log"
)

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var p core.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := p.Normalize(); err != nil {
		if errors.Is(err, core.ErrMissingIdentity) {
			writeError(w, http.StatusUnprocessableEntity, "project needs a code or a name")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.store.Create(r.Context(), p)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Project create failed",
			log.FieldOperation, log.OpCreate, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to store project")
		return
	}

	s.invalidateLists()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r.URL.Query())
	key := "page=" + strconv.Itoa(p.Page) + "&limit=" + strconv.Itoa(p.Limit)

	if page, ok := s.listCache.Get(key); ok {
		writeJSON(w, http.StatusOK, page)
		return
	}

	page, err := s.store.List(r.Context(), p.Page, p.Limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Project list failed",
			log.FieldOperation, log.OpList, log.FieldError, err,
			log.FieldPage, p.Page, log.FieldLimit, p.Limit)
		writeError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}

	s.listCache.Set(key, page)
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleDeleteAllProjects(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAll(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "Delete all projects failed",
			log.FieldOperation, log.OpDelete, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to delete projects")
		return
	}

	s.invalidateLists()
	w.WriteHeader(http.StatusNoContent)
}
