package http

import (
	"net/http"

	"splitinvoice/internal/core"
)

func (s *Server) handleSaveGroup(w http.ResponseWriter, r *http.Request) {
	var g core.Group
	if err := decodeJSON(r, &g); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	g.Name = sanitizeInput(g.Name)
	for i := range g.Members {
		g.Members[i] = sanitizeInput(g.Members[i])
	}

	if err := g.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.groups.SaveGroup(r.Context(), g); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListGroups(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if groups == nil {
		groups = []core.Group{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	g, err := s.groups.GetGroup(r.Context(), r.PathValue("name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.groups.DeleteGroup(r.Context(), r.PathValue("name")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	var t core.Template
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t.Name = sanitizeInput(t.Name)
	t.Restaurant = sanitizeInput(t.Restaurant)
	t.Location = sanitizeInput(t.Location)

	if err := t.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.templates.SaveTemplate(r.Context(), t); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.templates.ListTemplates(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if templates == nil {
		templates = []core.Template{}
	}
	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.templates.GetTemplate(r.Context(), r.PathValue("name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.templates.DeleteTemplate(r.Context(), r.PathValue("name")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
