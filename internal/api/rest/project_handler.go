package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/softdesk-api/go-core/pkg/types"
)

// listProjectsHandler lists all projects
func (s *Server) listProjectsHandler(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, types.KindProject, types.ActionList, nil) {
		return
	}

	projects, err := s.store.ListProjects(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, projects)
}

// createProjectHandler creates a project. The acting principal becomes
// the author; the store enrolls it as a contributor in the same unit
// of work.
func (s *Server) createProjectHandler(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, types.KindProject, types.ActionCreate, nil) {
		return
	}

	var req ProjectRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Title == nil || *req.Title == "" {
		WriteError(w, http.StatusBadRequest, "Title is required.")
		return
	}
	if req.Type == nil || !types.ProjectType(*req.Type).Valid() {
		WriteError(w, http.StatusBadRequest, "Type must be one of BACKEND, FRONTEND, IOS, ANDROID.")
		return
	}

	project := &types.Project{
		Author: PrincipalFrom(r.Context()).ID,
		Title:  *req.Title,
		Type:   types.ProjectType(*req.Type),
	}
	if req.Description != nil {
		project.Description = *req.Description
	}

	if err := s.store.CreateProject(r.Context(), project); err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, project)
}

// getProjectHandler retrieves one project
func (s *Server) getProjectHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requirePrincipal(w, r) {
		return
	}

	project, err := s.store.GetProject(r.Context(), mux.Vars(r)["pk"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if !s.authorize(w, r, types.KindProject, types.ActionRetrieve, project) {
		return
	}
	WriteJSON(w, http.StatusOK, project)
}

// updateProjectHandler updates a project's mutable fields; PUT
// replaces them, PATCH changes only the provided ones
func (s *Server) updateProjectHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requirePrincipal(w, r) {
		return
	}

	project, err := s.store.GetProject(r.Context(), mux.Vars(r)["pk"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if !s.authorize(w, r, types.KindProject, actionForMethod(r), project) {
		return
	}

	var req ProjectRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	updated := *project
	if req.Title != nil {
		updated.Title = *req.Title
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.Type != nil {
		if !types.ProjectType(*req.Type).Valid() {
			WriteError(w, http.StatusBadRequest, "Type must be one of BACKEND, FRONTEND, IOS, ANDROID.")
			return
		}
		updated.Type = types.ProjectType(*req.Type)
	}

	if err := s.store.UpdateProject(r.Context(), &updated); err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, &updated)
}

// deleteProjectHandler deletes a project and everything under it
func (s *Server) deleteProjectHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requirePrincipal(w, r) {
		return
	}

	project, err := s.store.GetProject(r.Context(), mux.Vars(r)["pk"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if !s.authorize(w, r, types.KindProject, types.ActionDestroy, project) {
		return
	}

	if err := s.store.DeleteProject(r.Context(), project.ID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
