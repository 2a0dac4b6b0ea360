package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/softdesk-api/go-core/pkg/types"
)

// listContributorsHandler lists the contributors of a project
func (s *Server) listContributorsHandler(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, types.KindContributor, types.ActionList, nil) {
		return
	}

	contributors, err := s.store.ListContributors(r.Context(), mux.Vars(r)["project_pk"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, contributors)
}

// addContributorHandler enrolls a user as a contributor of a project
func (s *Server) addContributorHandler(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, types.KindContributor, types.ActionCreate, nil) {
		return
	}

	var req ContributorRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.User == "" {
		WriteError(w, http.StatusBadRequest, "User is required.")
		return
	}

	user, err := s.store.GetUser(r.Context(), req.User)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	contributor := &types.Contributor{
		UserID:    user.ID,
		ProjectID: mux.Vars(r)["project_pk"],
	}
	if err := s.store.AddContributor(r.Context(), contributor); err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, contributor)
}

// getContributorHandler retrieves one contributor record
func (s *Server) getContributorHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requirePrincipal(w, r) {
		return
	}

	vars := mux.Vars(r)
	contributor, err := s.store.GetContributor(r.Context(), vars["project_pk"], vars["pk"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if !s.authorize(w, r, types.KindContributor, types.ActionRetrieve, contributor) {
		return
	}
	WriteJSON(w, http.StatusOK, contributor)
}

// removeContributorHandler removes a contributor from a project. The
// project author's own record cannot be removed.
func (s *Server) removeContributorHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requirePrincipal(w, r) {
		return
	}

	vars := mux.Vars(r)
	contributor, err := s.store.GetContributor(r.Context(), vars["project_pk"], vars["pk"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if !s.authorize(w, r, types.KindContributor, types.ActionDestroy, contributor) {
		return
	}

	if err := s.store.RemoveContributor(r.Context(), contributor.ProjectID, contributor.ID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
