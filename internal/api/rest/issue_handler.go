package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/softdesk-api/go-core/pkg/types"
)

// listIssuesHandler lists the issues of a project
func (s *Server) listIssuesHandler(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, types.KindIssue, types.ActionList, nil) {
		return
	}

	issues, err := s.store.ListIssues(r.Context(), mux.Vars(r)["project_pk"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, issues)
}

// createIssueHandler creates an issue in a project. The acting
// principal becomes the author and, absent an explicit assignee, the
// assignee as well.
func (s *Server) createIssueHandler(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, types.KindIssue, types.ActionCreate, nil) {
		return
	}

	var req IssueRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Title == nil || *req.Title == "" {
		WriteError(w, http.StatusBadRequest, "Title is required.")
		return
	}
	if req.Priority != nil && !types.IssuePriority(*req.Priority).Valid() {
		WriteError(w, http.StatusBadRequest, "Priority must be one of LOW, MEDIUM, HIGH.")
		return
	}
	if req.Type != nil && !types.IssueType(*req.Type).Valid() {
		WriteError(w, http.StatusBadRequest, "Type must be one of BUG, FEATURE, TASK.")
		return
	}
	if req.Status != nil && !types.IssueStatus(*req.Status).Valid() {
		WriteError(w, http.StatusBadRequest, "Status must be one of TO_DO, IN_PROGRESS, FINISHED.")
		return
	}

	principal := PrincipalFrom(r.Context())
	issue := &types.Issue{
		Author:     principal.ID,
		ProjectID:  mux.Vars(r)["project_pk"],
		Title:      *req.Title,
		AssignedTo: principal.ID,
		Status:     types.StatusToDo,
	}
	if req.Description != nil {
		issue.Description = *req.Description
	}
	if req.AssignedTo != nil {
		assignee, err := s.store.GetUser(r.Context(), *req.AssignedTo)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		issue.AssignedTo = assignee.ID
	}
	if req.Priority != nil {
		issue.Priority = types.IssuePriority(*req.Priority)
	}
	if req.Type != nil {
		issue.Type = types.IssueType(*req.Type)
	}
	if req.Status != nil {
		issue.Status = types.IssueStatus(*req.Status)
	}

	if err := s.store.CreateIssue(r.Context(), issue); err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, issue)
}

// getIssueHandler retrieves one issue
func (s *Server) getIssueHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requirePrincipal(w, r) {
		return
	}

	vars := mux.Vars(r)
	issue, err := s.store.GetIssue(r.Context(), vars["project_pk"], vars["pk"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if !s.authorize(w, r, types.KindIssue, types.ActionRetrieve, issue) {
		return
	}
	WriteJSON(w, http.StatusOK, issue)
}

// updateIssueHandler updates an issue's mutable fields; PUT replaces
// them, PATCH changes only the provided ones
func (s *Server) updateIssueHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requirePrincipal(w, r) {
		return
	}

	vars := mux.Vars(r)
	issue, err := s.store.GetIssue(r.Context(), vars["project_pk"], vars["pk"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if !s.authorize(w, r, types.KindIssue, actionForMethod(r), issue) {
		return
	}

	var req IssueRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	updated := *issue
	if req.Title != nil {
		updated.Title = *req.Title
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.AssignedTo != nil {
		assignee, err := s.store.GetUser(r.Context(), *req.AssignedTo)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		updated.AssignedTo = assignee.ID
	}
	if req.Priority != nil {
		if !types.IssuePriority(*req.Priority).Valid() {
			WriteError(w, http.StatusBadRequest, "Priority must be one of LOW, MEDIUM, HIGH.")
			return
		}
		updated.Priority = types.IssuePriority(*req.Priority)
	}
	if req.Type != nil {
		if !types.IssueType(*req.Type).Valid() {
			WriteError(w, http.StatusBadRequest, "Type must be one of BUG, FEATURE, TASK.")
			return
		}
		updated.Type = types.IssueType(*req.Type)
	}
	if req.Status != nil {
		if !types.IssueStatus(*req.Status).Valid() {
			WriteError(w, http.StatusBadRequest, "Status must be one of TO_DO, IN_PROGRESS, FINISHED.")
			return
		}
		updated.Status = types.IssueStatus(*req.Status)
	}

	if err := s.store.UpdateIssue(r.Context(), &updated); err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, &updated)
}

// deleteIssueHandler deletes an issue and its comments
func (s *Server) deleteIssueHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requirePrincipal(w, r) {
		return
	}

	vars := mux.Vars(r)
	issue, err := s.store.GetIssue(r.Context(), vars["project_pk"], vars["pk"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if !s.authorize(w, r, types.KindIssue, types.ActionDestroy, issue) {
		return
	}

	if err := s.store.DeleteIssue(r.Context(), issue.ProjectID, issue.ID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
