package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/softdesk-api/go-core/pkg/types"
)

// commentIssue resolves the issue a comment route is nested under,
// scoped to its project so a mismatched pair of path ids reads as
// missing rather than leaking across projects.
func (s *Server) commentIssue(w http.ResponseWriter, r *http.Request) (*types.Issue, bool) {
	vars := mux.Vars(r)
	issue, err := s.store.GetIssue(r.Context(), vars["project_pk"], vars["issue_pk"])
	if err != nil {
		s.writeDomainError(w, err)
		return nil, false
	}
	return issue, true
}

// listCommentsHandler lists the comments of an issue
func (s *Server) listCommentsHandler(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, types.KindComment, types.ActionList, nil) {
		return
	}

	issue, ok := s.commentIssue(w, r)
	if !ok {
		return
	}

	comments, err := s.store.ListComments(r.Context(), issue.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, comments)
}

// createCommentHandler creates a comment on an issue
func (s *Server) createCommentHandler(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, types.KindComment, types.ActionCreate, nil) {
		return
	}

	var req CommentRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Content == nil || *req.Content == "" {
		WriteError(w, http.StatusBadRequest, "Content is required.")
		return
	}

	issue, ok := s.commentIssue(w, r)
	if !ok {
		return
	}

	comment := &types.Comment{
		Author:  PrincipalFrom(r.Context()).ID,
		IssueID: issue.ID,
		Content: *req.Content,
	}
	if err := s.store.CreateComment(r.Context(), comment); err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, comment)
}

// getCommentHandler retrieves one comment
func (s *Server) getCommentHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requirePrincipal(w, r) {
		return
	}

	issue, ok := s.commentIssue(w, r)
	if !ok {
		return
	}
	comment, err := s.store.GetComment(r.Context(), issue.ID, mux.Vars(r)["pk"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if !s.authorize(w, r, types.KindComment, types.ActionRetrieve, comment) {
		return
	}
	WriteJSON(w, http.StatusOK, comment)
}

// updateCommentHandler updates a comment's content
func (s *Server) updateCommentHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requirePrincipal(w, r) {
		return
	}

	issue, ok := s.commentIssue(w, r)
	if !ok {
		return
	}
	comment, err := s.store.GetComment(r.Context(), issue.ID, mux.Vars(r)["pk"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if !s.authorize(w, r, types.KindComment, actionForMethod(r), comment) {
		return
	}

	var req CommentRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	updated := *comment
	if req.Content != nil {
		updated.Content = *req.Content
	}

	if err := s.store.UpdateComment(r.Context(), &updated); err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, &updated)
}

// deleteCommentHandler deletes a comment
func (s *Server) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requirePrincipal(w, r) {
		return
	}

	issue, ok := s.commentIssue(w, r)
	if !ok {
		return
	}
	comment, err := s.store.GetComment(r.Context(), issue.ID, mux.Vars(r)["pk"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if !s.authorize(w, r, types.KindComment, types.ActionDestroy, comment) {
		return
	}

	if err := s.store.DeleteComment(r.Context(), issue.ID, comment.ID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
