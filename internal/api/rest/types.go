// Package rest provides the HTTP collaborator layer: routing, request
// decoding and the mapping of engine and store outcomes to status codes.
package rest

import (
	"encoding/json"
	"net/http"

	"github.com/softdesk-api/go-core/pkg/types"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// RegisterUserRequest is the payload for user registration
type RegisterUserRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	Email           string `json:"email,omitempty"`
	DateOfBirth     string `json:"date_of_birth,omitempty"`
	CanBeContacted  bool   `json:"can_be_contacted"`
	CanDataBeShared bool   `json:"can_data_be_shared"`
}

// ProjectRequest is the payload for project create and update.
// Pointer fields distinguish "absent" from "empty" for partial updates.
type ProjectRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Type        *string `json:"type,omitempty"`
}

// ContributorRequest is the payload for adding a contributor
type ContributorRequest struct {
	User string `json:"user"`
}

// IssueRequest is the payload for issue create and update
type IssueRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	AssignedTo  *string `json:"assigned_to,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Type        *string `json:"type,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// CommentRequest is the payload for comment create and update
type CommentRequest struct {
	Content *string `json:"content,omitempty"`
}

// HealthResponse is the health check payload
type HealthResponse struct {
	Status string `json:"status"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// DecodeJSON decodes a request body, rejecting unknown fields
func DecodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// pathParams extracts the opaque path identifiers from mux vars
func pathParams(vars map[string]string) types.PathParams {
	return types.PathParams{
		ProjectID: vars["project_pk"],
		IssueID:   vars["issue_pk"],
		PK:        vars["pk"],
	}
}
