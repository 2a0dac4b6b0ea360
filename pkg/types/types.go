// Package types provides shared types for the authorization layer
package types

// ResourceKind identifies the kind of resource a request targets
type ResourceKind string

const (
	KindUser        ResourceKind = "user"
	KindProject     ResourceKind = "project"
	KindContributor ResourceKind = "contributor"
	KindIssue       ResourceKind = "issue"
	KindComment     ResourceKind = "comment"
)

// Action identifies the operation performed on a resource
type Action string

const (
	ActionList          Action = "list"
	ActionRetrieve      Action = "retrieve"
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDestroy       Action = "destroy"
)

// Actions returns every defined action
func Actions() []Action {
	return []Action{
		ActionList,
		ActionRetrieve,
		ActionCreate,
		ActionUpdate,
		ActionPartialUpdate,
		ActionDestroy,
	}
}

// Valid reports whether the action is one of the defined actions
func (a Action) Valid() bool {
	for _, known := range Actions() {
		if a == known {
			return true
		}
	}
	return false
}

// ItemLevel reports whether the action targets a single object rather
// than a collection
func (a Action) ItemLevel() bool {
	switch a {
	case ActionRetrieve, ActionUpdate, ActionPartialUpdate, ActionDestroy:
		return true
	}
	return false
}

// Principal represents the authenticated caller of the API
type Principal struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	IsAdmin  bool   `json:"is_admin"`
}

// Authenticated reports whether the principal carries an identity
func (p *Principal) Authenticated() bool {
	return p != nil && p.ID != ""
}

// PathParams carries the opaque identifiers extracted from the request
// path by the routing layer. The core never parses them.
type PathParams struct {
	ProjectID string `json:"project_pk,omitempty"`
	IssueID   string `json:"issue_pk,omitempty"`
	PK        string `json:"pk,omitempty"`
}

// ProjectRef returns the identifier of the owning Project: the nested
// project parameter when present, otherwise the primary key (item-level
// actions on the Project resource itself).
func (p PathParams) ProjectRef() string {
	if p.ProjectID != "" {
		return p.ProjectID
	}
	return p.PK
}

// CheckRequest represents one authorization check
type CheckRequest struct {
	Principal *Principal   `json:"principal"`
	Kind      ResourceKind `json:"kind"`
	Action    Action       `json:"action"`
	Params    PathParams   `json:"params"`

	// Target is the resolved object for item-level actions; nil for
	// collection-level actions where no object exists yet.
	Target Target `json:"target,omitempty"`
}

// Decision is the outcome of an authorization check
type Decision struct {
	Allowed bool   `json:"allowed"`
	Message string `json:"message,omitempty"`
}

// Allow returns an allowing decision
func Allow() *Decision {
	return &Decision{Allowed: true}
}

// Deny returns a denying decision carrying the given message
func Deny(message string) *Decision {
	return &Decision{Allowed: false, Message: message}
}

// Target is implemented by every resource object that can be the
// subject of an item-level authorization check.
type Target interface {
	TargetKind() ResourceKind
}

// Authored is implemented by targets that record their creating
// principal (Project, Issue, Comment).
type Authored interface {
	Target
	AuthorID() string
}
