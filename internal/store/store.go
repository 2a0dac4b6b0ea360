// Package store provides resource graph storage for the authorization layer
package store

import (
	"context"

	"github.com/softdesk-api/go-core/pkg/types"
)

// Graph is the read-only view of the resource hierarchy consumed by the
// membership index. The full Store satisfies it.
type Graph interface {
	// GetProject retrieves a project by id
	GetProject(ctx context.Context, id string) (*types.Project, error)

	// ListContributors retrieves all contributor records of a project
	ListContributors(ctx context.Context, projectID string) ([]*types.Contributor, error)
}

// Store defines the persistence interface for users and the
// Project -> {Contributor, Issue} -> Comment hierarchy.
//
// Mutating operations surface uniqueness violations as *ConflictError
// so the caller can present the resource-specific denial reason, and
// missing rows as *NotFoundError. Nested lookups are scoped: an issue
// is only found under its own project, a comment only under its own
// issue.
type Store interface {
	Graph

	// CreateUser persists a new user account
	CreateUser(ctx context.Context, user *types.User) error

	// GetUser retrieves a user by id
	GetUser(ctx context.Context, id string) (*types.User, error)

	// GetUserByUsername retrieves a user by username
	GetUserByUsername(ctx context.Context, username string) (*types.User, error)

	// ListUsers retrieves all users
	ListUsers(ctx context.Context) ([]*types.User, error)

	// CreateProject persists a new project and enrolls its author as a
	// contributor in the same unit of work. A project is never
	// observable without its author's contributor record.
	CreateProject(ctx context.Context, project *types.Project) error

	// ListProjects retrieves all projects
	ListProjects(ctx context.Context) ([]*types.Project, error)

	// UpdateProject persists changes to a project's mutable fields.
	// The author is never changed.
	UpdateProject(ctx context.Context, project *types.Project) error

	// DeleteProject removes a project and cascades to its
	// contributors, issues and comments
	DeleteProject(ctx context.Context, id string) error

	// AddContributor links a user to a project
	AddContributor(ctx context.Context, contributor *types.Contributor) error

	// GetContributor retrieves a contributor record scoped to a project
	GetContributor(ctx context.Context, projectID, id string) (*types.Contributor, error)

	// RemoveContributor deletes a contributor record. Removing the
	// project author's own record fails with ErrAuthorContributor for
	// every caller.
	RemoveContributor(ctx context.Context, projectID, id string) error

	// CreateIssue persists a new issue
	CreateIssue(ctx context.Context, issue *types.Issue) error

	// GetIssue retrieves an issue scoped to a project
	GetIssue(ctx context.Context, projectID, id string) (*types.Issue, error)

	// ListIssues retrieves all issues of a project
	ListIssues(ctx context.Context, projectID string) ([]*types.Issue, error)

	// UpdateIssue persists changes to an issue's mutable fields.
	// Author and project are never changed.
	UpdateIssue(ctx context.Context, issue *types.Issue) error

	// DeleteIssue removes an issue and cascades to its comments
	DeleteIssue(ctx context.Context, projectID, id string) error

	// CreateComment persists a new comment
	CreateComment(ctx context.Context, comment *types.Comment) error

	// GetComment retrieves a comment scoped to an issue
	GetComment(ctx context.Context, issueID, id string) (*types.Comment, error)

	// ListComments retrieves all comments of an issue
	ListComments(ctx context.Context, issueID string) ([]*types.Comment, error)

	// UpdateComment persists changes to a comment's content
	UpdateComment(ctx context.Context, comment *types.Comment) error

	// DeleteComment removes a comment
	DeleteComment(ctx context.Context, issueID, id string) error

	// Close releases the underlying resources
	Close() error
}
