package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/softdesk-api/go-core/pkg/types"
)

// Constraint names from the migrations, used to translate unique
// violations into resource-specific conflict messages
const (
	constraintUniqueUsername    = "unique_username"
	constraintUniqueProject     = "unique_project"
	constraintUniqueContributor = "unique_contributor"
	constraintUniqueIssue       = "unique_issue"
)

// pgUniqueViolation is the postgres error code for unique_violation
const pgUniqueViolation = "23505"

// PostgresStore implements Store using PostgreSQL. Uniqueness is
// enforced by the database constraints so concurrent duplicate
// creations race safely and lose with a ConflictError.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed store
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateUser persists a new user account
func (s *PostgresStore) CreateUser(ctx context.Context, user *types.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query := `
		INSERT INTO users (
			id, username, email, password_hash, is_admin,
			date_of_birth, can_be_contacted, can_data_be_shared
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING time_created
	`

	err := s.db.QueryRowContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsAdmin,
		user.DateOfBirth,
		user.CanBeContacted,
		user.CanDataBeShared,
	).Scan(&user.Created)

	if err != nil {
		return translateConflict(err, types.KindUser)
	}
	return nil
}

// GetUser retrieves a user by id
func (s *PostgresStore) GetUser(ctx context.Context, id string) (*types.User, error) {
	return s.getUser(ctx, "id = $1", id)
}

// GetUserByUsername retrieves a user by username
func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	return s.getUser(ctx, "username = $1", username)
}

func (s *PostgresStore) getUser(ctx context.Context, where, arg string) (*types.User, error) {
	query := `
		SELECT id, username, email, password_hash, is_admin,
		       date_of_birth, can_be_contacted, can_data_be_shared, time_created
		FROM users
		WHERE ` + where

	user := &types.User{}
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.DateOfBirth,
		&user.CanBeContacted,
		&user.CanDataBeShared,
		&user.Created,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFound(types.KindUser, arg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ListUsers retrieves all users ordered by creation time
func (s *PostgresStore) ListUsers(ctx context.Context) ([]*types.User, error) {
	query := `
		SELECT id, username, email, password_hash, is_admin,
		       date_of_birth, can_be_contacted, can_data_be_shared, time_created
		FROM users
		ORDER BY time_created
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*types.User, 0)
	for rows.Next() {
		user := &types.User{}
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.IsAdmin,
			&user.DateOfBirth,
			&user.CanBeContacted,
			&user.CanDataBeShared,
			&user.Created,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CreateProject persists a new project and enrolls its author as a
// contributor in one transaction. No reader ever observes the project
// without the author's contributor record.
func (s *PostgresStore) CreateProject(ctx context.Context, project *types.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO projects (id, author, title, description, type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING time_created
	`, project.ID, project.Author, project.Title, project.Description, project.Type).Scan(&project.Created)
	if err != nil {
		return translateConflict(err, types.KindProject)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO contributors (id, user_id, project_id)
		VALUES ($1, $2, $3)
	`, uuid.NewString(), project.Author, project.ID)
	if err != nil {
		return fmt.Errorf("failed to enroll project author: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit project creation: %w", err)
	}
	return nil
}

// GetProject retrieves a project by id
func (s *PostgresStore) GetProject(ctx context.Context, id string) (*types.Project, error) {
	query := `
		SELECT id, author, title, description, type, time_created
		FROM projects
		WHERE id = $1
	`

	project := &types.Project{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&project.ID,
		&project.Author,
		&project.Title,
		&project.Description,
		&project.Type,
		&project.Created,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFound(types.KindProject, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// ListProjects retrieves all projects ordered by creation time
func (s *PostgresStore) ListProjects(ctx context.Context) ([]*types.Project, error) {
	query := `
		SELECT id, author, title, description, type, time_created
		FROM projects
		ORDER BY time_created
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*types.Project, 0)
	for rows.Next() {
		project := &types.Project{}
		if err := rows.Scan(
			&project.ID,
			&project.Author,
			&project.Title,
			&project.Description,
			&project.Type,
			&project.Created,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// UpdateProject persists changes to a project's mutable fields
func (s *PostgresStore) UpdateProject(ctx context.Context, project *types.Project) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET title = $2, description = $3, type = $4
		WHERE id = $1
	`, project.ID, project.Title, project.Description, project.Type)
	if err != nil {
		return translateConflict(err, types.KindProject)
	}
	return requireRow(result, types.KindProject, project.ID)
}

// DeleteProject removes a project; contributors, issues and comments
// cascade via the schema's foreign keys
func (s *PostgresStore) DeleteProject(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return requireRow(result, types.KindProject, id)
}

// AddContributor links a user to a project
func (s *PostgresStore) AddContributor(ctx context.Context, contributor *types.Contributor) error {
	if contributor.ID == "" {
		contributor.ID = uuid.NewString()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO contributors (id, user_id, project_id)
		VALUES ($1, $2, $3)
		RETURNING time_created
	`, contributor.ID, contributor.UserID, contributor.ProjectID).Scan(&contributor.Created)
	if err != nil {
		return translateConflict(err, types.KindContributor)
	}
	return nil
}

// GetContributor retrieves a contributor record scoped to a project
func (s *PostgresStore) GetContributor(ctx context.Context, projectID, id string) (*types.Contributor, error) {
	query := `
		SELECT id, user_id, project_id, time_created
		FROM contributors
		WHERE id = $1 AND project_id = $2
	`

	contributor := &types.Contributor{}
	err := s.db.QueryRowContext(ctx, query, id, projectID).Scan(
		&contributor.ID,
		&contributor.UserID,
		&contributor.ProjectID,
		&contributor.Created,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFound(types.KindContributor, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contributor: %w", err)
	}
	return contributor, nil
}

// ListContributors retrieves all contributor records of a project
func (s *PostgresStore) ListContributors(ctx context.Context, projectID string) ([]*types.Contributor, error) {
	query := `
		SELECT id, user_id, project_id, time_created
		FROM contributors
		WHERE project_id = $1
		ORDER BY time_created
	`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributors: %w", err)
	}
	defer rows.Close()

	contributors := make([]*types.Contributor, 0)
	for rows.Next() {
		contributor := &types.Contributor{}
		if err := rows.Scan(
			&contributor.ID,
			&contributor.UserID,
			&contributor.ProjectID,
			&contributor.Created,
		); err != nil {
			return nil, fmt.Errorf("failed to scan contributor: %w", err)
		}
		contributors = append(contributors, contributor)
	}
	return contributors, rows.Err()
}

// RemoveContributor deletes a contributor record, refusing to remove
// the project author's own record
func (s *PostgresStore) RemoveContributor(ctx context.Context, projectID, id string) error {
	var userID, author string
	err := s.db.QueryRowContext(ctx, `
		SELECT c.user_id, p.author
		FROM contributors c
		JOIN projects p ON p.id = c.project_id
		WHERE c.id = $1 AND c.project_id = $2
	`, id, projectID).Scan(&userID, &author)

	if errors.Is(err, sql.ErrNoRows) {
		return NewNotFound(types.KindContributor, id)
	}
	if err != nil {
		return fmt.Errorf("failed to check contributor: %w", err)
	}
	if userID == author {
		return ErrAuthorContributor
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM contributors WHERE id = $1 AND project_id = $2
	`, id, projectID)
	if err != nil {
		return fmt.Errorf("failed to remove contributor: %w", err)
	}
	return requireRow(result, types.KindContributor, id)
}

// CreateIssue persists a new issue
func (s *PostgresStore) CreateIssue(ctx context.Context, issue *types.Issue) error {
	if issue.ID == "" {
		issue.ID = uuid.NewString()
	}
	if issue.Status == "" {
		issue.Status = types.StatusToDo
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO issues (
			id, author, project_id, title, description,
			assigned_to, priority, type, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING time_created
	`,
		issue.ID,
		issue.Author,
		issue.ProjectID,
		issue.Title,
		issue.Description,
		issue.AssignedTo,
		issue.Priority,
		issue.Type,
		issue.Status,
	).Scan(&issue.Created)

	if err != nil {
		return translateConflict(err, types.KindIssue)
	}
	return nil
}

// GetIssue retrieves an issue scoped to a project
func (s *PostgresStore) GetIssue(ctx context.Context, projectID, id string) (*types.Issue, error) {
	query := `
		SELECT id, author, project_id, title, description,
		       assigned_to, priority, type, status, time_created
		FROM issues
		WHERE id = $1 AND project_id = $2
	`

	issue := &types.Issue{}
	err := s.db.QueryRowContext(ctx, query, id, projectID).Scan(
		&issue.ID,
		&issue.Author,
		&issue.ProjectID,
		&issue.Title,
		&issue.Description,
		&issue.AssignedTo,
		&issue.Priority,
		&issue.Type,
		&issue.Status,
		&issue.Created,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFound(types.KindIssue, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}
	return issue, nil
}

// ListIssues retrieves all issues of a project
func (s *PostgresStore) ListIssues(ctx context.Context, projectID string) ([]*types.Issue, error) {
	query := `
		SELECT id, author, project_id, title, description,
		       assigned_to, priority, type, status, time_created
		FROM issues
		WHERE project_id = $1
		ORDER BY time_created
	`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	issues := make([]*types.Issue, 0)
	for rows.Next() {
		issue := &types.Issue{}
		if err := rows.Scan(
			&issue.ID,
			&issue.Author,
			&issue.ProjectID,
			&issue.Title,
			&issue.Description,
			&issue.AssignedTo,
			&issue.Priority,
			&issue.Type,
			&issue.Status,
			&issue.Created,
		); err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// UpdateIssue persists changes to an issue's mutable fields
func (s *PostgresStore) UpdateIssue(ctx context.Context, issue *types.Issue) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE issues
		SET title = $2, description = $3, assigned_to = $4,
		    priority = $5, type = $6, status = $7
		WHERE id = $1
	`,
		issue.ID,
		issue.Title,
		issue.Description,
		issue.AssignedTo,
		issue.Priority,
		issue.Type,
		issue.Status,
	)
	if err != nil {
		return translateConflict(err, types.KindIssue)
	}
	return requireRow(result, types.KindIssue, issue.ID)
}

// DeleteIssue removes an issue; its comments cascade
func (s *PostgresStore) DeleteIssue(ctx context.Context, projectID, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM issues WHERE id = $1 AND project_id = $2
	`, id, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete issue: %w", err)
	}
	return requireRow(result, types.KindIssue, id)
}

// CreateComment persists a new comment
func (s *PostgresStore) CreateComment(ctx context.Context, comment *types.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO comments (id, author, issue_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING time_created
	`, comment.ID, comment.Author, comment.IssueID, comment.Content).Scan(&comment.Created)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// GetComment retrieves a comment scoped to an issue
func (s *PostgresStore) GetComment(ctx context.Context, issueID, id string) (*types.Comment, error) {
	query := `
		SELECT id, author, issue_id, content, time_created
		FROM comments
		WHERE id = $1 AND issue_id = $2
	`

	comment := &types.Comment{}
	err := s.db.QueryRowContext(ctx, query, id, issueID).Scan(
		&comment.ID,
		&comment.Author,
		&comment.IssueID,
		&comment.Content,
		&comment.Created,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFound(types.KindComment, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}

// ListComments retrieves all comments of an issue
func (s *PostgresStore) ListComments(ctx context.Context, issueID string) ([]*types.Comment, error) {
	query := `
		SELECT id, author, issue_id, content, time_created
		FROM comments
		WHERE issue_id = $1
		ORDER BY time_created
	`

	rows, err := s.db.QueryContext(ctx, query, issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*types.Comment, 0)
	for rows.Next() {
		comment := &types.Comment{}
		if err := rows.Scan(
			&comment.ID,
			&comment.Author,
			&comment.IssueID,
			&comment.Content,
			&comment.Created,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

// UpdateComment persists changes to a comment's content
func (s *PostgresStore) UpdateComment(ctx context.Context, comment *types.Comment) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE comments SET content = $2 WHERE id = $1
	`, comment.ID, comment.Content)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return requireRow(result, types.KindComment, comment.ID)
}

// DeleteComment removes a comment
func (s *PostgresStore) DeleteComment(ctx context.Context, issueID, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM comments WHERE id = $1 AND issue_id = $2
	`, id, issueID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return requireRow(result, types.KindComment, id)
}

// Close closes the underlying database handle
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// translateConflict maps a postgres unique violation to the
// resource-specific ConflictError; anything else is wrapped as-is.
func translateConflict(err error, kind types.ResourceKind) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != pgUniqueViolation {
		return fmt.Errorf("failed to write %s: %w", kind, err)
	}

	switch pqErr.Constraint {
	case constraintUniqueUsername:
		return NewConflict(types.KindUser, MsgDuplicateUsername)
	case constraintUniqueProject:
		return NewConflict(types.KindProject, MsgDuplicateProject)
	case constraintUniqueContributor:
		return NewConflict(types.KindContributor, MsgDuplicateContributor)
	case constraintUniqueIssue:
		return NewConflict(types.KindIssue, MsgDuplicateIssue)
	}
	return NewConflict(kind, pqErr.Detail)
}

// requireRow converts a zero-row update or delete into a NotFoundError
func requireRow(result sql.Result, kind types.ResourceKind, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return NewNotFound(kind, id)
	}
	return nil
}
