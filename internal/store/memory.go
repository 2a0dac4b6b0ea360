package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/softdesk-api/go-core/pkg/types"
)

// MemoryStore implements Store with in-memory maps. It enforces the
// same uniqueness constraints and cascade semantics as the postgres
// store and is the default backend for tests and local runs.
//
// Read methods return copies and writes replace whole records, so the
// store never shares a struct with its callers. A record fetched by one
// request stays stable while another request updates it.
type MemoryStore struct {
	users        map[string]*types.User
	projects     map[string]*types.Project
	contributors map[string]*types.Contributor
	issues       map[string]*types.Issue
	comments     map[string]*types.Comment
	mu           sync.RWMutex

	now func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]*types.User),
		projects:     make(map[string]*types.Project),
		contributors: make(map[string]*types.Contributor),
		issues:       make(map[string]*types.Issue),
		comments:     make(map[string]*types.Comment),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateUser persists a new user account
func (s *MemoryStore) CreateUser(ctx context.Context, user *types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return NewConflict(types.KindUser, MsgDuplicateUsername)
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Created = s.now()

	stored := *user
	s.users[user.ID] = &stored
	return nil
}

// GetUser retrieves a user by id
func (s *MemoryStore) GetUser(ctx context.Context, id string) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, NewNotFound(types.KindUser, id)
	}
	cp := *user
	return &cp, nil
}

// GetUserByUsername retrieves a user by username
func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			cp := *user
			return &cp, nil
		}
	}
	return nil, NewNotFound(types.KindUser, username)
}

// ListUsers retrieves all users ordered by creation time
func (s *MemoryStore) ListUsers(ctx context.Context) ([]*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*types.User, 0, len(s.users))
	for _, user := range s.users {
		cp := *user
		users = append(users, &cp)
	}
	sortByCreated(users, func(u *types.User) time.Time { return u.Created })
	return users, nil
}

// CreateProject persists a new project and enrolls its author as a
// contributor inside the same critical section, so no reader ever
// observes a project without its author's contributor record.
func (s *MemoryStore) CreateProject(ctx context.Context, project *types.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.projects {
		if existing.Author == project.Author && existing.Title == project.Title {
			return NewConflict(types.KindProject, MsgDuplicateProject)
		}
	}

	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	project.Created = s.now()

	stored := *project
	s.projects[project.ID] = &stored

	enrollment := &types.Contributor{
		ID:        uuid.NewString(),
		UserID:    project.Author,
		ProjectID: project.ID,
		Created:   project.Created,
	}
	s.contributors[enrollment.ID] = enrollment
	return nil
}

// GetProject retrieves a project by id
func (s *MemoryStore) GetProject(ctx context.Context, id string) (*types.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, ok := s.projects[id]
	if !ok {
		return nil, NewNotFound(types.KindProject, id)
	}
	cp := *project
	return &cp, nil
}

// ListProjects retrieves all projects ordered by creation time
func (s *MemoryStore) ListProjects(ctx context.Context) ([]*types.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := make([]*types.Project, 0, len(s.projects))
	for _, project := range s.projects {
		cp := *project
		projects = append(projects, &cp)
	}
	sortByCreated(projects, func(p *types.Project) time.Time { return p.Created })
	return projects, nil
}

// UpdateProject persists changes to a project's mutable fields
func (s *MemoryStore) UpdateProject(ctx context.Context, project *types.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.projects[project.ID]
	if !ok {
		return NewNotFound(types.KindProject, project.ID)
	}

	for _, existing := range s.projects {
		if existing.ID != project.ID && existing.Author == current.Author && existing.Title == project.Title {
			return NewConflict(types.KindProject, MsgDuplicateProject)
		}
	}

	updated := *current
	updated.Title = project.Title
	updated.Description = project.Description
	updated.Type = project.Type
	s.projects[project.ID] = &updated
	return nil
}

// DeleteProject removes a project and cascades to its contributors,
// issues and comments
func (s *MemoryStore) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return NewNotFound(types.KindProject, id)
	}
	delete(s.projects, id)

	for cid, contributor := range s.contributors {
		if contributor.ProjectID == id {
			delete(s.contributors, cid)
		}
	}
	for iid, issue := range s.issues {
		if issue.ProjectID == id {
			delete(s.issues, iid)
			for mid, comment := range s.comments {
				if comment.IssueID == iid {
					delete(s.comments, mid)
				}
			}
		}
	}
	return nil
}

// AddContributor links a user to a project
func (s *MemoryStore) AddContributor(ctx context.Context, contributor *types.Contributor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[contributor.ProjectID]; !ok {
		return NewNotFound(types.KindProject, contributor.ProjectID)
	}
	if _, ok := s.users[contributor.UserID]; !ok {
		return NewNotFound(types.KindUser, contributor.UserID)
	}

	for _, existing := range s.contributors {
		if existing.UserID == contributor.UserID && existing.ProjectID == contributor.ProjectID {
			return NewConflict(types.KindContributor, MsgDuplicateContributor)
		}
	}

	if contributor.ID == "" {
		contributor.ID = uuid.NewString()
	}
	contributor.Created = s.now()

	stored := *contributor
	s.contributors[contributor.ID] = &stored
	return nil
}

// GetContributor retrieves a contributor record scoped to a project
func (s *MemoryStore) GetContributor(ctx context.Context, projectID, id string) (*types.Contributor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contributor, ok := s.contributors[id]
	if !ok || contributor.ProjectID != projectID {
		return nil, NewNotFound(types.KindContributor, id)
	}
	cp := *contributor
	return &cp, nil
}

// ListContributors retrieves all contributor records of a project
func (s *MemoryStore) ListContributors(ctx context.Context, projectID string) ([]*types.Contributor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contributors := make([]*types.Contributor, 0)
	for _, contributor := range s.contributors {
		if contributor.ProjectID == projectID {
			cp := *contributor
			contributors = append(contributors, &cp)
		}
	}
	sortByCreated(contributors, func(c *types.Contributor) time.Time { return c.Created })
	return contributors, nil
}

// RemoveContributor deletes a contributor record, refusing to remove
// the project author's own record
func (s *MemoryStore) RemoveContributor(ctx context.Context, projectID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contributor, ok := s.contributors[id]
	if !ok || contributor.ProjectID != projectID {
		return NewNotFound(types.KindContributor, id)
	}

	project, ok := s.projects[contributor.ProjectID]
	if !ok {
		return NewNotFound(types.KindProject, contributor.ProjectID)
	}
	if contributor.UserID == project.Author {
		return ErrAuthorContributor
	}

	delete(s.contributors, id)
	return nil
}

// CreateIssue persists a new issue
func (s *MemoryStore) CreateIssue(ctx context.Context, issue *types.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[issue.ProjectID]; !ok {
		return NewNotFound(types.KindProject, issue.ProjectID)
	}

	for _, existing := range s.issues {
		if existing.Author == issue.Author && existing.ProjectID == issue.ProjectID && existing.Title == issue.Title {
			return NewConflict(types.KindIssue, MsgDuplicateIssue)
		}
	}

	if issue.ID == "" {
		issue.ID = uuid.NewString()
	}
	if issue.Status == "" {
		issue.Status = types.StatusToDo
	}
	issue.Created = s.now()

	stored := *issue
	s.issues[issue.ID] = &stored
	return nil
}

// GetIssue retrieves an issue scoped to a project
func (s *MemoryStore) GetIssue(ctx context.Context, projectID, id string) (*types.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	issue, ok := s.issues[id]
	if !ok || issue.ProjectID != projectID {
		return nil, NewNotFound(types.KindIssue, id)
	}
	cp := *issue
	return &cp, nil
}

// ListIssues retrieves all issues of a project
func (s *MemoryStore) ListIssues(ctx context.Context, projectID string) ([]*types.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	issues := make([]*types.Issue, 0)
	for _, issue := range s.issues {
		if issue.ProjectID == projectID {
			cp := *issue
			issues = append(issues, &cp)
		}
	}
	sortByCreated(issues, func(i *types.Issue) time.Time { return i.Created })
	return issues, nil
}

// UpdateIssue persists changes to an issue's mutable fields
func (s *MemoryStore) UpdateIssue(ctx context.Context, issue *types.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.issues[issue.ID]
	if !ok {
		return NewNotFound(types.KindIssue, issue.ID)
	}

	for _, existing := range s.issues {
		if existing.ID != issue.ID && existing.Author == current.Author &&
			existing.ProjectID == current.ProjectID && existing.Title == issue.Title {
			return NewConflict(types.KindIssue, MsgDuplicateIssue)
		}
	}

	updated := *current
	updated.Title = issue.Title
	updated.Description = issue.Description
	updated.AssignedTo = issue.AssignedTo
	updated.Priority = issue.Priority
	updated.Type = issue.Type
	updated.Status = issue.Status
	s.issues[issue.ID] = &updated
	return nil
}

// DeleteIssue removes an issue and cascades to its comments
func (s *MemoryStore) DeleteIssue(ctx context.Context, projectID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[id]
	if !ok || issue.ProjectID != projectID {
		return NewNotFound(types.KindIssue, id)
	}
	delete(s.issues, id)

	for cid, comment := range s.comments {
		if comment.IssueID == id {
			delete(s.comments, cid)
		}
	}
	return nil
}

// CreateComment persists a new comment
func (s *MemoryStore) CreateComment(ctx context.Context, comment *types.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.issues[comment.IssueID]; !ok {
		return NewNotFound(types.KindIssue, comment.IssueID)
	}

	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.Created = s.now()

	stored := *comment
	s.comments[comment.ID] = &stored
	return nil
}

// GetComment retrieves a comment scoped to an issue
func (s *MemoryStore) GetComment(ctx context.Context, issueID, id string) (*types.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[id]
	if !ok || comment.IssueID != issueID {
		return nil, NewNotFound(types.KindComment, id)
	}
	cp := *comment
	return &cp, nil
}

// ListComments retrieves all comments of an issue
func (s *MemoryStore) ListComments(ctx context.Context, issueID string) ([]*types.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comments := make([]*types.Comment, 0)
	for _, comment := range s.comments {
		if comment.IssueID == issueID {
			cp := *comment
			comments = append(comments, &cp)
		}
	}
	sortByCreated(comments, func(c *types.Comment) time.Time { return c.Created })
	return comments, nil
}

// UpdateComment persists changes to a comment's content
func (s *MemoryStore) UpdateComment(ctx context.Context, comment *types.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.comments[comment.ID]
	if !ok {
		return NewNotFound(types.KindComment, comment.ID)
	}

	updated := *current
	updated.Content = comment.Content
	s.comments[comment.ID] = &updated
	return nil
}

// DeleteComment removes a comment
func (s *MemoryStore) DeleteComment(ctx context.Context, issueID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[id]
	if !ok || comment.IssueID != issueID {
		return NewNotFound(types.KindComment, id)
	}
	delete(s.comments, id)
	return nil
}

// Close implements Store; the memory store holds no resources
func (s *MemoryStore) Close() error {
	return nil
}

// sortByCreated orders records by creation time, oldest first. Map
// iteration order is random; listings need a stable order.
func sortByCreated[T any](items []T, created func(T) time.Time) {
	sort.Slice(items, func(i, j int) bool {
		return created(items[i]).Before(created(items[j]))
	})
}
