package types

import "time"

// ProjectType classifies the platform a project targets
type ProjectType string

const (
	ProjectBackend  ProjectType = "BACKEND"
	ProjectFrontend ProjectType = "FRONTEND"
	ProjectIOS      ProjectType = "IOS"
	ProjectAndroid  ProjectType = "ANDROID"
)

// Valid reports whether the project type is one of the defined choices
func (t ProjectType) Valid() bool {
	switch t {
	case ProjectBackend, ProjectFrontend, ProjectIOS, ProjectAndroid:
		return true
	}
	return false
}

// IssuePriority is the priority of an issue
type IssuePriority string

const (
	PriorityLow    IssuePriority = "LOW"
	PriorityMedium IssuePriority = "MEDIUM"
	PriorityHigh   IssuePriority = "HIGH"
)

// Valid reports whether the priority is one of the defined choices.
// An empty priority is valid: the field is optional.
func (p IssuePriority) Valid() bool {
	switch p {
	case "", PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// IssueType classifies an issue
type IssueType string

const (
	IssueBug     IssueType = "BUG"
	IssueFeature IssueType = "FEATURE"
	IssueTask    IssueType = "TASK"
)

// Valid reports whether the issue type is one of the defined choices.
// An empty type is valid: the field is optional.
func (t IssueType) Valid() bool {
	switch t {
	case "", IssueBug, IssueFeature, IssueTask:
		return true
	}
	return false
}

// IssueStatus is the workflow state of an issue
type IssueStatus string

const (
	StatusToDo       IssueStatus = "TO_DO"
	StatusInProgress IssueStatus = "IN_PROGRESS"
	StatusFinished   IssueStatus = "FINISHED"
)

// Valid reports whether the status is one of the defined choices
func (s IssueStatus) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusFinished:
		return true
	}
	return false
}

// User represents a registered account. Users are the source of
// principals: the authentication layer resolves a validated token to a
// User and builds the request Principal from it.
type User struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	IsAdmin         bool      `json:"is_admin"`
	DateOfBirth     string    `json:"date_of_birth,omitempty"`
	CanBeContacted  bool      `json:"can_be_contacted"`
	CanDataBeShared bool      `json:"can_data_be_shared"`
	Created         time.Time `json:"time_created"`
}

// Principal builds the request principal for this user
func (u *User) Principal() *Principal {
	return &Principal{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}

// Project is the root of the resource hierarchy. The author never
// changes after creation and is always also a Contributor.
type Project struct {
	ID          string      `json:"id"`
	Author      string      `json:"author"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Type        ProjectType `json:"type"`
	Created     time.Time   `json:"time_created"`
}

// TargetKind implements Target
func (p *Project) TargetKind() ResourceKind { return KindProject }

// AuthorID implements Authored
func (p *Project) AuthorID() string { return p.Author }

// Contributor links a user to a project. The pair (user, project) is
// unique; the project author's own link can never be deleted.
type Contributor struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	ProjectID string    `json:"project"`
	Created   time.Time `json:"time_created"`
}

// TargetKind implements Target
func (c *Contributor) TargetKind() ResourceKind { return KindContributor }

// Issue belongs to exactly one Project; author and project are
// immutable after creation.
type Issue struct {
	ID          string        `json:"id"`
	Author      string        `json:"author"`
	ProjectID   string        `json:"project"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	AssignedTo  string        `json:"assigned_to,omitempty"`
	Priority    IssuePriority `json:"priority,omitempty"`
	Type        IssueType     `json:"type,omitempty"`
	Status      IssueStatus   `json:"status"`
	Created     time.Time     `json:"time_created"`
}

// TargetKind implements Target
func (i *Issue) TargetKind() ResourceKind { return KindIssue }

// AuthorID implements Authored
func (i *Issue) AuthorID() string { return i.Author }

// Comment belongs to exactly one Issue, transitively to one Project
type Comment struct {
	ID      string    `json:"id"`
	Author  string    `json:"author"`
	IssueID string    `json:"issue"`
	Content string    `json:"content"`
	Created time.Time `json:"time_created"`
}

// TargetKind implements Target
func (c *Comment) TargetKind() ResourceKind { return KindComment }

// AuthorID implements Authored
func (c *Comment) AuthorID() string { return c.Author }
