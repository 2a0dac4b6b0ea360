package store

import (
	"errors"
	"fmt"

	"github.com/softdesk-api/go-core/pkg/types"
)

// Conflict messages presented to the caller when a uniqueness
// constraint rejects a mutation
const (
	MsgDuplicateProject     = "You have already created a project with this name."
	MsgDuplicateContributor = "This user is already a contributor of the project."
	MsgDuplicateIssue       = "You have already created an issue with this title in this project."
	MsgDuplicateUsername    = "A user with this username already exists."
)

// ErrAuthorContributor is returned when a caller attempts to remove the
// project author's own contributor record. The rejection is
// unconditional: it applies to every principal, admin included.
var ErrAuthorContributor = errors.New("the project author cannot be removed from the contributors")

// NotFoundError is returned when a referenced resource does not exist
type NotFoundError struct {
	Kind types.ResourceKind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// NewNotFound builds a NotFoundError for the given resource
func NewNotFound(kind types.ResourceKind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ConflictError is returned when a uniqueness constraint rejects a
// mutation. Message is the resource-specific text shown to the caller.
type ConflictError struct {
	Kind    types.ResourceKind
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Kind, e.Message)
}

// NewConflict builds a ConflictError for the given resource
func NewConflict(kind types.ResourceKind, message string) error {
	return &ConflictError{Kind: kind, Message: message}
}

// IsConflict reports whether err is a ConflictError
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}
