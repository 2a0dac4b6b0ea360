package store

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softdesk-api/go-core/pkg/types"
)

func TestTranslateConflict(t *testing.T) {
	tests := []struct {
		name        string
		constraint  string
		wantKind    types.ResourceKind
		wantMessage string
	}{
		{"username", constraintUniqueUsername, types.KindUser, MsgDuplicateUsername},
		{"project title", constraintUniqueProject, types.KindProject, MsgDuplicateProject},
		{"contributor pair", constraintUniqueContributor, types.KindContributor, MsgDuplicateContributor},
		{"issue title", constraintUniqueIssue, types.KindIssue, MsgDuplicateIssue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translateConflict(&pq.Error{
				Code:       pgUniqueViolation,
				Constraint: tt.constraint,
			}, tt.wantKind)

			var conflict *ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, tt.wantKind, conflict.Kind)
			assert.Equal(t, tt.wantMessage, conflict.Message)
		})
	}
}

func TestTranslateConflict_UnknownConstraint(t *testing.T) {
	err := translateConflict(&pq.Error{
		Code:       pgUniqueViolation,
		Constraint: "some_other_constraint",
		Detail:     "Key (x)=(y) already exists.",
	}, types.KindIssue)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, types.KindIssue, conflict.Kind)
}

func TestTranslateConflict_PassesThroughOtherErrors(t *testing.T) {
	cause := errors.New("connection reset")
	err := translateConflict(cause, types.KindProject)
	assert.False(t, IsConflict(err))
	assert.ErrorIs(t, err, cause)

	err = translateConflict(&pq.Error{Code: "23503"}, types.KindProject)
	assert.False(t, IsConflict(err))
}
