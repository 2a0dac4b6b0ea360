// Package policy provides the capability predicates and the per-resource
// policy tables composing them.
package policy

import (
	"context"

	"github.com/softdesk-api/go-core/internal/membership"
	"github.com/softdesk-api/go-core/pkg/types"
)

// Predicate is one atomic capability check. Predicates are pure
// functions of the principal, the request-scoped membership index and
// the optional target object; they hold no state of their own.
type Predicate struct {
	Name string
	Eval func(ctx context.Context, principal *types.Principal, scope *membership.Scope, target types.Target) (bool, error)
}

// IsResourceAuthor is true when the target object's author is the
// principal. False for targets that record no author.
var IsResourceAuthor = Predicate{
	Name: "IsResourceAuthor",
	Eval: func(ctx context.Context, principal *types.Principal, scope *membership.Scope, target types.Target) (bool, error) {
		authored, ok := target.(types.Authored)
		if !ok {
			return false, nil
		}
		return authored.AuthorID() == principal.ID, nil
	},
}

// IsProjectAuthor is true when the owning Project's author is the
// principal. The owning Project is resolved through the membership
// scope, so collection-level and item-level actions take the same path.
var IsProjectAuthor = Predicate{
	Name: "IsProjectAuthor",
	Eval: func(ctx context.Context, principal *types.Principal, scope *membership.Scope, target types.Target) (bool, error) {
		project, err := scope.Project(ctx)
		if err != nil {
			return false, err
		}
		return project.Author == principal.ID, nil
	},
}

// IsProjectContributor is true when the principal is in the owning
// Project's contributor set
var IsProjectContributor = Predicate{
	Name: "IsProjectContributor",
	Eval: func(ctx context.Context, principal *types.Principal, scope *membership.Scope, target types.Target) (bool, error) {
		return scope.IsContributor(ctx, principal.ID)
	},
}

// IsUserContributor is true when the target Contributor record belongs
// to the principal (the self-removal case)
var IsUserContributor = Predicate{
	Name: "IsUserContributor",
	Eval: func(ctx context.Context, principal *types.Principal, scope *membership.Scope, target types.Target) (bool, error) {
		contributor, ok := target.(*types.Contributor)
		if !ok {
			return false, nil
		}
		return contributor.UserID == principal.ID, nil
	},
}
