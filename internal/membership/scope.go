// Package membership provides the request-scoped membership index: who
// authored a project and which principals contribute to it.
package membership

import (
	"context"

	"github.com/softdesk-api/go-core/internal/store"
	"github.com/softdesk-api/go-core/pkg/types"
)

// Scope memoizes the owning Project and its contributor set for the
// duration of one authorization pass. A fresh Scope is allocated per
// inbound request and discarded afterwards; it is never shared between
// requests and needs no invalidation.
//
// A Scope is not safe for concurrent use. One authorization pass is a
// single logical decision, so none is needed.
type Scope struct {
	graph  store.Graph
	params types.PathParams

	project        *types.Project
	contributorIDs map[string]struct{}
}

// NewScope creates a membership scope for one authorization pass
func NewScope(graph store.Graph, params types.PathParams) *Scope {
	return &Scope{
		graph:  graph,
		params: params,
	}
}

// Project resolves the owning Project from the path parameters: the
// nested project parameter when present, otherwise the primary key.
// The result is memoized; a missing project surfaces as the store's
// NotFoundError.
func (s *Scope) Project(ctx context.Context) (*types.Project, error) {
	if s.project != nil {
		return s.project, nil
	}

	ref := s.params.ProjectRef()
	if ref == "" {
		return nil, store.NewNotFound(types.KindProject, "")
	}

	project, err := s.graph.GetProject(ctx, ref)
	if err != nil {
		return nil, err
	}
	s.project = project
	return project, nil
}

// ContributorIDs returns the memoized set of principal ids contributing
// to the owning Project
func (s *Scope) ContributorIDs(ctx context.Context) (map[string]struct{}, error) {
	if s.contributorIDs != nil {
		return s.contributorIDs, nil
	}

	project, err := s.Project(ctx)
	if err != nil {
		return nil, err
	}

	contributors, err := s.graph.ListContributors(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{}, len(contributors))
	for _, contributor := range contributors {
		ids[contributor.UserID] = struct{}{}
	}
	s.contributorIDs = ids
	return ids, nil
}

// IsContributor reports whether the principal id is in the owning
// Project's contributor set
func (s *Scope) IsContributor(ctx context.Context, principalID string) (bool, error) {
	ids, err := s.ContributorIDs(ctx)
	if err != nil {
		return false, err
	}
	_, ok := ids[principalID]
	return ok, nil
}
