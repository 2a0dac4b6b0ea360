package membership

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softdesk-api/go-core/internal/store"
	"github.com/softdesk-api/go-core/pkg/types"
)

// countingGraph records how often each lookup hits the backing store
type countingGraph struct {
	project      *types.Project
	contributors []*types.Contributor

	projectCalls     int
	contributorCalls int
}

func (g *countingGraph) GetProject(ctx context.Context, id string) (*types.Project, error) {
	g.projectCalls++
	if g.project == nil || g.project.ID != id {
		return nil, store.NewNotFound(types.KindProject, id)
	}
	return g.project, nil
}

func (g *countingGraph) ListContributors(ctx context.Context, projectID string) ([]*types.Contributor, error) {
	g.contributorCalls++
	return g.contributors, nil
}

func TestScope_ProjectMemoized(t *testing.T) {
	graph := &countingGraph{project: &types.Project{ID: "p1", Author: "u1"}}
	scope := NewScope(graph, types.PathParams{ProjectID: "p1"})

	for i := 0; i < 3; i++ {
		project, err := scope.Project(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "p1", project.ID)
	}
	assert.Equal(t, 1, graph.projectCalls)
}

func TestScope_ContributorSetMemoized(t *testing.T) {
	graph := &countingGraph{
		project: &types.Project{ID: "p1", Author: "u1"},
		contributors: []*types.Contributor{
			{ID: "c1", UserID: "u1", ProjectID: "p1"},
			{ID: "c2", UserID: "u2", ProjectID: "p1"},
		},
	}
	scope := NewScope(graph, types.PathParams{ProjectID: "p1"})

	for i := 0; i < 3; i++ {
		ok, err := scope.IsContributor(context.Background(), "u2")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := scope.IsContributor(context.Background(), "u3")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 1, graph.projectCalls)
	assert.Equal(t, 1, graph.contributorCalls)
}

func TestScope_ProjectRefFallsBackToPK(t *testing.T) {
	graph := &countingGraph{project: &types.Project{ID: "p1", Author: "u1"}}
	scope := NewScope(graph, types.PathParams{PK: "p1"})

	project, err := scope.Project(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p1", project.ID)
}

func TestScope_MissingProject(t *testing.T) {
	scope := NewScope(&countingGraph{}, types.PathParams{ProjectID: "nope"})

	_, err := scope.Project(context.Background())
	assert.True(t, store.IsNotFound(err))

	_, err = scope.ContributorIDs(context.Background())
	assert.True(t, store.IsNotFound(err))
}

func TestScope_NoProjectReference(t *testing.T) {
	scope := NewScope(&countingGraph{}, types.PathParams{})

	_, err := scope.Project(context.Background())
	assert.True(t, store.IsNotFound(err))
}
