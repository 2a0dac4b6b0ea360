package store

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softdesk-api/go-core/pkg/types"
)

func seedUser(t *testing.T, st *MemoryStore, username string) *types.User {
	t.Helper()
	user := &types.User{Username: username}
	require.NoError(t, st.CreateUser(context.Background(), user))
	return user
}

func seedProject(t *testing.T, st *MemoryStore, author, title string) *types.Project {
	t.Helper()
	project := &types.Project{Author: author, Title: title, Type: types.ProjectBackend}
	require.NoError(t, st.CreateProject(context.Background(), project))
	return project
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	st := NewMemoryStore()
	seedUser(t, st, "alice")

	err := st.CreateUser(context.Background(), &types.User{Username: "alice"})
	require.True(t, IsConflict(err))

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, MsgDuplicateUsername, conflict.Message)
}

func TestGetUserByUsername(t *testing.T) {
	st := NewMemoryStore()
	alice := seedUser(t, st, "alice")

	found, err := st.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	_, err = st.GetUserByUsername(context.Background(), "ghost")
	assert.True(t, IsNotFound(err))
}

func TestCreateProject_EnrollsAuthor(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	alice := seedUser(t, st, "alice")

	project := seedProject(t, st, alice.ID, "tracker")

	contributors, err := st.ListContributors(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, contributors, 1)
	assert.Equal(t, alice.ID, contributors[0].UserID)
	assert.Equal(t, project.ID, contributors[0].ProjectID)
}

func TestCreateProject_DuplicateTitle(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	seedProject(t, st, alice.ID, "tracker")

	err := st.CreateProject(ctx, &types.Project{Author: alice.ID, Title: "tracker", Type: types.ProjectIOS})
	require.True(t, IsConflict(err))

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, MsgDuplicateProject, conflict.Message)

	// The title is only unique per author
	err = st.CreateProject(ctx, &types.Project{Author: bob.ID, Title: "tracker", Type: types.ProjectIOS})
	assert.NoError(t, err)
}

func TestAddContributor(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	project := seedProject(t, st, alice.ID, "tracker")

	require.NoError(t, st.AddContributor(ctx, &types.Contributor{UserID: bob.ID, ProjectID: project.ID}))

	err := st.AddContributor(ctx, &types.Contributor{UserID: bob.ID, ProjectID: project.ID})
	require.True(t, IsConflict(err))

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, MsgDuplicateContributor, conflict.Message)

	err = st.AddContributor(ctx, &types.Contributor{UserID: bob.ID, ProjectID: "ghost"})
	assert.True(t, IsNotFound(err))

	err = st.AddContributor(ctx, &types.Contributor{UserID: "ghost", ProjectID: project.ID})
	assert.True(t, IsNotFound(err))
}

func TestRemoveContributor_AuthorGuard(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	project := seedProject(t, st, alice.ID, "tracker")

	member := &types.Contributor{UserID: bob.ID, ProjectID: project.ID}
	require.NoError(t, st.AddContributor(ctx, member))

	contributors, err := st.ListContributors(ctx, project.ID)
	require.NoError(t, err)
	var authorRecord *types.Contributor
	for _, c := range contributors {
		if c.UserID == alice.ID {
			authorRecord = c
		}
	}
	require.NotNil(t, authorRecord)

	// The guard holds for every caller; who asks is irrelevant here.
	err = st.RemoveContributor(ctx, project.ID, authorRecord.ID)
	assert.ErrorIs(t, err, ErrAuthorContributor)

	require.NoError(t, st.RemoveContributor(ctx, project.ID, member.ID))
	err = st.RemoveContributor(ctx, project.ID, member.ID)
	assert.True(t, IsNotFound(err))
}

func TestCreateIssue_Uniqueness(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	project := seedProject(t, st, alice.ID, "tracker")

	require.NoError(t, st.CreateIssue(ctx, &types.Issue{Author: alice.ID, ProjectID: project.ID, Title: "crash"}))

	err := st.CreateIssue(ctx, &types.Issue{Author: alice.ID, ProjectID: project.ID, Title: "crash"})
	require.True(t, IsConflict(err))

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, MsgDuplicateIssue, conflict.Message)

	// Unique per (author, project): another author may reuse the title
	err = st.CreateIssue(ctx, &types.Issue{Author: bob.ID, ProjectID: project.ID, Title: "crash"})
	assert.NoError(t, err)
}

func TestCreateIssue_DefaultStatus(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	alice := seedUser(t, st, "alice")
	project := seedProject(t, st, alice.ID, "tracker")

	issue := &types.Issue{Author: alice.ID, ProjectID: project.ID, Title: "crash"}
	require.NoError(t, st.CreateIssue(ctx, issue))
	assert.Equal(t, types.StatusToDo, issue.Status)
}

func TestScopedLookups(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	alice := seedUser(t, st, "alice")
	projectA := seedProject(t, st, alice.ID, "tracker")
	projectB := seedProject(t, st, alice.ID, "billing")

	issue := &types.Issue{Author: alice.ID, ProjectID: projectA.ID, Title: "crash"}
	require.NoError(t, st.CreateIssue(ctx, issue))

	comment := &types.Comment{Author: alice.ID, IssueID: issue.ID, Content: "seen it"}
	require.NoError(t, st.CreateComment(ctx, comment))

	// An issue is only reachable under its own project
	_, err := st.GetIssue(ctx, projectB.ID, issue.ID)
	assert.True(t, IsNotFound(err))

	found, err := st.GetIssue(ctx, projectA.ID, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, issue.ID, found.ID)

	// A comment is only reachable under its own issue
	_, err = st.GetComment(ctx, "ghost", comment.ID)
	assert.True(t, IsNotFound(err))
}

func TestDeleteProject_Cascades(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	project := seedProject(t, st, alice.ID, "tracker")
	require.NoError(t, st.AddContributor(ctx, &types.Contributor{UserID: bob.ID, ProjectID: project.ID}))

	issue := &types.Issue{Author: alice.ID, ProjectID: project.ID, Title: "crash"}
	require.NoError(t, st.CreateIssue(ctx, issue))
	comment := &types.Comment{Author: bob.ID, IssueID: issue.ID, Content: "same"}
	require.NoError(t, st.CreateComment(ctx, comment))

	require.NoError(t, st.DeleteProject(ctx, project.ID))

	_, err := st.GetProject(ctx, project.ID)
	assert.True(t, IsNotFound(err))

	contributors, err := st.ListContributors(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, contributors)

	_, err = st.GetIssue(ctx, project.ID, issue.ID)
	assert.True(t, IsNotFound(err))
	_, err = st.GetComment(ctx, issue.ID, comment.ID)
	assert.True(t, IsNotFound(err))
}

func TestDeleteIssue_CascadesToComments(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	alice := seedUser(t, st, "alice")
	project := seedProject(t, st, alice.ID, "tracker")

	issue := &types.Issue{Author: alice.ID, ProjectID: project.ID, Title: "crash"}
	require.NoError(t, st.CreateIssue(ctx, issue))
	comment := &types.Comment{Author: alice.ID, IssueID: issue.ID, Content: "same"}
	require.NoError(t, st.CreateComment(ctx, comment))

	require.NoError(t, st.DeleteIssue(ctx, project.ID, issue.ID))

	_, err := st.GetComment(ctx, issue.ID, comment.ID)
	assert.True(t, IsNotFound(err))
}

func TestReadsAreIsolatedFromWrites(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	alice := seedUser(t, st, "alice")
	project := seedProject(t, st, alice.ID, "tracker")

	fetched, err := st.GetProject(ctx, project.ID)
	require.NoError(t, err)

	// A record fetched by one request must stay stable while another
	// request updates it; run the two concurrently so the race detector
	// can see any sharing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			update := *project
			update.Description = strconv.Itoa(i)
			if err := st.UpdateProject(ctx, &update); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	for i := 0; i < 100; i++ {
		_ = fetched.Description
		_, err := st.GetProject(ctx, project.ID)
		assert.NoError(t, err)
	}
	<-done

	// Mutating a returned record never writes through to the store
	fetched.Title = "tampered"
	again, err := st.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "tracker", again.Title)

	contributors, err := st.ListContributors(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, contributors, 1)
	contributors[0].UserID = "tampered"

	contributors, err = st.ListContributors(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, contributors[0].UserID)
}

func TestUpdateProject_DuplicateTitle(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	alice := seedUser(t, st, "alice")
	seedProject(t, st, alice.ID, "tracker")
	second := seedProject(t, st, alice.ID, "billing")

	second.Title = "tracker"
	err := st.UpdateProject(ctx, second)
	assert.True(t, IsConflict(err))
}
