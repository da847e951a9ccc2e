package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

func TestAddComment_EmptyContent(t *testing.T) {
	f := newFixture(t)
	issue := f.seedIssue(t, nil)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := f.comments.AddComment(context.Background(), issue.ID, resolverA, content, false)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeEmptyContent))
	}
	_, err := f.comments.AddComment(context.Background(), "missing", resolverA, " ", false)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeEmptyContent))
}

func TestAddComment_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.comments.AddComment(context.Background(), "missing", resolverA, "hello", false)

	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestAddComment_TouchesUpdatedAt(t *testing.T) {
	f := newFixture(t)
	issue := f.seedIssue(t, nil)
	f.clock.Set(monday.Add(30 * time.Minute))

	comment, err := f.comments.AddComment(context.Background(), issue.ID, requesterID, "  any update?  ", false)

	require.NoError(t, err)
	assert.Equal(t, "any update?", comment.Content)
	stored := f.stored(t, issue.ID)
	assert.Equal(t, monday.Add(30*time.Minute), stored.UpdatedAt)
	assert.Nil(t, stored.FirstResponseAt)
	assert.Empty(t, f.audit(t, issue.ID))
	assert.Equal(t, []events.EventType{events.EventIssueCommentAdded}, f.log.types())
}

func TestAddComment_InternalNoteOnClosedIssueHiddenFromRequester(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	issue := f.seedIssue(t, withStatus(domain.IssueStatusClosed))

	_, err := f.comments.AddComment(ctx, issue.ID, resolverA, "note", true)
	require.NoError(t, err)
	_, err = f.comments.AddComment(ctx, issue.ID, resolverA, "closing remark", false)
	require.NoError(t, err)

	forRequester, err := f.comments.ListComments(ctx, issue.ID, requester(requesterID))
	require.NoError(t, err)
	require.Len(t, forRequester, 1)
	assert.Equal(t, "closing remark", forRequester[0].Content)

	forResolver, err := f.comments.ListComments(ctx, issue.ID, resolver(resolverB))
	require.NoError(t, err)
	assert.Len(t, forResolver, 2)
}

func TestAddComment_FirstResponse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	issue := f.seedIssue(t, nil)

	_, err := f.comments.AddComment(ctx, issue.ID, resolverA, "checking internally", true)
	require.NoError(t, err)
	assert.Nil(t, f.stored(t, issue.ID).FirstResponseAt)

	f.clock.Set(monday.Add(2 * time.Hour))
	_, err = f.comments.AddComment(ctx, issue.ID, resolverA, "we are on it", false)
	require.NoError(t, err)

	f.clock.Set(monday.Add(3 * time.Hour))
	_, err = f.comments.AddComment(ctx, issue.ID, resolverB, "update", false)
	require.NoError(t, err)

	stored := f.stored(t, issue.ID)
	require.NotNil(t, stored.FirstResponseAt)
	assert.Equal(t, monday.Add(2*time.Hour), *stored.FirstResponseAt)
}

func TestListComments_OtherRequesterForbidden(t *testing.T) {
	f := newFixture(t)
	issue := f.seedIssue(t, nil)

	_, err := f.comments.ListComments(context.Background(), issue.ID, requester(otherRequesterID))

	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestAddComment_StoreUnavailableLeavesNothingBehind(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	issue := f.seedIssue(t, nil)
	f.store.SetUnavailable(errors.New("connection refused"))

	_, err := f.comments.AddComment(ctx, issue.ID, resolverA, "hello", false)
	require.True(t, apperrors.HasCode(err, apperrors.CodeStoreUnavailable))

	f.store.SetUnavailable(nil)
	comments, err := f.comments.ListComments(ctx, issue.ID, resolver(resolverA))
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestVisibleComments(t *testing.T) {
	comments := []domain.Comment{{ID: "1"}, {ID: "2", IsInternal: true}}

	assert.Len(t, VisibleComments(comments, domain.UserRoleRequester), 1)
	assert.Len(t, VisibleComments(comments, domain.UserRoleResolver), 2)
	assert.Len(t, VisibleComments(comments, domain.UserRoleAdmin), 2)
}
