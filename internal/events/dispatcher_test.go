package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_RunsEveryHandlerForType(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventIssueAssigned, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.IssueID)
		return nil
	})
	d.Subscribe(EventIssueAssigned, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.IssueID)
		return nil
	})
	d.Subscribe(EventIssueCreated, func(context.Context, Event) error {
		calls = append(calls, "created")
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventIssueAssigned, "i-1", "u-1", time.Now(), nil))

	require.NoError(t, err)
	assert.Equal(t, []string{"first:i-1", "second:i-1"}, calls)
}

func TestPublish_JoinsHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")
	ran := false
	d.Subscribe(EventIssueCreated, func(context.Context, Event) error { return boom })
	d.Subscribe(EventIssueCreated, func(context.Context, Event) error {
		ran = true
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventIssueCreated, "i-1", "u-1", time.Now(), nil))

	assert.ErrorIs(t, err, boom)
	assert.True(t, ran)
}

func TestNewEvent_AssignsUniqueIDs(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewEvent(EventIssueCreated, "i-1", "u-1", at, nil)
	b := NewEvent(EventIssueCreated, "i-1", "u-1", at, nil)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, at, a.Timestamp)
}

func TestSubscribeAll_RunsAfterTypedHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.SubscribeAll(func(_ context.Context, e Event) error {
		calls = append(calls, "all:"+string(e.Type))
		return nil
	})
	d.Subscribe(EventIssueCommentAdded, func(context.Context, Event) error {
		calls = append(calls, "comment")
		return nil
	})

	for _, eventType := range []EventType{EventIssueCommentAdded, EventIssueTypeMapped} {
		require.NoError(t, d.Publish(context.Background(), NewEvent(eventType, "i-1", "u-1", time.Now(), nil)))
	}

	assert.Equal(t, []string{"comment", "all:issue_comment_added", "all:issue_type_mapped"}, calls)
}
