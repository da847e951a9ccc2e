package domain

import "time"

// Comment is an author-attributed entry on an issue thread.
// Internal comments are only visible to resolvers and admins.
type Comment struct {
	ID         string
	IssueID    string
	AuthorID   string
	Content    string
	IsInternal bool
	CreatedAt  time.Time
}
