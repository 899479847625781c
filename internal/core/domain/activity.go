package domain

import "time"

// ActivityAction names a state change worth recording in the activity log.
type ActivityAction string

const (
	ActionRegistered     ActivityAction = "user.registered"
	ActionLoggedIn       ActivityAction = "user.logged_in"
	ActionLoggedOut      ActivityAction = "user.logged_out"
	ActionAccountDeleted ActivityAction = "user.deleted"
	ActionProfileSaved   ActivityAction = "profile.saved"
	ActionPostCreated    ActivityAction = "post.created"
	ActionPostDeleted    ActivityAction = "post.deleted"
	ActionPostLiked      ActivityAction = "post.liked"
	ActionPostUnliked    ActivityAction = "post.unliked"
	ActionCommentAdded   ActivityAction = "comment.added"
	ActionCommentRemoved ActivityAction = "comment.removed"
)

// Activity is an audit record of something a user did.
type Activity struct {
	UserID     string
	Action     ActivityAction
	ResourceID string // optional
	OccurredAt time.Time
}
