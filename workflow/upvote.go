package workflow

import (
	"time"

	"civicflow-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToggleUpvote adds the user's upvote if absent, removes it if present,
// and returns the updated copy plus whether the user has now upvoted.
// Upvotes always equals len(UpvotedBy), and two toggles by the same user
// restore the original state.
func ToggleUpvote(issue models.Issue, userID primitive.ObjectID, now time.Time) (models.Issue, bool) {
	next := issue.Clone()

	for i, id := range next.UpvotedBy {
		if id == userID {
			next.UpvotedBy = append(next.UpvotedBy[:i], next.UpvotedBy[i+1:]...)
			next.Upvotes = len(next.UpvotedBy)
			next.UpdatedAt = now
			return next, false
		}
	}

	next.UpvotedBy = append(next.UpvotedBy, userID)
	next.Upvotes = len(next.UpvotedBy)
	next.UpdatedAt = now
	return next, true
}
