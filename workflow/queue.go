package workflow

import (
	"civicflow-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InQueue reports whether an issue currently needs attention from the
// given user. Head of Department and Approving Manager work role-wide
// queues; Engineer, Fund Manager and Contractor only see issues assigned
// to them personally. Derived entirely from the issue itself, so no
// separate queue index can drift out of sync.
func InQueue(issue models.Issue, userID primitive.ObjectID, role models.Role) bool {
	if !roleIn(role, issue.CurrentRoles) {
		return false
	}
	if personalQueue(role) {
		assigned := assignmentFor(issue, role)
		return assigned != nil && *assigned == userID
	}
	return true
}
