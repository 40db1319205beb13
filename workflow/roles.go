package workflow

import (
	"civicflow-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RolesForStatus returns the set of roles eligible to act on an issue in
// the given status. CurrentRoles is always derived from this table, never
// set independently. Terminal statuses have no eligible roles.
func RolesForStatus(status models.IssueStatus) []models.Role {
	switch status {
	case models.Submitted:
		return []models.Role{models.HeadOfDepartment}
	case models.PendingVerificationAndEstimation:
		return []models.Role{models.Engineer}
	case models.Verified:
		return []models.Role{models.FundManager}
	case models.PendingApproval:
		return []models.Role{models.ApprovingManager}
	case models.Approved:
		return []models.Role{models.HeadOfDepartment}
	case models.AssignedToContractor, models.InProgress:
		return []models.Role{models.Contractor}
	case models.Resolved:
		return []models.Role{models.HeadOfDepartment}
	case models.Rejected, models.Closed:
		return []models.Role{}
	}
	return []models.Role{}
}

// assignmentFor returns the issue's assignee for a personal-queue role, or
// nil for role-wide queues (Head of Department, Approving Manager).
func assignmentFor(issue models.Issue, role models.Role) *primitive.ObjectID {
	switch role {
	case models.Engineer:
		return issue.AssignedEngineerID
	case models.FundManager:
		return issue.AssignedFundManagerID
	case models.Contractor:
		return issue.AssignedContractorID
	}
	return nil
}

// personalQueue reports whether the role works from a per-person queue
// keyed by an assignment field rather than a role-wide queue.
func personalQueue(role models.Role) bool {
	switch role {
	case models.Engineer, models.FundManager, models.Contractor:
		return true
	}
	return false
}

func roleIn(role models.Role, roles []models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
