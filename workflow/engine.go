package workflow

import (
	"fmt"
	"time"

	"civicflow-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Action enum — one entry per row of the transition table.
type Action string

const (
	AssignVerification Action = "assign_verification"
	SubmitVerification Action = "submit_verification"
	SubmitEstimation   Action = "submit_estimation"
	Approve            Action = "approve"
	Reject             Action = "reject"
	AssignContractor   Action = "assign_contractor"
	StartWork          Action = "start_work"
	SubmitCompletion   Action = "submit_completion"
	Close              Action = "close"
	RejectWork         Action = "reject_work"
)

// Actor is the authenticated user performing an action. The engine trusts
// it as already authenticated; it only checks eligibility.
type Actor struct {
	ID   primitive.ObjectID
	Name string
	Role models.Role
}

// Payload carries the action-specific inputs. Each transition validates
// the fields it needs before anything is applied.
type Payload struct {
	EngineerID    *primitive.ObjectID `json:"engineerId,omitempty"`
	FundManagerID *primitive.ObjectID `json:"fundManagerId,omitempty"`
	ContractorID  *primitive.ObjectID `json:"contractorId,omitempty"`
	SLADays       int                 `json:"slaDays,omitempty"`
	Comments      string              `json:"comments,omitempty"`
	PhotoURL      *string             `json:"photoUrl,omitempty"`
	Cost          float64             `json:"cost,omitempty"`
	Breakdown     string              `json:"breakdown,omitempty"`
	Summary       string              `json:"summary,omitempty"`
	Notes         string              `json:"notes,omitempty"`
}

// transition is one row of the table: who may do what in which status,
// what it requires, and what it changes.
type transition struct {
	from     models.IssueStatus
	to       models.IssueStatus
	role     models.Role
	validate func(p Payload) error
	apply    func(next *models.Issue, actor Actor, p Payload, now time.Time) (notes string, notifs []models.Notification)
}

var noValidation = func(Payload) error { return nil }

var transitions = map[Action]transition{
	AssignVerification: {
		from: models.Submitted,
		to:   models.PendingVerificationAndEstimation,
		role: models.HeadOfDepartment,
		validate: func(p Payload) error {
			if p.EngineerID == nil || p.EngineerID.IsZero() {
				return fmt.Errorf("%w: engineerId is required", ErrInvalidPayload)
			}
			if p.SLADays <= 0 {
				return fmt.Errorf("%w: slaDays must be positive", ErrInvalidPayload)
			}
			return nil
		},
		apply: func(next *models.Issue, actor Actor, p Payload, now time.Time) (string, []models.Notification) {
			next.AssignedEngineerID = p.EngineerID
			setSLA(next, p.SLADays, now)
			notes := fmt.Sprintf("Assigned to engineer for verification and estimation, SLA %d days", p.SLADays)
			n := notify(*p.EngineerID, models.NotifyNewAssignment, "New issue assigned",
				fmt.Sprintf("Issue %q at %s needs verification and estimation within %d days", next.Title, next.Location, p.SLADays),
				next, now)
			return notes, []models.Notification{n}
		},
	},
	SubmitVerification: {
		from: models.PendingVerificationAndEstimation,
		to:   models.Verified,
		role: models.Engineer,
		validate: func(p Payload) error {
			if p.Comments == "" {
				return fmt.Errorf("%w: verification comments are required", ErrInvalidPayload)
			}
			if p.FundManagerID == nil || p.FundManagerID.IsZero() {
				return fmt.Errorf("%w: fundManagerId is required", ErrInvalidPayload)
			}
			return nil
		},
		apply: func(next *models.Issue, actor Actor, p Payload, now time.Time) (string, []models.Notification) {
			next.VerificationReport = &models.VerificationReport{
				Comments:    p.Comments,
				PhotoURL:    p.PhotoURL,
				SubmittedBy: actor.ID,
				SubmittedAt: now,
			}
			next.AssignedFundManagerID = p.FundManagerID
			n := notify(*p.FundManagerID, models.NotifyNewAssignment, "Issue awaiting cost estimation",
				fmt.Sprintf("Issue %q has been verified and needs a cost estimate", next.Title),
				next, now)
			return "Verification report submitted", []models.Notification{n}
		},
	},
	SubmitEstimation: {
		from: models.Verified,
		to:   models.PendingApproval,
		role: models.FundManager,
		validate: func(p Payload) error {
			if p.Cost <= 0 {
				return fmt.Errorf("%w: cost must be positive", ErrInvalidPayload)
			}
			return nil
		},
		apply: func(next *models.Issue, actor Actor, p Payload, now time.Time) (string, []models.Notification) {
			next.EstimationReport = &models.EstimationReport{
				Cost:        p.Cost,
				Breakdown:   p.Breakdown,
				SubmittedBy: actor.ID,
				SubmittedAt: now,
			}
			return fmt.Sprintf("Cost estimated at %.2f", p.Cost), nil
		},
	},
	Approve: {
		from:     models.PendingApproval,
		to:       models.Approved,
		role:     models.ApprovingManager,
		validate: noValidation,
		apply: func(next *models.Issue, actor Actor, p Payload, now time.Time) (string, []models.Notification) {
			notes := "Estimation approved"
			if p.Notes != "" {
				notes = p.Notes
			}
			return notes, nil
		},
	},
	Reject: {
		from: models.PendingApproval,
		to:   models.Rejected,
		role: models.ApprovingManager,
		validate: func(p Payload) error {
			if p.Notes == "" {
				return fmt.Errorf("%w: rejection notes are required", ErrInvalidPayload)
			}
			return nil
		},
		apply: func(next *models.Issue, actor Actor, p Payload, now time.Time) (string, []models.Notification) {
			n := notify(next.CreatedBy, models.NotifyStatusUpdate, "Issue rejected",
				fmt.Sprintf("Your issue %q was rejected: %s", next.Title, p.Notes),
				next, now)
			return p.Notes, []models.Notification{n}
		},
	},
	AssignContractor: {
		from: models.Approved,
		to:   models.AssignedToContractor,
		role: models.HeadOfDepartment,
		validate: func(p Payload) error {
			if p.ContractorID == nil || p.ContractorID.IsZero() {
				return fmt.Errorf("%w: contractorId is required", ErrInvalidPayload)
			}
			if p.SLADays <= 0 {
				return fmt.Errorf("%w: slaDays must be positive", ErrInvalidPayload)
			}
			return nil
		},
		apply: func(next *models.Issue, actor Actor, p Payload, now time.Time) (string, []models.Notification) {
			next.AssignedContractorID = p.ContractorID
			setSLA(next, p.SLADays, now)
			notes := fmt.Sprintf("Assigned to contractor, SLA %d days", p.SLADays)
			n := notify(*p.ContractorID, models.NotifyNewAssignment, "New work order",
				fmt.Sprintf("Issue %q at %s is assigned to you, due in %d days", next.Title, next.Location, p.SLADays),
				next, now)
			return notes, []models.Notification{n}
		},
	},
	StartWork: {
		from:     models.AssignedToContractor,
		to:       models.InProgress,
		role:     models.Contractor,
		validate: noValidation,
		apply: func(next *models.Issue, actor Actor, p Payload, now time.Time) (string, []models.Notification) {
			return "Work started", nil
		},
	},
	SubmitCompletion: {
		from: models.InProgress,
		to:   models.Resolved,
		role: models.Contractor,
		validate: func(p Payload) error {
			if p.Summary == "" {
				return fmt.Errorf("%w: completion summary is required", ErrInvalidPayload)
			}
			return nil
		},
		apply: func(next *models.Issue, actor Actor, p Payload, now time.Time) (string, []models.Notification) {
			next.ContractorReport = &models.ContractorReport{
				Summary:     p.Summary,
				PhotoURL:    p.PhotoURL,
				SubmittedBy: actor.ID,
				SubmittedAt: now,
			}
			return "Completion report submitted", nil
		},
	},
	Close: {
		from:     models.Resolved,
		to:       models.Closed,
		role:     models.HeadOfDepartment,
		validate: noValidation,
		apply: func(next *models.Issue, actor Actor, p Payload, now time.Time) (string, []models.Notification) {
			desc := fmt.Sprintf("Your issue %q has been resolved and closed", next.Title)
			if next.ContractorReport != nil {
				desc = fmt.Sprintf("Your issue %q has been resolved and closed. Final report: %s",
					next.Title, next.ContractorReport.Summary)
			}
			n := notify(next.CreatedBy, models.NotifyStatusUpdate, "Issue closed", desc, next, now)
			return "Work approved and issue closed", []models.Notification{n}
		},
	},
	RejectWork: {
		from: models.Resolved,
		to:   models.InProgress,
		role: models.HeadOfDepartment,
		validate: func(p Payload) error {
			if p.Notes == "" {
				return fmt.Errorf("%w: rework notes are required", ErrInvalidPayload)
			}
			return nil
		},
		apply: func(next *models.Issue, actor Actor, p Payload, now time.Time) (string, []models.Notification) {
			var notifs []models.Notification
			if next.AssignedContractorID != nil {
				notifs = append(notifs, notify(*next.AssignedContractorID, models.NotifyStatusUpdate, "Work sent back",
					fmt.Sprintf("Completed work on issue %q was not accepted: %s", next.Title, p.Notes),
					next, now))
			}
			return p.Notes, notifs
		},
	},
}

// Apply runs one transition against an issue and returns the updated copy
// plus the notifications to dispatch. The input issue is never mutated; on
// any error the caller's value is exactly what it was.
//
// Order of checks: status, authorization, payload. Nothing is applied until
// all three pass, so there is no partial transition to roll back.
func Apply(issue models.Issue, action Action, actor Actor, payload Payload, now time.Time) (models.Issue, []models.Notification, error) {
	t, ok := transitions[action]
	if !ok {
		return issue, nil, fmt.Errorf("%w: unknown action %q", ErrInvalidPayload, action)
	}

	if issue.Status != t.from {
		return issue, nil, fmt.Errorf("%w: %s requires status %s, issue is %s",
			ErrInvalidState, action, t.from, issue.Status)
	}

	if err := authorize(issue, t.role, actor); err != nil {
		return issue, nil, err
	}

	if err := t.validate(payload); err != nil {
		return issue, nil, err
	}

	next := issue.Clone()
	notes, notifs := t.apply(&next, actor, payload, now)

	next.Status = t.to
	next.CurrentRoles = RolesForStatus(t.to)
	next.StatusHistory = append(next.StatusHistory, models.StatusEntry{
		Status:    t.to,
		Date:      now,
		UpdatedBy: actor.ID,
		Notes:     notes,
	})
	next.UpdatedAt = now

	return next, notifs, nil
}

func authorize(issue models.Issue, required models.Role, actor Actor) error {
	if actor.Role != required || !roleIn(actor.Role, issue.CurrentRoles) {
		return fmt.Errorf("%w: role %s cannot act on issue in status %s",
			ErrUnauthorized, actor.Role, issue.Status)
	}
	if personalQueue(actor.Role) {
		assigned := assignmentFor(issue, actor.Role)
		if assigned == nil || *assigned != actor.ID {
			return fmt.Errorf("%w: issue is not assigned to this %s", ErrUnauthorized, actor.Role)
		}
	}
	return nil
}

func setSLA(issue *models.Issue, days int, now time.Time) {
	deadline := now.AddDate(0, 0, days)
	issue.SLADays = &days
	issue.SLADeadline = &deadline
	// A fresh assignment gets a fresh clock.
	issue.Escalated = false
}

func notify(userID primitive.ObjectID, typ models.NotificationType, title, desc string, issue *models.Issue, now time.Time) models.Notification {
	issueID := issue.ID
	return models.Notification{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Type:        typ,
		Title:       title,
		Description: desc,
		IssueID:     &issueID,
		ImageURL:    issue.ImageURL,
		Timestamp:   now,
	}
}

// NewIssue builds a freshly submitted issue with its opening history entry.
// New issues land in the Head of Department's queue.
func NewIssue(title string, typ models.IssueType, location, description string, imageURL *string, createdBy primitive.ObjectID, now time.Time) models.Issue {
	return models.Issue{
		ID:           primitive.NewObjectID(),
		Title:        title,
		Type:         typ,
		Location:     location,
		Description:  description,
		ImageURL:     imageURL,
		Status:       models.Submitted,
		CurrentRoles: RolesForStatus(models.Submitted),
		StatusHistory: []models.StatusEntry{{
			Status:    models.Submitted,
			Date:      now,
			UpdatedBy: createdBy,
			Notes:     "Issue reported",
		}},
		UpvotedBy: []primitive.ObjectID{},
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
