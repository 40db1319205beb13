package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueType enum
type IssueType string

const (
	Pothole      IssueType = "Pothole"
	Streetlight  IssueType = "Streetlight"
	Garbage      IssueType = "Garbage"
	WaterLeakage IssueType = "WaterLeakage"
	Obstruction  IssueType = "Obstruction"
)

// ValidIssueType reports whether t is one of the known issue types.
func ValidIssueType(t string) bool {
	switch IssueType(t) {
	case Pothole, Streetlight, Garbage, WaterLeakage, Obstruction:
		return true
	}
	return false
}

// IssueStatus enum
type IssueStatus string

const (
	Submitted                        IssueStatus = "Submitted"
	PendingVerificationAndEstimation IssueStatus = "PendingVerificationAndEstimation"
	Verified                         IssueStatus = "Verified"
	PendingApproval                  IssueStatus = "PendingApproval"
	Approved                         IssueStatus = "Approved"
	Rejected                         IssueStatus = "Rejected"
	AssignedToContractor             IssueStatus = "AssignedToContractor"
	InProgress                       IssueStatus = "InProgress"
	Resolved                         IssueStatus = "Resolved"
	Closed                           IssueStatus = "Closed"
)

// Terminal reports whether no further workflow action exists for s.
func (s IssueStatus) Terminal() bool {
	return s == Rejected || s == Closed
}

// StatusEntry is one append-only status history record. The last entry's
// Status always equals the issue's current Status.
type StatusEntry struct {
	Status    IssueStatus        `bson:"status" json:"status"`
	Date      time.Time          `bson:"date" json:"date"`
	UpdatedBy primitive.ObjectID `bson:"updatedBy" json:"updatedBy"`
	Notes     string             `bson:"notes" json:"notes"`
}

// VerificationReport is the engineer's on-site assessment. Immutable once set.
type VerificationReport struct {
	Comments    string             `bson:"comments" json:"comments"`
	PhotoURL    *string            `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	SubmittedBy primitive.ObjectID `bson:"submittedBy" json:"submittedBy"`
	SubmittedAt time.Time          `bson:"submittedAt" json:"submittedAt"`
}

// EstimationReport is the fund manager's cost estimate. Immutable once set.
type EstimationReport struct {
	Cost        float64            `bson:"cost" json:"cost"`
	Breakdown   string             `bson:"breakdown,omitempty" json:"breakdown,omitempty"`
	SubmittedBy primitive.ObjectID `bson:"submittedBy" json:"submittedBy"`
	SubmittedAt time.Time          `bson:"submittedAt" json:"submittedAt"`
}

// ContractorReport is the contractor's completion report. Immutable once set.
type ContractorReport struct {
	Summary     string             `bson:"summary" json:"summary"`
	PhotoURL    *string            `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	SubmittedBy primitive.ObjectID `bson:"submittedBy" json:"submittedBy"`
	SubmittedAt time.Time          `bson:"submittedAt" json:"submittedAt"`
}

// Issue represents a civic issue reported by a citizen and tracked
// through the departmental workflow.
type Issue struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Type        IssueType          `bson:"type" json:"type"`
	Location    string             `bson:"location" json:"location"`
	Description string             `bson:"description" json:"description"`
	ImageURL    *string            `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`

	Status        IssueStatus   `bson:"status" json:"status"`
	CurrentRoles  []Role        `bson:"currentRoles" json:"currentRoles"`
	StatusHistory []StatusEntry `bson:"statusHistory" json:"statusHistory"`

	AssignedEngineerID    *primitive.ObjectID `bson:"assignedEngineerId,omitempty" json:"assignedEngineerId,omitempty"`
	AssignedFundManagerID *primitive.ObjectID `bson:"assignedFundManagerId,omitempty" json:"assignedFundManagerId,omitempty"`
	AssignedContractorID  *primitive.ObjectID `bson:"assignedContractorId,omitempty" json:"assignedContractorId,omitempty"`

	SLADays     *int       `bson:"slaDays,omitempty" json:"slaDays,omitempty"`
	SLADeadline *time.Time `bson:"slaDeadline,omitempty" json:"slaDeadline,omitempty"`

	VerificationReport *VerificationReport `bson:"verificationReport,omitempty" json:"verificationReport,omitempty"`
	EstimationReport   *EstimationReport   `bson:"estimationReport,omitempty" json:"estimationReport,omitempty"`
	ContractorReport   *ContractorReport   `bson:"contractorReport,omitempty" json:"contractorReport,omitempty"`

	Upvotes   int                  `bson:"upvotes" json:"upvotes"`
	UpvotedBy []primitive.ObjectID `bson:"upvotedBy" json:"upvotedBy"`

	Escalated bool `bson:"escalated" json:"escalated"`

	CreatedBy primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Version is compared on save so two actors cannot race on the same issue.
	Version int64 `bson:"version" json:"version"`
}

// Clone returns a deep copy of the issue. The workflow engine operates on
// copies only; callers never observe a half-applied transition.
func (i Issue) Clone() Issue {
	c := i

	c.CurrentRoles = cloneSlice(i.CurrentRoles)
	c.StatusHistory = cloneSlice(i.StatusHistory)
	c.UpvotedBy = cloneSlice(i.UpvotedBy)

	c.ImageURL = cloneString(i.ImageURL)
	c.AssignedEngineerID = cloneObjectID(i.AssignedEngineerID)
	c.AssignedFundManagerID = cloneObjectID(i.AssignedFundManagerID)
	c.AssignedContractorID = cloneObjectID(i.AssignedContractorID)

	if i.SLADays != nil {
		d := *i.SLADays
		c.SLADays = &d
	}
	if i.SLADeadline != nil {
		t := *i.SLADeadline
		c.SLADeadline = &t
	}
	if i.VerificationReport != nil {
		r := *i.VerificationReport
		r.PhotoURL = cloneString(i.VerificationReport.PhotoURL)
		c.VerificationReport = &r
	}
	if i.EstimationReport != nil {
		r := *i.EstimationReport
		c.EstimationReport = &r
	}
	if i.ContractorReport != nil {
		r := *i.ContractorReport
		r.PhotoURL = cloneString(i.ContractorReport.PhotoURL)
		c.ContractorReport = &r
	}

	return c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneObjectID(id *primitive.ObjectID) *primitive.ObjectID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
