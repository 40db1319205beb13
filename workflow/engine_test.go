package workflow

import (
	"testing"
	"time"

	"civicflow-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	citizenID    = primitive.NewObjectID()
	hodID        = primitive.NewObjectID()
	engineerID   = primitive.NewObjectID()
	fundMgrID    = primitive.NewObjectID()
	approverID   = primitive.NewObjectID()
	contractorID = primitive.NewObjectID()

	hod        = Actor{ID: hodID, Name: "Head", Role: models.HeadOfDepartment}
	engineer   = Actor{ID: engineerID, Name: "Eng", Role: models.Engineer}
	fundMgr    = Actor{ID: fundMgrID, Name: "Fund", Role: models.FundManager}
	approver   = Actor{ID: approverID, Name: "Appr", Role: models.ApprovingManager}
	contractor = Actor{ID: contractorID, Name: "Con", Role: models.Contractor}
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newSubmittedIssue() models.Issue {
	return NewIssue("Deep pothole on Elm St", models.Pothole,
		"Elm St / 4th Ave", "Roughly 2m wide, dangerous for bikes", nil, citizenID, testNow)
}

// checkInvariants asserts the two structural invariants every transition
// must preserve.
func checkInvariants(t *testing.T, issue models.Issue) {
	t.Helper()
	require.NotEmpty(t, issue.StatusHistory)
	assert.Equal(t, issue.Status, issue.StatusHistory[len(issue.StatusHistory)-1].Status,
		"last history entry must match current status")
	assert.Equal(t, RolesForStatus(issue.Status), issue.CurrentRoles,
		"currentRoles must be derived from status")
}

// advance runs the standard happy path up to (and including) the named
// status and returns the issue.
func advance(t *testing.T, until models.IssueStatus) models.Issue {
	t.Helper()
	issue := newSubmittedIssue()
	if until == models.Submitted {
		return issue
	}

	steps := []struct {
		reach   models.IssueStatus
		action  Action
		actor   Actor
		payload Payload
	}{
		{models.PendingVerificationAndEstimation, AssignVerification, hod,
			Payload{EngineerID: &engineerID, SLADays: 10}},
		{models.Verified, SubmitVerification, engineer,
			Payload{Comments: "Pothole confirmed, 2m wide", FundManagerID: &fundMgrID}},
		{models.PendingApproval, SubmitEstimation, fundMgr,
			Payload{Cost: 4200.50, Breakdown: "materials 3000, labour 1200.50"}},
		{models.Approved, Approve, approver, Payload{}},
		{models.AssignedToContractor, AssignContractor, hod,
			Payload{ContractorID: &contractorID, SLADays: 14}},
		{models.InProgress, StartWork, contractor, Payload{}},
		{models.Resolved, SubmitCompletion, contractor,
			Payload{Summary: "Pothole filled and resurfaced"}},
		{models.Closed, Close, hod, Payload{}},
	}

	for _, step := range steps {
		var err error
		issue, _, err = Apply(issue, step.action, step.actor, step.payload, testNow)
		require.NoError(t, err, "step to %s", step.reach)
		require.Equal(t, step.reach, issue.Status)
		checkInvariants(t, issue)
		if issue.Status == until {
			return issue
		}
	}
	t.Fatalf("status %s not reachable on happy path", until)
	return issue
}

func TestNewIssueStartsInHodQueue(t *testing.T) {
	issue := newSubmittedIssue()
	assert.Equal(t, models.Submitted, issue.Status)
	assert.Equal(t, []models.Role{models.HeadOfDepartment}, issue.CurrentRoles)
	require.Len(t, issue.StatusHistory, 1)
	assert.Equal(t, citizenID, issue.StatusHistory[0].UpdatedBy)
	checkInvariants(t, issue)
}

func TestAssignVerification(t *testing.T) {
	issue := newSubmittedIssue()

	updated, notifs, err := Apply(issue, AssignVerification, hod,
		Payload{EngineerID: &engineerID, SLADays: 10}, testNow)
	require.NoError(t, err)

	assert.Equal(t, models.PendingVerificationAndEstimation, updated.Status)
	assert.Equal(t, []models.Role{models.Engineer}, updated.CurrentRoles)
	require.NotNil(t, updated.AssignedEngineerID)
	assert.Equal(t, engineerID, *updated.AssignedEngineerID)
	require.NotNil(t, updated.SLADeadline)
	assert.Equal(t, testNow.AddDate(0, 0, 10), *updated.SLADeadline)
	require.NotNil(t, updated.SLADays)
	assert.Equal(t, 10, *updated.SLADays)

	require.Len(t, notifs, 1)
	assert.Equal(t, engineerID, notifs[0].UserID)
	assert.Equal(t, models.NotifyNewAssignment, notifs[0].Type)
	require.NotNil(t, notifs[0].IssueID)
	assert.Equal(t, issue.ID, *notifs[0].IssueID)

	checkInvariants(t, updated)
}

func TestSubmitVerification(t *testing.T) {
	issue := advance(t, models.PendingVerificationAndEstimation)

	updated, notifs, err := Apply(issue, SubmitVerification, engineer,
		Payload{Comments: "Pothole confirmed, 2m wide", FundManagerID: &fundMgrID}, testNow)
	require.NoError(t, err)

	assert.Equal(t, models.Verified, updated.Status)
	assert.Equal(t, []models.Role{models.FundManager}, updated.CurrentRoles)
	require.NotNil(t, updated.VerificationReport)
	assert.Equal(t, "Pothole confirmed, 2m wide", updated.VerificationReport.Comments)
	assert.Equal(t, engineerID, updated.VerificationReport.SubmittedBy)
	require.NotNil(t, updated.AssignedFundManagerID)
	assert.Equal(t, fundMgrID, *updated.AssignedFundManagerID)

	require.Len(t, notifs, 1)
	assert.Equal(t, fundMgrID, notifs[0].UserID)
}

func TestSubmitEstimation(t *testing.T) {
	issue := advance(t, models.Verified)

	updated, _, err := Apply(issue, SubmitEstimation, fundMgr,
		Payload{Cost: 1500, Breakdown: "asphalt and labour"}, testNow)
	require.NoError(t, err)

	assert.Equal(t, models.PendingApproval, updated.Status)
	assert.Equal(t, []models.Role{models.ApprovingManager}, updated.CurrentRoles)
	require.NotNil(t, updated.EstimationReport)
	assert.Equal(t, 1500.0, updated.EstimationReport.Cost)
}

func TestEstimationRequiresPositiveCost(t *testing.T) {
	issue := advance(t, models.Verified)

	for _, cost := range []float64{0, -10} {
		_, _, err := Apply(issue, SubmitEstimation, fundMgr, Payload{Cost: cost}, testNow)
		assert.ErrorIs(t, err, ErrInvalidPayload)
	}
}

func TestRejectRequiresNotes(t *testing.T) {
	issue := advance(t, models.PendingApproval)
	before := issue.Clone()

	_, _, err := Apply(issue, Reject, approver, Payload{}, testNow)
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.Equal(t, before, issue, "failed action must leave the issue untouched")
}

func TestRejectIsTerminal(t *testing.T) {
	issue := advance(t, models.PendingApproval)

	updated, notifs, err := Apply(issue, Reject, approver,
		Payload{Notes: "Cost exceeds remaining budget"}, testNow)
	require.NoError(t, err)

	assert.Equal(t, models.Rejected, updated.Status)
	assert.True(t, updated.Status.Terminal())
	assert.Empty(t, updated.CurrentRoles)
	assert.Equal(t, "Cost exceeds remaining budget",
		updated.StatusHistory[len(updated.StatusHistory)-1].Notes)

	require.Len(t, notifs, 1)
	assert.Equal(t, citizenID, notifs[0].UserID)
	assert.Equal(t, models.NotifyStatusUpdate, notifs[0].Type)
}

func TestUnauthorizedLeavesIssueUnchanged(t *testing.T) {
	issue := advance(t, models.PendingApproval)
	before := issue.Clone()

	// An engineer cannot approve.
	_, _, err := Apply(issue, Approve, engineer, Payload{}, testNow)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, before, issue)
	assert.Len(t, issue.StatusHistory, len(before.StatusHistory), "no history entry on failure")
}

func TestPersonalQueueRequiresAssignment(t *testing.T) {
	issue := advance(t, models.PendingVerificationAndEstimation)

	otherEngineer := Actor{ID: primitive.NewObjectID(), Role: models.Engineer}
	_, _, err := Apply(issue, SubmitVerification, otherEngineer,
		Payload{Comments: "looks fine", FundManagerID: &fundMgrID}, testNow)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCompletionRequiresInProgress(t *testing.T) {
	issue := advance(t, models.AssignedToContractor)

	_, _, err := Apply(issue, SubmitCompletion, contractor,
		Payload{Summary: "done"}, testNow)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCloseNotifiesCitizenWithFinalReport(t *testing.T) {
	issue := advance(t, models.Resolved)

	updated, notifs, err := Apply(issue, Close, hod, Payload{}, testNow)
	require.NoError(t, err)

	assert.Equal(t, models.Closed, updated.Status)
	assert.True(t, updated.Status.Terminal())
	assert.Empty(t, updated.CurrentRoles)

	require.Len(t, notifs, 1)
	assert.Equal(t, citizenID, notifs[0].UserID)
	assert.Contains(t, notifs[0].Description, "Pothole filled and resurfaced")
}

func TestRejectWorkSendsBackToContractor(t *testing.T) {
	issue := advance(t, models.Resolved)

	updated, notifs, err := Apply(issue, RejectWork, hod,
		Payload{Notes: "Surface already cracking"}, testNow)
	require.NoError(t, err)

	assert.Equal(t, models.InProgress, updated.Status)
	assert.Equal(t, []models.Role{models.Contractor}, updated.CurrentRoles)
	assert.Equal(t, "Surface already cracking",
		updated.StatusHistory[len(updated.StatusHistory)-1].Notes)

	require.Len(t, notifs, 1)
	assert.Equal(t, contractorID, notifs[0].UserID)

	// The contractor can resubmit after rework.
	updated, _, err = Apply(updated, SubmitCompletion, contractor,
		Payload{Summary: "Resurfaced again, cured properly"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, models.Resolved, updated.Status)
}

func TestAssignVerificationValidation(t *testing.T) {
	issue := newSubmittedIssue()

	tests := []struct {
		name    string
		payload Payload
	}{
		{"missing engineer", Payload{SLADays: 10}},
		{"zero sla", Payload{EngineerID: &engineerID}},
		{"negative sla", Payload{EngineerID: &engineerID, SLADays: -3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Apply(issue, AssignVerification, hod, tt.payload, testNow)
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestUnknownAction(t *testing.T) {
	issue := newSubmittedIssue()
	_, _, err := Apply(issue, Action("teleport"), hod, Payload{}, testNow)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	issue := newSubmittedIssue()
	before := issue.Clone()

	_, _, err := Apply(issue, AssignVerification, hod,
		Payload{EngineerID: &engineerID, SLADays: 7}, testNow)
	require.NoError(t, err)

	assert.Equal(t, before, issue)
}

func TestTerminalStatusAcceptsNoAction(t *testing.T) {
	issue := advance(t, models.Closed)

	for action := range transitions {
		for _, actor := range []Actor{hod, engineer, fundMgr, approver, contractor} {
			_, _, err := Apply(issue, action, actor, Payload{}, testNow)
			assert.Error(t, err, "action %s by %s on closed issue", action, actor.Role)
		}
	}
}

func TestEveryTransitionAppendsExactlyOneEntry(t *testing.T) {
	issue := newSubmittedIssue()
	prevLen := len(issue.StatusHistory)

	steps := []struct {
		action  Action
		actor   Actor
		payload Payload
	}{
		{AssignVerification, hod, Payload{EngineerID: &engineerID, SLADays: 10}},
		{SubmitVerification, engineer, Payload{Comments: "confirmed", FundManagerID: &fundMgrID}},
		{SubmitEstimation, fundMgr, Payload{Cost: 900}},
		{Approve, approver, Payload{}},
		{AssignContractor, hod, Payload{ContractorID: &contractorID, SLADays: 5}},
		{StartWork, contractor, Payload{}},
		{SubmitCompletion, contractor, Payload{Summary: "done"}},
		{Close, hod, Payload{}},
	}
	for _, step := range steps {
		var err error
		issue, _, err = Apply(issue, step.action, step.actor, step.payload, testNow)
		require.NoError(t, err)
		assert.Len(t, issue.StatusHistory, prevLen+1)
		assert.Equal(t, step.actor.ID, issue.StatusHistory[len(issue.StatusHistory)-1].UpdatedBy)
		prevLen = len(issue.StatusHistory)
	}
}

func TestRolesForStatusIsDeterministic(t *testing.T) {
	a := advance(t, models.Verified)
	b := advance(t, models.Verified)
	assert.Equal(t, a.CurrentRoles, b.CurrentRoles)

	// Terminal statuses have nobody to act.
	assert.Empty(t, RolesForStatus(models.Rejected))
	assert.Empty(t, RolesForStatus(models.Closed))
}

func TestReassignmentOverwritesSLA(t *testing.T) {
	issue := advance(t, models.Approved)

	updated, _, err := Apply(issue, AssignContractor, hod,
		Payload{ContractorID: &contractorID, SLADays: 3}, testNow)
	require.NoError(t, err)

	require.NotNil(t, updated.SLADeadline)
	assert.Equal(t, testNow.AddDate(0, 0, 3), *updated.SLADeadline)
	assert.False(t, updated.Escalated, "a fresh assignment resets escalation")
}
