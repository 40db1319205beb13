package controllers

import (
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"civicflow-be/models"
	"civicflow-be/reportgen"
	"civicflow-be/store"
	"civicflow-be/workflow"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type IssueController struct {
	store  *store.Store
	drafts reportgen.Generator
}

func NewIssueController(s *store.Store, drafts reportgen.Generator) *IssueController {
	return &IssueController{store: s, drafts: drafts}
}

// issueView is the API shape of an issue: the record plus the SLA state
// derived at read time, so a breached deadline is visible before the
// escalation sweep has run.
type issueView struct {
	models.Issue
	SLAStatus   string `json:"slaStatus,omitempty"`
	SLABreached bool   `json:"slaBreached"`
}

func viewOf(issue models.Issue, now time.Time) issueView {
	v := issueView{Issue: issue}
	if issue.SLADeadline != nil && !issue.Status.Terminal() {
		v.SLAStatus = workflow.DescribeSLA(*issue.SLADeadline, now)
		v.SLABreached = workflow.IsBreached(*issue.SLADeadline, now)
	}
	return v
}

// CreateIssue handles a citizen reporting a new issue. The issue enters
// the workflow in Submitted, queued for the Head of Department.
func (ic *IssueController) CreateIssue(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	if actor.Role != models.Citizen {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only citizens can report issues"})
		return
	}

	var input struct {
		Title       string  `json:"title" binding:"required,max=200"`
		Type        string  `json:"type" binding:"required"`
		Location    string  `json:"location" binding:"required,max=200"`
		Description string  `json:"description" binding:"required,max=1000"`
		ImageURL    *string `json:"imageUrl,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidIssueType(input.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue type"})
		return
	}

	issue := workflow.NewIssue(input.Title, models.IssueType(input.Type),
		input.Location, input.Description, input.ImageURL, actor.ID, time.Now())

	if err := ic.store.Issues.Insert(c.Request.Context(), issue); err != nil {
		log.Println("Error inserting issue:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create issue"})
		return
	}

	c.JSON(http.StatusCreated, viewOf(issue, time.Now()))
}

// GetIssue retrieves an issue by its ID
func (ic *IssueController) GetIssue(c *gin.Context) {
	issueID, ok := issueIDParam(c)
	if !ok {
		return
	}

	issue, err := ic.store.Issues.Find(c.Request.Context(), issueID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, viewOf(issue, time.Now()))
}

// ListIssues handles retrieving all issues with filtering, pagination and
// sorting.
func (ic *IssueController) ListIssues(c *gin.Context) {
	issueType := c.Query("type")
	status := c.Query("status")
	search := c.Query("search")
	escalated := c.Query("escalated")
	sortKey := c.DefaultQuery("sort", "newest")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	issues, err := ic.store.Issues.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}

	now := time.Now()
	filtered := make([]models.Issue, 0, len(issues))
	for _, issue := range issues {
		if issueType != "" && issueType != "all" && string(issue.Type) != issueType {
			continue
		}
		if status != "" && status != "all" && string(issue.Status) != status {
			continue
		}
		if escalated == "true" && !issue.Escalated {
			continue
		}
		if search != "" && !matchesSearch(issue, search) {
			continue
		}
		filtered = append(filtered, issue)
	}

	switch sortKey {
	case "oldest":
		// store.List is oldest-first already
	case "upvotes":
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Upvotes > filtered[j].Upvotes
		})
	case "newest":
		fallthrough
	default:
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}

	totalCount := len(filtered)
	totalPages := (totalCount + limit - 1) / limit
	start := (page - 1) * limit
	if start > totalCount {
		start = totalCount
	}
	end := start + limit
	if end > totalCount {
		end = totalCount
	}

	views := make([]issueView, 0, end-start)
	for _, issue := range filtered[start:end] {
		views = append(views, viewOf(issue, now))
	}

	c.JSON(http.StatusOK, gin.H{
		"issues":      views,
		"totalIssues": totalCount,
		"totalPages":  totalPages,
		"currentPage": page,
	})
}

func matchesSearch(issue models.Issue, search string) bool {
	s := strings.ToLower(search)
	return strings.Contains(strings.ToLower(issue.Title), s) ||
		strings.Contains(strings.ToLower(issue.Description), s) ||
		strings.Contains(strings.ToLower(issue.Location), s)
}

// MyIssues retrieves all issues reported by the authenticated citizen.
func (ic *IssueController) MyIssues(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	issues, err := ic.store.Issues.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}

	now := time.Now()
	views := make([]issueView, 0)
	for _, issue := range issues {
		if issue.CreatedBy == actor.ID {
			views = append(views, viewOf(issue, now))
		}
	}

	c.JSON(http.StatusOK, views)
}

// Queue retrieves the issues currently awaiting action from the
// authenticated actor: role-wide for Head of Department and Approving
// Manager, personally assigned for everyone else.
func (ic *IssueController) Queue(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	issues, err := ic.store.Issues.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}

	now := time.Now()
	views := make([]issueView, 0)
	for _, issue := range issues {
		if workflow.InQueue(issue, actor.ID, actor.Role) {
			views = append(views, viewOf(issue, now))
		}
	}

	c.JSON(http.StatusOK, views)
}

// ToggleUpvote toggles the citizen's upvote on an issue.
func (ic *IssueController) ToggleUpvote(c *gin.Context) {
	issueID, ok := issueIDParam(c)
	if !ok {
		return
	}
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	if actor.Role != models.Citizen {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only citizens can upvote issues"})
		return
	}

	ctx := c.Request.Context()
	issue, err := ic.store.Issues.Find(ctx, issueID)
	if err != nil {
		respondError(c, err)
		return
	}

	updated, upvoted := workflow.ToggleUpvote(issue, actor.ID, time.Now())
	if err := ic.store.Issues.Save(ctx, updated); err != nil {
		respondError(c, err)
		return
	}

	message := "Upvote removed successfully"
	if upvoted {
		message = "Upvote added successfully"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        message,
		"upvoted":        upvoted,
		"upvotes":        updated.Upvotes,
		"userHasUpvoted": upvoted,
	})
}

// Action applies one workflow transition to an issue. The transition
// table decides what the actor may do; this handler only loads, applies,
// and saves.
func (ic *IssueController) Action(c *gin.Context) {
	issueID, ok := issueIDParam(c)
	if !ok {
		return
	}
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var input struct {
		Action  workflow.Action  `json:"action" binding:"required"`
		Payload workflow.Payload `json:"payload"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	// The acting user must still exist and be active; the stored role is
	// authoritative over a stale token.
	user, err := ic.store.Users.Find(ctx, actor.ID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if !user.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is deactivated"})
		return
	}
	actor.Name = user.Name
	actor.Role = user.Role

	if msg, ok := ic.checkAssignmentTargets(c, input.Action, input.Payload); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	issue, err := ic.store.Issues.Find(ctx, issueID)
	if err != nil {
		respondError(c, err)
		return
	}

	updated, notifications, err := workflow.Apply(issue, input.Action, actor, input.Payload, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	if err := ic.store.Issues.Save(ctx, updated); err != nil {
		respondError(c, err)
		return
	}

	for _, n := range notifications {
		if err := ic.store.Notifications.Append(ctx, n); err != nil {
			log.Println("Error appending notification:", err)
		}
	}

	c.JSON(http.StatusOK, viewOf(updated, time.Now()))
}

// checkAssignmentTargets verifies that any user an action assigns exists,
// is active, and holds the role the assignment expects.
func (ic *IssueController) checkAssignmentTargets(c *gin.Context, action workflow.Action, p workflow.Payload) (string, bool) {
	ctx := c.Request.Context()

	type target struct {
		id   *primitive.ObjectID
		role models.Role
	}
	var targets []target
	switch action {
	case workflow.AssignVerification:
		targets = append(targets, target{p.EngineerID, models.Engineer})
	case workflow.SubmitVerification:
		targets = append(targets, target{p.FundManagerID, models.FundManager})
	case workflow.AssignContractor:
		targets = append(targets, target{p.ContractorID, models.Contractor})
	}

	for _, t := range targets {
		if t.id == nil {
			// The engine rejects the missing field with a precise message.
			continue
		}
		user, err := ic.store.Users.Find(ctx, *t.id)
		if err != nil || !user.Active || user.Role != t.role {
			return fmt.Sprintf("Assignee is not an active %s", t.role), false
		}
	}
	return "", true
}

// ReportDraft asks the report-generation collaborator for a verification
// report draft. Failures are surfaced but never block manual submission.
func (ic *IssueController) ReportDraft(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	if actor.Role != models.Engineer {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only engineers can request report drafts"})
		return
	}

	if ic.drafts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Report drafting is not configured, submit manually"})
		return
	}

	var input reportgen.Request
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := ic.drafts.Draft(c.Request.Context(), input)
	if err != nil {
		log.Println("Report draft failed:", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Draft generation failed, submit manually"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Analytics returns counts by type and status, escalation totals, and the
// top upvoted issues.
func (ic *IssueController) Analytics(c *gin.Context) {
	issues, err := ic.store.Issues.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}

	byType := make(map[models.IssueType]int)
	byStatus := make(map[models.IssueStatus]int)
	escalatedCount := 0
	openCount := 0
	for _, issue := range issues {
		byType[issue.Type]++
		byStatus[issue.Status]++
		if issue.Escalated {
			escalatedCount++
		}
		if !issue.Status.Terminal() {
			openCount++
		}
	}

	top := append([]models.Issue(nil), issues...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Upvotes > top[j].Upvotes })
	if len(top) > 5 {
		top = top[:5]
	}

	type topIssue struct {
		ID      string           `json:"id"`
		Title   string           `json:"title"`
		Type    models.IssueType `json:"type"`
		Upvotes int              `json:"upvotes"`
	}
	topUpvoted := make([]topIssue, 0, len(top))
	for _, issue := range top {
		topUpvoted = append(topUpvoted, topIssue{
			ID:      issue.ID.Hex(),
			Title:   issue.Title,
			Type:    issue.Type,
			Upvotes: issue.Upvotes,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"issuesByType":     byType,
		"issuesByStatus":   byStatus,
		"escalatedIssues":  escalatedCount,
		"openIssues":       openCount,
		"totalIssues":      len(issues),
		"topUpvotedIssues": topUpvoted,
	})
}
