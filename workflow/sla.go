package workflow

import (
	"fmt"
	"time"

	"civicflow-be/models"
)

// IsBreached reports whether the deadline has passed.
func IsBreached(deadline, now time.Time) bool {
	return now.After(deadline)
}

// DescribeSLA renders the deadline relative to now, e.g. "overdue by 2d 4h"
// or "due in 3h 10m".
func DescribeSLA(deadline, now time.Time) string {
	if IsBreached(deadline, now) {
		return "overdue by " + formatDuration(now.Sub(deadline))
	}
	return "due in " + formatDuration(deadline.Sub(now))
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return "less than a minute"
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	switch {
	case days > 0 && hours > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case days > 0:
		return fmt.Sprintf("%dd", days)
	case hours > 0 && mins > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dm", mins)
}

// Escalate marks an issue escalated once its SLA deadline is breached and
// returns the updated copy plus notifications for the assigned actor and
// the reporting citizen. The second-to-last return is false when nothing
// changed: no deadline, already escalated, terminal, or not yet breached.
// Escalation is a flag, not a status; no history entry is appended.
func Escalate(issue models.Issue, now time.Time) (models.Issue, []models.Notification, bool) {
	if issue.SLADeadline == nil || issue.Escalated || issue.Status.Terminal() {
		return issue, nil, false
	}
	if !IsBreached(*issue.SLADeadline, now) {
		return issue, nil, false
	}

	next := issue.Clone()
	next.Escalated = true
	next.UpdatedAt = now

	overdue := DescribeSLA(*issue.SLADeadline, now)
	var notifs []models.Notification
	for _, role := range next.CurrentRoles {
		if assigned := assignmentFor(next, role); assigned != nil {
			notifs = append(notifs, notify(*assigned, models.NotifySLAAlert, "SLA deadline missed",
				fmt.Sprintf("Issue %q is %s", next.Title, overdue),
				&next, now))
		}
	}
	notifs = append(notifs, notify(next.CreatedBy, models.NotifyEscalation, "Issue escalated",
		fmt.Sprintf("Your issue %q missed its resolution deadline and has been escalated", next.Title),
		&next, now))

	return next, notifs, true
}
