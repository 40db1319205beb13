package monitor

import (
	"context"
	"log"
	"time"

	"civicflow-be/store"
	"civicflow-be/workflow"
)

// SLAMonitor periodically sweeps all issues and escalates those past
// their SLA deadline, so escalation is a consequence of breach detection
// rather than a flag someone remembers to set.
type SLAMonitor struct {
	store    *store.Store
	interval time.Duration
}

func New(s *store.Store, interval time.Duration) *SLAMonitor {
	return &SLAMonitor{store: s, interval: interval}
}

// Start runs the sweep loop until the context is cancelled.
func (m *SLAMonitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Sweep(ctx); err != nil {
				log.Println("SLA sweep failed:", err)
			}
		}
	}
}

// Sweep escalates every breached, not-yet-escalated issue and dispatches
// its notifications. A version conflict on one issue just means an actor
// got there first; the next sweep re-evaluates it.
func (m *SLAMonitor) Sweep(ctx context.Context) error {
	issues, err := m.store.Issues.List(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, issue := range issues {
		escalated, notifications, changed := workflow.Escalate(issue, now)
		if !changed {
			continue
		}
		if err := m.store.Issues.Save(ctx, escalated); err != nil {
			if err == store.ErrVersionConflict {
				continue
			}
			log.Println("Error saving escalated issue:", err)
			continue
		}
		for _, n := range notifications {
			if err := m.store.Notifications.Append(ctx, n); err != nil {
				log.Println("Error appending escalation notification:", err)
			}
		}
		log.Printf("Issue %s escalated, deadline was %s", escalated.ID.Hex(), issue.SLADeadline.Format(time.RFC3339))
	}
	return nil
}
