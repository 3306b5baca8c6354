package agent

import "context"

// Agent is a background job the Scheduler can run on a cron schedule or on demand.
//
// Example implementations:
//   - DigestAgent: daily AI summary of new announcements
type Agent interface {
	// GetName returns the unique agent name used in logs.
	GetName() string

	// GetSchedule returns a cron expression (e.g. "0 7 * * *"), or "" for on-demand only agents.
	GetSchedule() string

	// Execute runs the agent's task once.
	Execute(ctx context.Context) error
}
