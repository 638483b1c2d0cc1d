package driving

import "context"

// Scheduler triggers pipeline runs periodically.
type Scheduler interface {
	// Start begins running scheduled runs.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops the scheduler.
	Stop() error
}
