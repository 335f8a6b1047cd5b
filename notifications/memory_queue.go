package notifications

import (
	"context"
	"log/slog"
)

// MemoryQueue is an in-process queue used when no broker is configured. Jobs
// still pending at shutdown are lost.
type MemoryQueue struct {
	jobs   chan LeadCreated
	logger *slog.Logger
}

func NewMemoryQueue(size int, logger *slog.Logger) *MemoryQueue {
	return &MemoryQueue{jobs: make(chan LeadCreated, size), logger: logger}
}

func (q *MemoryQueue) Enqueue(_ context.Context, job LeadCreated) error {
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Run(ctx context.Context, handle HandlerFunc) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case job := <-q.jobs:
			if err := handle(ctx, job); err != nil {
				q.logger.Error("notification job failed", "lead_id", job.LeadID, "error", err)
			}
		}
	}
}
