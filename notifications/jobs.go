// Package notifications delivers side effects of primary writes (today: the
// new-lead mail) outside the request that produced them.
package notifications

import (
	"context"
	"errors"
	"time"
)

var ErrQueueFull = errors.New("notification queue is full")

// LeadCreated is published after a lead insert commits.
type LeadCreated struct {
	LeadID    string    `json:"lead_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Message   string    `json:"message,omitempty"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Queue accepts jobs without waiting for them to be processed.
type Queue interface {
	Enqueue(ctx context.Context, job LeadCreated) error
}

// HandlerFunc processes one job. A returned error marks the job failed.
type HandlerFunc func(ctx context.Context, job LeadCreated) error

// Worker drains a queue until ctx is cancelled.
type Worker interface {
	Run(ctx context.Context, handle HandlerFunc) error
}
