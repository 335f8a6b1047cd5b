package notifications

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lead_notifications_total",
		Help: "Lead notifications processed, by outcome",
	},
	[]string{"outcome"},
)

// Dispatcher hands lead events to a queue and turns dequeued events into
// mails. Failures are logged and counted; they never reach the request that
// created the lead.
type Dispatcher struct {
	queue  Queue
	sender Sender
	logger *slog.Logger
}

func NewDispatcher(queue Queue, sender Sender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{queue: queue, sender: sender, logger: logger}
}

// NotifyLeadCreated enqueues job. It never returns an error.
func (d *Dispatcher) NotifyLeadCreated(ctx context.Context, job LeadCreated) {
	if err := d.queue.Enqueue(context.WithoutCancel(ctx), job); err != nil {
		notificationsTotal.WithLabelValues("enqueue_failed").Inc()
		d.logger.Error("could not enqueue lead notification", "lead_id", job.LeadID, "error", err)
	}
}

// Handle is the worker-side HandlerFunc.
func (d *Dispatcher) Handle(ctx context.Context, job LeadCreated) error {
	if err := d.sender.SendLeadNotification(ctx, job); err != nil {
		notificationsTotal.WithLabelValues("failed").Inc()
		return err
	}
	notificationsTotal.WithLabelValues("sent").Inc()
	return nil
}
