package application

import (
	"context"
	"time"

	"github.com/morphcodes/morphd/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

const (
	webhookTimeout     = 10 * time.Second
	webhookMaxAttempts = 3
	webhookRetryDelay  = 30 * time.Second
)

// webhookDispatcher delivers scan notifications off the scan path: the first
// attempt runs in its own goroutine and failures are retried through the
// scheduler with a growing delay. Delivery is best-effort, exhausted
// attempts are logged and dropped.
type webhookDispatcher struct {
	sender    ports.WebhookSender
	scheduler ports.SchedulerService
}

func newWebhookDispatcher(
	sender ports.WebhookSender, schedulerSvc ports.SchedulerService,
) *webhookDispatcher {
	return &webhookDispatcher{sender: sender, scheduler: schedulerSvc}
}

func (d *webhookDispatcher) dispatch(url, secret string, event ports.WebhookEvent) {
	go d.try(url, secret, event, 1)
}

func (d *webhookDispatcher) try(url, secret string, event ports.WebhookEvent, attempt int) {
	ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
	defer cancel()

	err := d.sender.Send(ctx, url, secret, event)
	if err == nil {
		return
	}

	logger := log.WithError(err).WithFields(log.Fields{
		"chain": event.ChainID, "attempt": attempt,
	})
	if attempt >= webhookMaxAttempts || d.scheduler == nil {
		logger.Warn("webhook delivery failed, giving up")
		return
	}

	logger.Debug("webhook delivery failed, scheduling retry")
	delay := webhookRetryDelay * time.Duration(attempt)
	if err := d.scheduler.ScheduleTaskOnce(delay, func() {
		d.try(url, secret, event, attempt+1)
	}); err != nil {
		logger.WithError(err).Warn("failed to schedule webhook retry")
	}
}
