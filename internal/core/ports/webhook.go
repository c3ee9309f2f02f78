package ports

import (
	"context"
	"time"
)

// WebhookEvent is the notification delivered to an organization's endpoint
// after an accepted scan.
type WebhookEvent struct {
	Event          string    `json:"event"`
	OrgID          string    `json:"organizationId"`
	ChainID        string    `json:"chainId"`
	ChainName      string    `json:"chainName"`
	Value          string    `json:"value"`
	Position       int       `json:"position"`
	Remaining      int       `json:"remaining"`
	ChainExhausted bool      `json:"chainExhausted"`
	Timestamp      time.Time `json:"timestamp"`
}

type WebhookSender interface {
	// Send posts the event to url, signed with the organization's secret.
	Send(ctx context.Context, url, secret string, event WebhookEvent) error
}
