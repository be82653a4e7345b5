package counter

import (
	"context"

	"github.com/ManuelReschke/SaturnGames/internal/pkg/cache"
)

const webhookEventsKey = "webhook:counters:events"

// Webhook event outcomes tracked per delivery.
const (
	OutcomeProcessed = "processed"
	OutcomeIgnored   = "ignored"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// AddWebhookEvent increments the counter for one delivery outcome in Redis.
func AddWebhookEvent(outcome string) error {
	client := cache.GetClient()
	if client == nil {
		return nil
	}
	return client.HIncrBy(context.Background(), webhookEventsKey, outcome, 1).Err()
}

// WebhookEventTotals returns the accumulated per-outcome delivery counts.
func WebhookEventTotals() (map[string]string, error) {
	client := cache.GetClient()
	if client == nil {
		return map[string]string{}, nil
	}
	return client.HGetAll(context.Background(), webhookEventsKey).Result()
}
