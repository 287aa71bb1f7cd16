/**
 * @description
 * This file implements the consumer side of the bnpl_events exchange. The
 * settlement pipeline publishes a message whenever a merchant purchase clears
 * against a BNPL account; this consumer applies the purchase to the account's
 * running usage and appends a history row.
 *
 * @dependencies
 * - internal/domain, internal/store: For the event shape and data access.
 */

package app

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/hanapay/bnpl-service/internal/domain"
	"github.com/hanapay/bnpl-service/internal/store"
)

const usageHandlerTimeout = 10 * time.Second

// UsageEventConsumer applies usage-recorded events to BNPL accounts.
type UsageEventConsumer struct {
	repo store.Repository
}

// NewUsageEventConsumer creates a consumer backed by the given repository.
func NewUsageEventConsumer(repo store.Repository) *UsageEventConsumer {
	return &UsageEventConsumer{repo: repo}
}

// HandleUsageRecorded processes one usage-recorded message. The return value
// is the ack decision: true acknowledges the message, false requeues it.
// Business rejections (unknown account, over-limit purchase, bad amount) are
// acknowledged so a poison message cannot wedge the queue; only transient
// infrastructure failures are requeued.
func (c *UsageEventConsumer) HandleUsageRecorded(body []byte) bool {
	var event domain.UsageRecordedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("usage consumer: dropping malformed event: %v", err)
		return true
	}
	if event.UserID == "" {
		log.Printf("usage consumer: dropping event %s with empty user id", event.EventID)
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), usageHandlerTimeout)
	defer cancel()

	record := &domain.UsageRecord{
		UserID:       event.UserID,
		MerchantName: event.MerchantName,
		Amount:       event.Amount,
		UsageDate:    event.UsageDate,
	}
	if record.UsageDate.IsZero() {
		record.UsageDate = event.OccurredAt
	}

	if err := c.repo.RecordUsage(ctx, record); err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidUsageAmount):
			log.Printf("usage consumer: dropping event %s with invalid amount %d", event.EventID, event.Amount)
			return true
		case errors.Is(err, store.ErrUsageExceedsLimit):
			log.Printf("usage consumer: dropping event %s, purchase exceeds credit limit for user %s", event.EventID, event.UserID)
			return true
		case errors.Is(err, store.ErrBnplAccountNotFound):
			log.Printf("usage consumer: dropping event %s for unenrolled user %s", event.EventID, event.UserID)
			return true
		default:
			log.Printf("usage consumer: failed to record usage for user %s, requeueing: %v", event.UserID, err)
			return false
		}
	}

	log.Printf("usage consumer: recorded %d at %s for user %s", event.Amount, event.MerchantName, event.UserID)
	return true
}
