package app

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hanapay/bnpl-service/internal/domain"
)

func marshalUsageEvent(t *testing.T, event domain.UsageRecordedEvent) []byte {
	t.Helper()
	body, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("failed to marshal event: %v", err)
	}
	return body
}

func TestHandleUsageRecordedAppliesPurchase(t *testing.T) {
	repo := newMockRepository()
	repo.accounts["user-1"] = &domain.BnplAccount{UserID: "user-1", UsageAmount: 100000, CreditLimit: 300000}
	consumer := NewUsageEventConsumer(repo)

	body := marshalUsageEvent(t, domain.UsageRecordedEvent{
		EventID:      "evt-1",
		UserID:       "user-1",
		MerchantName: "편의점",
		Amount:       4500,
		UsageDate:    time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC),
	})

	if ack := consumer.HandleUsageRecorded(body); !ack {
		t.Fatalf("expected successful event to be acked")
	}
	if repo.accounts["user-1"].UsageAmount != 104500 {
		t.Fatalf("expected usage 104500, got %d", repo.accounts["user-1"].UsageAmount)
	}
	if len(repo.usage["user-1"]) != 1 {
		t.Fatalf("expected one history row, got %d", len(repo.usage["user-1"]))
	}
}

func TestHandleUsageRecordedDropsPoisonMessages(t *testing.T) {
	repo := newMockRepository()
	repo.accounts["user-1"] = &domain.BnplAccount{UserID: "user-1", UsageAmount: 290000, CreditLimit: 300000}
	consumer := NewUsageEventConsumer(repo)

	tests := []struct {
		name string
		body []byte
	}{
		{name: "malformed json", body: []byte("{not json")},
		{
			name: "empty user id",
			body: marshalUsageEvent(t, domain.UsageRecordedEvent{EventID: "evt-2", Amount: 100}),
		},
		{
			name: "non-positive amount",
			body: marshalUsageEvent(t, domain.UsageRecordedEvent{EventID: "evt-3", UserID: "user-1", Amount: 0}),
		},
		{
			name: "over credit limit",
			body: marshalUsageEvent(t, domain.UsageRecordedEvent{EventID: "evt-4", UserID: "user-1", Amount: 20000}),
		},
		{
			name: "unenrolled user",
			body: marshalUsageEvent(t, domain.UsageRecordedEvent{EventID: "evt-5", UserID: "nobody", Amount: 100}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ack := consumer.HandleUsageRecorded(tt.body); !ack {
				t.Fatalf("expected poison message to be acked, not requeued")
			}
		})
	}

	if repo.accounts["user-1"].UsageAmount != 290000 {
		t.Fatalf("expected usage to stay at 290000, got %d", repo.accounts["user-1"].UsageAmount)
	}
}

func TestHandleUsageRecordedRequeuesOnTransientFailure(t *testing.T) {
	repo := newMockRepository()
	repo.recordErr = errors.New("connection reset")
	consumer := NewUsageEventConsumer(repo)

	body := marshalUsageEvent(t, domain.UsageRecordedEvent{EventID: "evt-6", UserID: "user-1", Amount: 100})
	if ack := consumer.HandleUsageRecorded(body); ack {
		t.Fatalf("expected transient failure to be requeued")
	}
}

func TestHandleUsageRecordedFallsBackToOccurredAt(t *testing.T) {
	repo := newMockRepository()
	repo.accounts["user-1"] = &domain.BnplAccount{UserID: "user-1", CreditLimit: 300000}
	consumer := NewUsageEventConsumer(repo)

	occurred := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)
	body := marshalUsageEvent(t, domain.UsageRecordedEvent{
		EventID:    "evt-7",
		UserID:     "user-1",
		Amount:     100,
		OccurredAt: occurred,
	})

	if ack := consumer.HandleUsageRecorded(body); !ack {
		t.Fatalf("expected event to be acked")
	}
	if got := repo.usage["user-1"][0].UsageDate; !got.Equal(occurred) {
		t.Fatalf("expected usage date to fall back to occurred_at, got %v", got)
	}
}
