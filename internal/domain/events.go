package domain

import "time"

// Routing keys on the bnpl_events topic exchange.
const (
	EventApplicationApproved = "bnpl.application.approved"
	EventUsageRecorded       = "bnpl.usage.recorded"
)

// ApplicationApprovedEvent is published after an application has been
// persisted with an approved status.
type ApplicationApprovedEvent struct {
	UserID          string    `json:"user_id"`
	PaymentDay      int       `json:"payment_day"`
	CreditLimit     int64     `json:"credit_limit"`
	RAM             float64   `json:"ram"`
	ApplicationDate time.Time `json:"application_date"`
}

// UsageRecordedEvent is the message emitted by the settlement pipeline when a
// merchant purchase clears against a BNPL account.
type UsageRecordedEvent struct {
	EventID      string    `json:"event_id"`
	UserID       string    `json:"user_id"`
	MerchantName string    `json:"merchant_name"`
	Amount       int64     `json:"amount"`
	UsageDate    time.Time `json:"usage_date"`
	OccurredAt   time.Time `json:"occurred_at"`
}
