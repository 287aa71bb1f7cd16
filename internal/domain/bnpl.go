/**
 * @description
 * This file defines the core domain models for the bnpl-service. These structs
 * represent the main entities and data transfer objects (DTOs) used throughout
 * the service's business logic, database interactions, and API layers.
 *
 * @notes
 * - Using distinct types for API requests, database models, and external service
 *   payloads ensures clear separation of concerns and type safety.
 * - Amounts are stored as `int64` in the base currency unit (won), which avoids
 *   floating-point inaccuracies with financial data.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Payment days offered at enrollment. The billing date is fixed once the
// application is approved and cannot be changed afterwards.
const (
	PaymentDayEarly  = 5
	PaymentDayMiddle = 15
	PaymentDayLate   = 25
)

// FixedCreditLimit is the credit limit granted to every approved application.
const FixedCreditLimit int64 = 300000

// Approval statuses for a BNPL account.
const (
	ApprovalStatusApproved = "APPROVED"
	ApprovalStatusRejected = "REJECTED"
)

// ValidPaymentDay reports whether day is one of the offered billing dates.
func ValidPaymentDay(day int) bool {
	return day == PaymentDayEarly || day == PaymentDayMiddle || day == PaymentDayLate
}

// BnplAccount is the enrollment record for a user's deferred-payment account.
// This struct maps directly to the `bnpl_accounts` table in the database.
type BnplAccount struct {
	ID              uuid.UUID `json:"id"`
	UserID          string    `json:"user_id"`
	PaymentDay      int       `json:"payment_day"`
	PaymentAccount  string    `json:"payment_account"`
	UsageAmount     int64     `json:"usage_amount"`
	CreditLimit     int64     `json:"credit_limit"`
	ApplicationDate time.Time `json:"application_date"`
	ApprovalStatus  string    `json:"approval_status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AvailableAmount returns the remaining spend capacity for the billing cycle.
func (a *BnplAccount) AvailableAmount() int64 {
	return a.CreditLimit - a.UsageAmount
}

// UsageFraction returns usage as a fraction of the credit limit, clamped to
// [0,1]. A zero credit limit yields 0 so progress bars never divide by zero.
func (a *BnplAccount) UsageFraction() float64 {
	return ClampUsageFraction(a.UsageAmount, a.CreditLimit)
}

// ClampUsageFraction computes usage/limit clamped to [0,1], with 0 for a
// non-positive limit.
func ClampUsageFraction(usage, limit int64) float64 {
	if limit <= 0 {
		return 0
	}
	fraction := float64(usage) / float64(limit)
	if fraction < 0 {
		return 0
	}
	if fraction > 1 {
		return 1
	}
	return fraction
}

// UsageRecord is one BNPL purchase, most recent first by convention.
// This struct maps directly to the `bnpl_usage_history` table.
type UsageRecord struct {
	ID           uuid.UUID `json:"id"`
	UserID       string    `json:"user_id"`
	UsageDate    time.Time `json:"usage_date"`
	MerchantName string    `json:"merchant_name"`
	Amount       int64     `json:"amount"`
	CreatedAt    time.Time `json:"created_at"`
}

// BnplApplicationRequest is the DTO for incoming application API requests.
type BnplApplicationRequest struct {
	UserID         string `json:"userId"`
	PaymentDay     int    `json:"paymentDay"`
	PaymentAccount string `json:"paymentAccount"`
}

// BnplApplicationResponse is the envelope returned by the apply endpoint.
type BnplApplicationResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	CreditLimit    *int64 `json:"creditLimit,omitempty"`
	ApprovalStatus string `json:"approvalStatus,omitempty"`
}

// UsageItem is the client-facing view of one usage record. The date is
// pre-formatted as "MM.dd" for the history list.
type UsageItem struct {
	UsageDate    string `json:"usageDate"`
	MerchantName string `json:"merchantName"`
	Amount       int64  `json:"amount"`
}

// BnplUsageHistoryResponse is the envelope returned by the usage-history endpoint.
type BnplUsageHistoryResponse struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message"`
	UsageHistory []UsageItem `json:"usageHistory"`
}

// BnplInfoData is the client-facing summary of a BNPL account. The application
// date is pre-formatted as "yyyy-MM-dd".
type BnplInfoData struct {
	PaymentDay      int    `json:"paymentDay"`
	PaymentAccount  string `json:"paymentAccount"`
	UsageAmount     int64  `json:"usageAmount"`
	CreditLimit     int64  `json:"creditLimit"`
	ApplicationDate string `json:"applicationDate"`
	ApprovalStatus  string `json:"approvalStatus"`
}

// BnplInfoResponse is the envelope returned by the info endpoint. Data is
// omitted when the user has no enrollment.
type BnplInfoResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Data    *BnplInfoData `json:"data,omitempty"`
}
