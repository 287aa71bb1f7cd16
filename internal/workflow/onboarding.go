/**
 * @description
 * This file implements the client-side onboarding state machine for BNPL
 * enrollment. One Onboarding instance lives for one enrollment session and
 * walks the user from terms acceptance through info entry to submission.
 *
 * Key features:
 * - Step transitions: TermsAccepted → InfoEntry → Submitting → Reviewing on
 *   success, back to InfoEntry on any failure.
 * - Submit validates selections locally before issuing a network call.
 * - A single in-flight submission is enforced per instance.
 *
 * @dependencies
 * - internal/domain: For the error taxonomy and API envelopes.
 */

package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hanapay/bnpl-service/internal/domain"
	"github.com/hanapay/bnpl-service/pkg/bnplclient"
)

// Step is a stage of the enrollment onboarding sequence.
type Step int

const (
	// StepTermsAccepted is the entry state, reached after the user accepts
	// the service terms.
	StepTermsAccepted Step = iota
	// StepInfoEntry is where payment day and account are selected.
	StepInfoEntry
	// StepSubmitting means an application request is in flight.
	StepSubmitting
	// StepReviewing is the terminal success state: the application has been
	// accepted and is under review.
	StepReviewing
)

// String returns the step name for logging.
func (s Step) String() string {
	switch s {
	case StepTermsAccepted:
		return "TermsAccepted"
	case StepInfoEntry:
		return "InfoEntry"
	case StepSubmitting:
		return "Submitting"
	case StepReviewing:
		return "Reviewing"
	default:
		return "Unknown"
	}
}

// BnplAPI is the subset of the BNPL service client used by the workflow.
type BnplAPI interface {
	Apply(ctx context.Context, req domain.BnplApplicationRequest) (*domain.BnplApplicationResponse, error)
	GetInfo(ctx context.Context, userID string) (*domain.BnplInfoResponse, error)
	GetUsageHistory(ctx context.Context, userID string) (*domain.BnplUsageHistoryResponse, error)
}

var _ BnplAPI = (*bnplclient.Client)(nil)

// Onboarding drives one user's enrollment session.
type Onboarding struct {
	api    BnplAPI
	userID string

	mu              sync.Mutex
	step            Step
	paymentDayLabel string
	paymentAccount  string
}

// NewOnboarding creates a session in the TermsAccepted state.
func NewOnboarding(api BnplAPI, userID string) *Onboarding {
	return &Onboarding{
		api:    api,
		userID: userID,
		step:   StepTermsAccepted,
	}
}

// Step returns the current stage.
func (o *Onboarding) Step() Step {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.step
}

// EnterInfo moves from TermsAccepted to InfoEntry.
func (o *Onboarding) EnterInfo() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.step != StepTermsAccepted {
		return &domain.ValidationError{Field: "step", Message: "terms must be accepted before entering info"}
	}
	o.step = StepInfoEntry
	return nil
}

// SelectPaymentDay records the payment-day label chosen in the UI.
func (o *Onboarding) SelectPaymentDay(label string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.paymentDayLabel = strings.TrimSpace(label)
}

// SelectPaymentAccount records the settlement account chosen in the UI.
func (o *Onboarding) SelectPaymentAccount(account string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.paymentAccount = strings.TrimSpace(account)
}

// Submit sends the application. Missing selections are rejected with a
// ValidationError before any network call. On success the session moves to
// Reviewing; on any failure it returns to InfoEntry so the user can resubmit.
// A concurrent Submit while one is in flight returns ErrSubmissionInFlight.
func (o *Onboarding) Submit(ctx context.Context) (*domain.BnplApplicationResponse, error) {
	o.mu.Lock()
	switch o.step {
	case StepSubmitting:
		o.mu.Unlock()
		return nil, domain.ErrSubmissionInFlight
	case StepInfoEntry:
		// proceed
	default:
		o.mu.Unlock()
		return nil, &domain.ValidationError{Field: "step", Message: "submission is only possible from the info entry step"}
	}
	if o.paymentDayLabel == "" {
		o.mu.Unlock()
		return nil, &domain.ValidationError{Field: "paymentDay", Message: "payment day must be selected"}
	}
	if o.paymentAccount == "" {
		o.mu.Unlock()
		return nil, &domain.ValidationError{Field: "paymentAccount", Message: "payment account must be selected"}
	}
	req := domain.BnplApplicationRequest{
		UserID:         o.userID,
		PaymentDay:     ParsePaymentDayLabel(o.paymentDayLabel),
		PaymentAccount: o.paymentAccount,
	}
	o.step = StepSubmitting
	o.mu.Unlock()

	resp, err := o.api.Apply(ctx, req)

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.step = StepInfoEntry
		if errors.Is(err, domain.ErrTransport) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	if !resp.Success {
		o.step = StepInfoEntry
		return resp, &domain.ApplicationDenied{Message: resp.Message}
	}
	o.step = StepReviewing
	return resp, nil
}
