package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hanapay/bnpl-service/internal/domain"
)

type fakeBnplAPI struct {
	applyCalls    int
	applyRequests []domain.BnplApplicationRequest
	applyResponse *domain.BnplApplicationResponse
	applyErr      error
	applyStarted  chan struct{}
	applyRelease  chan struct{}

	infoResponse    *domain.BnplInfoResponse
	infoErr         error
	historyResponse *domain.BnplUsageHistoryResponse
	historyErr      error
}

func (f *fakeBnplAPI) Apply(ctx context.Context, req domain.BnplApplicationRequest) (*domain.BnplApplicationResponse, error) {
	f.applyCalls++
	f.applyRequests = append(f.applyRequests, req)
	if f.applyStarted != nil {
		close(f.applyStarted)
	}
	if f.applyRelease != nil {
		<-f.applyRelease
	}
	return f.applyResponse, f.applyErr
}

func (f *fakeBnplAPI) GetInfo(ctx context.Context, userID string) (*domain.BnplInfoResponse, error) {
	return f.infoResponse, f.infoErr
}

func (f *fakeBnplAPI) GetUsageHistory(ctx context.Context, userID string) (*domain.BnplUsageHistoryResponse, error) {
	return f.historyResponse, f.historyErr
}

func readyOnboarding(api BnplAPI) *Onboarding {
	o := NewOnboarding(api, "user-1")
	if err := o.EnterInfo(); err != nil {
		panic(fmt.Sprintf("EnterInfo failed: %v", err))
	}
	o.SelectPaymentDay("매월 15일")
	o.SelectPaymentAccount("110-234-567890")
	return o
}

func TestSubmitWithoutSelectionsMakesNoNetworkCall(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(o *Onboarding)
		field   string
	}{
		{
			name:    "missing payment day",
			prepare: func(o *Onboarding) { o.SelectPaymentAccount("110-234-567890") },
			field:   "paymentDay",
		},
		{
			name:    "missing payment account",
			prepare: func(o *Onboarding) { o.SelectPaymentDay("매월 5일") },
			field:   "paymentAccount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeBnplAPI{}
			o := NewOnboarding(api, "user-1")
			if err := o.EnterInfo(); err != nil {
				t.Fatalf("EnterInfo failed: %v", err)
			}
			tt.prepare(o)

			_, err := o.Submit(context.Background())
			var validationErr *domain.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if validationErr.Field != tt.field {
				t.Fatalf("expected validation on %q, got %q", tt.field, validationErr.Field)
			}
			if api.applyCalls != 0 {
				t.Fatalf("expected no network call, got %d", api.applyCalls)
			}
			if o.Step() != StepInfoEntry {
				t.Fatalf("expected step to remain InfoEntry, got %s", o.Step())
			}
		})
	}
}

func TestSubmitSuccessMovesToReviewing(t *testing.T) {
	limit := int64(300000)
	api := &fakeBnplAPI{
		applyResponse: &domain.BnplApplicationResponse{
			Success:        true,
			Message:        "approved",
			CreditLimit:    &limit,
			ApprovalStatus: domain.ApprovalStatusApproved,
		},
	}
	o := readyOnboarding(api)

	resp, err := o.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success response, got %+v", resp)
	}
	if o.Step() != StepReviewing {
		t.Fatalf("expected step Reviewing, got %s", o.Step())
	}
	if api.applyRequests[0].PaymentDay != 15 {
		t.Fatalf("expected payment day 15 from label, got %d", api.applyRequests[0].PaymentDay)
	}
}

func TestSubmitDenialReturnsToInfoEntryWithServerMessage(t *testing.T) {
	api := &fakeBnplAPI{
		applyResponse: &domain.BnplApplicationResponse{
			Success: false,
			Message: "Your deferred payment application was not approved.",
		},
	}
	o := readyOnboarding(api)

	_, err := o.Submit(context.Background())
	var denied *domain.ApplicationDenied
	if !errors.As(err, &denied) {
		t.Fatalf("expected ApplicationDenied, got %v", err)
	}
	if denied.Message != "Your deferred payment application was not approved." {
		t.Fatalf("expected verbatim server message, got %q", denied.Message)
	}
	if o.Step() != StepInfoEntry {
		t.Fatalf("expected step InfoEntry after denial, got %s", o.Step())
	}
}

func TestSubmitTransportFailureReturnsToInfoEntry(t *testing.T) {
	api := &fakeBnplAPI{applyErr: fmt.Errorf("%w: connection refused", domain.ErrTransport)}
	o := readyOnboarding(api)

	_, err := o.Submit(context.Background())
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if o.Step() != StepInfoEntry {
		t.Fatalf("expected step InfoEntry after failure, got %s", o.Step())
	}

	// The session stays re-enterable: a later submit goes out again.
	api.applyErr = nil
	api.applyResponse = &domain.BnplApplicationResponse{Success: true, Message: "approved"}
	if _, err := o.Submit(context.Background()); err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if api.applyCalls != 2 {
		t.Fatalf("expected second network call on resubmit, got %d", api.applyCalls)
	}
}

func TestSubmitRefusesConcurrentSubmission(t *testing.T) {
	api := &fakeBnplAPI{
		applyStarted:  make(chan struct{}),
		applyRelease:  make(chan struct{}),
		applyResponse: &domain.BnplApplicationResponse{Success: true, Message: "approved"},
	}
	o := readyOnboarding(api)

	done := make(chan error, 1)
	go func() {
		_, err := o.Submit(context.Background())
		done <- err
	}()

	<-api.applyStarted
	if _, err := o.Submit(context.Background()); !errors.Is(err, domain.ErrSubmissionInFlight) {
		t.Fatalf("expected ErrSubmissionInFlight, got %v", err)
	}
	close(api.applyRelease)

	if err := <-done; err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if api.applyCalls != 1 {
		t.Fatalf("expected a single network call, got %d", api.applyCalls)
	}
}

func TestSubmitRequiresInfoEntryStep(t *testing.T) {
	api := &fakeBnplAPI{}
	o := NewOnboarding(api, "user-1")

	_, err := o.Submit(context.Background())
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError before entering info, got %v", err)
	}
	if api.applyCalls != 0 {
		t.Fatalf("expected no network call, got %d", api.applyCalls)
	}
}
