package workflow

import (
	"context"
	"fmt"
	"testing"

	"github.com/hanapay/bnpl-service/internal/domain"
)

func TestFetchAccountSummaryBothSectionsSucceed(t *testing.T) {
	api := &fakeBnplAPI{
		infoResponse: &domain.BnplInfoResponse{
			Success: true,
			Data: &domain.BnplInfoData{
				PaymentDay:      15,
				PaymentAccount:  "110-234-567890",
				UsageAmount:     120000,
				CreditLimit:     300000,
				ApplicationDate: "2026-08-01",
				ApprovalStatus:  domain.ApprovalStatusApproved,
			},
		},
		historyResponse: &domain.BnplUsageHistoryResponse{
			Success: true,
			UsageHistory: []domain.UsageItem{
				{UsageDate: "08.20", MerchantName: "편의점", Amount: 4500},
				{UsageDate: "08.18", MerchantName: "서점", Amount: 32000},
			},
		},
	}

	summary := FetchAccountSummary(context.Background(), api, "user-1")
	if !summary.Enrolled {
		t.Fatalf("expected enrolled summary")
	}
	if summary.Info.UsageAmount != 120000 {
		t.Fatalf("expected usage 120000, got %d", summary.Info.UsageAmount)
	}
	if len(summary.History) != 2 {
		t.Fatalf("expected 2 history items, got %d", len(summary.History))
	}
	if got := summary.AvailableAmount(); got != 180000 {
		t.Fatalf("expected available amount 180000, got %d", got)
	}
	if got := summary.UsageFraction(); got != 0.4 {
		t.Fatalf("expected usage fraction 0.4, got %f", got)
	}
}

func TestFetchAccountSummaryInfoFailureKeepsHistory(t *testing.T) {
	api := &fakeBnplAPI{
		infoErr: fmt.Errorf("%w: status 500", domain.ErrTransport),
		historyResponse: &domain.BnplUsageHistoryResponse{
			Success:      true,
			UsageHistory: []domain.UsageItem{{UsageDate: "08.20", MerchantName: "편의점", Amount: 4500}},
		},
	}

	summary := FetchAccountSummary(context.Background(), api, "user-1")
	if summary.Enrolled {
		t.Fatalf("expected placeholder account state after info failure")
	}
	if summary.Info != (domain.BnplInfoData{}) {
		t.Fatalf("expected zero-value info, got %+v", summary.Info)
	}
	if len(summary.History) != 1 {
		t.Fatalf("expected history to survive info failure, got %d items", len(summary.History))
	}
	if got := summary.UsageFraction(); got != 0 {
		t.Fatalf("expected zero usage fraction for placeholder state, got %f", got)
	}
}

func TestFetchAccountSummaryHistoryFailureKeepsInfo(t *testing.T) {
	api := &fakeBnplAPI{
		infoResponse: &domain.BnplInfoResponse{
			Success: true,
			Data:    &domain.BnplInfoData{CreditLimit: 300000, ApprovalStatus: domain.ApprovalStatusApproved},
		},
		historyErr: fmt.Errorf("%w: connection reset", domain.ErrTransport),
	}

	summary := FetchAccountSummary(context.Background(), api, "user-1")
	if !summary.Enrolled {
		t.Fatalf("expected info section to survive history failure")
	}
	if len(summary.History) != 0 {
		t.Fatalf("expected empty history, got %d items", len(summary.History))
	}
	if summary.History == nil {
		t.Fatalf("expected empty slice, not nil history")
	}
}

func TestFetchAccountSummaryNoEnrollment(t *testing.T) {
	api := &fakeBnplAPI{
		infoResponse:    &domain.BnplInfoResponse{Success: false, Message: "No deferred payment enrollment found."},
		historyResponse: &domain.BnplUsageHistoryResponse{Success: true, UsageHistory: []domain.UsageItem{}},
	}

	summary := FetchAccountSummary(context.Background(), api, "user-1")
	if summary.Enrolled {
		t.Fatalf("expected unenrolled summary for success=false info envelope")
	}
}
