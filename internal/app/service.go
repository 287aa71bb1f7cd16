/**
 * @description
 * This file contains the core business logic for the bnpl-service. The
 * `Service` struct orchestrates deferred-payment enrollment, coordinating
 * between the database repository, the external risk-scoring client, and the
 * message broker.
 *
 * Key features:
 * - Implements the main use cases: application submission, account-info
 *   lookup, and usage-history lookup.
 * - Applies the credit policy (RAM cutoff, fixed limit) during submission.
 * - Publishes an event to RabbitMQ when an application is approved.
 *
 * @dependencies
 * - context, errors, fmt, log, time: Standard Go libraries.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/rabbitmq: For event publication.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hanapay/bnpl-service/internal/domain"
	"github.com/hanapay/bnpl-service/internal/store"
	"github.com/hanapay/bnpl-service/pkg/rabbitmq"
)

const (
	bnplEventsExchange = "bnpl_events"

	usageDateFormat       = "01.02"
	applicationDateFormat = "2006-01-02"
)

// RiskProfileProvider resolves the credit-bureau feature vector for a user.
type RiskProfileProvider interface {
	RiskProfile(ctx context.Context, userID string) (domain.CustomerRiskProfile, error)
}

// Service provides the core business logic for BNPL enrollment and usage.
type Service struct {
	repo          store.Repository
	profiles      RiskProfileProvider
	scorer        RiskScorer
	eventProducer rabbitmq.Publisher
}

// NewService creates a new BNPL service instance.
func NewService(repo store.Repository, profiles RiskProfileProvider, scorer RiskScorer, producer rabbitmq.Publisher) *Service {
	return &Service{
		repo:          repo,
		profiles:      profiles,
		scorer:        scorer,
		eventProducer: producer,
	}
}

// ApplyBnpl processes an enrollment application. The returned envelope carries
// the business outcome (approval, denial, duplicate enrollment); an error is
// returned only for infrastructure failures, including an unreachable scoring
// service, which must never be reported as a denial.
func (s *Service) ApplyBnpl(ctx context.Context, req domain.BnplApplicationRequest) (*domain.BnplApplicationResponse, error) {
	log.Printf("ApplyBnpl: user=%s paymentDay=%d account=%s", req.UserID, req.PaymentDay, req.PaymentAccount)

	if !domain.ValidPaymentDay(req.PaymentDay) {
		return &domain.BnplApplicationResponse{
			Success: false,
			Message: "Payment day must be one of 5, 15 or 25.",
		}, nil
	}

	exists, err := s.repo.BnplAccountExists(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing enrollment: %w", err)
	}
	if exists {
		return &domain.BnplApplicationResponse{
			Success: false,
			Message: "You are already enrolled in deferred payment.",
		}, nil
	}

	profile, err := s.profiles.RiskProfile(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve risk profile: %w", err)
	}

	decision, err := EvaluateCreditLimit(ctx, s.scorer, profile)
	if err != nil {
		return nil, err
	}

	if !decision.Approved {
		log.Printf("ApplyBnpl: user=%s denied (ram=%.6f)", req.UserID, decision.RAM)
		deniedLimit := int64(0)
		return &domain.BnplApplicationResponse{
			Success:        false,
			Message:        "Your deferred payment application was not approved.",
			CreditLimit:    &deniedLimit,
			ApprovalStatus: domain.ApprovalStatusRejected,
		}, nil
	}

	account := &domain.BnplAccount{
		UserID:          req.UserID,
		PaymentDay:      req.PaymentDay,
		PaymentAccount:  req.PaymentAccount,
		UsageAmount:     0,
		CreditLimit:     decision.CreditLimit,
		ApplicationDate: time.Now().UTC(),
		ApprovalStatus:  domain.ApprovalStatusApproved,
	}
	if err := s.repo.CreateBnplAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrBnplAccountAlreadyExists) {
			// Lost a race with a concurrent application from the same user.
			return &domain.BnplApplicationResponse{
				Success: false,
				Message: "You are already enrolled in deferred payment.",
			}, nil
		}
		return nil, fmt.Errorf("failed to persist enrollment: %w", err)
	}

	s.publishApprovalEvent(ctx, account, decision.RAM)

	log.Printf("ApplyBnpl: user=%s approved limit=%d", req.UserID, account.CreditLimit)
	approvedLimit := account.CreditLimit
	return &domain.BnplApplicationResponse{
		Success:        true,
		Message:        "Your deferred payment application has been approved.",
		CreditLimit:    &approvedLimit,
		ApprovalStatus: domain.ApprovalStatusApproved,
	}, nil
}

// GetUsageHistory returns the recent usage list for a user, newest first,
// with dates formatted for the history view.
func (s *Service) GetUsageHistory(ctx context.Context, userID string) (*domain.BnplUsageHistoryResponse, error) {
	records, err := s.repo.ListUsageHistory(ctx, userID, store.DefaultUsageHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage history: %w", err)
	}

	items := make([]domain.UsageItem, 0, len(records))
	for _, rec := range records {
		items = append(items, domain.UsageItem{
			UsageDate:    rec.UsageDate.Format(usageDateFormat),
			MerchantName: rec.MerchantName,
			Amount:       rec.Amount,
		})
	}

	return &domain.BnplUsageHistoryResponse{
		Success:      true,
		Message:      "Usage history retrieved.",
		UsageHistory: items,
	}, nil
}

// GetBnplInfo returns the account summary for a user. A user with no
// enrollment gets a success=false envelope without data rather than an error;
// the client renders a placeholder state in that case.
func (s *Service) GetBnplInfo(ctx context.Context, userID string) (*domain.BnplInfoResponse, error) {
	account, err := s.repo.FindBnplAccountByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrBnplAccountNotFound) {
			return &domain.BnplInfoResponse{
				Success: false,
				Message: "No deferred payment enrollment found.",
			}, nil
		}
		return nil, fmt.Errorf("failed to load bnpl account: %w", err)
	}

	return &domain.BnplInfoResponse{
		Success: true,
		Message: "Deferred payment info retrieved.",
		Data: &domain.BnplInfoData{
			PaymentDay:      account.PaymentDay,
			PaymentAccount:  account.PaymentAccount,
			UsageAmount:     account.UsageAmount,
			CreditLimit:     account.CreditLimit,
			ApplicationDate: account.ApplicationDate.Format(applicationDateFormat),
			ApprovalStatus:  account.ApprovalStatus,
		},
	}, nil
}

func (s *Service) publishApprovalEvent(ctx context.Context, account *domain.BnplAccount, ram float64) {
	if s.eventProducer == nil {
		return
	}
	event := domain.ApplicationApprovedEvent{
		UserID:          account.UserID,
		PaymentDay:      account.PaymentDay,
		CreditLimit:     account.CreditLimit,
		RAM:             ram,
		ApplicationDate: account.ApplicationDate,
	}
	if err := s.eventProducer.Publish(ctx, bnplEventsExchange, domain.EventApplicationApproved, event); err != nil {
		// Enrollment already committed; the event stream is best-effort.
		log.Printf("ApplyBnpl: approval event publish failed for user %s: %v", account.UserID, err)
	}
}
