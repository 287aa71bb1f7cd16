package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hanapay/bnpl-service/internal/domain"
	"github.com/hanapay/bnpl-service/internal/store"
)

type mockRepository struct {
	accounts map[string]*domain.BnplAccount
	usage    map[string][]domain.UsageRecord

	existsErr error
	createErr error
	findErr   error
	listErr   error
	recordErr error

	createCalls int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		accounts: make(map[string]*domain.BnplAccount),
		usage:    make(map[string][]domain.UsageRecord),
	}
}

func (m *mockRepository) CreateBnplAccount(ctx context.Context, account *domain.BnplAccount) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.accounts[account.UserID]; ok {
		return store.ErrBnplAccountAlreadyExists
	}
	m.accounts[account.UserID] = account
	return nil
}

func (m *mockRepository) FindBnplAccountByUserID(ctx context.Context, userID string) (*domain.BnplAccount, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	account, ok := m.accounts[userID]
	if !ok {
		return nil, store.ErrBnplAccountNotFound
	}
	return account, nil
}

func (m *mockRepository) BnplAccountExists(ctx context.Context, userID string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.accounts[userID]
	return ok, nil
}

func (m *mockRepository) RecordUsage(ctx context.Context, record *domain.UsageRecord) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	account, ok := m.accounts[record.UserID]
	if !ok {
		return store.ErrBnplAccountNotFound
	}
	if record.Amount <= 0 {
		return store.ErrInvalidUsageAmount
	}
	if account.UsageAmount+record.Amount > account.CreditLimit {
		return store.ErrUsageExceedsLimit
	}
	account.UsageAmount += record.Amount
	m.usage[record.UserID] = append([]domain.UsageRecord{*record}, m.usage[record.UserID]...)
	return nil
}

func (m *mockRepository) ListUsageHistory(ctx context.Context, userID string, limit int) ([]domain.UsageRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	records := m.usage[userID]
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

type staticProfiles struct {
	err error
}

func (s *staticProfiles) RiskProfile(ctx context.Context, userID string) (domain.CustomerRiskProfile, error) {
	if s.err != nil {
		return domain.CustomerRiskProfile{}, s.err
	}
	return domain.CustomerRiskProfile{CreditScore: 720}, nil
}

type capturingPublisher struct {
	exchanges   []string
	routingKeys []string
	bodies      []interface{}
	err         error
}

func (c *capturingPublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	c.exchanges = append(c.exchanges, exchange)
	c.routingKeys = append(c.routingKeys, routingKey)
	c.bodies = append(c.bodies, body)
	return c.err
}

func (c *capturingPublisher) Close() {}

func newTestService(repo *mockRepository, scorer *fakeScorer, publisher *capturingPublisher) *Service {
	return NewService(repo, &staticProfiles{}, scorer, publisher)
}

func TestApplyBnplApprovalPersistsAndPublishes(t *testing.T) {
	repo := newMockRepository()
	publisher := &capturingPublisher{}
	service := newTestService(repo, &fakeScorer{ram: 0.03}, publisher)

	resp, err := service.ApplyBnpl(context.Background(), domain.BnplApplicationRequest{
		UserID:         "user-1",
		PaymentDay:     15,
		PaymentAccount: "110-234-567890",
	})
	if err != nil {
		t.Fatalf("ApplyBnpl returned error: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success envelope, got %+v", resp)
	}
	if resp.ApprovalStatus != domain.ApprovalStatusApproved {
		t.Fatalf("expected APPROVED status, got %q", resp.ApprovalStatus)
	}
	if resp.CreditLimit == nil || *resp.CreditLimit != 300000 {
		t.Fatalf("expected credit limit 300000, got %v", resp.CreditLimit)
	}

	account, ok := repo.accounts["user-1"]
	if !ok {
		t.Fatalf("expected account to be persisted")
	}
	if account.UsageAmount != 0 || account.CreditLimit != 300000 {
		t.Fatalf("unexpected persisted account: %+v", account)
	}
	if account.ApprovalStatus != domain.ApprovalStatusApproved {
		t.Fatalf("expected persisted status APPROVED, got %q", account.ApprovalStatus)
	}

	if len(publisher.routingKeys) != 1 || publisher.routingKeys[0] != domain.EventApplicationApproved {
		t.Fatalf("expected one approval event, got %v", publisher.routingKeys)
	}
	if publisher.exchanges[0] != "bnpl_events" {
		t.Fatalf("expected bnpl_events exchange, got %q", publisher.exchanges[0])
	}
}

func TestApplyBnplDenialPersistsNothing(t *testing.T) {
	repo := newMockRepository()
	publisher := &capturingPublisher{}
	service := newTestService(repo, &fakeScorer{ram: 0.0199}, publisher)

	resp, err := service.ApplyBnpl(context.Background(), domain.BnplApplicationRequest{
		UserID:         "user-1",
		PaymentDay:     5,
		PaymentAccount: "110-234-567890",
	})
	if err != nil {
		t.Fatalf("ApplyBnpl returned error: %v", err)
	}
	if resp.Success {
		t.Fatalf("expected denial envelope, got %+v", resp)
	}
	if resp.ApprovalStatus != domain.ApprovalStatusRejected {
		t.Fatalf("expected REJECTED status, got %q", resp.ApprovalStatus)
	}
	if resp.CreditLimit == nil || *resp.CreditLimit != 0 {
		t.Fatalf("expected zero credit limit on denial, got %v", resp.CreditLimit)
	}
	if repo.createCalls != 0 {
		t.Fatalf("expected nothing persisted for a denial")
	}
	if len(publisher.routingKeys) != 0 {
		t.Fatalf("expected no events on denial, got %v", publisher.routingKeys)
	}
}

func TestApplyBnplDeniedUserCanReapply(t *testing.T) {
	repo := newMockRepository()
	scorer := &fakeScorer{ram: 0.01}
	service := newTestService(repo, scorer, &capturingPublisher{})

	req := domain.BnplApplicationRequest{UserID: "user-1", PaymentDay: 25, PaymentAccount: "110-234-567890"}
	if _, err := service.ApplyBnpl(context.Background(), req); err != nil {
		t.Fatalf("first apply returned error: %v", err)
	}

	scorer.ram = 0.03
	resp, err := service.ApplyBnpl(context.Background(), req)
	if err != nil {
		t.Fatalf("second apply returned error: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected approval on re-application, got %+v", resp)
	}
}

func TestApplyBnplRejectsInvalidPaymentDay(t *testing.T) {
	repo := newMockRepository()
	scorer := &fakeScorer{ram: 0.03}
	service := newTestService(repo, scorer, &capturingPublisher{})

	resp, err := service.ApplyBnpl(context.Background(), domain.BnplApplicationRequest{
		UserID:         "user-1",
		PaymentDay:     10,
		PaymentAccount: "110-234-567890",
	})
	if err != nil {
		t.Fatalf("ApplyBnpl returned error: %v", err)
	}
	if resp.Success {
		t.Fatalf("expected rejection for payment day 10")
	}
	if scorer.calls != 0 {
		t.Fatalf("expected no scoring call for invalid payment day, got %d", scorer.calls)
	}
}

func TestApplyBnplDuplicateEnrollment(t *testing.T) {
	repo := newMockRepository()
	repo.accounts["user-1"] = &domain.BnplAccount{UserID: "user-1", CreditLimit: 300000}
	scorer := &fakeScorer{ram: 0.03}
	service := newTestService(repo, scorer, &capturingPublisher{})

	resp, err := service.ApplyBnpl(context.Background(), domain.BnplApplicationRequest{
		UserID:         "user-1",
		PaymentDay:     15,
		PaymentAccount: "110-234-567890",
	})
	if err != nil {
		t.Fatalf("ApplyBnpl returned error: %v", err)
	}
	if resp.Success {
		t.Fatalf("expected duplicate enrollment to be refused")
	}
	if scorer.calls != 0 {
		t.Fatalf("expected no scoring call for duplicate enrollment, got %d", scorer.calls)
	}
}

func TestApplyBnplScoringOutagePropagates(t *testing.T) {
	repo := newMockRepository()
	scorer := &fakeScorer{err: fmt.Errorf("%w: status 503", domain.ErrScoringUnavailable)}
	service := newTestService(repo, scorer, &capturingPublisher{})

	_, err := service.ApplyBnpl(context.Background(), domain.BnplApplicationRequest{
		UserID:         "user-1",
		PaymentDay:     15,
		PaymentAccount: "110-234-567890",
	})
	if !errors.Is(err, domain.ErrScoringUnavailable) {
		t.Fatalf("expected ErrScoringUnavailable, got %v", err)
	}
	if repo.createCalls != 0 {
		t.Fatalf("expected nothing persisted on scoring outage")
	}
}

func TestApplyBnplSurvivesPublishFailure(t *testing.T) {
	repo := newMockRepository()
	publisher := &capturingPublisher{err: errors.New("broker unavailable")}
	service := newTestService(repo, &fakeScorer{ram: 0.03}, publisher)

	resp, err := service.ApplyBnpl(context.Background(), domain.BnplApplicationRequest{
		UserID:         "user-1",
		PaymentDay:     15,
		PaymentAccount: "110-234-567890",
	})
	if err != nil {
		t.Fatalf("ApplyBnpl returned error: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected approval despite publish failure, got %+v", resp)
	}
	if _, ok := repo.accounts["user-1"]; !ok {
		t.Fatalf("expected account to stay persisted")
	}
}

func TestGetBnplInfoFormatsApplicationDate(t *testing.T) {
	repo := newMockRepository()
	repo.accounts["user-1"] = &domain.BnplAccount{
		UserID:          "user-1",
		PaymentDay:      15,
		PaymentAccount:  "110-234-567890",
		UsageAmount:     120000,
		CreditLimit:     300000,
		ApplicationDate: time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC),
		ApprovalStatus:  domain.ApprovalStatusApproved,
	}
	service := newTestService(repo, &fakeScorer{}, &capturingPublisher{})

	resp, err := service.GetBnplInfo(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetBnplInfo returned error: %v", err)
	}
	if !resp.Success || resp.Data == nil {
		t.Fatalf("expected populated info envelope, got %+v", resp)
	}
	if resp.Data.ApplicationDate != "2026-08-01" {
		t.Fatalf("expected application date 2026-08-01, got %q", resp.Data.ApplicationDate)
	}
}

func TestGetBnplInfoNoEnrollment(t *testing.T) {
	service := newTestService(newMockRepository(), &fakeScorer{}, &capturingPublisher{})

	resp, err := service.GetBnplInfo(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetBnplInfo returned error: %v", err)
	}
	if resp.Success {
		t.Fatalf("expected success=false for missing enrollment")
	}
	if resp.Data != nil {
		t.Fatalf("expected no data for missing enrollment, got %+v", resp.Data)
	}
}

func TestGetUsageHistoryFormatsDates(t *testing.T) {
	repo := newMockRepository()
	repo.usage["user-1"] = []domain.UsageRecord{
		{UserID: "user-1", UsageDate: time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC), MerchantName: "편의점", Amount: 4500},
		{UserID: "user-1", UsageDate: time.Date(2026, 8, 3, 11, 0, 0, 0, time.UTC), MerchantName: "서점", Amount: 32000},
	}
	service := newTestService(repo, &fakeScorer{}, &capturingPublisher{})

	resp, err := service.GetUsageHistory(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetUsageHistory returned error: %v", err)
	}
	if len(resp.UsageHistory) != 2 {
		t.Fatalf("expected 2 items, got %d", len(resp.UsageHistory))
	}
	if resp.UsageHistory[0].UsageDate != "08.20" {
		t.Fatalf("expected usage date 08.20, got %q", resp.UsageHistory[0].UsageDate)
	}
	if resp.UsageHistory[1].UsageDate != "08.03" {
		t.Fatalf("expected usage date 08.03, got %q", resp.UsageHistory[1].UsageDate)
	}
}
