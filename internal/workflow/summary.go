/**
 * @description
 * This file builds the account summary shown on the BNPL home screen. The
 * account info and usage history are independent reads: they are fetched
 * concurrently and each section degrades on its own, so a failed info fetch
 * still leaves a populated history and vice versa.
 *
 * @dependencies
 * - internal/domain: For the API envelopes and derived-metric helpers.
 */

package workflow

import (
	"context"
	"log"
	"sync"

	"github.com/hanapay/bnpl-service/internal/domain"
)

// AccountSummary is the aggregated home-screen state. Enrolled is false when
// the info fetch failed or the user has no enrollment; Info is then the
// zero-value placeholder.
type AccountSummary struct {
	Enrolled bool
	Info     domain.BnplInfoData
	History  []domain.UsageItem
}

// AvailableAmount returns the remaining spend capacity.
func (s *AccountSummary) AvailableAmount() int64 {
	return s.Info.CreditLimit - s.Info.UsageAmount
}

// UsageFraction returns usage as a fraction of the limit, clamped to [0,1].
func (s *AccountSummary) UsageFraction() float64 {
	return domain.ClampUsageFraction(s.Info.UsageAmount, s.Info.CreditLimit)
}

// FetchAccountSummary loads account info and usage history concurrently.
// Neither fetch blocks or fails the other; errors are logged and the
// corresponding section falls back to its placeholder.
func FetchAccountSummary(ctx context.Context, api BnplAPI, userID string) *AccountSummary {
	summary := &AccountSummary{History: []domain.UsageItem{}}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		info, err := api.GetInfo(ctx, userID)
		if err != nil {
			log.Printf("summary: info fetch failed for user %s: %v", userID, err)
			return
		}
		if !info.Success || info.Data == nil {
			return
		}
		summary.Enrolled = true
		summary.Info = *info.Data
	}()

	go func() {
		defer wg.Done()
		history, err := api.GetUsageHistory(ctx, userID)
		if err != nil {
			log.Printf("summary: usage history fetch failed for user %s: %v", userID, err)
			return
		}
		if !history.Success {
			return
		}
		summary.History = history.UsageHistory
	}()

	wg.Wait()
	return summary
}
