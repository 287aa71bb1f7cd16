/**
 * @description
 * This file implements the credit-policy decision on top of the external
 * risk-scoring service: one scoring call with fixed calibration parameters,
 * followed by a pure threshold rule on the returned risk-adjusted margin.
 *
 * Key behaviors:
 * - RAM at or above the approval cutoff grants the fixed credit limit; below
 *   it grants nothing.
 * - A scoring outage or malformed response propagates as
 *   domain.ErrScoringUnavailable and is never converted into a decision.
 */

package app

import (
	"context"
	"log"

	"github.com/hanapay/bnpl-service/internal/domain"
)

// RiskScorer computes a risk-adjusted margin for a customer profile. It is
// implemented by riskclient.Client.
type RiskScorer interface {
	CalculateRAM(ctx context.Context, profile domain.CustomerRiskProfile, threshold, k float64) (*domain.RiskScore, error)
}

// EvaluateCreditLimit scores the profile and applies the approval rule. There
// is no retry: a failed scoring call surfaces to the caller, who must not
// assume a default decision.
func EvaluateCreditLimit(ctx context.Context, scorer RiskScorer, profile domain.CustomerRiskProfile) (domain.EligibilityDecision, error) {
	score, err := scorer.CalculateRAM(ctx, profile, domain.RAMDecisionThreshold, domain.RAMCostCoefficient)
	if err != nil {
		return domain.EligibilityDecision{}, err
	}

	decision := domain.EligibilityDecision{RAM: score.RAM}
	if score.RAM >= domain.RAMApprovalCutoff {
		decision.Approved = true
		decision.CreditLimit = domain.FixedCreditLimit
	}

	log.Printf("eligibility: ram=%.6f approved=%t limit=%d", score.RAM, decision.Approved, decision.CreditLimit)
	return decision, nil
}
