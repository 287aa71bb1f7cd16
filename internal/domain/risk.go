/**
 * @description
 * This file defines the models exchanged with the external risk-scoring (RAM)
 * service and the calibration constants of the credit policy built on top of
 * it. RAM (risk-adjusted margin) is the expected margin on a customer derived
 * from their default probability; the service computes it, this service only
 * applies the decision rule.
 */

package domain

// Calibration constants of the scoring model. These are fixed policy
// parameters, not user-configurable settings.
const (
	// RAMDecisionThreshold is the default-prediction threshold passed to the
	// scoring service.
	RAMDecisionThreshold = 0.5
	// RAMCostCoefficient is the risk-premium coefficient k (valid range on the
	// scoring side: 0.313 to 0.626).
	RAMCostCoefficient = 0.313
	// RAMApprovalCutoff is the minimum RAM at which an application is approved.
	RAMApprovalCutoff = 0.02
)

// CustomerRiskProfile is the immutable feature vector sent to the scoring
// service. It is built once per eligibility evaluation and never persisted.
type CustomerRiskProfile struct {
	CreditScore         int     `json:"credit_score"`
	Income              int64   `json:"income"`
	DebtRatio           float64 `json:"debt_ratio"`
	EmploymentYears     int     `json:"employment_years"`
	PaymentHistoryScore int     `json:"payment_history_score"`
	ExistingLoans       int     `json:"existing_loans"`
	Age                 int     `json:"age"`
	DelinquencyHistory  int     `json:"delinquency_history"`
}

// RiskScoreComponents is the breakdown returned alongside the RAM value.
type RiskScoreComponents struct {
	MDR                 float64 `json:"mdr"`
	PD                  float64 `json:"pd"`
	DefaultInterestRate float64 `json:"default_interest_rate,omitempty"`
	K                   float64 `json:"k"`
	LGD                 float64 `json:"lgd,omitempty"`
	RevenueComponent    float64 `json:"revenue_component"`
	LossComponent       float64 `json:"loss_component"`
}

// RiskScore is the computed risk-adjusted margin for one evaluation. It is
// owned by the call that produced it and is not cached.
type RiskScore struct {
	RAM            float64             `json:"ram"`
	RAMPercent     string              `json:"ram_percent"`
	Interpretation string              `json:"interpretation"`
	Components     RiskScoreComponents `json:"components"`
}

// EligibilityDecision is the outcome of applying the credit policy to a
// risk score.
type EligibilityDecision struct {
	Approved    bool    `json:"approved"`
	CreditLimit int64   `json:"creditLimit"`
	RAM         float64 `json:"ram"`
}
