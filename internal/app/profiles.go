/**
 * @description
 * This file implements the RiskProfileProvider used by the enrollment flow.
 * The scoring service publishes a reference customer profile; until the
 * service is connected to a live credit-bureau feed, every applicant is
 * evaluated against that profile fetched at application time.
 *
 * @dependencies
 * - pkg/riskclient: For the sample-data endpoint of the scoring service.
 */

package app

import (
	"context"
	"fmt"

	"github.com/hanapay/bnpl-service/internal/domain"
	"github.com/hanapay/bnpl-service/pkg/riskclient"
)

// SampleProfileProvider sources the applicant's risk profile from the scoring
// service's published sample dataset.
type SampleProfileProvider struct {
	client *riskclient.Client
}

// NewSampleProfileProvider creates a provider backed by the given client.
func NewSampleProfileProvider(client *riskclient.Client) *SampleProfileProvider {
	return &SampleProfileProvider{client: client}
}

// RiskProfile fetches the reference profile. A scoring-service outage here is
// reported the same way as a scoring failure so callers treat it as an
// availability problem, not a denial.
func (p *SampleProfileProvider) RiskProfile(ctx context.Context, userID string) (domain.CustomerRiskProfile, error) {
	sample, err := p.client.GetSampleData(ctx)
	if err != nil {
		return domain.CustomerRiskProfile{}, fmt.Errorf("failed to fetch risk profile for user %s: %w", userID, err)
	}
	return sample.CustomerData, nil
}
