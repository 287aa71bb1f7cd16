/**
 * @description
 * This package provides a client for the external risk-scoring (RAM) service.
 * It encapsulates the logic for calling the scoring API: computing the
 * risk-adjusted margin for a customer feature vector and fetching the sample
 * profile the scoring team publishes for integration testing.
 *
 * Key features:
 * - Manages the scoring service base URL and request timeouts.
 * - Distinguishes transport/malformed-response failures (ErrScoringUnavailable)
 *   from valid responses, so callers never mistake an outage for a denial.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, io, net/http, time: Standard Go libraries.
 * - internal/domain: For the risk profile and score models.
 */
package riskclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/hanapay/bnpl-service/internal/domain"
)

// Client is a client for the risk-scoring service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new risk-scoring client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ramRequest is the payload of POST /api/v1/ram/.
type ramRequest struct {
	CustomerData domain.CustomerRiskProfile `json:"customer_data"`
	Threshold    float64                    `json:"threshold"`
	K            float64                    `json:"k"`
}

// ramResponse is the envelope returned by the scoring service.
type ramResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    *domain.RiskScore `json:"data"`
}

// SampleData is the fixture profile served by GET /api/v1/sample-data/.
type SampleData struct {
	CustomerData domain.CustomerRiskProfile `json:"customer_data"`
	Threshold    float64                    `json:"threshold"`
	Description  json.RawMessage            `json:"description"`
}

type sampleDataResponse struct {
	Success bool        `json:"success"`
	Data    *SampleData `json:"data"`
}

// CalculateRAM computes the risk-adjusted margin for a customer profile using
// the given decision threshold and cost coefficient k. Any transport failure,
// non-2xx status, or malformed envelope is reported as ErrScoringUnavailable.
func (c *Client) CalculateRAM(ctx context.Context, profile domain.CustomerRiskProfile, threshold, k float64) (*domain.RiskScore, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: scoring service base url is empty", domain.ErrScoringUnavailable)
	}

	payload := ramRequest{CustomerData: profile, Threshold: threshold, K: k}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ram request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/ram/", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create ram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrScoringUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		log.Printf("riskclient: scoring service returned status %d: %s", resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("%w: status %d", domain.ErrScoringUnavailable, resp.StatusCode)
	}

	var envelope ramResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", domain.ErrScoringUnavailable, err)
	}
	if !envelope.Success || envelope.Data == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrScoringUnavailable, envelope.Message)
	}

	return envelope.Data, nil
}

// GetSampleData fetches the published sample customer profile.
func (c *Client) GetSampleData(ctx context.Context) (*SampleData, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: scoring service base url is empty", domain.ErrScoringUnavailable)
	}

	url := fmt.Sprintf("%s/api/v1/sample-data/", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create sample-data request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrScoringUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", domain.ErrScoringUnavailable, resp.StatusCode)
	}

	var envelope sampleDataResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", domain.ErrScoringUnavailable, err)
	}
	if !envelope.Success || envelope.Data == nil {
		return nil, fmt.Errorf("%w: empty sample-data response", domain.ErrScoringUnavailable)
	}

	return envelope.Data, nil
}
