/**
 * @description
 * This package provides a client for the bnpl-service REST API. It is the
 * programmatic counterpart of the mobile app's fetch wrappers: application
 * submission, account-info lookup, and usage-history lookup, each returning
 * the service's `{success, message, ...}` envelope.
 *
 * Key features:
 * - Treats any non-2xx status or network fault as a transport failure
 *   (domain.ErrTransport); envelope contents of failed responses are ignored.
 * - Carries an optional bearer token for authenticated deployments.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, net/http, net/url, time: Standard Go libraries.
 * - internal/domain: For the envelope models and error taxonomy.
 */
package bnplclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hanapay/bnpl-service/internal/domain"
)

// Client is a client for the BNPL API.
type Client struct {
	baseURL     string
	bearerToken string
	httpClient  *http.Client
}

// NewClient creates a new BNPL API client. token may be empty for deployments
// that do not require authentication.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		bearerToken: strings.TrimSpace(token),
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Apply submits a BNPL application. A transport failure returns an error; a
// delivered envelope is returned as-is, success or not, so the caller can
// surface the server's business message verbatim.
func (c *Client) Apply(ctx context.Context, req domain.BnplApplicationRequest) (*domain.BnplApplicationResponse, error) {
	var resp domain.BnplApplicationResponse
	if err := c.do(ctx, http.MethodPost, "/api/bnpl/apply", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetInfo fetches the account summary for a user.
func (c *Client) GetInfo(ctx context.Context, userID string) (*domain.BnplInfoResponse, error) {
	path := "/api/bnpl/info?userId=" + url.QueryEscape(userID)
	var resp domain.BnplInfoResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetUsageHistory fetches the recent usage list for a user.
func (c *Client) GetUsageHistory(ctx context.Context, userID string) (*domain.BnplUsageHistoryResponse, error) {
	path := "/api/bnpl/usage-history?userId=" + url.QueryEscape(userID)
	var resp domain.BnplUsageHistoryResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do is a helper to execute requests against the BNPL API.
func (c *Client) do(ctx context.Context, method, path string, body, target interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("%w: bnpl api base url is empty", domain.ErrTransport)
	}

	var reqBody *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(payload)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", domain.ErrTransport, resp.StatusCode)
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("%w: malformed response: %v", domain.ErrTransport, err)
		}
	}
	return nil
}
