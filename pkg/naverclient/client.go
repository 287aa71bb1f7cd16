/**
 * @description
 * This package provides a client for the upstream Naver Open API used by the
 * news proxy: article search, and the TTS summary endpoint that serves
 * JSONP-wrapped article summaries.
 *
 * Key features:
 * - Authenticated search requests (X-Naver-Client-Id / X-Naver-Client-Secret).
 * - Summary lookup by news link: extracts the press code and article id from
 *   the link, calls the summary endpoint, and unwraps the JSONP payload.
 *
 * @dependencies
 * - context, encoding/json, fmt, io, net/http, net/url, regexp, strings, time:
 *   Standard Go libraries.
 */
package naverclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	searchURL          = "https://openapi.naver.com/v1/search/news.json"
	summaryURLTemplate = "https://tts.news.naver.com/article/%s/%s/summary?callback=callback&JSON"
)

// articleLinkPattern extracts the press code and article id from a Naver news
// link, e.g. https://n.news.naver.com/article/016/0002538484?sid=101.
var articleLinkPattern = regexp.MustCompile(`article/(\d+)/(\d+)`)

// ErrInvalidNewsLink is returned when a link does not carry a press code and
// article id.
var ErrInvalidNewsLink = fmt.Errorf("invalid news link format")

// Client is a client for the Naver news APIs.
type Client struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// NewClient creates a new Naver API client.
func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

// SearchItem is one raw search result from the Naver API.
type SearchItem struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originallink"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
}

// SearchResult is the Naver news search response.
type SearchResult struct {
	Total   int          `json:"total"`
	Start   int          `json:"start"`
	Display int          `json:"display"`
	Items   []SearchItem `json:"items"`
}

// Summary is the unwrapped payload of the article summary endpoint.
type Summary struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// SearchNews queries the news search API, newest articles first. display is
// the requested result count (the API caps it at 100).
func (c *Client) SearchNews(ctx context.Context, query string, display int) (*SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("display", fmt.Sprintf("%d", display))
	params.Set("start", "1")
	params.Set("sort", "date")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("news search returned status %d: %s", resp.StatusCode, string(body))
	}

	var result SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return &result, nil
}

// GetSummary fetches and unwraps the summary for a Naver news article link.
func (c *Client) GetSummary(ctx context.Context, newsLink string) (*Summary, error) {
	matches := articleLinkPattern.FindStringSubmatch(newsLink)
	if matches == nil {
		return nil, ErrInvalidNewsLink
	}
	pressCode, articleID := matches[1], matches[2]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf(summaryURLTemplate, pressCode, articleID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create summary request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("summary request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("summary endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary response: %w", err)
	}

	summary, err := unwrapJSONP(body)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// unwrapJSONP strips the `/**/callback( ... );` wrapper and parses the inner
// JSON. <br> tags in the summary text become newlines.
func unwrapJSONP(body []byte) (*Summary, error) {
	text := strings.TrimSpace(string(body))
	text = strings.TrimPrefix(text, "/**/")
	text = strings.TrimPrefix(text, "callback(")
	text = strings.TrimSuffix(text, ";")
	text = strings.TrimSuffix(text, ")")

	var summary Summary
	if err := json.Unmarshal([]byte(text), &summary); err != nil {
		return nil, fmt.Errorf("failed to parse summary payload: %w", err)
	}
	summary.Summary = strings.ReplaceAll(summary.Summary, "<br/>", "\n")
	summary.Summary = strings.ReplaceAll(summary.Summary, "<br>", "\n")
	return &summary, nil
}
