/**
 * @description
 * This file implements the news proxy used by the in-app finance news screen.
 * It forwards search queries to the Naver news API, keeps only articles that
 * support summary lookup, and caches search results in Redis to stay within
 * the upstream API quota.
 *
 * Key features:
 * - Search results cached per (query, display) pair with a short TTL.
 * - Upstream failures are folded into a success=false envelope so the screen
 *   degrades to an empty list instead of an error page.
 *
 * @dependencies
 * - redis/go-redis/v9: For the search result cache.
 * - pkg/naverclient: For the upstream news API.
 */

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hanapay/bnpl-service/internal/domain"
	"github.com/hanapay/bnpl-service/pkg/naverclient"
)

const (
	newsCacheTTL       = 5 * time.Minute
	newsCacheKeyPrefix = "bnpl:news"

	// Only articles hosted on the Naver news domain expose the summary API.
	summarizableLinkPrefix = "https://n.news.naver.com"
)

// NewsSource is the subset of the Naver client used by the news service.
type NewsSource interface {
	SearchNews(ctx context.Context, query string, display int) (*naverclient.SearchResult, error)
	GetSummary(ctx context.Context, newsLink string) (*naverclient.Summary, error)
}

// NewsService proxies and caches news searches and article summaries.
type NewsService struct {
	source NewsSource
	cache  redis.UniversalClient
}

// NewNewsService creates a news service. cache may be nil, in which case
// every search hits the upstream API.
func NewNewsService(source NewsSource, cache redis.UniversalClient) *NewsService {
	return &NewsService{source: source, cache: cache}
}

// SearchNews returns recent articles matching query. Articles whose link does
// not support summary lookup are dropped from the result.
func (n *NewsService) SearchNews(ctx context.Context, query string, display int) *domain.NewsResponse {
	query = strings.TrimSpace(query)
	if query == "" {
		return &domain.NewsResponse{Success: false, Message: "Search query is required."}
	}
	if display <= 0 || display > 100 {
		display = 10
	}

	cacheKey := fmt.Sprintf("%s:q=%s:d=%d", newsCacheKeyPrefix, query, display)
	if cached := n.cachedResponse(ctx, cacheKey); cached != nil {
		return cached
	}

	result, err := n.source.SearchNews(ctx, query, display)
	if err != nil {
		log.Printf("news: search failed for query %q: %v", query, err)
		return &domain.NewsResponse{Success: false, Message: "News search is temporarily unavailable."}
	}

	items := make([]domain.NewsItem, 0, len(result.Items))
	for _, item := range result.Items {
		if !strings.HasPrefix(item.Link, summarizableLinkPrefix) {
			continue
		}
		items = append(items, domain.NewsItem{
			Title:        item.Title,
			OriginalLink: item.OriginalLink,
			Link:         item.Link,
			Description:  item.Description,
			PubDate:      item.PubDate,
		})
	}

	response := &domain.NewsResponse{
		Success: true,
		Message: "News retrieved.",
		Data: &domain.NewsData{
			Total:   result.Total,
			Display: len(items),
			Items:   items,
		},
	}
	n.storeResponse(ctx, cacheKey, response)
	return response
}

// GetSummary returns the AI summary for a single article link.
func (n *NewsService) GetSummary(ctx context.Context, newsLink string) *domain.NewsSummaryResponse {
	summary, err := n.source.GetSummary(ctx, newsLink)
	if err != nil {
		if errors.Is(err, naverclient.ErrInvalidNewsLink) {
			return &domain.NewsSummaryResponse{Success: false, Message: "Unsupported news link format."}
		}
		log.Printf("news: summary failed for link %s: %v", newsLink, err)
		return &domain.NewsSummaryResponse{Success: false, Message: "Article summary is temporarily unavailable."}
	}

	return &domain.NewsSummaryResponse{
		Success: true,
		Message: "Summary retrieved.",
		Data: &domain.NewsSummaryData{
			Title:   summary.Title,
			Summary: summary.Summary,
		},
	}
}

func (n *NewsService) cachedResponse(ctx context.Context, key string) *domain.NewsResponse {
	if n.cache == nil {
		return nil
	}
	raw, err := n.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("news: cache read failed for %s: %v", key, err)
		}
		return nil
	}
	var response domain.NewsResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		log.Printf("news: dropping corrupt cache entry %s: %v", key, err)
		return nil
	}
	return &response
}

func (n *NewsService) storeResponse(ctx context.Context, key string, response *domain.NewsResponse) {
	if n.cache == nil {
		return
	}
	raw, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := n.cache.Set(ctx, key, raw, newsCacheTTL).Err(); err != nil {
		log.Printf("news: cache write failed for %s: %v", key, err)
	}
}
