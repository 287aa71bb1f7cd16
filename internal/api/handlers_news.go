/**
 * @description
 * This file contains the HTTP handlers for the news proxy endpoints. Upstream
 * failures are folded into success=false envelopes with HTTP 200 so the news
 * screen degrades gracefully.
 *
 * @dependencies
 * - net/http, strconv: Standard Go libraries.
 * - internal/app: For the news service.
 */

package api

import (
	"net/http"
	"strconv"
	"strings"
)

const defaultNewsDisplay = 10

// SearchNewsHandler handles GET /api/news.
func (h *BnplHandlers) SearchNewsHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeEnvelope(w, http.StatusBadRequest, "Search query is required.")
		return
	}

	display := defaultNewsDisplay
	if raw := r.URL.Query().Get("display"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			display = parsed
		}
	}

	writeJSON(w, http.StatusOK, h.news.SearchNews(r.Context(), query, display))
}

// GetNewsSummaryHandler handles GET /api/news/summary.
func (h *BnplHandlers) GetNewsSummaryHandler(w http.ResponseWriter, r *http.Request) {
	link := strings.TrimSpace(r.URL.Query().Get("link"))
	if link == "" {
		writeEnvelope(w, http.StatusBadRequest, "News link is required.")
		return
	}

	writeJSON(w, http.StatusOK, h.news.GetSummary(r.Context(), link))
}
