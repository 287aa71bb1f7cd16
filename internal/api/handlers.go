/**
 * @description
 * This file contains the HTTP handlers for the BNPL endpoints. Handlers parse
 * incoming requests, call the application service, and write the response
 * envelope. They act as the bridge between the web layer and the business
 * logic layer.
 *
 * Key features:
 * - Every response uses the `{success, message, ...}` envelope; handler-level
 *   errors never leak internals.
 * - A scoring-service outage surfaces as 502, never as a denial.
 * - The apply endpoint is rate limited per user via the Redis fixed-window
 *   limiter.
 *
 * @dependencies
 * - encoding/json, errors, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain: For service logic and models.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hanapay/bnpl-service/internal/app"
	"github.com/hanapay/bnpl-service/internal/domain"
)

// BnplHandlers holds the application services that handlers use.
type BnplHandlers struct {
	service *app.Service
	news    *app.NewsService
	limiter *app.RedisRateLimiter

	applyRateLimit  int
	applyRateWindow time.Duration
}

// NewBnplHandlers creates a new handler set. limiter may be nil to disable
// rate limiting.
func NewBnplHandlers(service *app.Service, news *app.NewsService, limiter *app.RedisRateLimiter, applyRateLimit int, applyRateWindow time.Duration) *BnplHandlers {
	return &BnplHandlers{
		service:         service,
		news:            news,
		limiter:         limiter,
		applyRateLimit:  applyRateLimit,
		applyRateWindow: applyRateWindow,
	}
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("level=error component=api msg=\"failed to encode response\" err=%v", err)
	}
}

func writeEnvelope(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// requestUserID resolves the user id for a request: the explicit query/body
// value when present, otherwise the authenticated token subject. When both are
// present they must match.
func requestUserID(r *http.Request, explicit string) (string, bool) {
	explicit = strings.TrimSpace(explicit)
	subject, authed := GetUserID(r.Context())
	if explicit == "" {
		return subject, authed
	}
	if authed && subject != explicit {
		return "", false
	}
	return explicit, true
}

// ApplyBnplHandler handles POST /api/bnpl/apply.
func (h *BnplHandlers) ApplyBnplHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.BnplApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	userID, ok := requestUserID(r, req.UserID)
	if !ok || userID == "" {
		writeEnvelope(w, http.StatusBadRequest, "User id is required.")
		return
	}
	req.UserID = userID

	if strings.TrimSpace(req.PaymentAccount) == "" {
		writeEnvelope(w, http.StatusBadRequest, "Payment account is required.")
		return
	}
	if req.PaymentDay == 0 {
		writeEnvelope(w, http.StatusBadRequest, "Payment day is required.")
		return
	}

	if h.limiter != nil {
		count, retryAfter, err := h.limiter.ConsumeRateLimit(r.Context(), "apply", userID, h.applyRateLimit, h.applyRateWindow)
		if err != nil {
			// Limiter outage must not block enrollment.
			log.Printf("level=warn component=api endpoint=apply msg=\"rate limiter unavailable\" err=%v", err)
		} else if h.applyRateLimit > 0 && count > h.applyRateLimit {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeEnvelope(w, http.StatusTooManyRequests, "Too many application attempts. Please try again later.")
			return
		}
	}

	resp, err := h.service.ApplyBnpl(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrScoringUnavailable) {
			log.Printf("level=warn component=api endpoint=apply outcome=unavailable user_id=%s err=%v", userID, err)
			writeEnvelope(w, http.StatusBadGateway, "Credit evaluation is temporarily unavailable. Please try again later.")
			return
		}
		log.Printf("level=error component=api endpoint=apply user_id=%s err=%v", userID, err)
		writeEnvelope(w, http.StatusInternalServerError, "Failed to process application.")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetBnplInfoHandler handles GET /api/bnpl/info.
func (h *BnplHandlers) GetBnplInfoHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r, r.URL.Query().Get("userId"))
	if !ok || userID == "" {
		writeEnvelope(w, http.StatusBadRequest, "User id is required.")
		return
	}

	resp, err := h.service.GetBnplInfo(r.Context(), userID)
	if err != nil {
		log.Printf("level=error component=api endpoint=info user_id=%s err=%v", userID, err)
		writeEnvelope(w, http.StatusInternalServerError, "Failed to load deferred payment info.")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetUsageHistoryHandler handles GET /api/bnpl/usage-history.
func (h *BnplHandlers) GetUsageHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r, r.URL.Query().Get("userId"))
	if !ok || userID == "" {
		writeEnvelope(w, http.StatusBadRequest, "User id is required.")
		return
	}

	resp, err := h.service.GetUsageHistory(r.Context(), userID)
	if err != nil {
		log.Printf("level=error component=api endpoint=usage_history user_id=%s err=%v", userID, err)
		writeEnvelope(w, http.StatusInternalServerError, "Failed to load usage history.")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
