package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hearthhq/hearth/internal/activity"
	"github.com/hearthhq/hearth/internal/auth"
	"github.com/hearthhq/hearth/internal/digest"
	"github.com/hearthhq/hearth/internal/models"
	"log/slog"
)

// ActivityService is the engine surface the HTTP layer consumes.
type ActivityService interface {
	FetchActivities(ctx context.Context, query models.ActivityQuery) ([]models.ActivitySummary, error)
	CountActivities(ctx context.Context, userID string) (models.ActivityCounts, error)
}

// ActivityHandler serves the unified feed, badge counts, and the digest.
type ActivityHandler struct {
	service    ActivityService
	summarizer digest.Summarizer
	cache      *FeedCache
	logger     *slog.Logger
}

// NewActivityHandler creates the feed handler.
func NewActivityHandler(service ActivityService, summarizer digest.Summarizer, cache *FeedCache, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service:    service,
		summarizer: summarizer,
		cache:      cache,
		logger:     logger,
	}
}

// GetActivities handles GET /api/activities
func (h *ActivityHandler) GetActivities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	query, err := parseActivityQuery(r, userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	query.Normalize()

	// Only plain pages are cached; time-bound and type-filtered queries go
	// straight to the engine.
	cacheable := query.Since == nil && len(query.Types) == 0
	cacheKey := FeedKey(query)

	if cacheable {
		if cached, hit := h.cache.GetFeed(cacheKey); hit {
			h.writeFeed(w, r, query, cached)
			return
		}
	}

	activities, err := h.service.FetchActivities(r.Context(), query)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	if cacheable {
		h.cache.SetFeed(cacheKey, activities)
	}

	h.writeFeed(w, r, query, activities)
}

// GetActivityCounts handles GET /api/activities/counts
func (h *ActivityHandler) GetActivityCounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if counts, hit := h.cache.GetCounts(userID); hit {
		h.writeJSON(w, r, counts)
		return
	}

	counts, err := h.service.CountActivities(r.Context(), userID)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	h.cache.SetCounts(userID, counts)
	h.writeJSON(w, r, counts)
}

// DigestResponse wraps the generated feed briefing.
type DigestResponse struct {
	Digest string `json:"digest"`
}

// GetDigest handles GET /api/activities/digest
func (h *ActivityHandler) GetDigest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	activities, err := h.service.FetchActivities(r.Context(), models.ActivityQuery{
		UserID:   userID,
		PageSize: models.MaxPageSize,
	})
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	summary, err := h.summarizer.Summarize(r.Context(), activities)
	if err != nil {
		h.logger.Error("digest generation failed",
			"error", err,
			"request_id", requestIDFrom(r.Context()),
		)
		http.Error(w, "Digest unavailable", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, r, DigestResponse{Digest: summary})
}

func (h *ActivityHandler) writeFeed(w http.ResponseWriter, r *http.Request, query models.ActivityQuery, activities []models.ActivitySummary) {
	h.writeJSON(w, r, models.ActivityResponse{
		Activities: activities,
		Page:       query.Page,
		PageSize:   query.PageSize,
		Count:      len(activities),
		HasMore:    len(activities) == query.PageSize,
	})
}

func (h *ActivityHandler) writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response",
			"error", err,
			"request_id", requestIDFrom(r.Context()),
		)
	}
}

// writeEngineError maps engine errors to HTTP statuses. The engine does not
// log; the boundary does, and it never masks a failure as an empty feed.
func (h *ActivityHandler) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := requestIDFrom(r.Context())

	var invalid *activity.InvalidQueryError
	if errors.As(err, &invalid) {
		http.Error(w, invalid.Error(), http.StatusBadRequest)
		return
	}

	var collErr *activity.CollectorError
	if errors.As(err, &collErr) {
		h.logger.Error("activity source failed",
			"source", collErr.Source,
			"error", collErr.Err,
			"request_id", requestID,
		)
		http.Error(w, "Activity feed unavailable", http.StatusBadGateway)
		return
	}

	h.logger.Error("activity aggregation failed", "error", err, "request_id", requestID)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
