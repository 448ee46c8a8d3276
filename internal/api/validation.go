package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hearthhq/hearth/internal/models"
)

// ValidationError represents a request parameter validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// parseActivityQuery builds an ActivityQuery from request parameters. The
// user id always comes from the authenticated session, never from the query
// string.
func parseActivityQuery(r *http.Request, userID string) (models.ActivityQuery, error) {
	query := models.ActivityQuery{
		UserID:      userID,
		CommunityID: r.URL.Query().Get("community_id"),
	}

	if raw := r.URL.Query().Get("section"); raw != "" {
		section, err := models.ParseSection(raw)
		if err != nil {
			return models.ActivityQuery{}, ValidationError{Field: "section", Message: err.Error()}
		}
		query.Section = &section
	}

	if raw := r.URL.Query()["types"]; len(raw) > 0 {
		for _, value := range raw {
			t := models.ActivityType(value)
			if !t.Valid() {
				return models.ActivityQuery{}, ValidationError{
					Field:   "types",
					Message: fmt.Sprintf("unknown activity type %q", value),
				}
			}
			query.Types = append(query.Types, t)
		}
	}

	if raw := r.URL.Query().Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.ActivityQuery{}, ValidationError{Field: "since", Message: "must be RFC3339"}
		}
		query.Since = &since
	}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return models.ActivityQuery{}, ValidationError{Field: "page", Message: "must be a positive integer"}
		}
		query.Page = page
	}

	if raw := r.URL.Query().Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return models.ActivityQuery{}, ValidationError{Field: "page_size", Message: "must be a positive integer"}
		}
		query.PageSize = size
	}

	return query, nil
}
