package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/cafepos/internal/service/errtrack"
)

// ErrorsHandler exposes tracked failures.
type ErrorsHandler struct {
	tracker errtrack.Tracker
}

// NewErrorsHandler constructs the error listing handler.
func NewErrorsHandler(tracker errtrack.Tracker) *ErrorsHandler {
	return &ErrorsHandler{tracker: tracker}
}

// List returns tracked errors, newest first. Accepts ?source, ?since (RFC3339) and ?limit.
func (h *ErrorsHandler) List(c *gin.Context) {
	q := errtrack.Query{Source: c.Query("source"), Limit: 50}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		q.Limit = limit
	}
	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be RFC3339"})
			return
		}
		q.Since = since
	}

	entries, err := h.tracker.Query(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
