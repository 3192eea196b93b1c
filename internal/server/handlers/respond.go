package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/mamadbah2/cafepos/internal/domain/models"
	"github.com/mamadbah2/cafepos/internal/locking"
	"github.com/mamadbah2/cafepos/internal/service/inventory"
	"github.com/mamadbah2/cafepos/internal/service/staff"
	"github.com/mamadbah2/cafepos/internal/service/timeaccounting"
)

const (
	dateLayout       = "2006-01-02"
	defaultRangeDays = 7
)

var errInvalidRange = errors.New("invalid date range")

// statusFor maps service error kinds to HTTP status codes.
func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, timeaccounting.ErrAlreadyClockedIn),
		errors.Is(err, timeaccounting.ErrNoOpenShift),
		errors.Is(err, models.ErrConflict),
		errors.Is(err, inventory.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, inventory.ErrInvalidRestock),
		errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, errInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, staff.ErrInvalidPIN):
		return http.StatusUnauthorized
	case errors.Is(err, locking.ErrLocked):
		return http.StatusLocked
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error body and attaches err to the context so the
// router middleware can track server failures.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := statusFor(err)

	body := gin.H{"error": err.Error()}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		body = gin.H{"error": "validation failed", "fields": fields}
	}

	var insufficient *inventory.InsufficientStockError
	if errors.As(err, &insufficient) {
		body["requested"] = insufficient.Requested
		body["available"] = insufficient.Available
	}

	if status == http.StatusInternalServerError {
		body["error"] = "internal error"
	}
	c.AbortWithStatusJSON(status, body)
}

// respondBindError answers a request whose body failed to bind.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		respondError(c, err)
		return
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

// parseTime accepts a calendar date in loc or an RFC3339 instant.
func parseTime(value string, loc *time.Location) (time.Time, bool, error) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation(dateLayout, value, loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%q is neither %s nor RFC3339", value, dateLayout)
	}
	return t, false, nil
}

// parseRange reads ?start and ?end as the half-open interval [start, end).
// A calendar date as end covers that whole day. Missing bounds default to the
// last seven days including today.
func parseRange(c *gin.Context, loc *time.Location, now time.Time) (time.Time, time.Time, error) {
	local := now.In(loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -defaultRangeDays)

	if raw := c.Query("start"); raw != "" {
		t, _, err := parseTime(raw, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start %v", errInvalidRange, err)
		}
		start = t
	}
	if raw := c.Query("end"); raw != "" {
		t, dateOnly, err := parseTime(raw, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end %v", errInvalidRange, err)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		end = t
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end must be after start", errInvalidRange)
	}
	return start, end, nil
}
