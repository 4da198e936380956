package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/complytrack/complytrack/internal/domain/timeline"
	"github.com/complytrack/complytrack/pkg/errors"
	"github.com/complytrack/complytrack/pkg/types/common"
)

// TimelineHandler serves read access to generated work records.
type TimelineHandler struct {
	records timeline.Repository
}

// NewTimelineHandler wires the handler.
func NewTimelineHandler(records timeline.Repository) *TimelineHandler {
	return &TimelineHandler{records: records}
}

// List handles GET /records.  Query parameters narrow the listing:
// client_id, activity_id, financial_year, status, due_before, due_after,
// page, page_size.
func (h *TimelineHandler) List(c *gin.Context) {
	filter := timeline.ListFilter{
		ClientID:      common.ClientID(c.Query("client_id")),
		ActivityID:    common.ActivityID(c.Query("activity_id")),
		FinancialYear: c.Query("financial_year"),
		Status:        common.Status(c.Query("status")),
		Pagination:    parsePagination(c),
	}

	var err error
	if filter.DueBefore, err = parseDate(c.Query("due_before")); err != nil {
		respondError(c, err)
		return
	}
	if filter.DueAfter, err = parseDate(c.Query("due_after")); err != nil {
		respondError(c, err)
		return
	}

	records, err := h.records.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, records)
}

// CountByYear handles GET /records/count.  The financial_year query
// parameter is the year label, e.g. "2024-25".
func (h *TimelineHandler) CountByYear(c *gin.Context) {
	label := c.Query("financial_year")
	if label == "" {
		respondError(c, errors.InvalidParam("financial_year query parameter is required"))
		return
	}

	count, err := h.records.CountByFinancialYear(c.Request.Context(), label)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"financial_year": label, "count": count})
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, errors.Newf(errors.ErrCodeValidation, "date %q is not YYYY-MM-DD", s)
	}
	return t, nil
}
