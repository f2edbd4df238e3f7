package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bidding-trends/internal/api/models"
	"bidding-trends/internal/compare"
	"bidding-trends/internal/dates"
	"bidding-trends/internal/model"
	"bidding-trends/internal/store"
)

// Reloader refreshes the dataset from its source.
type Reloader interface {
	Reload(ctx context.Context) error
	SourceName() string
}

// Handler serves the bid-curve queries. Each request works on the single
// snapshot it took from the holder at the start.
type Handler struct {
	holder   *store.Holder
	calendar *dates.Calendar
	reloader Reloader
}

// NewHandler creates a handler. calendar may be nil (weekends only);
// reloader may be nil, which disables POST /dataset/reload.
func NewHandler(holder *store.Holder, calendar *dates.Calendar, reloader Reloader) *Handler {
	if calendar == nil {
		calendar = dates.WeekdayCalendar()
	}
	return &Handler{holder: holder, calendar: calendar, reloader: reloader}
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:        "ok",
		DatasetLoaded: h.holder.Current() != nil,
		Version:       h.holder.Version(),
	})
}

func (h *Handler) dataset(c *gin.Context) (*store.Dataset, bool) {
	ds := h.holder.Current()
	if ds == nil {
		writeError(c, http.StatusServiceUnavailable, "DATASET_NOT_LOADED", "no dataset is loaded yet", nil)
		return nil, false
	}
	return ds, true
}

func writeError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// writeQueryError maps extraction errors onto the envelope.
func writeQueryError(c *gin.Context, err error) {
	var dup *model.DuplicateRecordError
	if errors.As(err, &dup) {
		writeError(c, http.StatusConflict, "DUPLICATE_RECORD", dup.Error(), map[string]interface{}{
			"resource_type": dup.Key.Type,
			"resource_name": dup.Key.Name,
			"date":          dup.Date.String(),
			"hour_ending":   dup.Hour,
			"count":         dup.Count,
		})
		return
	}
	_ = c.Error(err)
	writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), nil)
}

func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		writeError(c, http.StatusBadRequest, "MISSING_PARAM", fmt.Sprintf("invalid query: %v", err), nil)
		return false
	}
	return true
}

func parseDate(c *gin.Context, raw string) (model.Date, bool) {
	d, err := model.ParseDate(raw)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_DATE", err.Error(), map[string]interface{}{"date": raw})
		return model.Date{}, false
	}
	return d, true
}

func parseHour(c *gin.Context, raw string) (int, bool) {
	hour, err := strconv.Atoi(raw)
	if err != nil || hour < 1 || hour > model.HoursPerDay {
		writeError(c, http.StatusBadRequest, "INVALID_HOUR", "hour must be an integer in [1, 24]", map[string]interface{}{"hour": raw})
		return 0, false
	}
	return hour, true
}

func parseMode(c *gin.Context, raw string) (compare.Mode, bool) {
	mode, err := compare.ParseMode(raw)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_MODE", err.Error(), nil)
		return "", false
	}
	return mode, true
}
