package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bidding-trends/internal/api/models"
	"bidding-trends/internal/compare"
	"bidding-trends/internal/curve"
)

// GetCurves handles GET /api/v1/curves
//
// With hour set it returns that hour's curve; without it, the 24-hour day
// view with the submitting QSEs.
func (h *Handler) GetCurves(c *gin.Context) {
	var q models.CurvesQuery
	if !bindQuery(c, &q) {
		return
	}
	date, ok := parseDate(c, q.Date)
	if !ok {
		return
	}
	hour := 0
	if q.Hour != "" {
		if hour, ok = parseHour(c, q.Hour); !ok {
			return
		}
	}
	ds, ok := h.dataset(c)
	if !ok {
		return
	}

	if hour == 0 {
		view, err := compare.BuildDay(ds, q.ResourceType, q.ResourceName, date)
		if err != nil {
			writeQueryError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
		return
	}

	cv, err := curve.Extract(ds.Filter(q.ResourceType, q.ResourceName), date, hour)
	if err != nil {
		writeQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CurveResponse{
		ResourceType: q.ResourceType,
		ResourceName: q.ResourceName,
		Date:         date,
		Hour:         hour,
		Curve:        cv,
	})
}

// CompareYearOverYear handles GET /api/v1/compare/year-over-year
func (h *Handler) CompareYearOverYear(c *gin.Context) {
	var q models.DateQuery
	if !bindQuery(c, &q) {
		return
	}
	date, ok := parseDate(c, q.Date)
	if !ok {
		return
	}
	ds, ok := h.dataset(c)
	if !ok {
		return
	}

	view, found, err := compare.BuildYearOverYear(ds, q.ResourceType, q.ResourceName, date)
	if err != nil {
		writeQueryError(c, err)
		return
	}
	if !found {
		writeError(c, http.StatusNotFound, "NO_PRIOR_YEAR", "no delivery date one year earlier for this resource", map[string]interface{}{
			"date":       date.String(),
			"prior_year": date.AddMonths(-12).String(),
		})
		return
	}
	c.JSON(http.StatusOK, view)
}
