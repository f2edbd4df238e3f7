package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bidding-trends/internal/api/models"
	"bidding-trends/internal/compare"
	"bidding-trends/internal/model"
)

// ListDates handles GET /api/v1/dates
func (h *Handler) ListDates(c *gin.Context) {
	var q models.DatesQuery
	if !bindQuery(c, &q) {
		return
	}
	mode, ok := parseMode(c, q.Mode)
	if !ok {
		return
	}
	ds, ok := h.dataset(c)
	if !ok {
		return
	}

	out := h.calendar.DescribeIndex(compare.Dates(ds, q.ResourceType, q.ResourceName, mode))
	c.JSON(http.StatusOK, models.DatesResponse{
		ResourceType: q.ResourceType,
		ResourceName: q.ResourceName,
		Mode:         string(mode),
		Dates:        out,
		Count:        len(out),
	})
}

// AdjacentDate handles GET /api/v1/dates/adjacent
func (h *Handler) AdjacentDate(c *gin.Context) {
	var q models.AdjacentQuery
	if !bindQuery(c, &q) {
		return
	}
	current, ok := parseDate(c, q.Date)
	if !ok {
		return
	}
	dir, err := model.ParseDirection(q.Direction)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_DIRECTION", err.Error(), nil)
		return
	}
	mode, ok := parseMode(c, q.Mode)
	if !ok {
		return
	}
	ds, ok := h.dataset(c)
	if !ok {
		return
	}

	next := compare.Step(ds, q.ResourceType, q.ResourceName, current, dir, mode)
	c.JSON(http.StatusOK, models.AdjacentResponse{
		ResourceType: q.ResourceType,
		ResourceName: q.ResourceName,
		Mode:         string(mode),
		Direction:    dir,
		From:         current,
		Date:         next,
		Moved:        !next.Equal(current),
	})
}

// ListPairs handles GET /api/v1/pairs
func (h *Handler) ListPairs(c *gin.Context) {
	var q models.ResourceQuery
	if !bindQuery(c, &q) {
		return
	}
	ds, ok := h.dataset(c)
	if !ok {
		return
	}
	pairs := ds.YearPairs(q.ResourceType, q.ResourceName).Pairs()
	c.JSON(http.StatusOK, models.PairsResponse{
		ResourceType: q.ResourceType,
		ResourceName: q.ResourceName,
		Pairs:        pairs,
		Count:        len(pairs),
	})
}
