package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bidding-trends/internal/api/models"
)

// ListResourceTypes handles GET /api/v1/resource-types
func (h *Handler) ListResourceTypes(c *gin.Context) {
	ds, ok := h.dataset(c)
	if !ok {
		return
	}
	types := ds.ResourceTypes()
	c.JSON(http.StatusOK, models.ResourceTypesResponse{ResourceTypes: types, Count: len(types)})
}

// ListResources handles GET /api/v1/resources
func (h *Handler) ListResources(c *gin.Context) {
	var q models.ResourceTypeQuery
	if !bindQuery(c, &q) {
		return
	}
	ds, ok := h.dataset(c)
	if !ok {
		return
	}
	names := ds.ResourceNames(q.ResourceType)
	c.JSON(http.StatusOK, models.ResourcesResponse{
		ResourceType: q.ResourceType,
		Resources:    names,
		Count:        len(names),
	})
}
