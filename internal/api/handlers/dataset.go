package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bidding-trends/internal/api/models"
	"bidding-trends/internal/model"
)

// DatasetStatus handles GET /api/v1/dataset
func (h *Handler) DatasetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.status())
}

// ReloadDataset handles POST /api/v1/dataset/reload
func (h *Handler) ReloadDataset(c *gin.Context) {
	if h.reloader == nil {
		writeError(c, http.StatusNotImplemented, "RELOAD_FAILED", "reload is not configured", nil)
		return
	}
	if err := h.reloader.Reload(c.Request.Context()); err != nil {
		_ = c.Error(err)
		status := http.StatusInternalServerError
		details := map[string]interface{}{}
		var schemaErr *model.SchemaError
		if errors.As(err, &schemaErr) {
			status = http.StatusUnprocessableEntity
			details["record"] = schemaErr.Index
			details["field"] = schemaErr.Field
		}
		writeError(c, status, "RELOAD_FAILED", err.Error(), details)
		return
	}
	c.JSON(http.StatusOK, h.status())
}

func (h *Handler) status() models.DatasetResponse {
	ds := h.holder.Current()
	resp := models.DatasetResponse{Version: h.holder.Version()}
	if h.reloader != nil {
		resp.Source = h.reloader.SourceName()
	}
	if ds == nil {
		return resp
	}

	loadedAt := ds.LoadedAt()
	dups := ds.Duplicates()
	resp.Loaded = true
	resp.Records = ds.Len()
	resp.Resources = len(ds.Resources())
	resp.ResourceTypes = len(ds.ResourceTypes())
	resp.LoadedAt = &loadedAt
	resp.DuplicateKeys = len(dups)
	for i, d := range dups {
		if i == models.MaxDuplicatesListed {
			break
		}
		resp.Duplicates = append(resp.Duplicates, models.DuplicateInfo{
			ResourceType: d.Key.Type,
			ResourceName: d.Key.Name,
			Date:         d.Date,
			Hour:         d.Hour,
			Count:        d.Count,
		})
	}
	return resp
}
