// Package api wires the HTTP routes of the bid-curve explorer.
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"bidding-trends/internal/api/handlers"
	"bidding-trends/internal/api/middleware"
	"bidding-trends/internal/api/models"
	"bidding-trends/internal/config"
	"bidding-trends/internal/dates"
	"bidding-trends/internal/metrics"
	"bidding-trends/internal/store"
)

// Deps are the collaborators of the router. Only Holder is required.
type Deps struct {
	Holder   *store.Holder
	Calendar *dates.Calendar
	Reloader handlers.Reloader
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Server   config.ServerConfig
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(d.Server.CORSOrigins...))
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	if d.Metrics != nil {
		router.Use(middleware.Metrics(d.Metrics))
	}

	h := handlers.NewHandler(d.Holder, d.Calendar, d.Reloader)

	router.GET("/health", h.Health)
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1")
	api.Use(middleware.RateLimit(d.Server.RateLimit, d.Server.RateBurst))
	{
		api.GET("/resource-types", h.ListResourceTypes)
		api.GET("/resources", h.ListResources)

		api.GET("/dates", h.ListDates)
		api.GET("/dates/adjacent", h.AdjacentDate)
		api.GET("/pairs", h.ListPairs)

		api.GET("/curves", h.GetCurves)
		api.GET("/compare/year-over-year", h.CompareYearOverYear)

		api.GET("/dataset", h.DatasetStatus)
		api.POST("/dataset/reload", h.ReloadDataset)
	}

	serveStatic(router, d.Server.StaticDir)
	return router
}

// serveStatic serves a built front end from dir, if it exists, with
// index.html as the fallback for client-side routes.
func serveStatic(router *gin.Engine, dir string) {
	notFound := func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "NOT_FOUND", Message: "Not found"},
		})
	}

	if dir == "" {
		router.NoRoute(notFound)
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		logrus.WithField("static_dir", dir).Info("static directory not found, skipping static file serving")
		router.NoRoute(notFound)
		return
	}

	router.Static("/assets", filepath.Join(dir, "assets"))
	router.StaticFile("/favicon.ico", filepath.Join(dir, "favicon.ico"))
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			notFound(c)
			return
		}
		c.File(filepath.Join(dir, "index.html"))
	})
	logrus.WithField("static_dir", dir).Info("serving static files")
}
