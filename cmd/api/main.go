package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"bidding-trends/internal/api"
	"bidding-trends/internal/config"
	"bidding-trends/internal/data"
	"bidding-trends/internal/dates"
	"bidding-trends/internal/logging"
	"bidding-trends/internal/metrics"
	"bidding-trends/internal/store"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("BIDS_CONFIG"), "path to YAML config (optional; env vars work alone)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	source, err := data.NewSource(cfg.Dataset)
	if err != nil {
		logrus.WithError(err).Fatal("invalid dataset source")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	holder := store.NewHolder()
	loader := data.NewLoader(source, holder, m)

	// A failed first load leaves the server up with DATASET_NOT_LOADED
	// until POST /api/v1/dataset/reload succeeds.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 5*time.Minute)
	if err := loader.Reload(loadCtx); err != nil {
		logrus.WithError(err).Warn("initial dataset load failed")
	}
	cancelLoad()

	router := api.NewRouter(api.Deps{
		Holder:   holder,
		Calendar: dates.NewCalendar(cfg.Calendar.MIC),
		Reloader: loader,
		Metrics:  m,
		Gatherer: reg,
		Server:   cfg.Server,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{"addr": srv.Addr, "source": source.Name()}).Info("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("server shutdown failed")
	}
	logrus.Info("server stopped")
}
