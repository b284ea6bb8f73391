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

	"tax-credit-model/internal/api"
	"tax-credit-model/internal/config"
	"tax-credit-model/internal/grid"
	"tax-credit-model/internal/ingest"
	"tax-credit-model/internal/logging"
	"tax-credit-model/internal/simulation"
	"tax-credit-model/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("CONFIG_FILE"), "Path to YAML config (optional)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := store.Open(ctx, cfg.Storage.StoreOptions(), log)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer s.Close()

	g := grid.NewMemoryGrid()
	job := ingest.NewJob(cfg.Grid.DataDir, g, log)
	if _, err := job.RunOnce(ctx); err != nil {
		log.WithError(err).Warn("initial ingest failed")
	}
	if !cfg.Ingest.Disabled {
		if err := job.Start(ctx, cfg.Ingest.Schedule); err != nil {
			log.WithError(err).Fatal("failed to start ingest scheduler")
		}
		defer job.Stop()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Deps{
		Config: cfg,
		Store:  s,
		Grid:   g,
		Engine: simulation.New(s, simulation.WithLogger(log)),
		Log:    log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithFields(logrus.Fields{
			"addr":    srv.Addr,
			"storage": cfg.Storage.Driver,
			"grid":    g.Stats(),
		}).Info("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
