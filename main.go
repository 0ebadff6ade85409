// main.go - Entry point and dependency injection
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/tfeld/trackdb/internal/config"
	"github.com/tfeld/trackdb/internal/database"
	"github.com/tfeld/trackdb/internal/importer"
	"github.com/tfeld/trackdb/internal/storage"
	"github.com/tfeld/trackdb/internal/track"
	"github.com/tfeld/trackdb/internal/web"
)

type App struct {
	cfg      config.Config
	log      *logrus.Logger
	db       *database.SQLiteDB
	tracks   *track.Service
	importer *importer.Importer
	cron     *cron.Cron
	server   *http.Server
	shutdown chan os.Signal
}

func main() {
	app := &App{
		shutdown: make(chan os.Signal, 1),
	}

	if err := app.init(); err != nil {
		logrus.WithError(err).Fatal("failed to initialize app")
	}

	app.start()

	// Wait for shutdown signal
	signal.Notify(app.shutdown, os.Interrupt, syscall.SIGTERM)
	<-app.shutdown

	app.stop()
}

func (app *App) init() error {
	app.cfg = config.Load()

	app.log = logrus.New()
	if level, err := logrus.ParseLevel(app.cfg.LogLevel); err == nil {
		app.log.SetLevel(level)
	}

	if err := os.MkdirAll(app.cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	db, err := database.NewSQLiteDB(app.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	app.db = db

	store, err := storage.NewStore(app.cfg.DataDir)
	if err != nil {
		return err
	}

	app.tracks = track.NewService(app.db, store, app.log)

	app.importer, err = importer.New(app.cfg.ImportDir, app.tracks, app.log)
	if err != nil {
		return err
	}

	app.cron = cron.New()

	handler := web.NewHandler(app.db, app.tracks, app.importer, app.log)
	if err := handler.LoadTemplates(app.cfg.TemplateDir); err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	handler.RegisterRoutes(router)

	app.server = &http.Server{
		Addr:    app.cfg.Addr,
		Handler: router,
	}

	return nil
}

func (app *App) start() {
	app.cron.AddFunc(app.cfg.ImportSchedule, func() {
		if err := app.importer.Run(context.Background()); err != nil {
			app.log.WithError(err).Error("scheduled import failed")
		}
	})
	// Nightly reconcile: re-derive statistics from the stored files.
	app.cron.AddFunc("@daily", func() {
		if err := app.tracks.Recompute(context.Background()); err != nil {
			app.log.WithError(err).Error("statistics recompute failed")
		}
	})
	app.cron.Start()

	go func() {
		app.log.WithField("addr", app.cfg.Addr).Info("server starting")
		if err := app.server.ListenAndServe(); err != http.ErrServerClosed {
			app.log.WithError(err).Error("server error")
		}
	}()
}

func (app *App) stop() {
	app.log.Info("shutting down")

	app.cron.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.log.WithError(err).Error("server shutdown error")
	}

	if app.db != nil {
		app.db.Close()
	}

	app.log.Info("shutdown complete")
}
