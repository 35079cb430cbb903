package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maingk/setback-game/internal/config"
	"github.com/maingk/setback-game/internal/database"
	"github.com/maingk/setback-game/internal/handlers"
	"github.com/maingk/setback-game/internal/middleware"
	"github.com/maingk/setback-game/internal/models"
	"github.com/maingk/setback-game/internal/room"
	"github.com/maingk/setback-game/internal/tracing"
	"github.com/maingk/setback-game/pkg/websocket"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	log := logrus.New()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.WithError(err).Fatal("config")
	}
	if !cfg.IsDevelopment() {
		log.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	} else {
		log.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
	}

	shutdownTracing, err := tracing.InitTracer(context.Background(), tracing.Config{
		ServiceName:  tracing.ServiceName,
		Environment:  cfg.AppEnv,
		PrettyPrint:  cfg.IsDevelopment(),
		TracesExport: cfg.TracesExporter,
	})
	if err != nil {
		log.WithError(err).Fatal("tracing init")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.WithError(err).Warn("tracing shutdown")
		}
	}()

	db, err := database.OpenAndMigrate(cfg.DatabasePath, log)
	if err != nil {
		log.WithError(err).Fatal("db open/migrate")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.WithError(err).Warn("db close")
		}
	}()

	hubRef := websocket.NewHubRef(websocket.NewHub(log))
	go websocket.Supervise(hubRef, log, time.Second)

	rooms := room.NewRegistry(models.NewStore(db), log)
	api := handlers.NewAPI(rooms, db, hubRef.Get, cfg, log)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(otelgin.Middleware(tracing.ServiceName))
	r.Use(middleware.CORS(cfg))
	api.Register(r)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.Addr, "env": cfg.AppEnv, "debug_routes": cfg.DebugRoutes}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("shutdown signal received")
	case err := <-errCh:
		log.WithError(err).Error("server error")
	}

	if h, ok := hubRef.Get(); ok && h != nil {
		h.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
}
