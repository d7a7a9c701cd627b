// launching the server, model client, kafka notifier and cleanup worker
package appServer

import (
	"context"
	"crypto/tls"
	"log"

	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/gradphoto/config"
	"github.com/ds124wfegd/gradphoto/internal/database"
	"github.com/ds124wfegd/gradphoto/internal/pkg/compositor"
	"github.com/ds124wfegd/gradphoto/internal/pkg/generation"
	"github.com/ds124wfegd/gradphoto/internal/pkg/kafka"
	"github.com/ds124wfegd/gradphoto/internal/service"
	"github.com/ds124wfegd/gradphoto/internal/transport"
	"github.com/ds124wfegd/gradphoto/internal/worker"
	"github.com/ds124wfegd/gradphoto/internal/workflow"
	"github.com/gin-gonic/gin"

	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(new(logrus.JSONFormatter))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	generator, err := generation.NewGeminiGenerator(ctx, cfg.Generation.APIKey, cfg.Generation.Model, cfg.Generation.Timeout)
	if err != nil {
		logrus.Fatalf("Cannot create model client: %v", err)
	}

	textCompositor, err := compositor.NewTextCompositor()
	if err != nil {
		logrus.Fatalf("Cannot load caption font: %v", err)
	}

	var notifier kafka.Notifier
	if cfg.Kafka.Enabled {
		notifier = kafka.NewNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer notifier.Close()
	}

	newMachine := func(sessionID string) *workflow.Machine {
		opts := workflow.Options{
			SessionID:        sessionID,
			DefaultCaption:   cfg.Workflow.DefaultCaption,
			ProgressMessages: cfg.Workflow.ProgressMessages,
			ProgressInterval: cfg.Workflow.ProgressInterval,
			ModelCaption:     cfg.Generation.ModelCaption,
		}
		if notifier != nil {
			opts.Notifier = notifier
		}
		return workflow.NewMachine(generator, textCompositor, opts)
	}

	sessionRepo := database.NewSessionRepository()
	sessionService := service.NewSessionService(sessionRepo, newMachine, cfg.Workflow.MaxUploadBytes)
	sessionHandler := transport.NewSessionHandler(sessionService)

	cleanupWorker := worker.NewSessionCleanupWorker(sessionService, cfg.Workflow.CleanupInterval, cfg.Workflow.SessionTTL)
	go cleanupWorker.Start(ctx)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(sessionHandler, cfg.Workflow.MaxUploadBytes)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.WithField("port", cfg.Server.Port).Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}

	// in-flight attempts publish before the deferred notifier.Close
	closed, err := sessionService.CloseAll(shutdownCtx)
	if err != nil {
		logrus.Errorf("error occured while closing sessions: %s", err.Error())
	}
	logrus.Infof("Closed %d sessions", closed)
}
