package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"labelflow/internal/config"
	"labelflow/internal/email"
	"labelflow/internal/expense"
	expenseservice "labelflow/internal/expense/service"
	"labelflow/internal/infrastructure/llm"
	"labelflow/internal/infrastructure/logger"
	"labelflow/internal/infrastructure/mailer"
	"labelflow/internal/infrastructure/mysql"
	"labelflow/internal/infrastructure/storage"
	"labelflow/internal/jobs"
	"labelflow/internal/order"
	"labelflow/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	if err := mysql.Migrate(ctx, db); err != nil {
		zapLogger.Fatal("running migrations", zap.Error(err))
	}

	store, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		zapLogger.Fatal("creating object store", zap.Error(err))
	}

	var classifier expenseservice.Classifier
	if rc, err := llm.NewReceiptClassifier(ctx, cfg.GenAI); err != nil {
		zapLogger.Warn("receipt classification disabled", zap.Error(err))
	} else {
		classifier = rc
	}

	transport := mailer.NewSMTPMailer(cfg.Mail, zapLogger)

	emailModule := email.NewModule(db, cfg, store, transport, zapLogger)
	orderModule := order.NewModule(db, cfg, store, emailModule.Dispatcher, emailModule.Queue, zapLogger)
	expenseModule := expense.NewModule(db, store, classifier, zapLogger)

	scheduler := jobs.NewScheduler(zapLogger)
	queueProcessor := emailModule.NewQueueProcessor(orderModule.Stages, cfg, zapLogger)
	if err := scheduler.Register(cfg.Jobs.QueueSchedule, jobs.NewEmailQueueJob(queueProcessor, zapLogger)); err != nil {
		zapLogger.Fatal("registering job", zap.Error(err))
	}
	if err := scheduler.Register(cfg.Jobs.CleanupSchedule, jobs.NewAttachmentCleanupJob(orderModule.Cleanup, zapLogger)); err != nil {
		zapLogger.Fatal("registering job", zap.Error(err))
	}

	router := server.NewRouter(server.Controllers{
		Orders:    orderModule.OrderController,
		Stages:    orderModule.StageController,
		Expenses:  expenseModule.Controller,
		SendEmail: emailModule.Controller,
	}, server.RouterConfig{
		JWTSecret:   []byte(cfg.Auth.JWTSecret),
		EmailSecret: cfg.Mail.Secret,
	}, zapLogger)

	srv := server.New(cfg.Server, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	scheduler.Start()

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
	}
	scheduler.Stop(shutdownCtx)

	zapLogger.Info("server stopped gracefully")
}
