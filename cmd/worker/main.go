// The worker binary drains the notification outbox: a poller claims due
// records and enqueues delivery tasks, and an asynq server sends the mail.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mafiaidola/leads-manager-sub000/internal/email"
	"github.com/mafiaidola/leads-manager-sub000/internal/notification/outbox"
	"github.com/mafiaidola/leads-manager-sub000/internal/scheduler"
	"github.com/mafiaidola/leads-manager-sub000/platform/config"
	"github.com/mafiaidola/leads-manager-sub000/platform/db"
	"github.com/mafiaidola/leads-manager-sub000/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if cfg.RedisURL == "" {
		panic("REDIS_URL is required for the worker")
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env, "queue", cfg.AsynqQueueName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	outboxRepo := outbox.New(pool)

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize task client", "error", err)
		panic("failed to initialize task client: " + err.Error())
	}
	defer client.Close()

	sender, err := email.NewSMTPSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	worker, err := scheduler.NewWorker(cfg, outboxRepo, sender, log)
	if err != nil {
		log.Error("failed to initialize task worker", "error", err)
		panic("failed to initialize task worker: " + err.Error())
	}

	poller := scheduler.NewOutboxPoller(outboxRepo, client, cfg, log)
	go poller.Run(ctx)

	if err := worker.Run(ctx); err != nil {
		log.Error("task worker stopped with error", "error", err)
		panic("task worker stopped with error: " + err.Error())
	}
	log.Info("worker stopped")
}
