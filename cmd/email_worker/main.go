package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/blood-donor-registry/config"
	"github.com/oksasatya/blood-donor-registry/pkg/helpers"
	"github.com/oksasatya/blood-donor-registry/pkg/mailer"
)

const (
	prefetch    = 16
	sendTimeout = 15 * time.Second
)

// processor is the part of mailer.Worker the consume loop needs.
type processor interface {
	Process(ctx context.Context, body []byte) error
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, prefetch)
	if err != nil {
		logger.WithError(err).Fatal("amqp connect")
	}
	defer consumer.Close()

	msgs, err := consumer.Deliveries()
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	w := mailer.NewWorker(mg, helpers.EnsureRecipient, helpers.SubjectFor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		consume(ctx, msgs, w, logger)
	}()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down")

	cancel()
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

// consume handles deliveries until msgs closes or ctx is cancelled.
func consume(ctx context.Context, msgs <-chan amqp.Delivery, w processor, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			handle(ctx, msg, w, logger)
		}
	}
}

// handle acks sent jobs, drops malformed ones and requeues delivery failures.
func handle(ctx context.Context, msg amqp.Delivery, w processor, logger *logrus.Logger) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	err := w.Process(sendCtx, msg.Body)
	switch {
	case err == nil:
		_ = msg.Ack(false)
	case errors.Is(err, mailer.ErrPermanent):
		helpers.LogError(logger, "dropping email job", err, logrus.Fields{"delivery_tag": msg.DeliveryTag})
		_ = msg.Nack(false, false)
	default:
		helpers.LogWarn(logger, "email send failed, requeueing", err, logrus.Fields{"delivery_tag": msg.DeliveryTag})
		_ = msg.Nack(false, true)
	}
}
