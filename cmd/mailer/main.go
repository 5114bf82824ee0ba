// cmd/mailer/main.go
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/cmdboutique/storefront-backend/internal/config"
	"github.com/cmdboutique/storefront-backend/internal/email"
)

// The mailer drains the transactional mail queue so HTTP requests never
// wait on SMTP. Run it alongside the API server whenever AMQP_URL is set.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	if cfg.AMQP.URL == "" {
		logrus.Fatal("AMQP_URL must be set to run the mailer")
	}

	sender := email.NewSender(
		cfg.Email.SMTPHost, cfg.Email.SMTPPort,
		cfg.Email.SMTPUsername, cfg.Email.SMTPPassword,
		cfg.Email.FromEmail, cfg.Email.FromName,
	)

	consumer, err := email.NewConsumer(cfg.AMQP.URL, cfg.AMQP.Queue, sender)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to mail queue")
	}
	defer consumer.Close()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logrus.Info("Shutting down mailer")
		consumer.Close()
	}()

	logrus.WithField("queue", cfg.AMQP.Queue).Info("Mailer started")
	if err := consumer.Run(); err != nil {
		logrus.WithError(err).Fatal("Mailer stopped with error")
	}
}
