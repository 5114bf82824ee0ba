// internal/email/queue.go
package email

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// Job is one email handed off to the mail queue. The HTTP request that
// produced it never waits on delivery.
type Job struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Publisher pushes mail jobs onto a RabbitMQ queue consumed by cmd/mailer.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

func NewPublisher(amqpURL, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &Publisher{
		conn:    conn,
		channel: channel,
		queue:   queue,
	}, nil
}

func (p *Publisher) Publish(job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal mail job: %w", err)
	}

	return p.channel.Publish(
		"",      // default exchange
		p.queue, // routing key = queue name
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// Consumer drains the mail queue and hands each job to a Sender.
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	sender  *Sender
}

func NewConsumer(amqpURL, queue string, sender *Sender) (*Consumer, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &Consumer{
		conn:    conn,
		channel: channel,
		queue:   queue,
		sender:  sender,
	}, nil
}

// Run blocks, delivering queued jobs until the channel closes. Jobs that
// fail to send are acked anyway: transactional mail is best-effort and a
// poison message must not wedge the queue.
func (c *Consumer) Run() error {
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for d := range deliveries {
		var job Job
		if err := json.Unmarshal(d.Body, &job); err != nil {
			logrus.WithError(err).Error("Discarding malformed mail job")
			d.Ack(false)
			continue
		}

		if err := c.sender.Send(job.To, job.Subject, job.Body); err != nil {
			logrus.WithError(err).WithField("to", job.To).Error("Failed to send queued email")
		} else {
			logrus.WithFields(logrus.Fields{"to": job.To, "subject": job.Subject}).Info("Email sent")
		}
		d.Ack(false)
	}

	return nil
}

func (c *Consumer) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
