package queue

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/PabloGalante/farum-router/internal/observability"
)

// Handler is called for each well-formed message received.
type Handler func(ctx context.Context, msg *UtteranceMessage) error

type outcome int

const (
	outcomeAck outcome = iota
	outcomeReject
	outcomeRequeue
)

// Consumer consumes utterances from RabbitMQ.
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewConsumer dials url and declares queue.
func NewConsumer(url, queue string) (*Consumer, error) {
	if queue == "" {
		queue = DefaultInputQueue
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	// one message at a time
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	return &Consumer{
		conn:    conn,
		channel: ch,
		queue:   queue,
	}, nil
}

// Start consumes until ctx is done or the channel closes.
func (c *Consumer) Start(ctx context.Context, handler Handler) error {
	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag (auto-generated)
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	log := observability.WithFields("queue", c.queue)
	log.Info("waiting for messages")

	for {
		select {
		case <-ctx.Done():
			log.Info("consumer shutting down")
			return ctx.Err()

		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("channel closed")
			}

			var ackErr error
			switch process(ctx, delivery.Body, delivery.Redelivered, handler) {
			case outcomeAck:
				ackErr = delivery.Ack(false)
			case outcomeReject:
				ackErr = delivery.Nack(false, false)
			case outcomeRequeue:
				ackErr = delivery.Nack(false, true)
			}
			if ackErr != nil {
				log.Error("failed to acknowledge delivery", "error", ackErr)
			}
		}
	}
}

// process decodes one delivery body and runs handler on it. A failing
// delivery is requeued once; if it fails again after redelivery it is
// rejected, so it reaches the queue's dead-letter exchange when one is
// configured and is dropped otherwise.
func process(ctx context.Context, body []byte, redelivered bool, handler Handler) outcome {
	msg, err := decodeUtterance(body)
	if err != nil {
		observability.Logger().Error("failed to parse message", "error", err)
		return outcomeReject
	}

	if err := handler(ctx, msg); err != nil {
		if errors.Is(err, ErrMalformed) {
			return outcomeReject
		}
		log := observability.WithFields("request_id", msg.RequestID, "error", err)
		if redelivered {
			log.Error("failed to process redelivered message, rejecting")
			return outcomeReject
		}
		log.Error("failed to process message, requeueing")
		return outcomeRequeue
	}
	return outcomeAck
}

// Close cleanly shuts down the consumer.
func (c *Consumer) Close() error {
	if err := c.channel.Close(); err != nil {
		return err
	}
	return c.conn.Close()
}
