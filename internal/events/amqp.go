package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/lucsky/cuid"
	"github.com/streadway/amqp"
	"report-router/internal/common/errors"
	"report-router/internal/common/logging"
	"report-router/internal/routing"
)

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes routed events to a durable fanout exchange.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       Channel
	exchange string
	logger   logging.Logger
}

// DialAMQP connects to url and declares exchange.
func DialAMQP(url, exchange string, logger logging.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.ConnectionError("failed to connect to RabbitMQ", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.ConnectionError("failed to open RabbitMQ channel", err)
	}

	p, err := NewAMQPPublisher(ch, exchange, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewAMQPPublisher declares exchange on an already open channel.
func NewAMQPPublisher(ch Channel, exchange string, logger logging.Logger) (*AMQPPublisher, error) {
	if ch == nil {
		return nil, errors.ConfigError("amqp channel is required")
	}
	if exchange == "" {
		exchange = DefaultChannel
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, errors.ConnectionError("failed to declare exchange", err).WithContext("exchange", exchange)
	}

	return &AMQPPublisher{
		ch:       ch,
		exchange: exchange,
		logger:   logger.WithFields(logging.Field{Key: "component", Value: "amqp_events"}, logging.Field{Key: "exchange", Value: exchange}),
	}, nil
}

func (p *AMQPPublisher) PublishRouted(ctx context.Context, event routing.RoutedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.InternalError("failed to encode routed event", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    cuid.New(),
		Timestamp:    time.Now().UTC(),
		Type:         "report.routed",
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Publish(p.exchange, event.Folder, false, false, msg); err != nil {
		return errors.ConnectionError("failed to publish routed event to RabbitMQ", err).
			WithContext("exchange", p.exchange)
	}

	p.logger.Debug("Published routed event",
		logging.Field{Key: "file", Value: event.FileName},
		logging.Field{Key: "message_id", Value: msg.MessageId},
	)
	return nil
}

// Close closes the channel and, when the publisher dialled it, the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
