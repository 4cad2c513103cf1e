// Package events publishes domain events to a RabbitMQ topic exchange.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ragzy-ai/ragzy-api/internal/config"
	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
)

const maxReconnectDelay = 30 * time.Second

var errPublisherClosed = errors.New("event publisher closed")

type Publisher interface {
	// Publish sends msg with its event type as the routing key.
	Publish(ctx context.Context, msg models.Envelope) error
	Close() error
}

// NewPublisher connects to AMQP_URL. Without a URL events are dropped.
func NewPublisher(conf *config.Config) (Publisher, error) {
	if conf.AMQP.URL == "" {
		return NoopPublisher{}, nil
	}
	return newRMQPublisher(conf.AMQP.URL, conf.AMQP.Exchange, conf.AMQP.ReconnectDelay, dialExchange)
}

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type connection interface {
	channel() (publishChannel, error)
	NotifyClose(receiver chan *amqp.Error) chan *amqp.Error
	IsClosed() bool
	Close() error
}

type dialFunc func(url, exchange string) (connection, error)

type amqpConnection struct {
	*amqp.Connection
}

func (c amqpConnection) channel() (publishChannel, error) {
	ch, err := c.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// dialExchange connects and declares the topic exchange.
func dialExchange(url, exchange string) (connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return amqpConnection{conn}, nil
}

// rmqPublisher keeps one connection and redials when the broker drops it.
type rmqPublisher struct {
	url      string
	exchange string
	delay    time.Duration
	dial     dialFunc

	mu     sync.Mutex
	conn   connection
	closed bool
	done   chan struct{}
}

func newRMQPublisher(url, exchange string, delay time.Duration, dial dialFunc) (*rmqPublisher, error) {
	conn, err := dial(url, exchange)
	if err != nil {
		return nil, err
	}
	if delay <= 0 {
		delay = time.Second
	}

	p := &rmqPublisher{
		url:      url,
		exchange: exchange,
		delay:    delay,
		dial:     dial,
		conn:     conn,
		done:     make(chan struct{}),
	}
	go p.watch(conn)
	return p, nil
}

// watch waits for conn to close and replaces it, backing off between failed
// dials until the publisher is closed.
func (p *rmqPublisher) watch(conn connection) {
	for {
		select {
		case <-p.done:
			return
		case amqpErr, ok := <-conn.NotifyClose(make(chan *amqp.Error, 1)):
			// a graceful Close delivers no error
			if ok {
				log.Warnw(context.Background(), "amqp connection lost, reconnecting", "exchange", p.exchange, "error", amqpErr)
			}
		}

		next, err := p.reconnect(conn)
		for delay := p.delay; err != nil; {
			if errors.Is(err, errPublisherClosed) {
				return
			}
			log.Errorw(context.Background(), "amqp reconnect failed", "error", err, "retry_in", delay)
			select {
			case <-p.done:
				return
			case <-time.After(delay):
			}
			delay = min(delay*2, maxReconnectDelay)
			next, err = p.reconnect(conn)
		}
		conn = next
	}
}

// reconnect dials a replacement for dead unless another caller already did.
func (p *rmqPublisher) reconnect(dead connection) (connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errPublisherClosed
	}
	if p.conn != dead && !p.conn.IsClosed() {
		return p.conn, nil
	}
	conn, err := p.dial(p.url, p.exchange)
	if err != nil {
		return nil, err
	}
	p.conn = conn
	log.Infow(context.Background(), "amqp connection restored", "exchange", p.exchange)
	return conn, nil
}

// connection returns the live connection, dialing inline when the watcher has
// not replaced a closed one yet.
func (p *rmqPublisher) connection() (connection, error) {
	p.mu.Lock()
	conn, closed := p.conn, p.closed
	p.mu.Unlock()

	if closed {
		return nil, errPublisherClosed
	}
	if !conn.IsClosed() {
		return conn, nil
	}
	return p.reconnect(conn)
}

func (p *rmqPublisher) Publish(ctx context.Context, msg models.Envelope) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := p.connection()
	if err != nil {
		return fmt.Errorf("amqp connection: %w", err)
	}
	ch, err := conn.channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	key := string(msg.Meta.Type)
	err = ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     msg.Meta.ID,
		CorrelationId: msg.Meta.CorrelationID,
		Timestamp:     time.Now(),
		Body:          body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	log.Debugw(ctx, "published event", "key", key, "exchange", p.exchange, "event_id", msg.Meta.ID)
	return nil
}

func (p *rmqPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.done)
	return p.conn.Close()
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, msg models.Envelope) error {
	log.Debugw(ctx, "event publishing disabled, dropping event", "type", msg.Meta.Type)
	return nil
}

func (NoopPublisher) Close() error { return nil }
