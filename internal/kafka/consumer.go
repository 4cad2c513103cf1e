package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"

	"github.com/ragzy-ai/ragzy-api/internal/config"
	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
	"github.com/ragzy-ai/ragzy-api/pkg/util"
)

const defaultConsumeTimeout = 30 * time.Second

type kafkaConsumer struct {
	reader         *kafka.Reader
	metrics        *prometheus.HistogramVec
	numWorkers     int
	consumeTimeout time.Duration
	handler        Handler
	done           chan struct{}
	stopOnce       sync.Once
	loop           sync.WaitGroup
	workerPool     *workerpool.WorkerPool
}

// NewConsumer returns a no-op consumer when kafka is disabled.
func NewConsumer(conf *config.Config, handler Handler) (Consumer, error) {
	cfg := conf.Kafka
	if !cfg.Enabled {
		return &noopConsumer{}, nil
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka is enabled but no brokers are configured")
	}

	metrics, err := util.GetHistogramVec("kafka_messages_consumed", "status", "topic", "group")
	if err != nil {
		return nil, fmt.Errorf("get histogram vec: %w", err)
	}

	numWorkers := cfg.NumWorkers
	if numWorkers <= 0 {
		numWorkers = 1
	}

	return &kafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.Brokers,
			Topic:       cfg.Topic,
			GroupID:     cfg.GroupID,
			StartOffset: kafka.LastOffset,
		}),
		metrics:        metrics,
		numWorkers:     numWorkers,
		consumeTimeout: defaultConsumeTimeout,
		handler:        handler,
		done:           make(chan struct{}),
		workerPool:     workerpool.New(numWorkers),
	}, nil
}

// Start blocks until ctx is canceled or Stop is called. With one worker each
// record is committed after it was handled; with more the reader commits on
// read and records are handled on the worker pool.
func (c *kafkaConsumer) Start(ctx context.Context) error {
	c.loop.Add(1)
	defer c.loop.Done()

	cfg := c.reader.Config()
	log.Infow(ctx, "kafka consumer started", "topic", cfg.Topic, "group", cfg.GroupID, "workers", c.numWorkers)

	for ctx.Err() == nil && !c.stopped() {
		var (
			msg kafka.Message
			err error
		)
		if c.numWorkers == 1 {
			msg, err = c.reader.FetchMessage(ctx)
		} else {
			msg, err = c.reader.ReadMessage(ctx)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			log.Errorw(ctx, "kafka read failed", "error", err)
			continue
		}

		if c.numWorkers > 1 {
			c.workerPool.Submit(func() { c.processMessage(ctx, msg, cfg.GroupID) })
			continue
		}
		c.processMessage(ctx, msg, cfg.GroupID)
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			log.Errorw(ctx, "kafka commit failed", "error", err, "offset", msg.Offset)
		}
	}
	return nil
}

func (c *kafkaConsumer) Stop(ctx context.Context) error {
	var err error
	c.stopOnce.Do(func() {
		log.Infow(ctx, "kafka consumer stopping")
		close(c.done)
		err = c.reader.Close()
		// no Submit may follow StopWait
		c.loop.Wait()
		c.workerPool.StopWait()
	})
	return err
}

func (c *kafkaConsumer) stopped() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *kafkaConsumer) processMessage(ctx context.Context, msg kafka.Message, groupID string) {
	start := time.Now()
	err := c.handle(ctx, msg)
	elapsed := time.Since(start)

	status := statusOf(err)
	fields := []any{
		"status", status,
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
		"key", string(msg.Key),
		"duration_ms", elapsed.Milliseconds(),
		"lag_ms", start.Sub(msg.Time).Milliseconds(),
	}
	if err != nil {
		fields = append(fields, "error", err)
	}
	log.Logw(ctx, logLevel(status), "chat event consumed", fields...)

	c.metrics.WithLabelValues(status, msg.Topic, groupID).Observe(elapsed.Seconds())
}

func (c *kafkaConsumer) handle(msgCtx context.Context, msg kafka.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic recovered: %v\n%s", r, debug.Stack())
		}
	}()

	ctx, cancel := context.WithTimeout(msgCtx, c.consumeTimeout)
	defer cancel()
	ctx = log.WithFields(ctx, "topic", msg.Topic, "offset", msg.Offset)

	return c.handler(ctx, msg)
}

// noopConsumer is used when kafka is disabled.
type noopConsumer struct{}

func (n *noopConsumer) Start(ctx context.Context) error {
	log.Infow(ctx, "kafka consumer disabled")
	return nil
}

func (n *noopConsumer) Stop(context.Context) error {
	return nil
}

// RegisterConsumer runs the consumer for the lifetime of the fx app and
// shuts the app down when the consumer fails.
func RegisterConsumer(lc fx.Lifecycle, sd fx.Shutdowner, consumer Consumer) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := consumer.Start(ctx); err != nil {
					log.Errorw(ctx, "kafka consumer stopped", "error", err)
					_ = sd.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			return consumer.Stop(stopCtx)
		},
	})
}
