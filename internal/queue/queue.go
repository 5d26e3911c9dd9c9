// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/Joshykins/stupid-neko-sub000/internal/config"
	"github.com/Joshykins/stupid-neko-sub000/internal/models"
)

// Queue owns the GoChannel Pub/Sub and the Watermill router. Handlers are
// registered before Run; messages published before the router is running are
// buffered by the channel.
type Queue struct {
	pubSub *gochannel.GoChannel
	router *message.Router
	logger watermill.LoggerAdapter
}

// New creates the Pub/Sub and a router with the standard middleware stack:
// Recoverer, Retry with exponential backoff, and PoisonQueue for messages
// that exhaust their retries.
func New(cfg *config.QueueConfig) (*Queue, error) {
	logger := NewLoggerAdapter()

	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: int64(cfg.OutputBufferSize),
	}, logger)

	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: cfg.CloseTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	// Middleware order (outer to inner):
	// 1. Recoverer - catch panics and convert to errors
	// 2. Retry - exponential backoff for transient failures
	// 3. PoisonQueue - route permanent failures aside so one bad message
	//    cannot wedge a topic
	router.AddMiddleware(middleware.Recoverer)

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryCount,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     time.Minute,
		Multiplier:      2.0,
		Logger:          logger,
	}
	router.AddMiddleware(retry.Middleware)

	if cfg.PoisonQueueEnabled && cfg.PoisonQueueTopic != "" {
		poison, err := middleware.PoisonQueue(pubSub, cfg.PoisonQueueTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		router.AddMiddleware(poison)
	}

	return &Queue{
		pubSub: pubSub,
		router: router,
		logger: logger,
	}, nil
}

// AddConsumerHandler registers a handler that consumes from a topic without
// producing output messages.
func (q *Queue) AddConsumerHandler(name, topic string, handler message.NoPublishHandlerFunc) {
	q.router.AddConsumerHandler(name, topic, q.pubSub, handler)
}

// PublishLabelTask enqueues enrichment work for a content key.
func (q *Queue) PublishLabelTask(key models.ContentKey) error {
	msg, err := NewLabelTaskMessage(key)
	if err != nil {
		return err
	}
	return q.pubSub.Publish(TopicProcessLabel, msg)
}

// PublishReconcileTask enqueues reconciliation work for a content key whose
// label just completed.
func (q *Queue) PublishReconcileTask(key models.ContentKey) error {
	msg, err := NewReconcileTaskMessage(key)
	if err != nil {
		return err
	}
	return q.pubSub.Publish(TopicReconcileLabel, msg)
}

// Subscribe exposes the raw subscriber for out-of-band consumers. The
// router owns normal consumption; this is for inspecting a topic directly,
// such as reading what landed on the poison queue.
func (q *Queue) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return q.pubSub.Subscribe(ctx, topic)
}

// Run starts the router and blocks until the context is canceled or Close
// is called.
func (q *Queue) Run(ctx context.Context) error {
	return q.router.Run(ctx)
}

// Running returns a channel that closes once the router is running.
func (q *Queue) Running() <-chan struct{} {
	return q.router.Running()
}

// Close stops the router and the Pub/Sub, waiting up to CloseTimeout for
// in-flight handlers.
func (q *Queue) Close() error {
	if err := q.router.Close(); err != nil {
		return fmt.Errorf("close router: %w", err)
	}
	return q.pubSub.Close()
}
