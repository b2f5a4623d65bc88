package notify

import (
	"context"
	"time"

	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/go-arcade/ideaflow/pkg/metrics"
	"github.com/go-arcade/ideaflow/pkg/nova"
	"github.com/go-arcade/ideaflow/pkg/trace"
	"github.com/go-arcade/ideaflow/pkg/trace/inject"
)

// Store persists consumed notifications. Save must be idempotent on
// EventID and report whether a new row was written.
type Store interface {
	Save(ctx context.Context, event *Event) (created bool, err error)
}

// Consumer moves events from the broker into the read model.
type Consumer struct {
	broker nova.MessageQueueBroker
	codec  nova.MessageCodec
	system string
	topic  string
	store  Store
	now    func() time.Time
}

func NewConsumer(broker nova.MessageQueueBroker, codec nova.MessageCodec, conf Conf, store Store) *Consumer {
	conf.SetDefaults()
	return &Consumer{
		broker: broker,
		codec:  codec,
		system: string(conf.Broker),
		topic:  conf.Topic,
		store:  store,
		now:    time.Now,
	}
}

// Run subscribes and blocks until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	log.Infow("notification consumer started", "topic", c.topic)
	return c.broker.Subscribe(ctx, []string{c.topic}, c.Handle)
}

// Handle processes one message. Undecodable messages are dropped; a store
// failure is returned so the broker redelivers. The consume span continues
// the publisher's trace carried in the message headers.
func (c *Consumer) Handle(ctx context.Context, msg *nova.Message) (err error) {
	ctx, span := inject.StartConsume(ctx, c.system, c.topic, msg.Headers)
	defer func() { trace.End(span, err) }()

	var event Event
	if err := c.codec.Decode(msg.Value, &event); err != nil {
		metrics.NotificationConsumeTotal.WithLabelValues("poison").Inc()
		log.Errorw("drop undecodable notification", log.Trace(ctx), "key", msg.Key, "error", err)
		return nil
	}
	if event.EventID == "" || event.UserID == 0 {
		metrics.NotificationConsumeTotal.WithLabelValues("poison").Inc()
		log.Errorw("drop notification without event id or user", log.Trace(ctx), "key", msg.Key, "eventId", event.EventID)
		return nil
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = c.now()
	}

	created, err := c.store.Save(ctx, &event)
	if err != nil {
		metrics.NotificationConsumeTotal.WithLabelValues("failed").Inc()
		log.Errorw("persist notification failed", log.Trace(ctx), "eventId", event.EventID, "error", err)
		return err
	}
	if !created {
		metrics.NotificationConsumeTotal.WithLabelValues("duplicate").Inc()
		log.Debugw("duplicate notification ignored", "eventId", event.EventID)
		return nil
	}
	metrics.NotificationConsumeTotal.WithLabelValues("stored").Inc()
	return nil
}
