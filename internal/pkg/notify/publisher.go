// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package notify

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-arcade/ideaflow/internal/pkg/notify/template"
	"github.com/go-arcade/ideaflow/pkg/id"
	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/go-arcade/ideaflow/pkg/metrics"
	"github.com/go-arcade/ideaflow/pkg/nova"
	"github.com/go-arcade/ideaflow/pkg/safe"
	"github.com/go-arcade/ideaflow/pkg/trace"
	"github.com/go-arcade/ideaflow/pkg/trace/inject"
)

// Publisher hands notifications to the broker. Publish never blocks on the
// broker and never fails the caller.
type Publisher interface {
	Publish(ctx context.Context, key string, event Event)
	// Notify renders the template for t and publishes it.
	Notify(ctx context.Context, t Type, userID, ideaID uint64, data map[string]any)
}

// BrokerPublisher publishes through a nova broker.
type BrokerPublisher struct {
	broker      nova.MessageQueueBroker
	codec       nova.MessageCodec
	system      string
	topic       string
	sendTimeout time.Duration
	renderer    *template.Renderer
	now         func() time.Time
}

func NewBrokerPublisher(broker nova.MessageQueueBroker, codec nova.MessageCodec, conf Conf) *BrokerPublisher {
	conf.SetDefaults()
	return &BrokerPublisher{
		broker:      broker,
		codec:       codec,
		system:      string(conf.Broker),
		topic:       conf.Topic,
		sendTimeout: conf.SendTimeout,
		renderer:    template.NewRenderer(),
		now:         time.Now,
	}
}

// Publish sends event on a background goroutine. The caller's ctx only
// carries values; cancellation of the request does not drop the event.
func (p *BrokerPublisher) Publish(ctx context.Context, key string, event Event) {
	ctx = context.WithoutCancel(ctx)
	safe.Go(func() {
		if err := p.publish(ctx, key, event); err != nil {
			metrics.NotificationPublishTotal.WithLabelValues(string(event.Type), "failed").Inc()
			log.Errorw("publish notification failed",
				log.Trace(ctx),
				"type", event.Type,
				"userId", event.UserID,
				"eventId", event.EventID,
				"error", err,
			)
			return
		}
		metrics.NotificationPublishTotal.WithLabelValues(string(event.Type), "ok").Inc()
	})
}

func (p *BrokerPublisher) Notify(ctx context.Context, t Type, userID, ideaID uint64, data map[string]any) {
	title, message, err := p.renderer.Render(string(t), data)
	if err != nil {
		metrics.NotificationPublishTotal.WithLabelValues(string(t), "failed").Inc()
		log.Errorw("render notification failed", "type", t, "userId", userID, "error", err)
		return
	}
	key := strconv.FormatUint(ideaID, 10)
	if ideaID == 0 {
		key = strconv.FormatUint(userID, 10)
	}
	p.Publish(ctx, key, Event{
		UserID:  userID,
		IdeaID:  ideaID,
		Type:    t,
		Title:   title,
		Message: message,
	})
}

func (p *BrokerPublisher) publish(ctx context.Context, key string, event Event) (err error) {
	headers := map[string]string{}
	ctx, span := inject.StartPublish(ctx, p.system, p.topic, headers)
	defer func() { trace.End(span, err) }()

	if event.EventID == "" {
		event.EventID = id.GetUlid()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = p.now()
	}

	value, err := p.codec.Encode(&event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.sendTimeout)
	defer cancel()
	headers["type"] = string(event.Type)
	headers["eventId"] = event.EventID
	msg := &nova.Message{Key: key, Value: value, Headers: headers}
	if err := p.broker.Send(ctx, p.topic, msg); err != nil {
		return fmt.Errorf("send to %s: %w", p.topic, err)
	}
	return nil
}
