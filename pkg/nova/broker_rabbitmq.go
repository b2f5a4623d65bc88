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

package nova

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/go-arcade/ideaflow/pkg/log"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQConfig uses one topic exchange. Every consumer group gets a durable
// queue per topic, so group members share the work. Use an amqps:// URL for TLS.
type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Prefetch int    `mapstructure:"prefetch"`
}

func (c *RabbitMQConfig) setDefaults(prefix string) {
	if c.Exchange == "" {
		c.Exchange = prefix
	}
	if c.Prefetch <= 0 {
		c.Prefetch = 10
	}
}

// dialURL adds the configured credentials unless the URL carries its own.
func (c *RabbitMQConfig) dialURL() string {
	if c.Username == "" {
		return c.URL
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Host == "" {
		return fmt.Sprintf("amqp://%s:%s@%s", url.PathEscape(c.Username), url.PathEscape(c.Password), c.URL)
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			return c.URL
		}
	}
	u.User = url.UserPassword(c.Username, c.Password)
	return u.String()
}

type rabbitmqBroker struct {
	conf *Config
	conn *amqp.Connection

	// amqp channels are not safe for concurrent publishing
	pubMu sync.Mutex
	pub   *amqp.Channel
}

func newRabbitMQBroker(conf *Config) (MessageQueueBroker, error) {
	rc := &conf.RabbitMQ
	conn, err := amqp.Dial(rc.dialURL())
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	pub, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	// durable topic exchange
	if err := pub.ExchangeDeclare(rc.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", rc.Exchange, err)
	}
	return &rabbitmqBroker{conf: conf, conn: conn, pub: pub}, nil
}

func (b *rabbitmqBroker) Send(ctx context.Context, topic string, msg *Message) error {
	headers := make(amqp.Table, len(msg.Headers))
	for k, v := range msg.Headers {
		headers[k] = v
	}

	b.pubMu.Lock()
	defer b.pubMu.Unlock()
	err := b.pub.PublishWithContext(ctx, b.conf.RabbitMQ.Exchange, b.conf.Topic(topic), false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    msg.Key,
		Headers:      headers,
		Body:         msg.Value,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (b *rabbitmqBroker) queueName(topic string) string {
	return b.conf.GroupID + "." + b.conf.Topic(topic)
}

// Subscribe acks after the handler succeeded and requeues otherwise.
func (b *rabbitmqBroker) Subscribe(ctx context.Context, topics []string, handler MessageHandler) error {
	ch, err := b.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel: %w", err)
	}
	defer ch.Close()
	if err := ch.Qos(b.conf.RabbitMQ.Prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	var wg sync.WaitGroup
	for _, topic := range topics {
		name := b.queueName(topic)
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", name, err)
		}
		if err := ch.QueueBind(name, b.conf.Topic(topic), b.conf.RabbitMQ.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", name, err)
		}
		deliveries, err := ch.ConsumeWithContext(ctx, name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("consume %s: %w", name, err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range deliveries {
				b.dispatch(ctx, name, d, handler)
			}
		}()
	}

	<-ctx.Done()
	wg.Wait()
	return nil
}

func (b *rabbitmqBroker) dispatch(ctx context.Context, queue string, d amqp.Delivery, handler MessageHandler) {
	msg := &Message{Key: d.MessageId, Value: d.Body, Headers: make(map[string]string, len(d.Headers))}
	for k, v := range d.Headers {
		if s, ok := v.(string); ok {
			msg.Headers[k] = s
		}
	}
	if err := handler(ctx, msg); err != nil {
		log.Warnw("rabbitmq handler failed, requeueing", "queue", queue, "error", err)
		if err := d.Nack(false, true); err != nil {
			log.Errorw("rabbitmq nack failed", "queue", queue, "error", err)
		}
		return
	}
	if err := d.Ack(false); err != nil {
		log.Errorw("rabbitmq ack failed", "queue", queue, "error", err)
	}
}

func (b *rabbitmqBroker) Close() error {
	return errors.Join(b.pub.Close(), b.conn.Close())
}
