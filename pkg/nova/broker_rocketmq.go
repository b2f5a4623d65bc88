package nova

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/consumer"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/apache/rocketmq-client-go/v2/producer"
	"github.com/go-arcade/ideaflow/pkg/log"
)

type RocketMQConfig struct {
	NameServers []string `mapstructure:"nameServers"`
	AccessKey   string   `mapstructure:"accessKey"`
	SecretKey   string   `mapstructure:"secretKey"`
	// MaxReconsumeTimes 超过后消息进入死信队列
	MaxReconsumeTimes int32         `mapstructure:"maxReconsumeTimes"`
	ConsumeTimeout    time.Duration `mapstructure:"consumeTimeout"`
}

func (c *RocketMQConfig) setDefaults() {
	if c.MaxReconsumeTimes <= 0 {
		c.MaxReconsumeTimes = 16
	}
	if c.ConsumeTimeout <= 0 {
		c.ConsumeTimeout = 5 * time.Minute
	}
}

func (c *RocketMQConfig) credentials() (primitive.Credentials, bool) {
	if c.AccessKey == "" || c.SecretKey == "" {
		return primitive.Credentials{}, false
	}
	return primitive.Credentials{AccessKey: c.AccessKey, SecretKey: c.SecretKey}, true
}

type rocketmqBroker struct {
	conf     *Config
	producer rocketmq.Producer
	consumer rocketmq.PushConsumer
}

func newRocketMQBroker(conf *Config) (MessageQueueBroker, error) {
	rc := &conf.RocketMQ
	resolver := primitive.NewPassthroughResolver(rc.NameServers)

	popts := []producer.Option{
		producer.WithNsResolver(resolver),
		producer.WithGroupName(conf.GroupID + "-producer"),
		producer.WithRetry(2),
	}
	copts := []consumer.Option{
		consumer.WithNsResolver(resolver),
		consumer.WithGroupName(conf.GroupID),
		consumer.WithConsumerModel(consumer.Clustering),
		consumer.WithConsumeTimeout(rc.ConsumeTimeout),
		consumer.WithMaxReconsumeTimes(rc.MaxReconsumeTimes),
	}
	if cred, ok := rc.credentials(); ok {
		popts = append(popts, producer.WithCredentials(cred))
		copts = append(copts, consumer.WithCredentials(cred))
	}

	p, err := rocketmq.NewProducer(popts...)
	if err != nil {
		return nil, fmt.Errorf("create rocketmq producer: %w", err)
	}
	if err := p.Start(); err != nil {
		return nil, fmt.Errorf("start rocketmq producer: %w", err)
	}
	c, err := rocketmq.NewPushConsumer(copts...)
	if err != nil {
		_ = p.Shutdown()
		return nil, fmt.Errorf("create rocketmq consumer: %w", err)
	}
	return &rocketmqBroker{conf: conf, producer: p, consumer: c}, nil
}

func (b *rocketmqBroker) Send(ctx context.Context, topic string, msg *Message) error {
	m := primitive.NewMessage(b.conf.Topic(topic), msg.Value)
	m.WithKeys([]string{msg.Key})
	m.WithShardingKey(msg.Key)
	for k, v := range msg.Headers {
		m.WithProperty(k, v)
	}
	res, err := b.producer.SendSync(ctx, m)
	if err != nil {
		return fmt.Errorf("send to %s: %w", topic, err)
	}
	if res.Status != primitive.SendOK {
		return fmt.Errorf("send to %s: status %d", topic, res.Status)
	}
	return nil
}

// Subscribe hands a failed batch back with ConsumeRetryLater.
func (b *rocketmqBroker) Subscribe(ctx context.Context, topics []string, handler MessageHandler) error {
	for _, topic := range topics {
		qualified := b.conf.Topic(topic)
		err := b.consumer.Subscribe(qualified, consumer.MessageSelector{}, func(cctx context.Context, msgs ...*primitive.MessageExt) (consumer.ConsumeResult, error) {
			for _, m := range msgs {
				msg := &Message{Key: m.GetKeys(), Value: m.Body, Headers: maps.Clone(m.GetProperties())}
				if err := handler(cctx, msg); err != nil {
					log.Warnw("rocketmq handler failed, retry later", "topic", qualified, "msgId", m.MsgId, "error", err)
					return consumer.ConsumeRetryLater, nil
				}
			}
			return consumer.ConsumeSuccess, nil
		})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", qualified, err)
		}
	}
	if err := b.consumer.Start(); err != nil {
		return fmt.Errorf("start rocketmq consumer: %w", err)
	}
	<-ctx.Done()
	return nil
}

func (b *rocketmqBroker) Close() error {
	return errors.Join(b.consumer.Shutdown(), b.producer.Shutdown())
}
