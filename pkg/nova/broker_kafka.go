package nova

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/go-arcade/ideaflow/pkg/log"
)

const (
	kafkaPollTimeout  = 100 * time.Millisecond
	kafkaFlushTimeout = 10 * time.Second
)

type KafkaSASL struct {
	Mechanism string `mapstructure:"mechanism"` // PLAIN, SCRAM-SHA-256, SCRAM-SHA-512
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
}

type KafkaConfig struct {
	BootstrapServers string        `mapstructure:"bootstrapServers"`
	SecurityProtocol string        `mapstructure:"securityProtocol"` // PLAINTEXT, SSL, SASL_PLAINTEXT, SASL_SSL
	Sasl             KafkaSASL     `mapstructure:"sasl"`
	SSLCAFile        string        `mapstructure:"sslCaFile"`
	SessionTimeout   time.Duration `mapstructure:"sessionTimeout"`
	MaxPollInterval  time.Duration `mapstructure:"maxPollInterval"`
	// RetryBackoff 处理失败后重新读取同一 offset 前的等待
	RetryBackoff time.Duration `mapstructure:"retryBackoff"`
}

func (c *KafkaConfig) setDefaults() {
	if c.SessionTimeout <= 0 {
		c.SessionTimeout = 30 * time.Second
	}
	if c.MaxPollInterval <= 0 {
		c.MaxPollInterval = 5 * time.Minute
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 500 * time.Millisecond
	}
}

// configMap merges the connection and auth settings into base
func (c *KafkaConfig) configMap(base kafka.ConfigMap) *kafka.ConfigMap {
	base["bootstrap.servers"] = c.BootstrapServers
	if c.SecurityProtocol != "" {
		base["security.protocol"] = c.SecurityProtocol
	}
	if c.Sasl.Mechanism != "" {
		base["sasl.mechanism"] = c.Sasl.Mechanism
		base["sasl.username"] = c.Sasl.Username
		base["sasl.password"] = c.Sasl.Password
	}
	if c.SSLCAFile != "" {
		base["ssl.ca.location"] = c.SSLCAFile
	}
	return &base
}

// kafkaBroker commits an offset only after its handler succeeded.
type kafkaBroker struct {
	conf     *Config
	producer *kafka.Producer
	consumer *kafka.Consumer
}

func newKafkaBroker(conf *Config) (MessageQueueBroker, error) {
	kc := &conf.Kafka
	producer, err := kafka.NewProducer(kc.configMap(kafka.ConfigMap{
		"acks":               "all",
		"enable.idempotence": true,
		"compression.type":   "snappy",
	}))
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	consumer, err := kafka.NewConsumer(kc.configMap(kafka.ConfigMap{
		"group.id":             conf.GroupID,
		"auto.offset.reset":    "earliest",
		"enable.auto.commit":   false,
		"session.timeout.ms":   int(kc.SessionTimeout.Milliseconds()),
		"max.poll.interval.ms": int(kc.MaxPollInterval.Milliseconds()),
	}))
	if err != nil {
		producer.Close()
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return &kafkaBroker{conf: conf, producer: producer, consumer: consumer}, nil
}

func (b *kafkaBroker) Send(ctx context.Context, topic string, msg *Message) error {
	topic = b.conf.Topic(topic)
	headers := make([]kafka.Header, 0, len(msg.Headers))
	for k, v := range msg.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	delivered := make(chan kafka.Event, 1)
	err := b.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(msg.Key),
		Value:          msg.Value,
		Headers:        headers,
	}, delivered)
	if err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}

	select {
	case e := <-delivered:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected kafka delivery event: %v", e)
		}
		return m.TopicPartition.Error
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe polls until ctx is done. On a handler error the partition is
// rewound to the failed offset and read again after RetryBackoff.
func (b *kafkaBroker) Subscribe(ctx context.Context, topics []string, handler MessageHandler) error {
	qualified := make([]string, len(topics))
	for i, t := range topics {
		qualified[i] = b.conf.Topic(t)
	}
	if err := b.consumer.SubscribeTopics(qualified, nil); err != nil {
		return fmt.Errorf("subscribe %v: %w", qualified, err)
	}

	for ctx.Err() == nil {
		km, err := b.consumer.ReadMessage(kafkaPollTimeout)
		if err != nil {
			var kerr kafka.Error
			if !errors.As(err, &kerr) || kerr.Code() != kafka.ErrTimedOut {
				log.Warnw("kafka read failed", "error", err)
			}
			continue
		}

		msg := &Message{Key: string(km.Key), Value: km.Value, Headers: make(map[string]string, len(km.Headers))}
		for _, h := range km.Headers {
			msg.Headers[h.Key] = string(h.Value)
		}

		if err := handler(ctx, msg); err != nil {
			log.Warnw("kafka handler failed, rewinding",
				"topic", *km.TopicPartition.Topic,
				"partition", km.TopicPartition.Partition,
				"offset", km.TopicPartition.Offset,
				"error", err,
			)
			if err := b.consumer.Seek(km.TopicPartition, 0); err != nil {
				log.Errorw("kafka seek failed", "error", err)
			}
			select {
			case <-ctx.Done():
			case <-time.After(b.conf.Kafka.RetryBackoff):
			}
			continue
		}
		if _, err := b.consumer.CommitMessage(km); err != nil {
			log.Warnw("kafka commit failed", "offset", km.TopicPartition.Offset, "error", err)
		}
	}
	return nil
}

func (b *kafkaBroker) Close() error {
	err := b.consumer.Close()
	if left := b.producer.Flush(int(kafkaFlushTimeout.Milliseconds())); left > 0 {
		log.Warnw("kafka producer closed with undelivered messages", "count", left)
	}
	b.producer.Close()
	return err
}
