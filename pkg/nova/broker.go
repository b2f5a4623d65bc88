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
	"strings"
)

// QueueType names a broker backend
type QueueType string

const (
	QueueTypeKafka    QueueType = "kafka"
	QueueTypeRocketMQ QueueType = "rocketmq"
	QueueTypeRabbitMQ QueueType = "rabbitmq"
	QueueTypeMemory   QueueType = "memory"
)

const (
	DefaultGroupID     = "ideaflow"
	DefaultTopicPrefix = "ideaflow"
)

var ErrUnsupportedBroker = errors.New("unsupported broker")

// MessageQueueBroker moves opaque messages between publishers and one
// consumer group. Delivery is at least once.
type MessageQueueBroker interface {
	Send(ctx context.Context, topic string, msg *Message) error

	// Subscribe consumes topics until ctx is done. A handler error leaves the
	// message unacknowledged so the broker delivers it again.
	Subscribe(ctx context.Context, topics []string, handler MessageHandler) error

	Close() error
}

// Message is what travels on a topic. Key selects the partition where the
// backend has one.
type Message struct {
	Key     string
	Value   []byte
	Headers map[string]string
}

type MessageHandler func(ctx context.Context, msg *Message) error

// Config selects one backend. Only the section matching Broker is read.
type Config struct {
	Broker      QueueType      `mapstructure:"broker"`
	GroupID     string         `mapstructure:"groupId"`
	TopicPrefix string         `mapstructure:"topicPrefix"`
	Kafka       KafkaConfig    `mapstructure:"kafka"`
	RabbitMQ    RabbitMQConfig `mapstructure:"rabbitmq"`
	RocketMQ    RocketMQConfig `mapstructure:"rocketmq"`
	Memory      MemoryConfig   `mapstructure:"memory"`
}

// SetDefaults fills zero values of the shared and the selected section.
func (c *Config) SetDefaults() {
	c.Broker = QueueType(strings.ToLower(string(c.Broker)))
	if c.Broker == "" {
		c.Broker = QueueTypeMemory
	}
	if c.GroupID == "" {
		c.GroupID = DefaultGroupID
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = DefaultTopicPrefix
	}
	c.Kafka.setDefaults()
	c.RabbitMQ.setDefaults(c.TopicPrefix)
	c.RocketMQ.setDefaults()
	c.Memory.setDefaults()
}

// Validate reports a missing address for the selected backend.
func (c *Config) Validate() error {
	switch c.Broker {
	case QueueTypeKafka:
		if c.Kafka.BootstrapServers == "" {
			return errors.New("kafka.bootstrapServers is required")
		}
	case QueueTypeRabbitMQ:
		if c.RabbitMQ.URL == "" {
			return errors.New("rabbitmq.url is required")
		}
	case QueueTypeRocketMQ:
		if len(c.RocketMQ.NameServers) == 0 {
			return errors.New("rocketmq.nameServers is required")
		}
	case QueueTypeMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedBroker, c.Broker)
	}
	return nil
}

// Topic qualifies name with the prefix. '_' is legal in every backend's
// topic names, '.' is not.
func (c *Config) Topic(name string) string {
	if c.TopicPrefix == "" {
		return name
	}
	return c.TopicPrefix + "_" + name
}

// NewBroker connects the backend selected by conf.
func NewBroker(conf Config) (MessageQueueBroker, error) {
	conf.SetDefaults()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	switch conf.Broker {
	case QueueTypeKafka:
		return newKafkaBroker(&conf)
	case QueueTypeRocketMQ:
		return newRocketMQBroker(&conf)
	case QueueTypeRabbitMQ:
		return newRabbitMQBroker(&conf)
	default:
		return newMemoryBroker(&conf), nil
	}
}
