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
	"fmt"
	"time"

	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/go-arcade/ideaflow/pkg/nova"
	"github.com/google/wire"
)

// ProviderSet provides notify layer related dependencies
var ProviderSet = wire.NewSet(
	ProvideBroker,
	ProvideCodec,
	ProvidePublisher,
	ProvideConsumer,
)

// Conf selects the broker and topic for notifications. The broker
// settings sit at the top level of the notify section.
type Conf struct {
	nova.Config `mapstructure:",squash"`
	Topic       string        `mapstructure:"topic"`
	Format      string        `mapstructure:"format"`
	SendTimeout time.Duration `mapstructure:"sendTimeout"`
}

// SetDefaults fills zero values
func (c *Conf) SetDefaults() {
	if c.GroupID == "" {
		c.GroupID = "ideaflow-notification"
	}
	c.Config.SetDefaults()
	if c.Topic == "" {
		c.Topic = "notifications"
	}
	if c.Format == "" {
		c.Format = string(nova.MessageFormatSonic)
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = 3 * time.Second
	}
}

// ProvideBroker creates the notification broker
func ProvideBroker(conf Conf) (nova.MessageQueueBroker, func(), error) {
	conf.SetDefaults()
	broker, err := nova.NewBroker(conf.Config)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s broker: %w", conf.Broker, err)
	}
	log.Infow("notification broker created", "broker", conf.Broker, "topic", conf.Topic)

	cleanup := func() {
		if err := broker.Close(); err != nil {
			log.Warnw("close notification broker failed", "error", err)
		}
	}
	return broker, cleanup, nil
}

// ProvideCodec returns the codec matching the configured format
func ProvideCodec(conf Conf) (nova.MessageCodec, error) {
	conf.SetDefaults()
	return nova.NewMessageCodec(nova.MessageFormat(conf.Format))
}

// ProvidePublisher provides the notification publisher
func ProvidePublisher(broker nova.MessageQueueBroker, codec nova.MessageCodec, conf Conf) Publisher {
	return NewBrokerPublisher(broker, codec, conf)
}

// ProvideConsumer provides the notification consumer
func ProvideConsumer(broker nova.MessageQueueBroker, codec nova.MessageCodec, conf Conf, store Store) *Consumer {
	return NewConsumer(broker, codec, conf, store)
}
