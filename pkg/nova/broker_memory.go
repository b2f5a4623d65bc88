package nova

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/go-arcade/ideaflow/pkg/log"
)

// ErrBrokerClosed is returned when sending on a closed memory broker.
var ErrBrokerClosed = errors.New("broker closed")

// MemoryConfig configures the in-process broker.
type MemoryConfig struct {
	Buffer          int           `mapstructure:"buffer"`       // per-topic buffered messages
	RetryBackoff    time.Duration `mapstructure:"retryBackoff"` // pause before a failed message is delivered again
	MaxRedeliveries int           `mapstructure:"maxRedeliveries"`
}

func (c *MemoryConfig) setDefaults() {
	if c.Buffer <= 0 {
		c.Buffer = 1024
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 50 * time.Millisecond
	}
}

// memoryBroker delivers messages inside one process. All subscribers of a
// topic form one consumer group: each message is handled once.
type memoryBroker struct {
	config MemoryConfig

	mu     sync.Mutex
	topics map[string]chan *Message

	closeOnce sync.Once
	closed    chan struct{}
}

// NewMemoryBroker creates an in-process broker. MaxRedeliveries 0 means
// redeliver until the subscriber stops.
func NewMemoryBroker(conf MemoryConfig) MessageQueueBroker {
	return newMemoryBroker(&Config{Memory: conf})
}

func newMemoryBroker(conf *Config) *memoryBroker {
	mc := conf.Memory
	mc.setDefaults()
	return &memoryBroker{
		config: mc,
		topics: make(map[string]chan *Message),
		closed: make(chan struct{}),
	}
}

func (b *memoryBroker) topic(name string) chan *Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.topics[name]
	if !ok {
		ch = make(chan *Message, b.config.Buffer)
		b.topics[name] = ch
	}
	return ch
}

func (b *memoryBroker) Send(ctx context.Context, topic string, msg *Message) error {
	cp := &Message{
		Key:     msg.Key,
		Value:   append([]byte(nil), msg.Value...),
		Headers: maps.Clone(msg.Headers),
	}

	select {
	case <-b.closed:
		return ErrBrokerClosed
	default:
	}

	select {
	case b.topic(topic) <- cp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-b.closed:
		return ErrBrokerClosed
	}
}

func (b *memoryBroker) Subscribe(ctx context.Context, topics []string, handler MessageHandler) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, topic := range topics {
		ch := b.topic(topic)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-b.closed:
					return
				case msg := <-ch:
					b.deliver(ctx, topic, msg, handler)
				}
			}
		}()
	}

	select {
	case <-ctx.Done():
	case <-b.closed:
	}
	cancel()
	wg.Wait()
	return nil
}

// deliver runs handler until it succeeds, the redelivery budget is spent or
// the subscription stops.
func (b *memoryBroker) deliver(ctx context.Context, topic string, msg *Message, handler MessageHandler) {
	for attempt := 1; ; attempt++ {
		err := handler(ctx, msg)
		if err == nil {
			return
		}
		if b.config.MaxRedeliveries > 0 && attempt > b.config.MaxRedeliveries {
			log.Errorw("memory broker dropped message after redeliveries",
				"topic", topic, "key", msg.Key, "attempts", attempt, "error", err)
			return
		}
		log.Warnw("memory broker redelivering message", "topic", topic, "key", msg.Key, "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return
		case <-b.closed:
			return
		case <-time.After(b.config.RetryBackoff):
		}
	}
}

func (b *memoryBroker) Close() error {
	b.closeOnce.Do(func() { close(b.closed) })
	return nil
}
